package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a principal.
type LoginRequest struct {
	AcademicID string `json:"academic_id" validate:"required"`
	Password   string `json:"password" validate:"required"`
	IP         string `json:"-"`
	UserAgent  string `json:"-"`
}

// LoginResponse returns the issued token and principal info.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresIn   int64         `json:"expires_in"`
	Principal   PrincipalInfo `json:"principal"`
	IssuedAt    time.Time     `json:"issued_at"`
}

// ActivateRequest is the self-service account activation payload. The account
// must still be inactive and the id-card number must match the imported record.
type ActivateRequest struct {
	AcademicID   string `json:"academic_id" validate:"required"`
	IDCardNumber string `json:"id_card_number" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// PrincipalInfo describes the authenticated principal in responses.
type PrincipalInfo struct {
	ID         string   `json:"id"`
	AcademicID string   `json:"academic_id"`
	FullName   string   `json:"full_name"`
	Role       RoleKind `json:"role"`
	MajorID    *string  `json:"major_id,omitempty"`
	LevelID    *string  `json:"level_id,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	PrincipalID string   `json:"principal_id"`
	AcademicID  string   `json:"academic_id"`
	Role        RoleKind `json:"role"`
	jwt.RegisteredClaims
}
