package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sacm-project/sacm-api/internal/models"
	appErrors "github.com/sacm-project/sacm-api/pkg/errors"
)

type authPrincipalRepository interface {
	FindByID(ctx context.Context, id string) (*models.Principal, error)
	FindByAcademicID(ctx context.Context, academicID string) (*models.Principal, error)
	Activate(ctx context.Context, id, email, passwordHash string, ts time.Time) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

// AuthService provides authentication and account-activation use cases.
// Principals sign in with their academic id, not an email address.
type AuthService struct {
	repo      authPrincipalRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authPrincipalRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config}
}

// Login authenticates a principal and returns an issued access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	principal, err := s.repo.FindByAcademicID(ctx, req.AcademicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid academic id or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch principal")
	}

	if principal.Status != models.StatusActive {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is not active")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid academic id or password")
	}

	token, issuedAt, err := s.generateAccessToken(principal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		ID:          uuid.NewString(),
		PrincipalID: &principal.ID,
		Action:      models.AuditActionLogin,
		Resource:    "auth",
		ResourceID:  &principal.ID,
		IPAddress:   req.IP,
		UserAgent:   req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record login audit log", zap.Error(err))
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		Principal:   principalInfo(principal),
	}, nil
}

// Activate completes self-service onboarding for an imported account. The
// account must still be inactive and the id-card number must match the
// imported record before credentials are set.
func (s *AuthService) Activate(ctx context.Context, req models.ActivateRequest) (*models.PrincipalInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activation payload")
	}

	principal, err := s.repo.FindByAcademicID(ctx, req.AcademicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch principal")
	}

	if principal.Status != models.StatusInactive {
		return nil, appErrors.Clone(appErrors.ErrConflict, "account is already activated")
	}
	if principal.IDCardNumber != req.IDCardNumber {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "id card number does not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	now := time.Now().UTC()
	if err := s.repo.Activate(ctx, principal.ID, req.Email, string(hash), now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate account")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		ID:          uuid.NewString(),
		PrincipalID: &principal.ID,
		Action:      models.AuditActionActivate,
		Resource:    "principal",
		ResourceID:  &principal.ID,
		IPAddress:   req.IP,
		UserAgent:   req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record activation audit log", zap.Error(err))
	}

	info := principalInfo(principal)
	return &info, nil
}

// ValidateToken parses and verifies a JWT access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(principal *models.Principal) (string, time.Time, error) {
	now := time.Now().UTC()
	claims := models.JWTClaims{
		PrincipalID: principal.ID,
		AcademicID:  principal.AcademicID,
		Role:        principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenExpiry)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, now, nil
}

func principalInfo(p *models.Principal) models.PrincipalInfo {
	return models.PrincipalInfo{
		ID:         p.ID,
		AcademicID: p.AcademicID,
		FullName:   p.FullName,
		Role:       p.Role,
		MajorID:    p.MajorID,
		LevelID:    p.LevelID,
	}
}
