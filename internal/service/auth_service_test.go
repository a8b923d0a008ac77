package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sacm-project/sacm-api/internal/models"
)

type mockAuthRepo struct {
	principals map[string]*models.Principal
	activated  []string
	auditLogs  []models.AuditLog
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	for _, p := range m.principals {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByAcademicID(ctx context.Context, academicID string) (*models.Principal, error) {
	if p, ok := m.principals[academicID]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) Activate(ctx context.Context, id, email, passwordHash string, ts time.Time) error {
	m.activated = append(m.activated, id)
	for _, p := range m.principals {
		if p.ID == id {
			p.Email = &email
			p.PasswordHash = passwordHash
			p.Status = models.StatusActive
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, *log)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{TokenSecret: "test-secret", TokenExpiry: time.Hour, Issuer: "sacm-api"}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func activePrincipal(t *testing.T) *models.Principal {
	return &models.Principal{
		ID:           "p1",
		AcademicID:   "S001",
		IDCardNumber: "C001",
		FullName:     "Alice Example",
		PasswordHash: hashPassword(t, "correct-horse"),
		Role:         models.RoleStudent,
		Status:       models.StatusActive,
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{principals: map[string]*models.Principal{"S001": activePrincipal(t)}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{AcademicID: "S001", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "S001", resp.Principal.AcademicID)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.PrincipalID)
	assert.Equal(t, models.RoleStudent, claims.Role)

	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{principals: map[string]*models.Principal{"S001": activePrincipal(t)}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{AcademicID: "S001", Password: "wrong"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid academic id or password")
}

func TestLoginUnknownAcademicID(t *testing.T) {
	repo := &mockAuthRepo{principals: map[string]*models.Principal{}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{AcademicID: "S404", Password: "whatever"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid academic id or password")
}

func TestLoginInactiveAccount(t *testing.T) {
	p := activePrincipal(t)
	p.Status = models.StatusInactive
	repo := &mockAuthRepo{principals: map[string]*models.Principal{"S001": p}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{AcademicID: "S001", Password: "correct-horse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not active")
}

func TestActivateSuccess(t *testing.T) {
	p := activePrincipal(t)
	p.Status = models.StatusInactive
	p.PasswordHash = ""
	repo := &mockAuthRepo{principals: map[string]*models.Principal{"S001": p}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	info, err := svc.Activate(context.Background(), models.ActivateRequest{
		AcademicID:   "S001",
		IDCardNumber: "C001",
		Email:        "alice@example.edu",
		Password:     "long-enough-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", info.ID)
	require.Len(t, repo.activated, 1)
	assert.Equal(t, models.StatusActive, p.Status)

	// The freshly set credentials must work immediately.
	resp, err := svc.Login(context.Background(), models.LoginRequest{AcademicID: "S001", Password: "long-enough-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestActivateWrongIDCard(t *testing.T) {
	p := activePrincipal(t)
	p.Status = models.StatusInactive
	repo := &mockAuthRepo{principals: map[string]*models.Principal{"S001": p}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Activate(context.Background(), models.ActivateRequest{
		AcademicID:   "S001",
		IDCardNumber: "C999",
		Email:        "alice@example.edu",
		Password:     "long-enough-pass",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id card number does not match")
	assert.Empty(t, repo.activated)
}

func TestActivateAlreadyActive(t *testing.T) {
	repo := &mockAuthRepo{principals: map[string]*models.Principal{"S001": activePrincipal(t)}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Activate(context.Background(), models.ActivateRequest{
		AcademicID:   "S001",
		IDCardNumber: "C001",
		Email:        "alice@example.edu",
		Password:     "long-enough-pass",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already activated")
}

func TestActivateValidation(t *testing.T) {
	repo := &mockAuthRepo{principals: map[string]*models.Principal{}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Activate(context.Background(), models.ActivateRequest{
		AcademicID:   "S001",
		IDCardNumber: "C001",
		Email:        "not-an-email",
		Password:     "short",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid activation payload")
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, testAuthConfig())

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
}
