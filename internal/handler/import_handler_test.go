package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sacm-project/sacm-api/internal/middleware"
	"github.com/sacm-project/sacm-api/internal/models"
	"github.com/sacm-project/sacm-api/internal/service"
)

type importRepoMock struct {
	created []models.Principal
}

func (m *importRepoMock) ListAcademicIDs(ctx context.Context) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (m *importRepoMock) ListIDCardNumbers(ctx context.Context) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (m *importRepoMock) BulkCreate(ctx context.Context, principals []models.Principal, batchSize int) (int, error) {
	m.created = append(m.created, principals...)
	return len(principals), nil
}

func (m *importRepoMock) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

type importDirectoryMock struct{}

func (importDirectoryMock) Snapshot(ctx context.Context) (*models.Directory, error) {
	return &models.Directory{
		Roles: map[string]models.Role{
			"Student": {ID: "role-student", Name: "Student", Kind: models.RoleStudent},
		},
		Majors: map[string]models.Major{
			"Computer Science": {ID: "major-cs", Name: "Computer Science"},
		},
		Levels: map[string]models.Level{
			"Level 1": {ID: "level-1", Name: "Level 1", Number: 1},
		},
	}, nil
}

func newImportTestHandler(repo *importRepoMock) *ImportHandler {
	svc := service.NewImportService(repo, importDirectoryMock{}, nil, nil, service.ImportConfig{MaxFileSize: 1 << 20, BatchSize: 100})
	return NewImportHandler(svc)
}

func multipartCSV(t *testing.T, body string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", "roster.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestImportHandlerAcceptsMultipartUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &importRepoMock{}
	handler := newImportTestHandler(repo)

	body, contentType := multipartCSV(t, "academic_id,id_card_number,full_name,role,major,level\n"+
		"S001,C001,Alice Example,Student,Computer Science,Level 1\n"+
		"S002,C002,Bob Example,Student,Computer Science,Level 1\n")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin/principals/import", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	c.Set(middleware.ContextPrincipalKey, &models.JWTClaims{PrincipalID: "admin-1", Role: models.RoleAdmin})

	handler.Import(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.ImportReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Created)
	assert.Empty(t, envelope.Data.Errors)
	assert.Len(t, repo.created, 2)
}

func TestImportHandlerMissingFilePart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &importRepoMock{}
	handler := newImportTestHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin/principals/import", bytes.NewBufferString(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	c.Request = req
	c.Set(middleware.ContextPrincipalKey, &models.JWTClaims{PrincipalID: "admin-1", Role: models.RoleAdmin})

	handler.Import(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.created)
}

func TestImportHandlerRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newImportTestHandler(&importRepoMock{})

	body, contentType := multipartCSV(t, "academic_id,id_card_number,full_name,role,major,level\n")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin/principals/import", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req

	handler.Import(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
