package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sacm-project/sacm-api/internal/models"
	"github.com/sacm-project/sacm-api/pkg/rowsource"
)

type mockImportRepo struct {
	academicIDs map[string]struct{}
	idCards     map[string]struct{}
	created     []models.Principal
	batchSizes  []int
	bulkErr     error
}

func (m *mockImportRepo) ListAcademicIDs(ctx context.Context) (map[string]struct{}, error) {
	if m.academicIDs == nil {
		m.academicIDs = make(map[string]struct{})
	}
	return m.academicIDs, nil
}

func (m *mockImportRepo) ListIDCardNumbers(ctx context.Context) (map[string]struct{}, error) {
	if m.idCards == nil {
		m.idCards = make(map[string]struct{})
	}
	return m.idCards, nil
}

func (m *mockImportRepo) BulkCreate(ctx context.Context, principals []models.Principal, batchSize int) (int, error) {
	if m.bulkErr != nil {
		return 0, m.bulkErr
	}
	m.batchSizes = append(m.batchSizes, batchSize)
	created := 0
	for _, p := range principals {
		if _, ok := m.academicIDs[p.AcademicID]; ok {
			continue
		}
		m.academicIDs[p.AcademicID] = struct{}{}
		m.idCards[p.IDCardNumber] = struct{}{}
		m.created = append(m.created, p)
		created++
	}
	return created, nil
}

func (m *mockImportRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

type mockImportDirectory struct{}

func (m *mockImportDirectory) Snapshot(ctx context.Context) (*models.Directory, error) {
	return &models.Directory{
		Roles: map[string]models.Role{
			"Student":    {ID: "role-student", Name: "Student", Kind: models.RoleStudent},
			"Instructor": {ID: "role-instructor", Name: "Instructor", Kind: models.RoleInstructor},
		},
		Majors: map[string]models.Major{
			"Computer Science": {ID: "major-cs", Name: "Computer Science"},
		},
		Levels: map[string]models.Level{
			"Level 1": {ID: "level-1", Name: "Level 1", Number: 1},
			"Level 2": {ID: "level-2", Name: "Level 2", Number: 2},
		},
	}, nil
}

func csvSource(t *testing.T, body string) rowsource.Source {
	t.Helper()
	content := strings.TrimSpace(body)
	return rowsource.NewCSV(strings.NewReader(content), int64(len(content)))
}

const importHeader = "academic_id,id_card_number,full_name,role,major,level\n"

func newImportService(repo *mockImportRepo) *ImportService {
	return NewImportService(repo, &mockImportDirectory{}, nil, nil, ImportConfig{MaxFileSize: 1 << 20, BatchSize: 100})
}

func TestImportCreatesPrincipals(t *testing.T) {
	repo := &mockImportRepo{}
	svc := newImportService(repo)

	src := csvSource(t, importHeader+
		"S001,C001,Alice Example,Student,Computer Science,Level 1\n"+
		"S002,C002,Bob Example,Student,Computer Science,Level 2\n")

	report, err := svc.Import(context.Background(), src, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.Errors)
	assert.True(t, report.Success())

	require.Len(t, repo.created, 2)
	first := repo.created[0]
	assert.Equal(t, "S001", first.AcademicID)
	assert.Equal(t, models.RoleStudent, first.Role)
	assert.Equal(t, models.StatusInactive, first.Status)
	require.NotNil(t, first.MajorID)
	assert.Equal(t, "major-cs", *first.MajorID)
	require.NotNil(t, first.LevelID)
	assert.Equal(t, "level-1", *first.LevelID)
}

func TestImportIdempotentRerun(t *testing.T) {
	repo := &mockImportRepo{}
	svc := newImportService(repo)
	body := importHeader + "S001,C001,Alice Example,Student,Computer Science,Level 1\n"

	report, err := svc.Import(context.Background(), csvSource(t, body), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.True(t, report.Success())

	report, err = svc.Import(context.Background(), csvSource(t, body), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Errors)
	assert.True(t, report.Success())
}

func TestImportDuplicateWithinFile(t *testing.T) {
	repo := &mockImportRepo{}
	svc := newImportService(repo)

	src := csvSource(t, importHeader+
		"S001,C001,Alice Example,Student,Computer Science,Level 1\n"+
		"S001,C001,Alice Again,Student,Computer Science,Level 1\n")

	report, err := svc.Import(context.Background(), src, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Errors)
	require.Len(t, repo.created, 1)
}

func TestImportIDCardConflictRejected(t *testing.T) {
	repo := &mockImportRepo{
		academicIDs: map[string]struct{}{"S000": {}},
		idCards:     map[string]struct{}{"C001": {}},
	}
	svc := newImportService(repo)

	src := csvSource(t, importHeader+
		"S001,C001,Alice Example,Student,Computer Science,Level 1\n")

	report, err := svc.Import(context.Background(), src, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 0, report.Created)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "line 2")
	assert.Contains(t, report.Errors[0], "C001")
	assert.False(t, report.Success())
}

func TestImportIDCardDuplicateWithinFile(t *testing.T) {
	repo := &mockImportRepo{}
	svc := newImportService(repo)

	src := csvSource(t, importHeader+
		"S001,C001,Alice Example,Student,Computer Science,Level 1\n"+
		"S002,C001,Bob Example,Student,Computer Science,Level 1\n")

	report, err := svc.Import(context.Background(), src, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "line 3")
}

func TestImportRowValidation(t *testing.T) {
	repo := &mockImportRepo{}
	svc := newImportService(repo)

	src := csvSource(t, importHeader+
		",C001,Alice Example,Student,,\n"+
		"S002,C002,Bob Example,Wizard,,\n"+
		"S003,C003,Cara Example,Student,History,\n"+
		"S004,C004,Dan Example,Student,Computer Science,Level 9\n"+
		"S005,C005,Eve Example,Instructor,,\n")

	report, err := svc.Import(context.Background(), src, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Errors, 4)
	assert.Contains(t, report.Errors[0], "line 2")
	assert.Contains(t, report.Errors[1], "unknown role")
	assert.Contains(t, report.Errors[2], "unknown major")
	assert.Contains(t, report.Errors[3], "unknown level")

	require.Len(t, repo.created, 1)
	instructor := repo.created[0]
	assert.Equal(t, models.RoleInstructor, instructor.Role)
	assert.Nil(t, instructor.MajorID)
	assert.Nil(t, instructor.LevelID)
}

func TestImportSizeCeiling(t *testing.T) {
	repo := &mockImportRepo{}
	svc := NewImportService(repo, &mockImportDirectory{}, nil, nil, ImportConfig{MaxFileSize: 10, BatchSize: 100})

	src := csvSource(t, importHeader+"S001,C001,Alice Example,Student,Computer Science,Level 1\n")

	report, err := svc.Import(context.Background(), src, "admin-1")
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "byte limit")
	assert.Empty(t, repo.created)
}

func TestImportStoreFailureAborts(t *testing.T) {
	repo := &mockImportRepo{bulkErr: errors.New("connection refused")}
	svc := newImportService(repo)

	src := csvSource(t, importHeader+"S001,C001,Alice Example,Student,Computer Science,Level 1\n")

	report, err := svc.Import(context.Background(), src, "admin-1")
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Empty(t, repo.created)
}

func TestImportEmptyInputSucceeds(t *testing.T) {
	repo := &mockImportRepo{}
	svc := newImportService(repo)

	report, err := svc.Import(context.Background(), csvSource(t, importHeader), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.Errors)
	assert.True(t, report.Success())
}
