package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sacm-project/sacm-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func principalRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "academic_id", "id_card_number", "full_name", "email", "password_hash", "role", "major_id", "level_id", "account_status", "created_at", "updated_at"})
}

func TestFindByAcademicID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	now := time.Now()
	rows := principalRows().
		AddRow("1", "A100", "C1", "Alice", nil, "", string(models.RoleStudent), nil, nil, string(models.StatusInactive), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, academic_id, id_card_number, full_name, email, password_hash, role, major_id, level_id, account_status, created_at, updated_at FROM principals WHERE academic_id = $1 LIMIT 1")).
		WithArgs("A100").
		WillReturnRows(rows)

	principal, err := repo.FindByAcademicID(context.Background(), "A100")
	require.NoError(t, err)
	assert.Equal(t, "A100", principal.AcademicID)
	assert.Equal(t, models.StatusInactive, principal.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAcademicIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	rows := sqlmock.NewRows([]string{"academic_id"}).AddRow("A100").AddRow("A101")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT academic_id FROM principals")).WillReturnRows(rows)

	set, err := repo.ListAcademicIDs(context.Background())
	require.NoError(t, err)
	assert.Len(t, set, 2)
	_, ok := set["A100"]
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkCreateBatchesWithinOneTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	now := time.Now()
	principals := make([]models.Principal, 3)
	for i := range principals {
		principals[i] = models.Principal{
			ID:           string(rune('a' + i)),
			AcademicID:   string(rune('A' + i)),
			IDCardNumber: string(rune('N' + i)),
			Role:         models.RoleStudent,
			Status:       models.StatusInactive,
			CreatedAt:    now,
		}
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO principals").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO principals").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.BulkCreate(context.Background(), principals, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkCreateBindsEmptyPasswordHash(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	now := time.Now()
	principals := []models.Principal{{
		ID:           "p1",
		AcademicID:   "A100",
		IDCardNumber: "C1",
		FullName:     "Alice",
		Role:         models.RoleStudent,
		Status:       models.StatusInactive,
		CreatedAt:    now,
	}}

	// Imported rows carry an empty hash until activation; the column must be
	// written explicitly so later scans never hit a NULL string.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO principals (id, academic_id, id_card_number, full_name, email, password_hash, role, major_id, level_id, account_status, created_at)")).
		WithArgs("p1", "A100", "C1", "Alice", nil, "", string(models.RoleStudent), nil, nil, string(models.StatusInactive), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.BulkCreate(context.Background(), principals, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkCreateCountsConflictSkips(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	principals := []models.Principal{
		{ID: "1", AcademicID: "A100", IDCardNumber: "C1"},
		{ID: "2", AcademicID: "A101", IDCardNumber: "C2"},
	}

	// One row lost to ON CONFLICT DO NOTHING: a concurrent import won the race.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO principals").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.BulkCreate(context.Background(), principals, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkCreateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	principals := []models.Principal{{ID: "1", AcademicID: "A100", IDCardNumber: "C1"}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO principals").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.BulkCreate(context.Background(), principals, 100)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkCreateEmptyIsNoop(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	created, err := repo.BulkCreate(context.Background(), nil, 100)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestPromoteLevel(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	ts := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE principals SET level_id = $2, updated_at = $3 WHERE role = $4 AND account_status = $5 AND level_id = $1")).
		WithArgs("L1", "L2", ts, string(models.RoleStudent), string(models.StatusActive)).
		WillReturnResult(sqlmock.NewResult(0, 12))

	count, err := repo.PromoteLevel(context.Background(), "L1", "L2", nil, ts)
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraduateLevelClearsLevel(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	ts := time.Now()
	major := "M1"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE principals SET account_status = $2, level_id = NULL, updated_at = $3 WHERE role = $4 AND account_status = $5 AND level_id = $1 AND major_id = $6")).
		WithArgs("L8", string(models.StatusGraduated), ts, string(models.RoleStudent), string(models.StatusActive), major).
		WillReturnResult(sqlmock.NewResult(0, 30))

	count, err := repo.GraduateLevel(context.Background(), "L8", &major, ts)
	require.NoError(t, err)
	assert.Equal(t, int64(30), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
