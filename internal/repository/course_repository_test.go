package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sacm-project/sacm-api/internal/models"
)

func TestFindCourseDetailLoadsMajors(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	courseRows := sqlmock.NewRows([]string{"id", "code", "name", "level_id", "semester_id", "is_active", "created_at", "updated_at", "level_number", "semester_is_current"}).
		AddRow("c1", "CS101", "Programming I", "L1", "S1", true, now, now, 1, true)
	mock.ExpectQuery("SELECT c.id, c.code, c.name").WithArgs("c1").WillReturnRows(courseRows)

	majorRows := sqlmock.NewRows([]string{"major_id"}).AddRow("M1").AddRow("M2")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT major_id FROM course_majors WHERE course_id = $1")).
		WithArgs("c1").
		WillReturnRows(majorRows)

	detail, err := repo.FindDetailByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, detail.LevelNumber)
	assert.True(t, detail.SemesterIsCurrent)
	assert.True(t, detail.HasMajor("M2"))
	assert.False(t, detail.HasMajor("M9"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsInstructorAssigned(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("i1", "c1").WillReturnRows(rows)

	assigned, err := repo.IsInstructorAssigned(context.Background(), "i1", "c1")
	require.NoError(t, err)
	assert.True(t, assigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindFileByIDIncludesDeleted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "course_id", "title", "storage_path", "content_type", "size_bytes", "is_visible", "is_deleted", "download_count", "uploaded_by", "created_at", "updated_at"}).
		AddRow("f1", "c1", "Week 1", "uploads/c1/w1.pdf", "application/pdf", 1024, true, true, 3, "i1", now, now)
	mock.ExpectQuery("SELECT id, course_id, title").WithArgs("f1").WillReturnRows(rows)

	file, err := repo.FindFileByID(context.Background(), "f1")
	require.NoError(t, err)
	assert.True(t, file.IsDeleted, "soft-deleted rows must surface so the access rules apply")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFilesVisibleOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "course_id", "title", "storage_path", "content_type", "size_bytes", "is_visible", "is_deleted", "download_count", "uploaded_by", "created_at", "updated_at"}).
		AddRow("f1", "c1", "Week 1", "uploads/c1/w1.pdf", "application/pdf", 1024, true, false, 0, "i1", now, now)
	mock.ExpectQuery("is_visible = TRUE").WithArgs("c1").WillReturnRows(rows)

	files, err := repo.ListFiles(context.Background(), models.FileFilter{CourseID: "c1", VisibleOnly: true})
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteFile(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	ts := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lecture_files SET is_deleted = TRUE, updated_at = $2 WHERE id = $1")).
		WithArgs("f1", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDeleteFile(context.Background(), "f1", ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}
