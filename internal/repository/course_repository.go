package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sacm-project/sacm-api/internal/models"
)

const fileColumns = `id, course_id, title, storage_path, content_type, size_bytes, is_visible, is_deleted, download_count, uploaded_by, created_at, updated_at`

// CourseRepository provides database access for courses, their files and the
// instructor assignment set.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindDetailByID loads the authorization projection of a course: the course
// row joined with its level number and semester flag, plus its major set.
func (r *CourseRepository) FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	const query = `SELECT c.id, c.code, c.name, c.level_id, c.semester_id, c.is_active, c.created_at, c.updated_at,
l.level_number, s.is_current AS semester_is_current
FROM courses c
JOIN levels l ON l.id = c.level_id
JOIN semesters s ON s.id = c.semester_id
WHERE c.id = $1 LIMIT 1`
	var detail models.CourseDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course detail: %w", err)
	}

	const majorQuery = `SELECT major_id FROM course_majors WHERE course_id = $1`
	if err := r.db.SelectContext(ctx, &detail.MajorIDs, majorQuery, id); err != nil {
		return nil, fmt.Errorf("find course majors: %w", err)
	}

	return &detail, nil
}

// ListForStudent returns the active courses associated with a major.
func (r *CourseRepository) ListForStudent(ctx context.Context, majorID string) ([]models.CourseDetail, error) {
	const query = `SELECT c.id, c.code, c.name, c.level_id, c.semester_id, c.is_active, c.created_at, c.updated_at,
l.level_number, s.is_current AS semester_is_current
FROM courses c
JOIN levels l ON l.id = c.level_id
JOIN semesters s ON s.id = c.semester_id
JOIN course_majors cm ON cm.course_id = c.id
WHERE cm.major_id = $1 AND c.is_active = TRUE
ORDER BY l.level_number, c.code`
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, majorID); err != nil {
		return nil, fmt.Errorf("list courses for student: %w", err)
	}
	for i := range courses {
		courses[i].MajorIDs = append(courses[i].MajorIDs, majorID)
	}
	return courses, nil
}

// IsInstructorAssigned reports whether the instructor is on the course's
// assignment set.
func (r *CourseRepository) IsInstructorAssigned(ctx context.Context, instructorID, courseID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM instructor_courses WHERE instructor_id = $1 AND course_id = $2)`
	var assigned bool
	if err := r.db.GetContext(ctx, &assigned, query, instructorID, courseID); err != nil {
		return false, fmt.Errorf("check instructor assignment: %w", err)
	}
	return assigned, nil
}

// FindFileByID returns a lecture file including soft-deleted ones; the
// authorization engine decides what a deleted file means for the caller.
func (r *CourseRepository) FindFileByID(ctx context.Context, id string) (*models.LectureFile, error) {
	query := `SELECT ` + fileColumns + ` FROM lecture_files WHERE id = $1 LIMIT 1`
	var file models.LectureFile
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find file by id: %w", err)
	}
	return &file, nil
}

// ListFiles returns a course's non-deleted files, optionally visible only.
func (r *CourseRepository) ListFiles(ctx context.Context, filter models.FileFilter) ([]models.LectureFile, error) {
	query := `SELECT ` + fileColumns + ` FROM lecture_files WHERE course_id = $1 AND is_deleted = FALSE`
	args := []interface{}{filter.CourseID}
	if filter.VisibleOnly {
		query += ` AND is_visible = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	var files []models.LectureFile
	if err := r.db.SelectContext(ctx, &files, query, args...); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// CreateFile persists a new lecture file record.
func (r *CourseRepository) CreateFile(ctx context.Context, file *models.LectureFile) error {
	const query = `INSERT INTO lecture_files (id, course_id, title, storage_path, content_type, size_bytes, is_visible, is_deleted, download_count, uploaded_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := r.db.ExecContext(ctx, query, file.ID, file.CourseID, file.Title, file.StoragePath, file.ContentType, file.SizeBytes, file.IsVisible, file.IsDeleted, file.DownloadCount, file.UploadedBy, file.CreatedAt, file.UpdatedAt); err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

// SoftDeleteFile marks a file deleted. The flag is monotonic; there is no
// corresponding undelete.
func (r *CourseRepository) SoftDeleteFile(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE lecture_files SET is_deleted = TRUE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("soft delete file: %w", err)
	}
	return nil
}

// SetFileVisibility toggles a file's visibility flag.
func (r *CourseRepository) SetFileVisibility(ctx context.Context, id string, visible bool, ts time.Time) error {
	const query = `UPDATE lecture_files SET is_visible = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, visible, ts); err != nil {
		return fmt.Errorf("set file visibility: %w", err)
	}
	return nil
}

// IncrementDownloadCount records one download of a file.
func (r *CourseRepository) IncrementDownloadCount(ctx context.Context, id string) error {
	const query = `UPDATE lecture_files SET download_count = download_count + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment download count: %w", err)
	}
	return nil
}
