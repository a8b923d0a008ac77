package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sacm-project/sacm-api/internal/models"
)

// ReferenceRepository reads the read-mostly reference directory tables.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository creates a new instance of ReferenceRepository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListRoles returns every role.
func (r *ReferenceRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	const query = `SELECT id, name, kind, created_at FROM roles ORDER BY name`
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// ListMajors returns every major.
func (r *ReferenceRepository) ListMajors(ctx context.Context) ([]models.Major, error) {
	const query = `SELECT id, name, code, created_at FROM majors ORDER BY name`
	var majors []models.Major
	if err := r.db.SelectContext(ctx, &majors, query); err != nil {
		return nil, fmt.Errorf("list majors: %w", err)
	}
	return majors, nil
}

// ListLevels returns every level ordered by its number.
func (r *ReferenceRepository) ListLevels(ctx context.Context) ([]models.Level, error) {
	const query = `SELECT id, name, level_number, created_at FROM levels ORDER BY level_number`
	var levels []models.Level
	if err := r.db.SelectContext(ctx, &levels, query); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return levels, nil
}

// ListSemesters returns every semester, newest first.
func (r *ReferenceRepository) ListSemesters(ctx context.Context) ([]models.Semester, error) {
	const query = `SELECT id, name, is_current, start_date, end_date, created_at FROM semesters ORDER BY start_date DESC`
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// CurrentSemester returns the single semester flagged current, or
// sql.ErrNoRows when none is.
func (r *ReferenceRepository) CurrentSemester(ctx context.Context) (*models.Semester, error) {
	const query = `SELECT id, name, is_current, start_date, end_date, created_at FROM semesters WHERE is_current = TRUE LIMIT 1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("current semester: %w", err)
	}
	return &semester, nil
}

// FindLevelByID returns a level by identifier.
func (r *ReferenceRepository) FindLevelByID(ctx context.Context, id string) (*models.Level, error) {
	const query = `SELECT id, name, level_number, created_at FROM levels WHERE id = $1 LIMIT 1`
	var level models.Level
	if err := r.db.GetContext(ctx, &level, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find level by id: %w", err)
	}
	return &level, nil
}

// FindNextLevel returns the level whose number follows the given one, or
// sql.ErrNoRows when the given level is terminal.
func (r *ReferenceRepository) FindNextLevel(ctx context.Context, levelNumber int) (*models.Level, error) {
	const query = `SELECT id, name, level_number, created_at FROM levels WHERE level_number = $1 LIMIT 1`
	var level models.Level
	if err := r.db.GetContext(ctx, &level, query, levelNumber+1); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find next level: %w", err)
	}
	return &level, nil
}
