package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/sacm-project/sacm-api/internal/models"
	appErrors "github.com/sacm-project/sacm-api/pkg/errors"
)

type directoryRepository interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
	ListMajors(ctx context.Context) ([]models.Major, error)
	ListLevels(ctx context.Context) ([]models.Level, error)
	ListSemesters(ctx context.Context) ([]models.Semester, error)
	CurrentSemester(ctx context.Context) (*models.Semester, error)
}

// DirectoryService serves the reference tables (roles, majors, levels,
// semesters) and builds name-keyed snapshots for bulk operations.
type DirectoryService struct {
	repo   directoryRepository
	logger *zap.Logger
}

// NewDirectoryService constructs a DirectoryService instance.
func NewDirectoryService(repo directoryRepository, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{repo: repo, logger: logger}
}

// Snapshot loads all reference tables into a name-keyed Directory. The
// snapshot is built fresh per call; callers hold it only for the duration of
// one bulk operation.
func (s *DirectoryService) Snapshot(ctx context.Context) (*models.Directory, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roles")
	}
	majors, err := s.repo.ListMajors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load majors")
	}
	levels, err := s.repo.ListLevels(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load levels")
	}

	dir := &models.Directory{
		Roles:  make(map[string]models.Role, len(roles)),
		Majors: make(map[string]models.Major, len(majors)),
		Levels: make(map[string]models.Level, len(levels)),
	}
	for _, r := range roles {
		dir.Roles[r.Name] = r
	}
	for _, m := range majors {
		dir.Majors[m.Name] = m
	}
	for _, l := range levels {
		dir.Levels[l.Name] = l
	}
	return dir, nil
}

// ListRoles returns all roles.
func (s *DirectoryService) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roles")
	}
	return roles, nil
}

// ListMajors returns all majors.
func (s *DirectoryService) ListMajors(ctx context.Context) ([]models.Major, error) {
	majors, err := s.repo.ListMajors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list majors")
	}
	return majors, nil
}

// ListLevels returns all levels ordered by level number.
func (s *DirectoryService) ListLevels(ctx context.Context) ([]models.Level, error) {
	levels, err := s.repo.ListLevels(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list levels")
	}
	return levels, nil
}

// ListSemesters returns all semesters, newest first.
func (s *DirectoryService) ListSemesters(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.repo.ListSemesters(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	return semesters, nil
}

// CurrentSemester returns the single current semester, or ErrNotFound when
// no semester is marked current.
func (s *DirectoryService) CurrentSemester(ctx context.Context) (*models.Semester, error) {
	sem, err := s.repo.CurrentSemester(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no current semester configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current semester")
	}
	return sem, nil
}
