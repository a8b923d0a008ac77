package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/sacm-project/sacm-api/internal/access"
	"github.com/sacm-project/sacm-api/internal/models"
	appErrors "github.com/sacm-project/sacm-api/pkg/errors"
)

type courseListRepository interface {
	ListForStudent(ctx context.Context, majorID string) ([]models.CourseDetail, error)
}

type coursePrincipalLookup interface {
	FindDetailByID(ctx context.Context, id string) (*models.PrincipalDetail, error)
}

type courseAuthorizer interface {
	CheckCourse(ctx context.Context, principalID, courseID string, opts access.Options) (*models.CourseDetail, error)
}

// CourseService serves the student-facing course surface.
type CourseService struct {
	courses    courseListRepository
	principals coursePrincipalLookup
	auth       courseAuthorizer
	logger     *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courses courseListRepository, principals coursePrincipalLookup, auth courseAuthorizer, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, principals: principals, auth: auth, logger: logger}
}

// ListForStudent returns the courses a student's major offers. The per-course
// level rules still apply on access; this is a browsing surface only.
func (s *CourseService) ListForStudent(ctx context.Context, principalID string) ([]models.CourseDetail, error) {
	detail, err := s.principals.FindDetailByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "principal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch principal")
	}
	if detail.MajorID == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "classification required")
	}
	courses, err := s.courses.ListForStudent(ctx, *detail.MajorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get authorizes and returns one course for the given principal.
func (s *CourseService) Get(ctx context.Context, principalID, courseID string) (*models.CourseDetail, error) {
	return s.auth.CheckCourse(ctx, principalID, courseID, access.Options{})
}
