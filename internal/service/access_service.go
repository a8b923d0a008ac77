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

type accessPrincipalRepository interface {
	FindDetailByID(ctx context.Context, id string) (*models.PrincipalDetail, error)
}

type accessCourseRepository interface {
	FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error)
	IsInstructorAssigned(ctx context.Context, instructorID, courseID string) (bool, error)
	FindFileByID(ctx context.Context, id string) (*models.LectureFile, error)
}

type accessMetrics interface {
	ObserveAccessDenied(reason string)
}

// AccessService loads the projections an authorization check needs and runs
// the decision engine over them. All policy lives in the access package;
// this service only gathers facts.
type AccessService struct {
	principals accessPrincipalRepository
	courses    accessCourseRepository
	metrics    accessMetrics
	logger     *zap.Logger
}

// NewAccessService constructs an AccessService instance.
func NewAccessService(principals accessPrincipalRepository, courses accessCourseRepository, metrics accessMetrics, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{principals: principals, courses: courses, metrics: metrics, logger: logger}
}

// CheckCourse authorizes a principal against a course. It returns the loaded
// course detail on allow so callers do not fetch it twice.
func (s *AccessService) CheckCourse(ctx context.Context, principalID, courseID string, opts access.Options) (*models.CourseDetail, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.decide(ctx, principalID, course, nil, opts); err != nil {
		return nil, err
	}
	return course, nil
}

// CheckFile authorizes a principal against a lecture file, loading the file
// and its owning course. A soft-deleted file denies before any other rule.
func (s *AccessService) CheckFile(ctx context.Context, principalID, fileID string, opts access.Options) (*models.LectureFile, error) {
	file, err := s.courses.FindFileByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch file")
	}
	course, err := s.loadCourse(ctx, file.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.decide(ctx, principalID, course, file, opts); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *AccessService) loadCourse(ctx context.Context, courseID string) (*models.CourseDetail, error) {
	course, err := s.courses.FindDetailByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}
	return course, nil
}

func (s *AccessService) decide(ctx context.Context, principalID string, course *models.CourseDetail, file *models.LectureFile, opts access.Options) error {
	detail, err := s.principals.FindDetailByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "principal not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch principal")
	}

	subject := access.Subject{
		ID:      detail.ID,
		Role:    detail.Role,
		MajorID: detail.MajorID,
		LevelID: detail.LevelID,
	}
	if detail.LevelNumber != nil {
		subject.LevelNumber = *detail.LevelNumber
	}

	resource := access.Resource{Course: *course, File: file}
	if detail.Role == models.RoleInstructor {
		assigned, err := s.courses.IsInstructorAssigned(ctx, detail.ID, course.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check instructor assignment")
		}
		resource.AssignedInstructor = assigned
	}

	decision := access.Decide(subject, resource, opts)
	if !decision.Allowed {
		if s.metrics != nil {
			s.metrics.ObserveAccessDenied(string(decision.Reason))
		}
		s.logger.Debug("access denied",
			zap.String("principal_id", detail.ID),
			zap.String("course_id", course.ID),
			zap.String("reason", string(decision.Reason)),
		)
		return appErrors.New(string(decision.Reason), appErrors.ErrForbidden.Status, decision.Reason.Message())
	}
	return nil
}
