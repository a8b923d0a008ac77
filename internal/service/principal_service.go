package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/sacm-project/sacm-api/internal/models"
	appErrors "github.com/sacm-project/sacm-api/pkg/errors"
	"github.com/sacm-project/sacm-api/pkg/export"
)

type principalRepository interface {
	List(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.PrincipalDetail, error)
}

// PrincipalService serves the admin principal directory: listing, detail
// lookup and roster export.
type PrincipalService struct {
	repo     principalRepository
	exporter *export.CSVExporter
	logger   *zap.Logger
}

// NewPrincipalService constructs a PrincipalService instance.
func NewPrincipalService(repo principalRepository, exporter *export.CSVExporter, logger *zap.Logger) *PrincipalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = export.NewCSVExporter()
	}
	return &PrincipalService{repo: repo, exporter: exporter, logger: logger}
}

// List returns a filtered page of principals with pagination metadata.
func (s *PrincipalService) List(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, *models.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	principals, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list principals")
	}
	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	return principals, pagination, nil
}

// Get returns one principal with resolved classification names.
func (s *PrincipalService) Get(ctx context.Context, id string) (*models.PrincipalDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "principal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch principal")
	}
	return detail, nil
}

// ExportRoster renders the filtered principal set as CSV bytes. The filter's
// pagination is widened internally so the export covers every match.
func (s *PrincipalService) ExportRoster(ctx context.Context, filter models.PrincipalFilter) ([]byte, error) {
	filter.Page = 1
	filter.PageSize = 10000
	principals, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	if total > len(principals) {
		s.logger.Warn("roster export truncated", zap.Int("total", total), zap.Int("exported", len(principals)))
	}

	dataset := export.Dataset{
		Headers: []string{"academic_id", "full_name", "email", "role", "status", "created_at"},
		Rows:    make([]map[string]string, 0, len(principals)),
	}
	for _, p := range principals {
		email := ""
		if p.Email != nil {
			email = *p.Email
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"academic_id": p.AcademicID,
			"full_name":   p.FullName,
			"email":       email,
			"role":        string(p.Role),
			"status":      string(p.Status),
			"created_at":  p.CreatedAt.Format("2006-01-02"),
		})
	}

	data, err := s.exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
	}
	return data, nil
}
