package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sacm-project/sacm-api/internal/models"
	appErrors "github.com/sacm-project/sacm-api/pkg/errors"
)

type promotionPrincipalRepository interface {
	PromoteLevel(ctx context.Context, fromLevelID, toLevelID string, majorID *string, ts time.Time) (int64, error)
	GraduateLevel(ctx context.Context, fromLevelID string, majorID *string, ts time.Time) (int64, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type promotionLevelRepository interface {
	ListLevels(ctx context.Context) ([]models.Level, error)
	FindNextLevel(ctx context.Context, levelNumber int) (*models.Level, error)
}

// PromotionService moves active students up one study level at the end of an
// academic year. Students at the terminal level graduate instead: their
// account status flips to graduated and the level classification is cleared.
type PromotionService struct {
	principals promotionPrincipalRepository
	levels     promotionLevelRepository
	logger     *zap.Logger
}

// NewPromotionService constructs a PromotionService instance.
func NewPromotionService(principals promotionPrincipalRepository, levels promotionLevelRepository, logger *zap.Logger) *PromotionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionService{principals: principals, levels: levels, logger: logger}
}

// Run executes one promotion pass. Levels are walked highest first so a
// student is moved at most once per run.
func (s *PromotionService) Run(ctx context.Context, req models.PromotionRequest, actorID string) (*models.PromotionReport, error) {
	levels, err := s.levels.ListLevels(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load levels")
	}
	if len(levels) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no study levels configured")
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].Number > levels[j].Number })

	report := &models.PromotionReport{}
	now := time.Now().UTC()

	for _, level := range levels {
		next, err := s.levels.FindNextLevel(ctx, level.Number)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				graduated, err := s.principals.GraduateLevel(ctx, level.ID, req.MajorID, now)
				if err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to graduate terminal level")
				}
				report.Graduated += graduated
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve next level")
		}

		promoted, err := s.principals.PromoteLevel(ctx, level.ID, next.ID, req.MajorID, now)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to promote level")
		}
		report.Promoted += promoted
	}

	s.logger.Info("promotion run completed",
		zap.Int64("promoted", report.Promoted),
		zap.Int64("graduated", report.Graduated),
	)

	if err := s.principals.CreateAuditLog(ctx, &models.AuditLog{
		ID:          uuid.NewString(),
		PrincipalID: &actorID,
		Action:      models.AuditActionPromote,
		Resource:    "principal",
		Details:     []byte(fmt.Sprintf(`{"promoted":%d,"graduated":%d}`, report.Promoted, report.Graduated)),
	}); err != nil {
		s.logger.Warn("failed to record promotion audit log", zap.Error(err))
	}

	return report, nil
}
