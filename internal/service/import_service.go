package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sacm-project/sacm-api/internal/models"
	appErrors "github.com/sacm-project/sacm-api/pkg/errors"
	"github.com/sacm-project/sacm-api/pkg/rowsource"
)

type importPrincipalRepository interface {
	ListAcademicIDs(ctx context.Context) (map[string]struct{}, error)
	ListIDCardNumbers(ctx context.Context) (map[string]struct{}, error)
	BulkCreate(ctx context.Context, principals []models.Principal, batchSize int) (int, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type importDirectory interface {
	Snapshot(ctx context.Context) (*models.Directory, error)
}

type importMetrics interface {
	ObserveImportRows(created, skipped, rejected int)
}

// ImportConfig bounds one bulk import.
type ImportConfig struct {
	MaxFileSize int64
	BatchSize   int
}

// ImportService ingests externally supplied principal rosters. Rows are
// consumed one at a time from the source; only accepted records are held
// pending the single commit at the end.
type ImportService struct {
	repo      importPrincipalRepository
	directory importDirectory
	metrics   importMetrics
	logger    *zap.Logger
	config    ImportConfig
}

// NewImportService constructs an ImportService instance.
func NewImportService(repo importPrincipalRepository, directory importDirectory, metrics importMetrics, logger *zap.Logger, config ImportConfig) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	return &ImportService{repo: repo, directory: directory, metrics: metrics, logger: logger, config: config}
}

// Import runs one bulk import. Row-level validation failures are collected
// in the report and never abort the run; a store failure aborts the whole
// import with nothing committed.
func (s *ImportService) Import(ctx context.Context, src rowsource.Source, importedBy string) (*models.ImportReport, error) {
	if s.config.MaxFileSize > 0 && src.Size() > s.config.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrImportTooLarge,
			fmt.Sprintf("import file exceeds the %d byte limit", s.config.MaxFileSize))
	}

	dir, err := s.directory.Snapshot(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrImportFailed.Code, appErrors.ErrImportFailed.Status, "failed to load reference directory")
	}

	existingIDs, err := s.repo.ListAcademicIDs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrImportFailed.Code, appErrors.ErrImportFailed.Status, "failed to load existing academic ids")
	}
	existingCards, err := s.repo.ListIDCardNumbers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrImportFailed.Code, appErrors.ErrImportFailed.Status, "failed to load existing id card numbers")
	}

	report := &models.ImportReport{Errors: []string{}}
	// Working state for this run only: identities accepted so far, so a
	// later duplicate row in the same input is caught without another
	// store round-trip.
	seenIDs := make(map[string]struct{})
	seenCards := make(map[string]struct{})
	accepted := make([]models.Principal, 0, s.config.BatchSize)
	now := time.Now().UTC()

	for {
		row, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrImportFailed.Code, appErrors.ErrImportFailed.Status, "malformed input stream")
		}

		principal, verdict := s.buildPrincipal(row, dir, existingIDs, existingCards, seenIDs, seenCards, now)
		switch verdict.outcome {
		case rowAccepted:
			seenIDs[principal.AcademicID] = struct{}{}
			seenCards[principal.IDCardNumber] = struct{}{}
			accepted = append(accepted, principal)
		case rowSkipped:
			report.Skipped++
		case rowRejected:
			report.Errors = append(report.Errors, verdict.message)
		}
	}

	created, err := s.repo.BulkCreate(ctx, accepted, s.config.BatchSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrImportFailed.Code, appErrors.ErrImportFailed.Status, "failed to commit imported principals")
	}
	report.Created = created
	// Commit-time conflicts (a concurrent import won the race) surface as
	// rows the insert ignored; count them as skips.
	report.Skipped += len(accepted) - created

	if s.metrics != nil {
		s.metrics.ObserveImportRows(report.Created, report.Skipped, len(report.Errors))
	}
	s.logger.Info("bulk import completed",
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("rejected", len(report.Errors)),
	)

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		ID:          uuid.NewString(),
		PrincipalID: &importedBy,
		Action:      models.AuditActionImport,
		Resource:    "principal",
		Details: []byte(fmt.Sprintf(`{"created":%d,"skipped":%d,"rejected":%d}`,
			report.Created, report.Skipped, len(report.Errors))),
	}); err != nil {
		s.logger.Warn("failed to record import audit log", zap.Error(err))
	}

	return report, nil
}

type rowOutcome int

const (
	rowAccepted rowOutcome = iota
	rowSkipped
	rowRejected
)

type rowVerdict struct {
	outcome rowOutcome
	message string
}

func rejectRow(line int, format string, args ...interface{}) rowVerdict {
	return rowVerdict{outcome: rowRejected, message: fmt.Sprintf("line %d: %s", line, fmt.Sprintf(format, args...))}
}

// buildPrincipal applies the per-row validation rules in order. The rule
// order matters: an already-known academic id skips before the id-card
// conflict check, so re-importing a known row is never reported as an error.
func (s *ImportService) buildPrincipal(
	row rowsource.Row,
	dir *models.Directory,
	existingIDs, existingCards, seenIDs, seenCards map[string]struct{},
	now time.Time,
) (models.Principal, rowVerdict) {
	academicID := row.Fields["academic_id"]
	idCard := row.Fields["id_card_number"]
	fullName := row.Fields["full_name"]
	roleName := row.Fields["role"]

	if academicID == "" || idCard == "" || fullName == "" || roleName == "" {
		return models.Principal{}, rejectRow(row.Line, "missing required fields (academic_id, id_card_number, full_name, role)")
	}

	if _, ok := existingIDs[academicID]; ok {
		return models.Principal{}, rowVerdict{outcome: rowSkipped}
	}
	if _, ok := seenIDs[academicID]; ok {
		return models.Principal{}, rowVerdict{outcome: rowSkipped}
	}

	if _, ok := existingCards[idCard]; ok {
		return models.Principal{}, rejectRow(row.Line, "id card number %s already belongs to another principal", idCard)
	}
	if _, ok := seenCards[idCard]; ok {
		return models.Principal{}, rejectRow(row.Line, "id card number %s duplicated earlier in this file", idCard)
	}

	role, ok := dir.Role(roleName)
	if !ok {
		return models.Principal{}, rejectRow(row.Line, "unknown role %q", roleName)
	}

	principal := models.Principal{
		ID:           uuid.NewString(),
		AcademicID:   academicID,
		IDCardNumber: idCard,
		FullName:     fullName,
		Role:         role.Kind,
		Status:       models.StatusInactive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if majorName := row.Fields["major"]; majorName != "" {
		major, ok := dir.Major(majorName)
		if !ok {
			return models.Principal{}, rejectRow(row.Line, "unknown major %q", majorName)
		}
		principal.MajorID = &major.ID
	}
	if levelName := row.Fields["level"]; levelName != "" {
		level, ok := dir.Level(levelName)
		if !ok {
			return models.Principal{}, rejectRow(row.Line, "unknown level %q", levelName)
		}
		principal.LevelID = &level.ID
	}

	return principal, rowVerdict{outcome: rowAccepted}
}
