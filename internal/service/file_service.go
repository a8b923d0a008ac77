package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sacm-project/sacm-api/internal/access"
	"github.com/sacm-project/sacm-api/internal/models"
	appErrors "github.com/sacm-project/sacm-api/pkg/errors"
	"github.com/sacm-project/sacm-api/pkg/storage"
	"github.com/sacm-project/sacm-api/pkg/upload"
)

type fileCourseRepository interface {
	ListFiles(ctx context.Context, filter models.FileFilter) ([]models.LectureFile, error)
	CreateFile(ctx context.Context, file *models.LectureFile) error
	SoftDeleteFile(ctx context.Context, id string, ts time.Time) error
	SetFileVisibility(ctx context.Context, id string, visible bool, ts time.Time) error
	IncrementDownloadCount(ctx context.Context, id string) error
}

type fileAuthorizer interface {
	CheckCourse(ctx context.Context, principalID, courseID string, opts access.Options) (*models.CourseDetail, error)
	CheckFile(ctx context.Context, principalID, fileID string, opts access.Options) (*models.LectureFile, error)
}

type fileAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type fileStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
}

// UploadRequest carries the metadata and stream of one lecture-file upload.
type UploadRequest struct {
	CourseID    string
	Title       string
	Filename    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}

// DownloadGrant is an approved download: a signed URL token the caller
// exchanges at the download endpoint, valid until ExpiresAt.
type DownloadGrant struct {
	File      *models.LectureFile `json:"file"`
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// FileService manages the lecture files attached to courses. Every
// operation is authorization-gated through the decision engine.
type FileService struct {
	repo      fileCourseRepository
	auth      fileAuthorizer
	audit     fileAuditor
	store     fileStore
	signer    *storage.SignedURLSigner
	validator *upload.Validator
	logger    *zap.Logger
}

// NewFileService constructs a FileService instance.
func NewFileService(repo fileCourseRepository, auth fileAuthorizer, audit fileAuditor, store fileStore, signer *storage.SignedURLSigner, validator *upload.Validator, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{repo: repo, auth: auth, audit: audit, store: store, signer: signer, validator: validator, logger: logger}
}

// List returns a course's files for the given principal. Students only see
// visible files; staff see hidden ones too.
func (s *FileService) List(ctx context.Context, principal *models.JWTClaims, courseID string, filter models.FileFilter) ([]models.LectureFile, error) {
	if _, err := s.auth.CheckCourse(ctx, principal.PrincipalID, courseID, access.Options{}); err != nil {
		return nil, err
	}
	filter.CourseID = courseID
	filter.VisibleOnly = principal.Role == models.RoleStudent
	files, err := s.repo.ListFiles(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list files")
	}
	return files, nil
}

// AuthorizeDownload checks access to a file and, on allow, returns a signed
// download grant and bumps the download counter.
func (s *FileService) AuthorizeDownload(ctx context.Context, principal *models.JWTClaims, fileID string) (*DownloadGrant, error) {
	file, err := s.auth.CheckFile(ctx, principal.PrincipalID, fileID, access.Options{RequireVisible: true})
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(file.ID, file.StoragePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}

	if err := s.repo.IncrementDownloadCount(ctx, file.ID); err != nil {
		s.logger.Warn("failed to increment download count", zap.String("file_id", file.ID), zap.Error(err))
	}

	return &DownloadGrant{File: file, Token: token, ExpiresAt: expiresAt}, nil
}

// ResolveDownloadToken validates a signed token and returns the storage
// path it references.
func (s *FileService) ResolveDownloadToken(token string) (fileID, storagePath string, err error) {
	fileID, storagePath, _, err = s.signer.Parse(token, false)
	if err != nil {
		return "", "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	return fileID, storagePath, nil
}

// Upload stores a new lecture file for a course. Only an instructor assigned
// to the course (or an admin) passes the mutation check.
func (s *FileService) Upload(ctx context.Context, principal *models.JWTClaims, req UploadRequest) (*models.LectureFile, error) {
	if _, err := s.auth.CheckCourse(ctx, principal.PrincipalID, req.CourseID, access.Options{Mutation: true}); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(req.Filename, req.ContentType, req.SizeBytes); err != nil {
		return nil, appErrors.Clone(appErrors.ErrUploadRejected, err.Error())
	}

	id := uuid.NewString()
	storagePath := filepath.Join(req.CourseID, fmt.Sprintf("%s%s", id, filepath.Ext(req.Filename)))
	if _, err := s.store.SaveStream(storagePath, req.Body); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	now := time.Now().UTC()
	file := &models.LectureFile{
		ID:          id,
		CourseID:    req.CourseID,
		Title:       req.Title,
		StoragePath: storagePath,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		IsVisible:   true,
		UploadedBy:  principal.PrincipalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateFile(ctx, file); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist file record")
	}

	s.recordAudit(ctx, principal.PrincipalID, models.AuditActionFileUpload, file.ID)
	return file, nil
}

// Delete soft-deletes a file. The record stays but every later access check
// denies it first.
func (s *FileService) Delete(ctx context.Context, principal *models.JWTClaims, fileID string) error {
	if _, err := s.auth.CheckFile(ctx, principal.PrincipalID, fileID, access.Options{Mutation: true}); err != nil {
		return err
	}
	if err := s.repo.SoftDeleteFile(ctx, fileID, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete file")
	}
	s.recordAudit(ctx, principal.PrincipalID, models.AuditActionFileDelete, fileID)
	return nil
}

// SetVisibility toggles whether students can see a file.
func (s *FileService) SetVisibility(ctx context.Context, principal *models.JWTClaims, fileID string, visible bool) error {
	if _, err := s.auth.CheckFile(ctx, principal.PrincipalID, fileID, access.Options{Mutation: true}); err != nil {
		return err
	}
	if err := s.repo.SetFileVisibility(ctx, fileID, visible, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update visibility")
	}
	return nil
}

func (s *FileService) recordAudit(ctx context.Context, principalID, action, resourceID string) {
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		ID:          uuid.NewString(),
		PrincipalID: &principalID,
		Action:      action,
		Resource:    "lecture_file",
		ResourceID:  &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record file audit log", zap.Error(err))
	}
}
