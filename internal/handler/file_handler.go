package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sacm-project/sacm-api/internal/service"
	appErrors "github.com/sacm-project/sacm-api/pkg/errors"
	"github.com/sacm-project/sacm-api/pkg/response"
	"github.com/sacm-project/sacm-api/pkg/storage"
)

// FileHandler serves lecture file uploads, downloads and lifecycle changes.
type FileHandler struct {
	files *service.FileService
	store *storage.LocalStorage
}

// NewFileHandler creates a new handler.
func NewFileHandler(files *service.FileService, store *storage.LocalStorage) *FileHandler {
	return &FileHandler{files: files, store: store}
}

// Upload godoc
// @Summary Upload a lecture file to a course
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param title formData string true "Display title"
// @Param file formData file true "File content"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses/{id}/files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file part missing"))
		return
	}
	title := c.PostForm("title")
	if title == "" {
		title = fileHeader.Filename
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read upload"))
		return
	}
	defer src.Close() //nolint:errcheck

	file, err := h.files.Upload(c.Request.Context(), claims, service.UploadRequest{
		CourseID:    c.Param("id"),
		Title:       title,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   fileHeader.Size,
		Body:        src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, file)
}

// Grant godoc
// @Summary Authorize a file download
// @Description Runs the access check and returns a short-lived signed token
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{id}/download [post]
func (h *FileHandler) Grant(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	grant, err := h.files.AuthorizeDownload(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, grant, nil)
}

// Download godoc
// @Summary Stream a granted file
// @Tags Files
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /files/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	_, storagePath, err := h.files.ResolveDownloadToken(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.File(h.store.Path(storagePath))
}

// Delete godoc
// @Summary Soft-delete a lecture file
// @Tags Files
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /files/{id} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.files.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SetVisibility godoc
// @Summary Toggle a file's student visibility
// @Tags Files
// @Accept json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Param payload body object true "Visibility payload"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /files/{id}/visibility [patch]
func (h *FileHandler) SetVisibility(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Visible *bool `json:"visible" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "visible flag required"))
		return
	}

	if err := h.files.SetVisibility(c.Request.Context(), claims, c.Param("id"), *payload.Visible); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
