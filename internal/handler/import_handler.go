package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sacm-project/sacm-api/internal/service"
	appErrors "github.com/sacm-project/sacm-api/pkg/errors"
	"github.com/sacm-project/sacm-api/pkg/response"
	"github.com/sacm-project/sacm-api/pkg/rowsource"
)

// ImportHandler serves the admin bulk roster import.
type ImportHandler struct {
	importer *service.ImportService
}

// NewImportHandler creates a new handler.
func NewImportHandler(importer *service.ImportService) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// Import godoc
// @Summary Bulk-import principals from CSV
// @Description Streams the uploaded CSV; row failures are reported, never fatal
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV roster"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /admin/principals/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
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

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read upload"))
		return
	}
	defer src.Close() //nolint:errcheck

	report, err := h.importer.Import(c.Request.Context(), rowsource.NewCSV(src, fileHeader.Size), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil)
}
