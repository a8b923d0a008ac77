package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sacm-project/sacm-api/internal/models"
	"github.com/sacm-project/sacm-api/internal/service"
	appErrors "github.com/sacm-project/sacm-api/pkg/errors"
	"github.com/sacm-project/sacm-api/pkg/response"
)

// PrincipalHandler serves the admin principal directory.
type PrincipalHandler struct {
	principals *service.PrincipalService
	promotion  *service.PromotionService
}

// NewPrincipalHandler creates a new handler.
func NewPrincipalHandler(principals *service.PrincipalService, promotion *service.PromotionService) *PrincipalHandler {
	return &PrincipalHandler{principals: principals, promotion: promotion}
}

func principalFilterFromQuery(c *gin.Context) models.PrincipalFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return models.PrincipalFilter{
		Role:      models.RoleKind(c.Query("role")),
		Status:    models.AccountStatus(c.Query("status")),
		MajorID:   c.Query("major_id"),
		LevelID:   c.Query("level_id"),
		Search:    c.Query("search"),
		Page:      page,
		PageSize:  pageSize,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
}

// List godoc
// @Summary List principals
// @Tags Principals
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter"
// @Param status query string false "Status filter"
// @Param search query string false "Name or academic id search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/principals [get]
func (h *PrincipalHandler) List(c *gin.Context) {
	principals, pagination, err := h.principals.List(c.Request.Context(), principalFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, principals, pagination)
}

// Get godoc
// @Summary Fetch one principal
// @Tags Principals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Principal ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/principals/{id} [get]
func (h *PrincipalHandler) Get(c *gin.Context) {
	detail, err := h.principals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// ExportRoster godoc
// @Summary Export the filtered roster as CSV
// @Tags Principals
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /admin/principals/export [get]
func (h *PrincipalHandler) ExportRoster(c *gin.Context) {
	data, err := h.principals.ExportRoster(c.Request.Context(), principalFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := "roster_" + time.Now().UTC().Format("20060102") + ".csv"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}

// Promote godoc
// @Summary Run the end-of-year level promotion
// @Description Students step up one level; terminal-level students graduate
// @Tags Principals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.PromotionRequest false "Optional major scope"
// @Success 200 {object} response.Envelope
// @Router /admin/principals/promote [post]
func (h *PrincipalHandler) Promote(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.PromotionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid promotion payload"))
			return
		}
	}

	report, err := h.promotion.Run(c.Request.Context(), req, claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil)
}
