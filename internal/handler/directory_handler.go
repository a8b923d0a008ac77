package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sacm-project/sacm-api/internal/service"
	"github.com/sacm-project/sacm-api/pkg/response"
)

// DirectoryHandler serves the reference tables.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler creates a new handler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// Roles godoc
// @Summary List roles
// @Tags Directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /directory/roles [get]
func (h *DirectoryHandler) Roles(c *gin.Context) {
	roles, err := h.directory.ListRoles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roles, nil)
}

// Majors godoc
// @Summary List majors
// @Tags Directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /directory/majors [get]
func (h *DirectoryHandler) Majors(c *gin.Context) {
	majors, err := h.directory.ListMajors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, majors, nil)
}

// Levels godoc
// @Summary List study levels
// @Tags Directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /directory/levels [get]
func (h *DirectoryHandler) Levels(c *gin.Context) {
	levels, err := h.directory.ListLevels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, levels, nil)
}

// Semesters godoc
// @Summary List semesters
// @Tags Directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /directory/semesters [get]
func (h *DirectoryHandler) Semesters(c *gin.Context) {
	semesters, err := h.directory.ListSemesters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semesters, nil)
}

// CurrentSemester godoc
// @Summary Fetch the current semester
// @Tags Directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /directory/semesters/current [get]
func (h *DirectoryHandler) CurrentSemester(c *gin.Context) {
	semester, err := h.directory.CurrentSemester(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semester, nil)
}
