package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sacm-project/sacm-api/internal/models"
	"github.com/sacm-project/sacm-api/internal/service"
	appErrors "github.com/sacm-project/sacm-api/pkg/errors"
	"github.com/sacm-project/sacm-api/pkg/response"
)

// CourseHandler serves course browsing and course file listings.
type CourseHandler struct {
	courses *service.CourseService
	files   *service.FileService
}

// NewCourseHandler creates a new handler.
func NewCourseHandler(courses *service.CourseService, files *service.FileService) *CourseHandler {
	return &CourseHandler{courses: courses, files: files}
}

// ListMine godoc
// @Summary List courses for the authenticated student
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	courses, err := h.courses.ListForStudent(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, courses, nil)
}

// Get godoc
// @Summary Fetch one course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	course, err := h.courses.Get(c.Request.Context(), claims.PrincipalID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, course, nil)
}

// ListFiles godoc
// @Summary List a course's lecture files
// @Description Students only see visible files; staff also see hidden ones
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/files [get]
func (h *CourseHandler) ListFiles(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	files, err := h.files.List(c.Request.Context(), claims, c.Param("id"), models.FileFilter{})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, files, nil)
}
