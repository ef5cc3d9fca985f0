package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-adm-api/internal/middleware"
	"github.com/noah-isme/uni-adm-api/internal/models"
	"github.com/noah-isme/uni-adm-api/internal/service"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
	"github.com/noah-isme/uni-adm-api/pkg/response"
)

// RegistrationHandler exposes course registration endpoints.
type RegistrationHandler struct {
	registrations *service.RegistrationService
	metrics       *service.MetricsService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService, metrics *service.MetricsService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, metrics: metrics}
}

// List godoc
// @Summary List course registrations
// @Tags Registrations
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param courseId query string false "Filter by course"
// @Param semesterId query int false "Filter by semester"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	var filter models.RegistrationFilter
	filter.StudentID = c.Query("studentId")
	filter.CourseID = c.Query("courseId")
	if semester, err := strconv.Atoi(c.Query("semesterId")); err == nil {
		filter.SemesterID = semester
	}
	filter.Status = models.RegistrationStatus(c.Query("status"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	registrations, pagination, err := h.registrations.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, pagination)
}

// Register godoc
// @Summary Register a student for a course
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.RegisterCourseRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req service.RegisterCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.registrations.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// UpdateStatus godoc
// @Summary Confirm or cancel a registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body service.UpdateRegistrationStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations/{id}/status [put]
func (h *RegistrationHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateRegistrationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.registrations.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registration, nil)
}

// Finalize godoc
// @Summary Finalize a student's semester registrations and bill tuition
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.FinalizeRequest true "Finalize payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /registrations/finalize [post]
func (h *RegistrationHandler) Finalize(c *gin.Context) {
	var req service.FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.registrations.Finalize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordFeeCalculation()
	response.JSON(c, http.StatusOK, result, nil)
}

// Summary godoc
// @Summary Registration summary for a student's semester
// @Tags Registrations
// @Produce json
// @Param studentId query string true "Student ID"
// @Param semesterId query int true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /registrations/summary [get]
func (h *RegistrationHandler) Summary(c *gin.Context) {
	studentID := c.Query("studentId")
	semesterID, err := strconv.Atoi(c.Query("semesterId"))
	if studentID == "" || err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId and numeric semesterId are required"))
		return
	}
	start := time.Now()
	summary, cached, err := h.registrations.Summary(c.Request.Context(), studentID, semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	elapsed := time.Since(start)
	h.metrics.RecordCacheOperation(cached, elapsed)
	middleware.SetCacheHit(c, cached)
	middleware.SetProcessingTime(c, elapsed)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
