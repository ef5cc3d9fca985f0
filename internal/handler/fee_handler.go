package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-adm-api/internal/models"
	"github.com/noah-isme/uni-adm-api/internal/service"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
	"github.com/noah-isme/uni-adm-api/pkg/response"
)

// FeeHandler exposes tuition fee endpoints.
type FeeHandler struct {
	tuition  *service.TuitionService
	payments *service.PaymentService
	metrics  *service.MetricsService
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(tuition *service.TuitionService, payments *service.PaymentService, metrics *service.MetricsService) *FeeHandler {
	return &FeeHandler{tuition: tuition, payments: payments, metrics: metrics}
}

// Calculate godoc
// @Summary Calculate and persist tuition for a student's semester
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body handler.CalculateFeeRequest true "Calculation payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /fees/calculate [post]
func (h *FeeHandler) Calculate(c *gin.Context) {
	var req CalculateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.tuition.CalculateTuitionFee(c.Request.Context(), req.StudentID, req.SemesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordFeeCalculation()
	response.JSON(c, http.StatusOK, result, nil)
}

// CalculateFeeRequest identifies the student and semester to bill.
type CalculateFeeRequest struct {
	StudentID  string `json:"student_id" binding:"required"`
	SemesterID int    `json:"semester_id" binding:"required"`
}

// CheckCreditLimit godoc
// @Summary Validate registered credits against the semester credit rule
// @Tags Fees
// @Produce json
// @Param studentId query string true "Student ID"
// @Param semesterId query int true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /fees/credit-check [get]
func (h *FeeHandler) CheckCreditLimit(c *gin.Context) {
	studentID := c.Query("studentId")
	semesterID, err := strconv.Atoi(c.Query("semesterId"))
	if studentID == "" || err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId and numeric semesterId are required"))
		return
	}
	result, err := h.tuition.CheckCreditLimit(c.Request.Context(), studentID, semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List tuition fees
// @Tags Fees
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param semesterId query int false "Filter by semester"
// @Param status query string false "Filter by payment status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /fees [get]
func (h *FeeHandler) List(c *gin.Context) {
	var filter models.FeeFilter
	filter.StudentID = c.Query("studentId")
	if semester, err := strconv.Atoi(c.Query("semesterId")); err == nil {
		filter.SemesterID = semester
	}
	filter.Status = models.PaymentStatus(c.Query("status"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	fees, pagination, err := h.payments.ListFees(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, pagination)
}

// Get godoc
// @Summary Get a tuition fee record
// @Tags Fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 200 {object} response.Envelope
// @Router /fees/{id} [get]
func (h *FeeHandler) Get(c *gin.Context) {
	fee, err := h.payments.GetFee(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}
