package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/uni-adm-api/internal/service"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
	"github.com/noah-isme/uni-adm-api/pkg/response"
)

// PaymentHandler exposes payment reconciliation endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
	metrics  *service.MetricsService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService, metrics *service.MetricsService) *PaymentHandler {
	return &PaymentHandler{payments: payments, metrics: metrics}
}

// ProcessPaymentRequest carries an incoming payment against a fee.
type ProcessPaymentRequest struct {
	AmountPaid  decimal.Decimal `json:"amount_paid" binding:"required"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
}

// Process godoc
// @Summary Record a payment against a tuition fee
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body handler.ProcessPaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /fees/{id}/payments [post]
func (h *PaymentHandler) Process(c *gin.Context) {
	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	paymentDate := time.Now().UTC()
	if req.PaymentDate != nil {
		paymentDate = req.PaymentDate.UTC()
	}
	result, err := h.payments.ProcessPayment(c.Request.Context(), c.Param("id"), req.AmountPaid, paymentDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordPayment(result.NewPaymentStatus)
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List payments recorded against a fee
// @Tags Payments
// @Produce json
// @Param id path string true "Fee ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /fees/{id}/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	payments, pagination, err := h.payments.ListPayments(c.Request.Context(), c.Param("id"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// Get godoc
// @Summary Get a single payment record
// @Tags Payments
// @Produce json
// @Param paymentId path int true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{paymentId} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("paymentId"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "payment id must be numeric"))
		return
	}
	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}
