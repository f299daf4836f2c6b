package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/service"
	"github.com/noah-isme/school-gateway/pkg/response"
)

type feesService interface {
	Dues(ctx context.Context, actor *models.JWTClaims, q dto.DuesQuery) (service.Result[[]models.DuesRecord], error)
	StudentDues(ctx context.Context, actor *models.JWTClaims, studentID string) (service.Result[models.DuesRecord], error)
	Payments(ctx context.Context, actor *models.JWTClaims, q dto.PaymentsQuery) (service.Result[[]models.PaymentReceipt], error)
	RecordPayment(ctx context.Context, actor *models.JWTClaims, req dto.RecordPaymentRequest) (service.Result[service.RecordedPayment], error)
	Receipt(ctx context.Context, actor *models.JWTClaims, receiptID string) (service.Result[models.PaymentReceipt], error)
}

// FeesHandler exposes dues, payments and receipts.
type FeesHandler struct {
	service feesService
}

// NewFeesHandler constructs the handler.
func NewFeesHandler(svc feesService) *FeesHandler {
	return &FeesHandler{service: svc}
}

// Dues godoc
// @Summary Outstanding dues for a class
// @Tags Fees
// @Security BearerAuth
// @Produce json
// @Param class query string false "Class"
// @Param section query string false "Section"
// @Param status query string false "PAID, DUE or ALL"
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope
// @Router /fees/dues [get]
func (h *FeesHandler) Dues(c *gin.Context) {
	var q dto.DuesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid query"))
		return
	}
	res, err := h.service.Dues(c.Request.Context(), claimsFromContext(c), q)
	respond(c, http.StatusOK, res, err)
}

// StudentDues godoc
// @Summary Dues breakdown for one student
// @Tags Fees
// @Security BearerAuth
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /fees/dues/{studentId} [get]
func (h *FeesHandler) StudentDues(c *gin.Context) {
	res, err := h.service.StudentDues(c.Request.Context(), claimsFromContext(c), c.Param("studentId"))
	respond(c, http.StatusOK, res, err)
}

// Payments godoc
// @Summary Payment history
// @Tags Fees
// @Security BearerAuth
// @Produce json
// @Param student_id query string false "Student ID (staff only)"
// @Param status query string false "Status filter"
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope
// @Router /fees/payments [get]
func (h *FeesHandler) Payments(c *gin.Context) {
	var q dto.PaymentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid query"))
		return
	}
	res, err := h.service.Payments(c.Request.Context(), claimsFromContext(c), q)
	respond(c, http.StatusOK, res, err)
}

// RecordPayment godoc
// @Summary Record a fee payment
// @Tags Fees
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.RecordPaymentRequest true "Payment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fees/payments [post]
func (h *FeesHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid payment payload"))
		return
	}
	res, err := h.service.RecordPayment(c.Request.Context(), claimsFromContext(c), req)
	respondWrite(c, http.StatusCreated, res, err)
}

// Receipt godoc
// @Summary Receipt details
// @Tags Fees
// @Security BearerAuth
// @Produce json
// @Param receiptId path string true "Receipt ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /fees/payments/{receiptId}/receipt [get]
func (h *FeesHandler) Receipt(c *gin.Context) {
	res, err := h.service.Receipt(c.Request.Context(), claimsFromContext(c), c.Param("receiptId"))
	respond(c, http.StatusOK, res, err)
}
