package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/filter"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/service"
	"github.com/noah-isme/school-gateway/pkg/response"
)

type leaveService interface {
	List(ctx context.Context, actor *models.JWTClaims, studentID string, c filter.Criteria) (service.Result[[]models.LeaveApplication], error)
	Apply(ctx context.Context, actor *models.JWTClaims, req dto.ApplyLeaveRequest) (service.Result[[]models.LeaveApplication], error)
	UpdateStatus(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateLeaveStatusRequest) (service.Result[[]models.LeaveApplication], error)
}

// LeaveHandler exposes leave applications.
type LeaveHandler struct {
	service leaveService
}

// NewLeaveHandler constructs the handler.
func NewLeaveHandler(svc leaveService) *LeaveHandler {
	return &LeaveHandler{service: svc}
}

// List godoc
// @Summary List leave applications
// @Description Students see their own; staff may narrow by student_id. Served from cache when the school server is down.
// @Tags Leaves
// @Security BearerAuth
// @Produce json
// @Param student_id query string false "Student ID (staff only)"
// @Param status query string false "PENDING, APPROVED, REJECTED or ALL"
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /leaves [get]
func (h *LeaveHandler) List(c *gin.Context) {
	var criteria filter.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		response.Error(c, bindError(err, "invalid query"))
		return
	}
	res, err := h.service.List(c.Request.Context(), claimsFromContext(c), c.Query("student_id"), criteria)
	respond(c, http.StatusOK, res, err)
}

// Apply godoc
// @Summary Apply for leave
// @Tags Leaves
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.ApplyLeaveRequest true "Leave application"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /leaves [post]
func (h *LeaveHandler) Apply(c *gin.Context) {
	var req dto.ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid leave payload"))
		return
	}
	res, err := h.service.Apply(c.Request.Context(), claimsFromContext(c), req)
	respondWrite(c, http.StatusCreated, res, err)
}

// UpdateStatus godoc
// @Summary Approve or reject a leave application
// @Tags Leaves
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Leave ID"
// @Param payload body dto.UpdateLeaveStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leaves/{id}/status [post]
func (h *LeaveHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateLeaveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid status payload"))
		return
	}
	res, err := h.service.UpdateStatus(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	respondWrite(c, http.StatusOK, res, err)
}
