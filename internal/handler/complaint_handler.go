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

type complaintService interface {
	List(ctx context.Context, actor *models.JWTClaims, studentID string, c filter.Criteria) (service.Result[[]models.Complaint], error)
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateComplaintRequest) (service.Result[[]models.Complaint], error)
	UpdateStatus(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateComplaintStatusRequest) (service.Result[[]models.Complaint], error)
}

// ComplaintHandler exposes complaints.
type ComplaintHandler struct {
	service complaintService
}

// NewComplaintHandler constructs the handler.
func NewComplaintHandler(svc complaintService) *ComplaintHandler {
	return &ComplaintHandler{service: svc}
}

// List godoc
// @Summary List complaints
// @Tags Complaints
// @Security BearerAuth
// @Produce json
// @Param student_id query string false "Student ID (staff only)"
// @Param status query string false "PENDING, IN_PROGRESS, RESOLVED, CLOSED or ALL"
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope
// @Router /complaints [get]
func (h *ComplaintHandler) List(c *gin.Context) {
	var criteria filter.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		response.Error(c, bindError(err, "invalid query"))
		return
	}
	res, err := h.service.List(c.Request.Context(), claimsFromContext(c), c.Query("student_id"), criteria)
	respond(c, http.StatusOK, res, err)
}

// Create godoc
// @Summary Raise a complaint
// @Tags Complaints
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CreateComplaintRequest true "Complaint"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /complaints [post]
func (h *ComplaintHandler) Create(c *gin.Context) {
	var req dto.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid complaint payload"))
		return
	}
	res, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	respondWrite(c, http.StatusCreated, res, err)
}

// UpdateStatus godoc
// @Summary Move a complaint along its workflow
// @Tags Complaints
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.UpdateComplaintStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /complaints/{id}/status [post]
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateComplaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid status payload"))
		return
	}
	res, err := h.service.UpdateStatus(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	respondWrite(c, http.StatusOK, res, err)
}
