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

type noticeService interface {
	List(ctx context.Context, actor *models.JWTClaims, query string) (service.Result[[]models.NoticeView], error)
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateNoticeRequest) (service.Result[[]models.NoticeView], error)
}

// NoticeHandler exposes the notice board.
type NoticeHandler struct {
	service noticeService
}

// NewNoticeHandler constructs the handler.
func NewNoticeHandler(svc noticeService) *NoticeHandler {
	return &NoticeHandler{service: svc}
}

// List godoc
// @Summary Notice board
// @Tags Notices
// @Security BearerAuth
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope
// @Router /notices [get]
func (h *NoticeHandler) List(c *gin.Context) {
	res, err := h.service.List(c.Request.Context(), claimsFromContext(c), c.Query("q"))
	respond(c, http.StatusOK, res, err)
}

// Create godoc
// @Summary Publish a notice
// @Tags Notices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CreateNoticeRequest true "Notice"
// @Success 201 {object} response.Envelope
// @Router /notices [post]
func (h *NoticeHandler) Create(c *gin.Context) {
	var req dto.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid notice payload"))
		return
	}
	res, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	respondWrite(c, http.StatusCreated, res, err)
}
