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

type homeworkService interface {
	List(ctx context.Context, actor *models.JWTClaims, q dto.HomeworkQuery) (service.Result[[]models.Homework], error)
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateHomeworkRequest) (service.Result[[]models.Homework], error)
}

// HomeworkHandler exposes homework assignments.
type HomeworkHandler struct {
	service homeworkService
}

// NewHomeworkHandler constructs the handler.
func NewHomeworkHandler(svc homeworkService) *HomeworkHandler {
	return &HomeworkHandler{service: svc}
}

// List godoc
// @Summary Homework for a class
// @Tags Homework
// @Security BearerAuth
// @Produce json
// @Param class query string false "Class"
// @Param section query string false "Section"
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope
// @Router /homework [get]
func (h *HomeworkHandler) List(c *gin.Context) {
	var q dto.HomeworkQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid query"))
		return
	}
	res, err := h.service.List(c.Request.Context(), claimsFromContext(c), q)
	respond(c, http.StatusOK, res, err)
}

// Create godoc
// @Summary Assign homework
// @Tags Homework
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CreateHomeworkRequest true "Homework"
// @Success 201 {object} response.Envelope
// @Router /homework [post]
func (h *HomeworkHandler) Create(c *gin.Context) {
	var req dto.CreateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid homework payload"))
		return
	}
	res, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	respondWrite(c, http.StatusCreated, res, err)
}
