package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/service"
)

type examReportService interface {
	Get(ctx context.Context, actor *models.JWTClaims, studentID, exam string) (service.Result[models.ExamReport], error)
}

// ExamReportHandler exposes report cards.
type ExamReportHandler struct {
	service examReportService
}

// NewExamReportHandler constructs the handler.
func NewExamReportHandler(svc examReportService) *ExamReportHandler {
	return &ExamReportHandler{service: svc}
}

// Get godoc
// @Summary Report card for an exam
// @Description Subject marks with computed totals, percentage and overall grade
// @Tags Exam Reports
// @Security BearerAuth
// @Produce json
// @Param studentId path string true "Student ID"
// @Param exam query string false "Exam name"
// @Success 200 {object} response.Envelope
// @Router /exam-reports/{studentId} [get]
func (h *ExamReportHandler) Get(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("studentId"), c.Query("exam"))
	respond(c, http.StatusOK, res, err)
}
