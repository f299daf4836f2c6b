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

type attendanceService interface {
	Sheet(ctx context.Context, actor *models.JWTClaims, q dto.AttendanceSheetQuery) (service.Result[models.AttendanceSheet], error)
	Mark(ctx context.Context, actor *models.JWTClaims, req dto.MarkAttendanceRequest) (service.Result[models.AttendanceSheet], error)
	Summary(ctx context.Context, actor *models.JWTClaims, q dto.AttendanceSummaryQuery) (service.Result[models.AttendanceSummary], error)
}

// AttendanceHandler exposes marking sheets and per-student summaries.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Sheet godoc
// @Summary Attendance sheet for a class on a date
// @Description Roster merged with the day's marks. Students only see their own line.
// @Tags Attendance
// @Security BearerAuth
// @Produce json
// @Param class query string true "Class"
// @Param section query string true "Section"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param status query string false "P, A or ALL"
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) Sheet(c *gin.Context) {
	var q dto.AttendanceSheetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid query"))
		return
	}
	res, err := h.service.Sheet(c.Request.Context(), claimsFromContext(c), q)
	respond(c, http.StatusOK, res, err)
}

// Mark godoc
// @Summary Save attendance marks
// @Tags Attendance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.MarkAttendanceRequest true "Marks keyed by student ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid attendance payload"))
		return
	}
	res, err := h.service.Mark(c.Request.Context(), claimsFromContext(c), req)
	respondWrite(c, http.StatusOK, res, err)
}

// Summary godoc
// @Summary Attendance percentage over a date range
// @Tags Attendance
// @Security BearerAuth
// @Produce json
// @Param student_id query string false "Student ID (staff only)"
// @Param from query string true "From date"
// @Param to query string true "To date"
// @Success 200 {object} response.Envelope
// @Router /attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	var q dto.AttendanceSummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid query"))
		return
	}
	res, err := h.service.Summary(c.Request.Context(), claimsFromContext(c), q)
	respond(c, http.StatusOK, res, err)
}
