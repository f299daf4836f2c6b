package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/service"
	"github.com/noah-isme/school-gateway/pkg/response"
)

type exportService interface {
	ReceiptPDF(ctx context.Context, actor *models.JWTClaims, receiptID string) (service.Result[models.ExportFile], error)
	ExamReportPDF(ctx context.Context, actor *models.JWTClaims, studentID, exam string) (service.Result[models.ExportFile], error)
	AttendanceXLSX(ctx context.Context, actor *models.JWTClaims, q dto.AttendanceSheetQuery) (service.Result[models.ExportFile], error)
	DuesCSV(ctx context.Context, actor *models.JWTClaims, q dto.DuesQuery) (service.Result[models.ExportFile], error)
	Open(token string) (*service.Download, error)
}

// ExportHandler generates files and serves signed downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Receipt godoc
// @Summary Receipt as PDF
// @Description Renders the receipt with a verification QR code and returns a signed download link
// @Tags Exports
// @Security BearerAuth
// @Produce json
// @Param receiptId path string true "Receipt ID"
// @Success 201 {object} response.Envelope
// @Router /fees/payments/{receiptId}/receipt/pdf [get]
func (h *ExportHandler) Receipt(c *gin.Context) {
	res, err := h.service.ReceiptPDF(c.Request.Context(), claimsFromContext(c), c.Param("receiptId"))
	respond(c, http.StatusCreated, res, err)
}

// ExamReport godoc
// @Summary Report card as PDF
// @Tags Exports
// @Security BearerAuth
// @Produce json
// @Param studentId path string true "Student ID"
// @Param exam query string false "Exam name"
// @Success 201 {object} response.Envelope
// @Router /exam-reports/{studentId}/pdf [get]
func (h *ExportHandler) ExamReport(c *gin.Context) {
	res, err := h.service.ExamReportPDF(c.Request.Context(), claimsFromContext(c), c.Param("studentId"), c.Query("exam"))
	respond(c, http.StatusCreated, res, err)
}

// Attendance godoc
// @Summary Attendance sheet as XLSX
// @Tags Exports
// @Security BearerAuth
// @Produce json
// @Param class query string true "Class"
// @Param section query string true "Section"
// @Param date query string true "Date"
// @Success 201 {object} response.Envelope
// @Router /attendance/export [get]
func (h *ExportHandler) Attendance(c *gin.Context) {
	var q dto.AttendanceSheetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid query"))
		return
	}
	res, err := h.service.AttendanceXLSX(c.Request.Context(), claimsFromContext(c), q)
	respond(c, http.StatusCreated, res, err)
}

// Dues godoc
// @Summary Dues list as CSV
// @Tags Exports
// @Security BearerAuth
// @Produce json
// @Param class query string false "Class"
// @Param section query string false "Section"
// @Success 201 {object} response.Envelope
// @Router /fees/dues/export [get]
func (h *ExportHandler) Dues(c *gin.Context) {
	var q dto.DuesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid query"))
		return
	}
	res, err := h.service.DuesCSV(c.Request.Context(), claimsFromContext(c), q)
	respond(c, http.StatusCreated, res, err)
}

// Download godoc
// @Summary Download a generated file
// @Description The token is the signed link returned when the file was generated
// @Tags Exports
// @Produce application/octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	dl, err := h.service.Open(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer dl.File.Close()

	info, err := dl.File.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	c.Header("Cache-Control", "private, max-age=0")
	c.DataFromReader(http.StatusOK, info.Size(), dl.ContentType, dl.File, nil)
}
