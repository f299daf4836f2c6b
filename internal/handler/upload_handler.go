package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-gateway/internal/dto"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/service"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
	"github.com/noah-isme/school-gateway/pkg/response"
)

type uploadService interface {
	Limits(opts dto.UploadOptions) (service.Limits, error)
	Submit(ctx context.Context, req service.SubmitUpload) (models.UploadJob, error)
	Get(ownerID, id string) (models.UploadJob, error)
	Cancel(ownerID, id string) (models.UploadJob, error)
}

// UploadHandler accepts multipart files and exposes their progress.
type UploadHandler struct {
	service uploadService
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(svc uploadService) *UploadHandler {
	return &UploadHandler{service: svc}
}

// Submit godoc
// @Summary Upload a file
// @Description The file is checked against size and extension limits before anything is sent, then queued.
// @Tags Uploads
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Param purpose formData string false "What the file is for"
// @Param max_size_bytes formData int false "Tighter size limit"
// @Param allowed_extensions formData string false "Comma separated extensions"
// @Param recompress formData bool false "Recompress images"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var opts dto.UploadOptions
	if err := c.ShouldBind(&opts); err != nil {
		response.Error(c, bindError(err, "invalid upload options"))
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, bindError(err, "file is required"))
		return
	}

	// Reject on declared size and extension before the part is opened.
	limits, err := h.service.Limits(opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	info := service.FileInfo{Name: header.Filename, Size: header.Size}
	if err := service.ValidateFile(info, limits); err != nil {
		response.Error(c, err)
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "could not read file"))
		return
	}
	defer file.Close()

	job, err := h.service.Submit(c.Request.Context(), service.SubmitUpload{
		OwnerID:     claims.UserID,
		File:        info,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
		Options:     opts,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Get godoc
// @Summary Upload progress
// @Tags Uploads
// @Security BearerAuth
// @Produce json
// @Param id path string true "Upload ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /uploads/{id} [get]
func (h *UploadHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	job, err := h.service.Get(claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Cancel godoc
// @Summary Cancel an upload
// @Tags Uploads
// @Security BearerAuth
// @Produce json
// @Param id path string true "Upload ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /uploads/{id} [delete]
func (h *UploadHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	job, err := h.service.Cancel(claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
