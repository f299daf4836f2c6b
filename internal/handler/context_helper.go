package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-gateway/internal/middleware"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/service"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
	"github.com/noah-isme/school-gateway/pkg/logger"
	"github.com/noah-isme/school-gateway/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentUser(c)
}

func bindError(err error, msg string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, msg)
}

// respond writes a read result. A cached fallback goes out as 200 with the failure attached.
func respond[T any](c *gin.Context, status int, res service.Result[T], err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := res.Meta
	c.Set(logger.ContextSourceKey, meta.Source)
	if res.Degraded() {
		response.Degraded(c, res.Value, &meta, res.Cause)
		return
	}
	response.JSON(c, status, res.Value, &meta)
}

// respondWrite writes the outcome of a mutation. When the write failed but the list was still
// reloaded, the list travels with the error.
func respondWrite[T any](c *gin.Context, status int, res service.Result[T], err error) {
	if err != nil {
		if res.Meta.Source == "" {
			response.Error(c, err)
			return
		}
		meta := res.Meta
		c.Set(logger.ContextSourceKey, meta.Source)
		response.ErrorWithData(c, err, res.Value, &meta)
		return
	}
	respond(c, status, res, nil)
}
