package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

// Source values describe where a payload came from.
const (
	SourceNetwork = "network"
	SourceCache   = "cache"
)

// CachedNotice is the qualifier shown when a screen renders its last good payload.
const CachedNotice = "showing cached data"

// Meta carries the loading/error/data state the screens need besides the payload itself.
type Meta struct {
	Source     string     `json:"source,omitempty"`
	Stale      bool       `json:"stale"`
	CachedAt   *time.Time `json:"cached_at,omitempty"`
	AgeSeconds int64      `json:"age_seconds,omitempty"`
	Notice     string     `json:"notice,omitempty"`
	Count      *int       `json:"count,omitempty"`
	Total      *int       `json:"total,omitempty"`
}

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}      `json:"data"`
	Error *appErrors.Error `json:"error,omitempty"`
	Meta  *Meta            `json:"meta,omitempty"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta *Meta) {
	noStore(c)
	c.JSON(status, Envelope{Data: data, Meta: meta})
}

// Degraded answers with a cached payload alongside the error that forced the fallback.
func Degraded(c *gin.Context, data interface{}, meta *Meta, cause error) {
	noStore(c)
	env := Envelope{Data: data, Meta: meta}
	if cause != nil {
		env.Error = appErrors.FromError(cause)
	}
	c.JSON(http.StatusOK, env)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Accepted responds with HTTP 202 for queued work.
func Accepted(c *gin.Context, data interface{}) {
	JSON(c, http.StatusAccepted, data, nil)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	_ = c.Error(err)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// ErrorWithData reports a failed write together with the freshly loaded list, so the screen can
// redraw while showing the error.
func ErrorWithData(c *gin.Context, err error, data interface{}, meta *Meta) {
	appErr := appErrors.FromError(err)
	noStore(c)
	_ = c.Error(err)
	c.JSON(appErr.Status, Envelope{Data: data, Error: appErr, Meta: meta})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
