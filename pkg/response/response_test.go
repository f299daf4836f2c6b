package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDegradedKeepsDataAndError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Degraded(c, []string{"a"}, &Meta{Source: SourceCache, Stale: true, Notice: CachedNotice}, appErrors.ErrBackendUnavailable)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	body := decodeEnvelope(t, w)
	assert.JSONEq(t, `["a"]`, string(body["data"]))
	assert.Contains(t, string(body["error"]), "BACKEND_UNAVAILABLE")
	assert.Contains(t, string(body["meta"]), `"stale":true`)
}

func TestErrorWithDataUsesErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorWithData(c, appErrors.Clone(appErrors.ErrBackendRejected, "leave already approved"), []int{1, 2}, &Meta{Source: SourceNetwork})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeEnvelope(t, w)
	assert.JSONEq(t, `[1,2]`, string(body["data"]))
	assert.Contains(t, string(body["error"]), "leave already approved")
}

func TestErrorWrapsUnknown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "null", string(body["data"]))
	assert.Contains(t, string(body["error"]), "INTERNAL_ERROR")
}
