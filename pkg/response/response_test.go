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

	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestErrorUsesReasonCode(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.Clone(appErrors.ErrSlotUnavailable, "slot 09:00 is full"))

	require.Equal(t, http.StatusConflict, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "slot 09:00 is full", body["detail"])
	assert.Equal(t, "SLOT_UNAVAILABLE", body["error"].(map[string]interface{})["code"])
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestErrorWrapsUnknownAsInternal(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWithWarnings(t *testing.T) {
	c, w := newContext()
	WithWarnings(c, http.StatusCreated, gin.H{"id": "a1"}, []string{"notification not queued"})

	require.Equal(t, http.StatusCreated, w.Code)
	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{"notification not queued"}, body.Meta["warnings"])
}

func TestWithWarningsOmitsEmptyMeta(t *testing.T) {
	c, w := newContext()
	WithWarnings(c, http.StatusOK, gin.H{"id": "a1"}, nil)
	assert.NotContains(t, w.Body.String(), "meta")
}
