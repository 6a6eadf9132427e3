package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(origins []string, method, origin string, preflight bool) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.Any("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestOpenPolicyEchoesOrigin(t *testing.T) {
	w := serve(nil, http.MethodGet, "http://anything.test", false)
	assert.Equal(t, "http://anything.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = serve(nil, http.MethodGet, "", false)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightShortCircuits(t *testing.T) {
	w := serve([]string{"http://localhost:5173/"}, http.MethodOptions, "http://localhost:5173", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}

func TestPreflightFromUnknownOriginIsRefused(t *testing.T) {
	w := serve([]string{"http://app.example"}, http.MethodOptions, "http://evil.example", true)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWildcardSubdomain(t *testing.T) {
	origins := []string{"https://*.booking.example"}
	w := serve(origins, http.MethodGet, "https://shop.booking.example", false)
	assert.Equal(t, "https://shop.booking.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(origins, http.MethodGet, "http://shop.booking.example", false)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownOriginGetsNoAllowHeader(t *testing.T) {
	w := serve([]string{"http://app.example"}, http.MethodGet, "http://evil.example", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
