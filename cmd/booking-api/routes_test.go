package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/booking-api/internal/middleware"
	"github.com/noah-isme/booking-api/pkg/config"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	return newRouter(cfg, &app{limiter: middleware.NewRateLimiter(30, 5)}, zap.NewNop())
}

func TestRouterServesFrontendPaths(t *testing.T) {
	handlers := map[string]string{}
	for _, route := range newTestRouter().Routes() {
		handlers[route.Method+" "+route.Path] = route.Handler
	}

	for _, tc := range []struct{ route, handler string }{
		{"GET /api/v1/appointments/me", "(*AppointmentHandler).ListMine"},
		{"GET /api/v1/appointments/my-appointments", "(*AppointmentHandler).ListMine"},
		{"GET /api/v1/appointments/business/:id/with-users", "(*AppointmentHandler).ListByBusiness"},
		{"GET /api/v1/appointments/business/:id", "(*AppointmentHandler).ListByBusiness"},
		{"GET /api/v1/appointments/:id", "(*AppointmentHandler).Get"},
		{"POST /api/v1/users/me/request-owner", "(*OwnerHandler).RequestOwner"},
		{"GET /api/v1/users/admin/owner-requests", "(*OwnerHandler).ListRequests"},
		{"POST /api/v1/users/admin/approve-owner/:id", "(*OwnerHandler).Approve"},
		{"POST /api/v1/users/admin/reject-owner/:id", "(*OwnerHandler).Reject"},
		{"GET /api/v1/users/admin/owners", "(*OwnerHandler).ListOwners"},
		{"GET /api/v1/users/:id", "(*AuthHandler).Profile"},
		{"POST /api/v1/businesses/admin/assign-business", "(*BusinessHandler).Assign"},
		{"GET /api/v1/reviews/business/:id", "(*ReviewHandler).ListByBusiness"},
		{"POST /api/v1/reviews/", "(*ReviewHandler).Create"},
		{"GET /api/v1/reviews/eligibility/:id", "(*ReviewHandler).Eligibility"},
		{"POST /api/v1/reviews/:id/reply", "(*ReviewHandler).Reply"},
		{"GET /api/v1/businesses/:id/available-slots", "(*AvailabilityHandler).AvailableSlots"},
	} {
		got, ok := handlers[tc.route]
		require.True(t, ok, "%s is not registered", tc.route)
		assert.True(t, strings.Contains(got, tc.handler), "%s is served by %s", tc.route, got)
	}
}

func TestRouterRequiresTokenOnPrivateRoutes(t *testing.T) {
	r := newTestRouter()

	for _, target := range []string{"/api/v1/users/admin/owners", "/api/v1/appointments/me", "/api/v1/reviews/eligibility/b-1"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}
}
