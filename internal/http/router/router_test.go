package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/eventmarket-backend/internal/config"
	"github.com/ignatzorin/eventmarket-backend/internal/http/handlers"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:             "test",
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
		SupportContact:  "support@example.com",
	}
	auth := &service.AuthService{}
	return SetupRouter(cfg, auth, Handlers{
		Auth:          handlers.NewAuthHandler(auth),
		Requests:      handlers.NewRequestHandler(nil, nil),
		Pitches:       handlers.NewPitchHandler(nil),
		Payments:      handlers.NewPaymentHandler(nil),
		Reviews:       handlers.NewReviewHandler(nil),
		Notifications: handlers.NewNotificationHandler(nil),
		WS:            handlers.NewWSHandler(nil, auth, nil),
		Health:        handlers.NewHealthHandler(nil, nil),
	})
}

func TestSetupRouter_Routes(t *testing.T) {
	r := newTestRouter()

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /api/ws",
		"POST /api/users/register",
		"POST /api/users/login",
		"POST /api/users/logout",
		"GET /api/users/me",
		"PUT /api/admin/users/:id/status",
		"POST /api/requests",
		"GET /api/requests",
		"GET /api/requests/mine",
		"GET /api/requests/:id",
		"POST /api/requests/:id/publish",
		"POST /api/requests/:id/cancel",
		"POST /api/requests/:id/complete",
		"DELETE /api/requests/:id",
		"GET /api/requests/:id/pitches",
		"POST /api/pitches",
		"GET /api/pitches/mine",
		"POST /api/pitches/:id/select",
		"POST /api/payments",
		"GET /api/payments/request/:id/status",
		"PUT /api/payments/:id/status",
		"GET /api/payments/mine",
		"POST /api/reviews",
		"GET /api/reviews/provider/:id",
		"GET /api/notifications",
		"GET /api/notifications/unread-count",
		"PUT /api/notifications/:id/read",
		"PUT /api/notifications/read-all",
	} {
		assert.True(t, registered[want], want)
	}
}

func TestSetupRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/requests"},
		{http.MethodPost, "/api/requests"},
		{http.MethodPost, "/api/pitches"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodPut, "/api/notifications/read-all"},
	} {
		req, _ := http.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestSetupRouter_Health(t *testing.T) {
	r := newTestRouter()

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
