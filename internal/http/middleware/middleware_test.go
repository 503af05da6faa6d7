package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/http/response"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
)

type stubAuth struct {
	claims *service.AccessClaims
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*service.AccessClaims, error) {
	if token != "good" || s.claims == nil {
		return nil, apperror.ErrUnauthorized
	}
	cp := *s.claims
	return &cp, nil
}

type stubStates map[uuid.UUID]service.AccountState

func (s stubStates) AccountState(_ context.Context, userID uuid.UUID) (service.AccountState, error) {
	state, ok := s[userID]
	if !ok {
		return service.AccountState{}, apperror.ErrUserNotFound
	}
	return state, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newProtected(claims *service.AccessClaims, states stubStates, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := []gin.HandlerFunc{AuthMiddleware(stubAuth{claims: claims}), AccountStatusGate(states, "support@example.com")}
	chain = append(chain, extra...)
	chain = append(chain, func(c *gin.Context) { response.Success(c, "ok") })
	r.POST("/mutate", chain...)
	return r
}

func do(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingAndInvalidToken(t *testing.T) {
	r := newProtected(nil, stubStates{})

	w := do(r, http.MethodPost, "/mutate", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, w).Error.Code)

	w = do(r, http.MethodPost, "/mutate", "bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccountStatusGate_Active(t *testing.T) {
	userID := uuid.New()
	claims := &service.AccessClaims{UserID: userID, Role: valueobject.RoleClient, JTI: "j", ExpiresAt: time.Now().Add(time.Hour)}
	r := newProtected(claims, stubStates{userID: {Status: valueobject.AccountStatusActive}})

	w := do(r, http.MethodPost, "/mutate", "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestAccountStatusGate_SuspendedCarriesReasonAndContact(t *testing.T) {
	userID := uuid.New()
	// токен выпущен до блокировки и всё ещё говорит ACTIVE
	claims := &service.AccessClaims{UserID: userID, Role: valueobject.RoleClient, Status: valueobject.AccountStatusActive}
	r := newProtected(claims, stubStates{userID: {Status: valueobject.AccountStatusSuspended, Reason: "спам"}})

	w := do(r, http.MethodPost, "/mutate", "good")
	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ACCOUNT_SUSPENDED", body.Error.Code)
	assert.Equal(t, "спам", body.Error.Details["reason"])
	assert.Equal(t, "support@example.com", body.Error.Details["contact"])
}

func TestAccountStatusGate_UnknownUser(t *testing.T) {
	claims := &service.AccessClaims{UserID: uuid.New(), Role: valueobject.RoleClient}
	r := newProtected(claims, stubStates{})

	w := do(r, http.MethodPost, "/mutate", "good")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	userID := uuid.New()
	claims := &service.AccessClaims{UserID: userID, Role: valueobject.RoleClient}
	states := stubStates{userID: {Status: valueobject.AccountStatusActive}}

	r := newProtected(claims, states, RequireRole(valueobject.RoleProvider))
	w := do(r, http.MethodPost, "/mutate", "good")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, w).Error.Code)

	r = newProtected(claims, states, RequireRole(valueobject.RoleClient, valueobject.RoleAdmin))
	w = do(r, http.MethodPost, "/mutate", "good")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUUIDValidator(t *testing.T) {
	r := gin.New()
	r.GET("/items/:id", UUIDValidator("id"), func(c *gin.Context) { response.Success(c, nil) })

	w := do(r, http.MethodGet, "/items/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)

	w = do(r, http.MethodGet, "/items/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimitMiddleware(2, time.Minute), func(c *gin.Context) { response.Success(c, nil) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)

	w := do(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestCORSMiddleware_AllowedOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/health", func(c *gin.Context) { response.Success(c, nil) })

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req, _ = http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorHandler_WritesEnvelopeForUnansweredErrors(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
	})

	w := do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, body.Error.Message, assert.AnError.Error())
}
