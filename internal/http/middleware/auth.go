package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/http/response"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
	ContextClaimsKey = "claims"
)

// Authenticator проверяет access токен.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.AccessClaims, error)
}

// AccountStateReader возвращает актуальный статус аккаунта.
type AccountStateReader interface {
	AccountState(ctx context.Context, userID uuid.UUID) (service.AccountState, error)
}

// AuthMiddleware проверяет Bearer токен и что он не отозван.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "требуется авторизация")
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, string(claims.Role))
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// RequireRole пропускает только перечисленные роли.
func RequireRole(roles ...valueobject.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRoleKey)
		for _, allowed := range roles {
			if role == string(allowed) {
				c.Next()
				return
			}
		}
		response.Error(c, apperror.ErrForbidden)
	}
}

// AccountStatusGate закрывает изменяющие операции для заблокированных аккаунтов.
// Статус читается из базы (через кэш), а не из токена.
func AccountStatusGate(states AccountStateReader, supportContact string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := c.Get(ContextUserIDKey)
		userID, _ := raw.(uuid.UUID)
		if !ok || userID == uuid.Nil {
			response.Unauthorized(c, "требуется авторизация")
			return
		}

		state, err := states.AccountState(c.Request.Context(), userID)
		if err != nil {
			if apperror.IsNotFound(err) {
				response.Error(c, apperror.ErrUnauthorized)
				return
			}
			response.Error(c, err)
			return
		}

		if !state.Status.CanMutate() {
			response.Error(c, apperror.Suspended(state.Reason, supportContact))
			return
		}

		if claims, ok := c.Get(ContextClaimsKey); ok {
			if ac, ok := claims.(*service.AccessClaims); ok {
				ac.Status = state.Status
			}
		}
		c.Next()
	}
}
