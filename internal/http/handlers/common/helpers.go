package common

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/http/middleware"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eventmarket-backend/internal/service"
)

var (
	// ErrUserNotFound - в контексте нет аутентифицированного пользователя.
	ErrUserNotFound = apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация")

	// ErrInvalidUUID - параметр не является UUID.
	ErrInvalidUUID = errors.New("неверный формат UUID")
)

// CurrentUserID извлекает userID из контекста gin.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, ErrUserNotFound
	}

	userID, ok := raw.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, ErrUserNotFound
	}

	return userID, nil
}

// CurrentClaims возвращает клеймы токена текущего запроса.
func CurrentClaims(c *gin.Context) (*service.AccessClaims, error) {
	raw, exists := c.Get(middleware.ContextClaimsKey)
	if !exists {
		return nil, ErrUserNotFound
	}
	claims, ok := raw.(*service.AccessClaims)
	if !ok || claims == nil {
		return nil, ErrUserNotFound
	}
	return claims, nil
}

// CurrentCaller собирает участника запроса из контекста.
func CurrentCaller(c *gin.Context) (models.Caller, error) {
	if claims, err := CurrentClaims(c); err == nil {
		return claims.Caller(), nil
	}

	userID, err := CurrentUserID(c)
	if err != nil {
		return models.Caller{}, err
	}
	role, _ := c.Get(middleware.ContextRoleKey)
	roleStr, _ := role.(string)
	return models.Caller{ID: userID, Role: valueobject.Role(roleStr)}, nil
}

// ParseUUIDParam разбирает UUID из параметра пути.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	if param == "" {
		return uuid.Nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("параметр %s отсутствует", paramName))
	}

	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, apperror.Wrap(ErrInvalidUUID, apperror.ErrCodeValidation,
			fmt.Sprintf("параметр %s должен быть UUID", paramName))
	}

	return parsed, nil
}

// ParseUUIDField разбирает UUID из тела запроса.
func ParseUUIDField(fieldName, value string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperror.Wrap(ErrInvalidUUID, apperror.ErrCodeValidation,
			fmt.Sprintf("поле %s должно быть UUID", fieldName))
	}
	return parsed, nil
}

// BindJSON разбирает тело запроса; ошибки формата становятся VALIDATION_ERROR.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, "некорректное тело запроса: "+err.Error())
	}
	return nil
}

// ParsePage читает page, size и sort по правилам конкретного списка.
func ParsePage(c *gin.Context, spec pagination.Spec) (pagination.Params, error) {
	return pagination.Parse(c.Query("page"), c.Query("size"), c.Query("sort"), spec)
}

// ParseBoolQuery читает необязательный булев параметр.
func ParseBoolQuery(c *gin.Context, key string) (*bool, error) {
	switch c.Query(key) {
	case "":
		return nil, nil
	case "true":
		v := true
		return &v, nil
	case "false":
		v := false
		return &v, nil
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("параметр %s должен быть true или false", key))
	}
}
