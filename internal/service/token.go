package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
)

// ErrInvalidToken - токен не прошёл проверку подписи, срока или формата.
var ErrInvalidToken = errors.New("некорректный токен")

// AccessClaims - содержимое access токена.
type AccessClaims struct {
	UserID    uuid.UUID
	Role      valueobject.Role
	Status    valueobject.AccountStatus
	JTI       string
	ExpiresAt time.Time
}

// Caller возвращает участника запроса по клеймам.
func (c *AccessClaims) Caller() models.Caller {
	return models.Caller{ID: c.UserID, Role: c.Role, AccountStatus: c.Status}
}

// TokenManager отвечает за выпуск и проверку JWT.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue выпускает access токен с уникальным jti.
func (m *TokenManager) Issue(user *models.User) (string, *AccessClaims, error) {
	now := m.now()
	claims := &AccessClaims{
		UserID:    user.ID,
		Role:      user.Role,
		Status:    user.AccountStatus,
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    claims.UserID.String(),
		"role":   string(claims.Role),
		"status": string(claims.Status),
		"jti":    claims.JTI,
		"iat":    now.Unix(),
		"exp":    claims.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse проверяет подпись и срок действия access токена.
func (m *TokenManager) Parse(token string) (*AccessClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	status, _ := claims["status"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	return &AccessClaims{
		UserID:    userID,
		Role:      valueobject.Role(role),
		Status:    valueobject.AccountStatus(status),
		JTI:       jti,
		ExpiresAt: exp.Time,
	}, nil
}
