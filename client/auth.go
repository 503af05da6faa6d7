package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/validation"
)

// AuthResult - ответ регистрации и входа.
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type RegisterInput struct {
	FirstName    string           `json:"firstName"`
	LastName     string           `json:"lastName"`
	Email        string           `json:"email"`
	Password     string           `json:"password"`
	MobileNumber *string          `json:"mobileNumber,omitempty"`
	Role         valueobject.Role `json:"role"`
}

// Register регистрирует пользователя и открывает сессию.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if !in.Role.IsSelfAssignable() {
		return nil, &Error{Kind: KindInvalidInput, Code: "VALIDATION_ERROR", Message: "роль должна быть CLIENT или PROVIDER"}
	}
	if err := validation.ValidateEmail(strings.ToLower(strings.TrimSpace(in.Email))); err != nil {
		return nil, localError(err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, localError(err)
	}

	return c.authenticate(ctx, "/users/register", in)
}

// Login открывает сессию. Если во время входа был вызван Logout, токен отбрасывается.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, &Error{Kind: KindInvalidInput, Code: "VALIDATION_ERROR", Message: "email и пароль обязательны"}
	}

	return c.authenticate(ctx, "/users/login", map[string]string{"email": email, "password": password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*AuthResult, error) {
	epoch := c.session.Epoch()

	var result AuthResult
	if err := c.send(ctx, "", epoch, call{method: http.MethodPost, path: path, body: body, out: &result}); err != nil {
		return nil, err
	}

	ok, err := c.session.commit(epoch, result.Token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &Error{Kind: KindUnauthenticated, Code: "SESSION_CHANGED", Message: "сессия завершена во время входа"}
	}
	return &result, nil
}

// Logout завершает сессию локально сразу, затем отзывает токен на сервере.
// Ошибка сервера не возвращает сессию.
func (c *Client) Logout(ctx context.Context) error {
	token, epoch := c.session.Token()
	if err := c.session.Clear(); err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	err := c.send(ctx, token, epoch+1, call{method: http.MethodPost, path: "/users/logout"})
	if KindOf(err) == KindUnauthenticated {
		return nil
	}
	return err
}

// Me возвращает профиль текущего пользователя.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/users/me", out: &user}); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetAccountStatus меняет статус аккаунта. Только для ADMIN.
func (c *Client) SetAccountStatus(ctx context.Context, userID uuid.UUID, status valueobject.AccountStatus, reason *string) (*models.User, error) {
	check := func() error {
		if !status.IsValid() {
			return &Error{Kind: KindInvalidInput, Code: "VALIDATION_ERROR", Message: "некорректный статус аккаунта"}
		}
		return nil
	}

	var user models.User
	err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     "/admin/users/" + userID.String() + "/status",
		body:     map[string]any{"status": status, "reason": reason},
		out:      &user,
		mutating: true,
		check:    check,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
