package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/logger"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eventmarket-backend/internal/session"
	"github.com/ignatzorin/eventmarket-backend/internal/validation"
)

// UserRepository описывает зависимости AuthService от слоя хранилища.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error
	UpdateAccountStatus(ctx context.Context, userID uuid.UUID, status valueobject.AccountStatus, reason *string) (*models.User, error)
}

// AuthService инкапсулирует регистрацию, вход, отзыв токенов и статус аккаунта.
type AuthService struct {
	repo      UserRepository
	tokens    *TokenManager
	revoker   session.Revoker
	cache     *CacheService
	statusTTL time.Duration
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	MobileNumber *string
	Role         string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает итог регистрации или входа.
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// AccountState - актуальный статус аккаунта из базы.
type AccountState struct {
	Status valueobject.AccountStatus
	Reason string
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo UserRepository, tokens *TokenManager, revoker session.Revoker, cache *CacheService, statusTTL time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		revoker:   revoker,
		cache:     cache,
		statusTTL: statusTTL,
	}
}

// Register создаёт клиента или исполнителя и сразу выдаёт токен.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	role, err := valueobject.NewRole(strings.ToUpper(strings.TrimSpace(in.Role)))
	if err != nil {
		return nil, err
	}
	if !role.IsSelfAssignable() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "роль ADMIN нельзя выбрать при регистрации")
	}

	if err := invalidInput(
		validation.ValidatePersonName("имя", in.FirstName),
		validation.ValidatePersonName("фамилия", in.LastName),
		validation.ValidateEmail(in.Email),
		validation.ValidatePassword(in.Password),
		validation.ValidateMobileNumber(in.MobileNumber),
	); err != nil {
		return nil, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	user := &models.User{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Email:         in.Email,
		MobileNumber:  in.MobileNumber,
		PasswordHash:  string(passHash),
		Role:          role,
		AccountStatus: valueobject.AccountStatusActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login проверяет учётные данные. Заблокированный аккаунт может войти,
// но все изменяющие операции для него закрыты.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := s.repo.UpdateLastLoginAt(ctx, user.ID); err != nil {
		logger.WithFields(map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("auth service: не удалось обновить last_login_at")
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: claims.ExpiresAt}, nil
}

// Authenticate проверяет токен и что он не был отозван.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*AccessClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось проверить токен")
	}
	if revoked {
		return nil, apperror.ErrUnauthorized
	}
	return claims, nil
}

// Logout отзывает токен до окончания его срока действия.
func (s *AuthService) Logout(ctx context.Context, claims *AccessClaims) error {
	if err := s.revoker.Revoke(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось отозвать токен")
	}
	return nil
}

// Me возвращает профиль текущего пользователя.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateAccountStatusInput - изменение статуса аккаунта администратором.
type UpdateAccountStatusInput struct {
	Status string
	Reason *string
}

// UpdateAccountStatus меняет статус аккаунта. Только для ADMIN.
func (s *AuthService) UpdateAccountStatus(ctx context.Context, caller models.Caller, userID uuid.UUID, in UpdateAccountStatusInput) (*models.User, error) {
	if !caller.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	status, err := valueobject.NewAccountStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if err != nil {
		return nil, err
	}

	reason := in.Reason
	if status != valueobject.AccountStatusSuspended {
		reason = nil
	}

	user, err := s.repo.UpdateAccountStatus(ctx, userID, status, reason)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Delete(AccountStateCacheKey(userID))
	}

	logger.WithFields(map[string]interface{}{
		"admin_id": caller.ID,
		"user_id":  userID,
		"status":   status,
	}).Info("auth service: статус аккаунта изменён")

	return user, nil
}

// AccountState возвращает статус аккаунта из базы через кэш.
func (s *AuthService) AccountState(ctx context.Context, userID uuid.UUID) (AccountState, error) {
	load := func(ctx context.Context) (interface{}, error) {
		user, err := s.repo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		state := AccountState{Status: user.AccountStatus}
		if user.SuspensionReason != nil {
			state.Reason = *user.SuspensionReason
		}
		return state, nil
	}

	if s.cache == nil {
		v, err := load(ctx)
		if err != nil {
			return AccountState{}, err
		}
		return v.(AccountState), nil
	}

	v, err := s.cache.GetOrSet(ctx, AccountStateCacheKey(userID), s.statusTTL, load)
	if err != nil {
		return AccountState{}, err
	}
	return v.(AccountState), nil
}
