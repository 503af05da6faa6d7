package client

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
)

// Claims - данные из JWT без проверки подписи. Только подсказка для UI
// и локальной блокировки, сервер проверяет всё сам.
type Claims struct {
	UserID    uuid.UUID
	Role      valueobject.Role
	Status    valueobject.AccountStatus
	ExpiresAt time.Time
}

// ParseClaims читает клеймы токена без проверки подписи.
func ParseClaims(token string) (*Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, &Error{Kind: KindUnauthenticated, Code: "MALFORMED_TOKEN", Message: "токен не читается"}
	}

	sub, _ := mc["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, &Error{Kind: KindUnauthenticated, Code: "MALFORMED_TOKEN", Message: "в токене нет пользователя"}
	}

	role, _ := mc["role"].(string)
	status, _ := mc["status"].(string)
	claims := &Claims{
		UserID: userID,
		Role:   valueobject.Role(role),
		Status: valueobject.AccountStatus(status),
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// suspension - блокировка, о которой сообщил сервер после выпуска токена.
type suspension struct {
	reason  string
	contact string
}

// Session хранит токен процесса. Каждая смена токена увеличивает epoch:
// логин, начатый до выхода, отбрасывается, а 401 на старый токен не
// сбрасывает новый.
type Session struct {
	mu        sync.Mutex
	store     TokenStore
	token     string
	epoch     uint64
	suspended *suspension
}

// NewSession поднимает сохранённый токен из store.
func NewSession(store TokenStore) (*Session, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{store: store, token: token}, nil
}

// Token возвращает текущий токен и его epoch.
func (s *Session) Token() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.epoch
}

// Claims возвращает клеймы текущего токена.
func (s *Session) Claims() (*Claims, error) {
	token, _ := s.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return ParseClaims(token)
}

// Epoch фиксирует поколение перед началом логина.
func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// commit сохраняет токен, если с начала логина сессия не менялась.
func (s *Session) commit(epoch uint64, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false, nil
	}
	s.epoch++
	s.token = token
	s.suspended = nil
	return true, s.store.Save(token)
}

// Clear завершает сессию безусловно.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

// invalidate сбрасывает токен после 401, только если он всё ещё текущий.
func (s *Session) invalidate(epoch uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.token == "" {
		return nil
	}
	return s.clearLocked()
}

func (s *Session) clearLocked() error {
	s.epoch++
	s.token = ""
	s.suspended = nil
	return s.store.Clear()
}

func (s *Session) markSuspended(epoch uint64, reason, contact string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return
	}
	s.suspended = &suspension{reason: reason, contact: contact}
}

// suspendedState возвращает блокировку, если она известна локально.
func (s *Session) suspendedState() (*suspension, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suspended != nil {
		cp := *s.suspended
		return &cp, true
	}
	if s.token == "" {
		return nil, false
	}
	claims, err := ParseClaims(s.token)
	if err != nil || claims.Status != valueobject.AccountStatusSuspended {
		return nil, false
	}
	return &suspension{}, true
}
