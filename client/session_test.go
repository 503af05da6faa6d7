package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
)

func unsignedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any"))
	require.NoError(t, err)
	return token
}

func TestParseClaims(t *testing.T) {
	userID := uuid.New()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := unsignedToken(t, jwt.MapClaims{
		"sub":    userID.String(),
		"role":   "PROVIDER",
		"status": "SUSPENDED",
		"exp":    exp.Unix(),
	})

	claims, err := ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, valueobject.RoleProvider, claims.Role)
	assert.Equal(t, valueobject.AccountStatusSuspended, claims.Status)
	assert.True(t, exp.Equal(claims.ExpiresAt))

	_, err = ParseClaims("garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSession_StaleUnauthorizedKeepsNewerToken(t *testing.T) {
	s, err := NewSession(NewMemoryStore())
	require.NoError(t, err)

	ok, err := s.commit(s.Epoch(), "first")
	require.NoError(t, err)
	require.True(t, ok)
	_, oldEpoch := s.Token()

	ok, err = s.commit(s.Epoch(), "second")
	require.NoError(t, err)
	require.True(t, ok)

	// 401 пришёл на запрос со старым токеном
	require.NoError(t, s.invalidate(oldEpoch))
	token, _ := s.Token()
	assert.Equal(t, "second", token)

	_, current := s.Token()
	require.NoError(t, s.invalidate(current))
	token, _ = s.Token()
	assert.Empty(t, token)
}

func TestSession_LogoutDiscardsPendingLogin(t *testing.T) {
	s, err := NewSession(nil)
	require.NoError(t, err)

	epoch := s.Epoch()
	require.NoError(t, s.Clear())

	ok, err := s.commit(epoch, "late")
	require.NoError(t, err)
	assert.False(t, ok)
	token, _ := s.Token()
	assert.Empty(t, token)
}

func TestSession_SuspendedState(t *testing.T) {
	s, err := NewSession(nil)
	require.NoError(t, err)

	_, suspended := s.suspendedState()
	assert.False(t, suspended)

	active := unsignedToken(t, jwt.MapClaims{"sub": uuid.NewString(), "status": "ACTIVE"})
	_, err = s.commit(s.Epoch(), active)
	require.NoError(t, err)
	_, suspended = s.suspendedState()
	assert.False(t, suspended)

	_, epoch := s.Token()
	s.markSuspended(epoch, "спам", "help@example.com")
	state, suspended := s.suspendedState()
	require.True(t, suspended)
	assert.Equal(t, "спам", state.reason)

	// новый вход сбрасывает блокировку
	_, err = s.commit(s.Epoch(), active)
	require.NoError(t, err)
	_, suspended = s.suspendedState()
	assert.False(t, suspended)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	store := NewFileStore(path)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("abc"))
	require.NoError(t, store.Save("def"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "def", token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// временные файлы не остаются
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}
