package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eventmarket-backend/internal/models"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: uuid.New(), Role: valueobject.RoleProvider, AccountStatus: valueobject.AccountStatusActive}

	token, issued, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, valueobject.RoleProvider, claims.Role)
	assert.Equal(t, issued.JTI, claims.JTI)
	assert.Equal(t, issued.ExpiresAt.Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, user.ID, claims.Caller().ID)
}

func TestTokenManager_UniqueJTI(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: uuid.New(), Role: valueobject.RoleClient}

	_, a, err := m.Issue(user)
	require.NoError(t, err)
	_, b, err := m.Issue(user)
	require.NoError(t, err)
	assert.NotEqual(t, a.JTI, b.JTI)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }

	token, _, err := m.Issue(&models.User{ID: uuid.New(), Role: valueobject.RoleClient})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", time.Hour).Issue(&models.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": uuid.NewString(),
		"jti": "x",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCacheService_GetOrSet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache := NewCacheService(ctx)

	calls := 0
	load := func(context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	v, err := cache.GetOrSet(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = cache.GetOrSet(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	cache.Delete("k")
	v, _ = cache.GetOrSet(ctx, "k", time.Minute, load)
	assert.Equal(t, 2, v)
}

func TestCacheService_Expiry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache := NewCacheService(ctx)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Set("account_state:a", "x", time.Second)
	cache.Set("account_state:b", "y", time.Hour)

	now = now.Add(2 * time.Second)
	_, ok := cache.Get("account_state:a")
	assert.False(t, ok)
	_, ok = cache.Get("account_state:b")
	assert.True(t, ok)

	cache.InvalidateByPrefix("account_state:")
	_, ok = cache.Get("account_state:b")
	assert.False(t, ok)
}
