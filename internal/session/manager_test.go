package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"focusflow/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(t *testing.T) (*Manager, *MemoryRegistry) {
	t.Helper()

	reg := NewMemoryRegistry()
	m, err := NewManager(Config{Secret: testSecret, TTL: time.Hour, Issuer: "focusflow"}, reg)
	require.NoError(t, err)
	return m, reg
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	_, err := NewManager(Config{Secret: []byte("short"), TTL: time.Hour}, NewMemoryRegistry())
	require.ErrorIs(t, err, ErrWeakSecret)

	_, err = NewManager(Config{Secret: testSecret}, NewMemoryRegistry())
	require.Error(t, err)

	_, err = NewManager(Config{Secret: testSecret, TTL: time.Hour}, nil)
	require.Error(t, err)
}

func TestStartAndCurrent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	alice := models.Identity{ID: 7, Username: "alice"}

	s, err := m.Start(ctx, alice)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 5*time.Second)

	got, ok := m.Current(ctx, s.Token)
	require.True(t, ok)
	assert.Equal(t, alice, got)
}

func TestCurrentRejectsInvalidTokens(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	s, err := m.Start(ctx, models.Identity{ID: 1, Username: "bob"})
	require.NoError(t, err)

	other, err := NewManager(Config{Secret: []byte(strings.Repeat("x", 32)), TTL: time.Hour}, NewMemoryRegistry())
	require.NoError(t, err)
	forged, err := other.Start(ctx, models.Identity{ID: 1, Username: "bob"})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": 1, "jti": "x"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":     "",
		"garbage":   "not-a-token",
		"truncated": s.Token[:len(s.Token)-4],
		"forged":    forged.Token,
		"unsigned":  unsigned,
	} {
		_, ok := m.Current(ctx, token)
		assert.False(t, ok, name)
	}
}

func TestCurrentRejectsExpired(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	s, err := m.Start(ctx, models.Identity{ID: 3, Username: "carol"})
	require.NoError(t, err)
	m.now = time.Now

	_, ok := m.Current(ctx, s.Token)
	assert.False(t, ok)
}

func TestEndInvalidatesImmediately(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	first, err := m.Start(ctx, models.Identity{ID: 4, Username: "dave"})
	require.NoError(t, err)
	second, err := m.Start(ctx, models.Identity{ID: 4, Username: "dave"})
	require.NoError(t, err)

	require.NoError(t, m.End(ctx, first.Token))

	_, ok := m.Current(ctx, first.Token)
	assert.False(t, ok)

	_, ok = m.Current(ctx, second.Token)
	assert.True(t, ok, "ending one session leaves other devices logged in")

	require.NoError(t, m.End(ctx, first.Token))
	require.NoError(t, m.End(ctx, "garbage"))
	require.NoError(t, m.End(ctx, ""))
}

func TestMemoryRegistryExpiry(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()
	now := time.Now()
	reg.now = func() time.Time { return now }

	require.NoError(t, reg.Add(ctx, "a", 1, time.Minute))

	ok, err := reg.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = reg.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, reg.Add(ctx, "b", 1, time.Minute))
	require.NoError(t, reg.Remove(ctx, "b"))
	ok, err = reg.Exists(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}
