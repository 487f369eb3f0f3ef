package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"focusflow/internal/models"
	"focusflow/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MinSecretLength is the shortest accepted HMAC signing key.
const MinSecretLength = 32

var ErrWeakSecret = fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)

// Config carries the signing material. It is built once at startup and
// handed to NewManager.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// Session is a freshly issued token and the moment it stops being valid.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

type claims struct {
	UserID   int    `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager issues HS256 session tokens and tracks their ids in a Registry so
// that ending a session takes effect before the token expires.
type Manager struct {
	cfg      Config
	registry Registry
	now      func() time.Time
}

func NewManager(cfg Config, registry Registry) (*Manager, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	if registry == nil {
		return nil, errors.New("session registry is required")
	}

	return &Manager{cfg: cfg, registry: registry, now: time.Now}, nil
}

// Start binds the identity to a new session.
func (m *Manager) Start(ctx context.Context, id models.Identity) (Session, error) {
	now := m.now()
	expiresAt := now.Add(m.cfg.TTL)
	jti := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:   id.ID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(m.cfg.Secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	if err := m.registry.Add(ctx, jti, id.ID, m.cfg.TTL); err != nil {
		return Session{}, fmt.Errorf("register session: %w", err)
	}

	return Session{Token: signed, ExpiresAt: expiresAt}, nil
}

// Current resolves a token to its identity. It reports false for missing,
// malformed, forged, expired or ended sessions.
func (m *Manager) Current(ctx context.Context, token string) (models.Identity, bool) {
	if token == "" {
		return models.Identity{}, false
	}

	c, err := m.parse(token)
	if err != nil {
		return models.Identity{}, false
	}

	ok, err := m.registry.Exists(ctx, c.ID)
	if err != nil {
		logger.ErrorLogger.Error("Session registry lookup failed", zap.Error(err))
		return models.Identity{}, false
	}
	if !ok {
		return models.Identity{}, false
	}

	return models.Identity{ID: c.UserID, Username: c.Username}, true
}

// End invalidates the session behind token. Unknown or invalid tokens are
// ignored.
func (m *Manager) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	c, err := m.parse(token)
	if err != nil {
		return nil
	}

	if err := m.registry.Remove(ctx, c.ID); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// TTL is the lifetime of newly issued sessions.
func (m *Manager) TTL() time.Duration {
	return m.cfg.TTL
}

func (m *Manager) parse(token string) (*claims, error) {
	parser := jwt.Parser{
		ValidMethods: []string{jwt.SigningMethodHS256.Alg()},
	}

	var c claims
	parsed, err := parser.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.cfg.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || c.ID == "" || c.UserID == 0 {
		return nil, errors.New("invalid session claims")
	}
	if c.ExpiresAt == nil || !c.ExpiresAt.After(m.now()) {
		return nil, errors.New("session expired")
	}

	return &c, nil
}
