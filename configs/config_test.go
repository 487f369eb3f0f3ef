package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("APP_PORT", "not-a-number")
	t.Setenv("CONFIG_FILE", "")

	cfg := LoadConfig()

	assert.Equal(t, 5000, cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "Lax", cfg.CookieSameSite)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/tasks.db")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("REDIS_PORT", "6380")

	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/tasks.db", cfg.DBPath)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 6380, cfg.RedisPort)
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	doc := "app_port: 8081\ndb_driver: sqlite\nsession_ttl: 30m\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg := Config{AppPort: 5000, DBDriver: "postgres", CookieName: "sid", DBName: "focusflow"}
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, 8081, cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "focusflow", cfg.DBName, "keys missing from the file are kept")
}

func TestLoadFileMissing(t *testing.T) {
	var cfg Config
	err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{DBDriver: "mysql", SessionTTL: 0, CookieName: ""}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported db driver")
	assert.Contains(t, err.Error(), "session ttl")
	assert.Contains(t, err.Error(), "cookie name")
}
