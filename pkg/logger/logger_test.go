package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLoggersWritesFiles(t *testing.T) {
	saved := []*zap.Logger{ErrorLogger, AuditLogger, RequestLogger, SecurityLogger, SystemLogger}
	t.Cleanup(func() {
		ErrorLogger, AuditLogger, RequestLogger, SecurityLogger, SystemLogger =
			saved[0], saved[1], saved[2], saved[3], saved[4]
	})

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, InitLoggers(dir))

	AuditLogger.Info("task list replaced", zap.Int("user_id", 7))
	SecurityLogger.Info("below warn level, dropped")
	SyncLoggers()

	audit, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(audit), `"msg":"task list replaced"`)
	assert.Contains(t, string(audit), `"timestamp"`)

	security, err := os.ReadFile(filepath.Join(dir, "security.log"))
	require.NoError(t, err)
	assert.Empty(t, security)
}
