package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Purpose loggers. They are no-ops until InitLoggers runs, so packages and
// tests can log without setup.
var (
	ErrorLogger    = zap.NewNop()
	AuditLogger    = zap.NewNop()
	RequestLogger  = zap.NewNop()
	SecurityLogger = zap.NewNop()
	SystemLogger   = zap.NewNop()
)

func newLogger(ws zapcore.WriteSyncer, level zapcore.Level, name string) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		ws,
		level,
	)
	return zap.New(core).Named(name)
}

func openSink(dir, name string) (zapcore.WriteSyncer, error) {
	if dir == "" {
		return zapcore.Lock(os.Stdout), nil
	}

	file, err := os.OpenFile(filepath.Join(dir, name+".log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s log: %w", name, err)
	}
	return zapcore.AddSync(file), nil
}

// InitLoggers builds the purpose loggers. With an empty dir every logger
// writes JSON to stdout; otherwise each one appends to <dir>/<name>.log.
func InitLoggers(dir string) error {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}

	targets := []struct {
		dst   **zap.Logger
		name  string
		level zapcore.Level
	}{
		{&ErrorLogger, "errors", zapcore.ErrorLevel},
		{&AuditLogger, "audit", zapcore.InfoLevel},
		{&RequestLogger, "request", zapcore.InfoLevel},
		{&SecurityLogger, "security", zapcore.WarnLevel},
		{&SystemLogger, "system", zapcore.InfoLevel},
	}

	for _, tgt := range targets {
		ws, err := openSink(dir, tgt.name)
		if err != nil {
			return err
		}
		*tgt.dst = newLogger(ws, tgt.level, tgt.name)
	}

	return nil
}

func SyncLoggers() {
	_ = ErrorLogger.Sync()
	_ = AuditLogger.Sync()
	_ = RequestLogger.Sync()
	_ = SecurityLogger.Sync()
	_ = SystemLogger.Sync()
}
