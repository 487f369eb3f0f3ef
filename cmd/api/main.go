package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focusflow/configs"
	"focusflow/internal/api"
	"focusflow/internal/config"
	"focusflow/internal/repository"
	"focusflow/internal/service"
	"focusflow/internal/session"
	myws "focusflow/internal/websocket"
	"focusflow/pkg/crypto"
	"focusflow/pkg/database"
	"focusflow/pkg/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func main() {
	cfg := configs.LoadConfig()

	if err := logger.InitLoggers(cfg.LogDir); err != nil {
		panic(err)
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	if err := run(cfg); err != nil {
		logger.ErrorLogger.Error("Application stopped", zap.Error(err))
		logger.SyncLoggers()
		os.Exit(1)
	}
}

func run(cfg configs.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.SystemLogger.Info("Database connected", zap.String("driver", cfg.DBDriver))

	dialect := repository.Dialect(cfg.DBDriver)
	if err := repository.CreateTableIfNotExists(ctx, db, dialect); err != nil {
		return err
	}

	registry, closeRegistry, err := sessionRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRegistry()

	sessions, err := session.NewManager(session.Config{
		Secret: signingKey(cfg),
		TTL:    cfg.SessionTTL,
		Issuer: "focusflow",
	}, registry)
	if err != nil {
		return err
	}

	creds, err := service.NewCredentials(repository.NewUserRepository(db, dialect), crypto.DefaultParams)
	if err != nil {
		return err
	}

	hub := myws.NewHub()
	go hub.Run(ctx)

	deps := &config.Dependencies{
		Credentials: creds,
		Tasks:       repository.NewTaskRepository(db, dialect),
		Sessions:    sessions,
		Hub:         hub,
		Validate:    validator.New(),
		Cookie: config.Cookie{
			Name:     cfg.CookieName,
			Secure:   cfg.CookieSecure,
			SameSite: cfg.CookieSameSite,
		},
		StaticDir: cfg.StaticDir,
		AudioDir:  cfg.AudioDir,
	}

	app := api.NewApp(deps, cfg.AllowOrigins)

	go func() {
		<-ctx.Done()
		logger.SystemLogger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.ErrorLogger.Error("Shutdown failed", zap.Error(err))
		}
	}()

	logger.SystemLogger.Info("Application ready", zap.Int("port", cfg.AppPort))
	return app.Listen(fmt.Sprintf(":%d", cfg.AppPort))
}

// sessionRegistry uses Redis when REDIS_HOST is set and process memory
// otherwise.
func sessionRegistry(ctx context.Context, cfg configs.Config) (session.Registry, func(), error) {
	if cfg.RedisHost == "" {
		logger.SystemLogger.Warn("REDIS_HOST not set, sessions are kept in memory")
		return session.NewMemoryRegistry(), func() {}, nil
	}

	client, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.SystemLogger.Info("Redis connected")

	return session.NewRedisRegistry(client), func() { _ = client.Close() }, nil
}

func signingKey(cfg configs.Config) []byte {
	if cfg.SessionSecret != "" {
		return []byte(cfg.SessionSecret)
	}

	logger.SecurityLogger.Warn("SESSION_SECRET not set, using an ephemeral key; sessions will not survive a restart")
	key := make([]byte, session.MinSecretLength)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	return key
}
