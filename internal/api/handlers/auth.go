package handlers

import (
	"focusflow/internal/config"
	"focusflow/internal/middleware"
	"focusflow/internal/models"
	"focusflow/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const msgMissingCredentials = "username and password are required"

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func parseCredentials(c *fiber.Ctx, d *config.Dependencies) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		logger.AuditLogger.Warn("Bad credentials payload", zap.String("path", c.Path()), zap.Error(err))
		return req, false
	}
	if err := d.Validate.Struct(req); err != nil {
		return req, false
	}
	return req, true
}

// startSession issues a session for id and sets its cookie.
func startSession(c *fiber.Ctx, d *config.Dependencies, id models.Identity) error {
	s, err := d.Sessions.Start(c.UserContext(), id)
	if err != nil {
		return err
	}
	setSessionCookie(c, d.Cookie, s.Token, s.ExpiresAt)
	return nil
}

func Register(d *config.Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, ok := parseCredentials(c, d)
		if !ok {
			return badRequest(c, msgMissingCredentials)
		}

		id, err := d.Credentials.Register(c.UserContext(), req.Username, req.Password)
		if err != nil {
			logger.AuditLogger.Warn("Registration rejected", zap.String("username", req.Username), zap.Error(err))
			return fail(c, err)
		}

		if err := startSession(c, d, id); err != nil {
			return fail(c, err)
		}

		logger.AuditLogger.Info("User registered", zap.Int("user_id", id.ID))
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Registration successful, welcome to FocusFlow",
			"user":    id,
		})
	}
}

func Login(d *config.Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, ok := parseCredentials(c, d)
		if !ok {
			return badRequest(c, msgMissingCredentials)
		}

		id, err := d.Credentials.Authenticate(c.UserContext(), req.Username, req.Password)
		if err != nil {
			logger.SecurityLogger.Warn("Login failed",
				zap.String("username", req.Username),
				zap.String("ip", c.IP()),
			)
			return fail(c, err)
		}

		if err := startSession(c, d, id); err != nil {
			return fail(c, err)
		}

		logger.AuditLogger.Info("User logged in", zap.Int("user_id", id.ID))
		return c.JSON(fiber.Map{
			"success": true,
			"user":    id,
		})
	}
}

// Logout always succeeds; a missing or stale cookie is simply cleared.
func Logout(d *config.Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := d.Sessions.End(c.UserContext(), c.Cookies(d.Cookie.Name)); err != nil {
			logger.ErrorLogger.Error("Ending session failed", zap.Error(err))
		}
		clearSessionCookie(c, d.Cookie)

		return c.JSON(fiber.Map{"success": true})
	}
}

func Me(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fail(c, models.ErrUnauthenticated)
	}
	return c.JSON(id)
}
