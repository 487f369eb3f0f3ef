package handlers

import (
	"errors"
	"time"

	"focusflow/internal/config"
	"focusflow/internal/models"
	"focusflow/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// fail maps a service error onto the JSON error envelope. Sentinel errors are
// answered with their own text so wrapped driver detail does not leak.
func fail(c *fiber.Ctx, err error) error {
	for _, known := range []struct {
		err    error
		status int
	}{
		{models.ErrInvalidInput, fiber.StatusBadRequest},
		{models.ErrDuplicateUsername, fiber.StatusBadRequest},
		{models.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{models.ErrUnauthenticated, fiber.StatusUnauthorized},
	} {
		if errors.Is(err, known.err) {
			return c.Status(known.status).JSON(fiber.Map{"error": known.err.Error()})
		}
	}

	logger.ErrorLogger.Error("Store failure",
		zap.String("method", c.Method()),
		zap.String("url", c.OriginalURL()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func setSessionCookie(c *fiber.Ctx, cookie config.Cookie, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   cookie.Secure,
		SameSite: cookie.SameSite,
	})
}

func clearSessionCookie(c *fiber.Ctx, cookie config.Cookie) {
	c.Cookie(&fiber.Cookie{
		Name:     cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   cookie.Secure,
		SameSite: cookie.SameSite,
	})
}
