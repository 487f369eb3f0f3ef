package middleware

import (
	"focusflow/internal/models"
	"focusflow/internal/session"
	"focusflow/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IdentityKey is the Locals key holding the caller's models.Identity.
const IdentityKey = "identity"

// RequireSession rejects requests whose session cookie does not resolve to a
// live session.
func RequireSession(sessions *session.Manager, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := sessions.Current(c.UserContext(), c.Cookies(cookieName))
		if !ok {
			logger.SecurityLogger.Info("Unauthenticated request",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": models.ErrUnauthenticated.Error()})
		}

		c.Locals(IdentityKey, id)
		return c.Next()
	}
}

// CurrentIdentity returns the identity RequireSession stored on the request.
func CurrentIdentity(c *fiber.Ctx) (models.Identity, bool) {
	id, ok := c.Locals(IdentityKey).(models.Identity)
	return id, ok
}
