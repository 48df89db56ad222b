package middleware

import (
	"github.com/dealflow/backend/pkg/logger"
	"github.com/dealflow/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
)

const currentUserIDKey = "currentUserID"

func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "http://localhost:3001,http://127.0.0.1:3001",
		AllowHeaders: "Origin, Content-Type, Accept, X-User-ID",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	})
}

// RequireIdentity reads the user id the auth gateway injects as X-User-ID.
// Token validation happens upstream; a request reaching this service
// without the header is a misrouted or unauthenticated one.
func RequireIdentity(c *fiber.Ctx) error {
	raw := c.Get("X-User-ID")
	if raw == "" {
		logger.Warn("identity_header_missing", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "missing identity header")
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("identity_header_invalid", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid identity header")
	}

	c.Locals(currentUserIDKey, userID)
	c.Locals("userID", userID.String())
	return c.Next()
}

// GetCurrentUserID returns the authenticated user id set by
// RequireIdentity, or uuid.Nil when the route skipped the middleware.
func GetCurrentUserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals(currentUserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
