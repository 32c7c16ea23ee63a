package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/neverbeen/internal/pkg/logging"
)

// RequestContextMiddleware puts the request ID assigned by the requestid
// middleware on the user context. Handlers pass that context down to the
// services, and the logging handler stamps request_id on every record
// logged with it.
func RequestContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			c.SetUserContext(logging.WithRequestID(c.UserContext(), rid))
		}
		return c.Next()
	}
}
