package middleware

import (
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired must run after JWTProtected. It checks the freshly loaded
// user, so a demotion applies to tokens issued before it.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperror.Unauthorized("authentication required")
		}
		if !user.IsAdmin {
			return apperror.Forbidden("admin access required")
		}
		return c.Next()
	}
}
