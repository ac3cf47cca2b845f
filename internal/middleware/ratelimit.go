package middleware

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit allows max requests per client IP in each window. Limiters
// sharing a storage are kept apart by name. A nil storage keeps counters in
// process memory.
func RateLimit(name string, max int, window time.Duration, storage fiber.Storage, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return name + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return apperror.New(fiber.StatusTooManyRequests, apperror.CodeRateLimited, message)
		},
	})
}
