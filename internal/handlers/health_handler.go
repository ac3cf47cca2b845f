package handlers

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	env  string
	ping func() error
}

func NewHealthHandler(env string, ping func() error) *HealthHandler {
	return &HealthHandler{env: env, ping: ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status, dbStatus, code := "ok", "ok", fiber.StatusOK
	if err := h.ping(); err != nil {
		slog.Warn("health check: database unreachable", "error", err)
		status, dbStatus, code = "degraded", "unhealthy", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(dto.HealthResponse{
		Status:      status,
		Environment: h.env,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		DB:          dbStatus,
	})
}
