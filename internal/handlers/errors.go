package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/middleware"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

const internalMessage = "Internal server error"

// ErrorHandler is the terminal handler that turns every returned error into
// the failure envelope. Server errors are logged and sent to Sentry; their
// message is hidden from clients in production.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		resp := dto.ErrorResponse{
			Success: false,
			Error:   err.Error(),
			Code:    apperror.CodeInternal,
		}

		var fiberErr *fiber.Error
		if appErr, ok := apperror.As(err); ok {
			status = appErr.Status
			resp.Error = appErr.Message
			resp.Code = appErr.Code
			resp.Details = appErr.Details
		} else if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			resp.Error = fiberErr.Message
			resp.Code = apperror.CodeForStatus(fiberErr.Code)
		}

		if status >= fiber.StatusInternalServerError {
			attrs := []any{
				"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"error", err.Error(),
			}
			if user := middleware.CurrentUser(c); user != nil {
				attrs = append(attrs, "user_id", user.ID.String())
			}
			slog.Error("request failed", attrs...)

			if hub := sentryfiber.GetHubFromContext(c); hub != nil {
				hub.CaptureException(err)
			}
			if production {
				resp.Error = internalMessage
			}
		}

		return c.Status(status).JSON(resp)
	}
}
