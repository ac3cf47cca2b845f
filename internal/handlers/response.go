package handlers

import (
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func success(c *fiber.Ctx, status int, data interface{}, message string) error {
	return c.Status(status).JSON(dto.Response{Success: true, Data: data, Message: message})
}

func respondOK(c *fiber.Ctx, data interface{}) error {
	return success(c, fiber.StatusOK, data, "")
}

// parseBody decodes the JSON body into out and validates it.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	return validation.Struct(out)
}

func parseQuery(c *fiber.Ctx, out interface{}) error {
	if err := c.QueryParser(out); err != nil {
		return apperror.BadRequest("Invalid query parameters")
	}
	return validation.Struct(out)
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation(apperror.FieldError{Field: "id", Message: "must be a valid UUID"})
	}
	return id, nil
}
