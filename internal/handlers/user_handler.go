package handlers

import (
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	resp, err := h.userService.GetProfile(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return respondOK(c, resp)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.userService.UpdateProfile(c.UserContext(), middleware.CurrentUser(c), &req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, resp, "Profile updated")
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.userService.ChangePassword(c.UserContext(), middleware.CurrentUser(c), &req); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, nil, "Password updated")
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	resp, err := h.userService.GetPublic(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respondOK(c, resp)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	var q dto.ListUsersQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	resp, err := h.userService.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return respondOK(c, resp)
}

func (h *UserHandler) AdminUpdate(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.AdminUpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.userService.AdminUpdate(c.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, resp, "User updated")
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.userService.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, nil, "User deleted")
}

func (h *UserHandler) Promote(c *fiber.Ctx) error {
	return h.setAdmin(c, true, "User promoted to admin")
}

func (h *UserHandler) Demote(c *fiber.Ctx) error {
	return h.setAdmin(c, false, "User demoted")
}

func (h *UserHandler) setAdmin(c *fiber.Ctx, isAdmin bool, message string) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	resp, err := h.userService.SetAdmin(c.UserContext(), middleware.CurrentUser(c), id, isAdmin)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, resp, message)
}
