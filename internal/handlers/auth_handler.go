package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, resp, "Registration successful")
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, resp, "Login successful")
}

func (h *AuthHandler) Google(c *fiber.Ctx) error {
	var req dto.GoogleSignInRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.GoogleSignIn(c.UserContext(), req.IDToken)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, resp, "Google sign-in successful")
}

// Refresh takes the old token from the Authorization header. It is not
// behind JWTProtected because expired tokens are accepted here.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	fresh, err := h.authService.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}
	return respondOK(c, dto.TokenResponse{Token: fresh})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	resp, err := h.userService.GetProfile(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return respondOK(c, resp)
}

// Logout is client-side: tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return success(c, fiber.StatusOK, nil, "Logged out successfully")
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	resp, err := h.authService.VerifyToken(c.UserContext(), token)
	if err != nil {
		return err
	}
	return respondOK(c, resp)
}

func bearerToken(c *fiber.Ctx) (string, error) {
	token, found := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", apperror.Unauthorized("missing or malformed token")
	}
	return token, nil
}
