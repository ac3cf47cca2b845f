package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/repository"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Locals key holding the *models.User resolved from the bearer token.
const userKey = "currentUser"

// JWTProtected rejects requests without a valid bearer token and loads the
// user it names. Admin checks downstream rely on the loaded user, not on the
// token's claims.
func JWTProtected(tokens *services.TokenService, users repository.UserRepository) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc:        tokens.KeyFunc,
		Claims:         &services.Claims{},
		SuccessHandler: loadUser(users, true),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return apperror.Unauthorized("missing or malformed token")
			}
			return apperror.Unauthorized("invalid or expired token")
		},
	})
}

// OptionalAuth loads the caller when a valid token is present and lets the
// request through anonymously otherwise.
func OptionalAuth(tokens *services.TokenService, users repository.UserRepository) fiber.Handler {
	return jwtware.New(jwtware.Config{
		Filter: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) == ""
		},
		KeyFunc:        tokens.KeyFunc,
		Claims:         &services.Claims{},
		SuccessHandler: loadUser(users, false),
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Next()
		},
	})
}

func loadUser(users repository.UserRepository, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := tokenSubject(c)
		if err != nil {
			if required {
				return apperror.Unauthorized("invalid token subject")
			}
			return c.Next()
		}

		user, err := users.FindByID(c.UserContext(), id)
		switch {
		case err == nil:
			c.Locals(userKey, user)
		case errors.Is(err, repository.ErrNotFound):
			if required {
				return apperror.Unauthorized("user no longer exists")
			}
		default:
			return apperror.Internal("failed to load user", err)
		}
		return c.Next()
	}
}

func tokenSubject(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, errors.New("no token in context")
	}
	claims, ok := token.Claims.(*services.Claims)
	if !ok {
		return uuid.Nil, errors.New("unexpected claims type")
	}
	return claims.UserID()
}

// CurrentUser returns the authenticated user, or nil on anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
