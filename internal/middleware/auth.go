package middleware

import (
	"context"
	"strings"

	"agora/internal/auth"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier is the part of auth.TokenManager the middleware needs.
type TokenVerifier interface {
	Parse(ctx context.Context, tokenString string, expected auth.TokenType) (*auth.Claims, error)
}

// AuthRequired is a middleware that enforces authentication for protected routes.
// The principal id is stored in c.Locals("userID") and in the user context.
func AuthRequired(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := tokens.Parse(c.UserContext(), tokenString, auth.TokenAccess)
		if err != nil {
			return models.RespondWithError(c, models.HTTPStatus(err), err)
		}

		setPrincipal(c, claims.UserID)
		return c.Next()
	}
}

// OptionalAuth records the principal when a valid access token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := tokens.Parse(c.UserContext(), tokenString, auth.TokenAccess); err == nil {
				setPrincipal(c, claims.UserID)
			}
		}
		return c.Next()
	}
}

// Principal returns the authenticated user id, if any.
func Principal(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok && uid != 0
}

func setPrincipal(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(WithUserID(c.UserContext(), userID))
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
