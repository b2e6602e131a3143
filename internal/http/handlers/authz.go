package handlers

import (
	"github.com/gofiber/fiber/v2"

	"commerce/internal/domain"
	applog "commerce/internal/log"
)

// IdentityVerifier validates a bearer credential. In the auth service this
// is the AuthService itself; in the other services it is the HTTP client
// calling the auth service's validate endpoint.
type IdentityVerifier interface {
	Validate(bearer string) (*domain.Identity, error)
}

// RequireUser rejects requests without a valid bearer token and attaches
// the verified identity to the request context.
func RequireUser(verifier IdentityVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bearer := c.Get(fiber.HeaderAuthorization)
		if bearer == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}
		identity, err := verifier.Validate(bearer)
		if err != nil || identity == nil {
			applog.Security(c, "auth.validate.fail", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}
		c.Locals("identity", identity)
		return c.Next()
	}
}

// CurrentIdentity returns the identity RequireUser attached, or nil.
func CurrentIdentity(c *fiber.Ctx) *domain.Identity {
	id, _ := c.Locals("identity").(*domain.Identity)
	return id
}
