// Package clients holds the synchronous HTTP clients one service uses to
// call another. Base URLs come from configuration; requests ride fiber's
// Agent so the services and their clients share one HTTP stack.
package clients

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"commerce/internal/domain"
)

const callTimeout = 5 * time.Second

// AuthClient consumes the identity verifier exposed by the auth service.
type AuthClient struct {
	BaseURL string
}

func NewAuthClient(baseURL string) *AuthClient { return &AuthClient{BaseURL: baseURL} }

// Validate forwards the bearer credential and returns the caller's
// identity, or an unauthenticated error when the auth service rejects it.
func (c *AuthClient) Validate(bearer string) (*domain.Identity, error) {
	agent := fiber.Get(c.BaseURL + "/api/auth/validate")
	agent.Set(fiber.HeaderAuthorization, bearer)
	agent.Timeout(callTimeout)

	var identity domain.Identity
	code, _, errs := agent.Struct(&identity)
	if len(errs) > 0 {
		return nil, fmt.Errorf("auth service call: %w", errs[0])
	}
	if code == fiber.StatusUnauthorized {
		return nil, domain.Unauthenticatedf("invalid or expired token")
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("auth service returned status %d", code)
	}
	return &identity, nil
}
