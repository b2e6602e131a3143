package handlers

import (
	"github.com/gofiber/fiber/v2"

	"commerce/internal/domain"
	applog "commerce/internal/log"
	"commerce/internal/services"
	"commerce/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, "auth.register", domain.Validationf("malformed request body"))
	}
	if _, ok := validate.Username(in.Username); !ok {
		return writeError(c, "auth.register", domain.Validationf("invalid username"))
	}
	if _, ok := validate.Email(in.Email); !ok {
		return writeError(c, "auth.register", domain.Validationf("invalid email"))
	}

	u, err := h.Auth.Register(in)
	if err != nil {
		return writeError(c, "auth.register", err)
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID, "username": u.Username})
	return c.JSON(u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, "auth.login", domain.Validationf("malformed request body"))
	}
	token, u, err := h.Auth.Login(in.Username, in.Password)
	if err != nil {
		return writeError(c, "auth.login", err)
	}
	applog.Audit(c, "auth.login", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"token": token, "user": u})
}

// Validate is the endpoint the other services call to resolve a bearer
// credential to an identity.
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	identity, err := h.Auth.Validate(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return writeError(c, "auth.validate", err)
	}
	return c.JSON(identity)
}

func (h *AuthHandler) GetUser(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return writeError(c, "auth.user.get", domain.Validationf("invalid user id"))
	}
	u, err := h.Auth.GetUser(id)
	if err != nil {
		return writeError(c, "auth.user.get", err)
	}
	return c.JSON(u)
}
