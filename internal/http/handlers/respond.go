package handlers

import (
	"github.com/gofiber/fiber/v2"

	"commerce/internal/domain"
	applog "commerce/internal/log"
)

// writeError maps the domain error taxonomy onto HTTP statuses and emits a
// JSON error body. Unclassified errors surface as 500 without leaking
// internals.
func writeError(c *fiber.Ctx, action string, err error) error {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case domain.KindConflict:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case domain.KindValidation:
		applog.Security(c, action+".reject", map[string]any{"error": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case domain.KindStateConflict:
		applog.Security(c, action+".reject", map[string]any{"error": err.Error()})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case domain.KindUnauthenticated:
		applog.Security(c, action+".unauthenticated", nil)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	default:
		applog.Error(c, action, err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
