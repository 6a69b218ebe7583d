package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-rewards-admin/pkg/apperr"
)

// fail maps service-layer errors onto HTTP statuses: missing things are 404,
// state-machine and race losses are 409, bad input is 422. Everything else is
// a 500 with the message passed through.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case apperr.IsNotFound(err):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case apperr.IsConflict(err):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case apperr.IsValidation(err):
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// actor returns the authenticated admin's id string, set by RequireAuth.
func actor(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}
