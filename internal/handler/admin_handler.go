package handler

import (
	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/service"
	"go-rewards-admin/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminHandler manages admin-panel user accounts.
type AdminHandler struct {
	userService service.UserService
}

func NewAdminHandler(userService service.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// Create adds an admin user with a role
// POST /api/v1/admins
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	var req service.CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	req.Actor = actor(c)

	user, err := h.userService.CreateAdmin(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(user.ToResponse())
}

// List returns all admin users
// GET /api/v1/admins
func (h *AdminHandler) List(c *fiber.Ctx) error {
	admins, err := h.userService.ListAdmins()
	if err != nil {
		return fail(c, err)
	}

	responses := make([]model.UserResponse, len(admins))
	for i, a := range admins {
		responses[i] = a.ToResponse()
	}
	return c.JSON(fiber.Map{"admins": responses})
}

// PrivilegesBody represents a privilege replacement request body
type PrivilegesBody struct {
	Codes []string `json:"codes"`
}

// SetPrivileges replaces an admin's privilege set and forces re-login
// PUT /api/v1/admins/:id/privileges
func (h *AdminHandler) SetPrivileges(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid admin ID"})
	}

	var body PrivilegesBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.userService.SetAdminPrivileges(id, body.Codes, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Privileges updated"})
}

// Deactivate disables an admin account and kills its session
// POST /api/v1/admins/:id/deactivate
func (h *AdminHandler) Deactivate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid admin ID"})
	}

	if err := h.userService.DeactivateAdmin(id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Admin deactivated"})
}
