package handler

import (
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/internal/service"
	"go-rewards-admin/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TicketHandler struct {
	ticketService service.TicketService
}

func NewTicketHandler(ticketService service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// Create opens a support ticket
// POST /api/v1/tickets
func (h *TicketHandler) Create(c *fiber.Ctx) error {
	var req service.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	req.Actor = actor(c)

	ticket, err := h.ticketService.Create(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(ticket)
}

// List returns tickets filtered by status, type and assignee
// GET /api/v1/tickets
func (h *TicketHandler) List(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	filter := repository.TicketFilter{
		StatusCode: c.Query("status"),
		TypeCode:   c.Query("type"),
		Limit:      limit,
		Offset:     offset,
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		adminID, err := uuid.Parse(assignee)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid assigned_to"})
		}
		filter.AssignedTo = &adminID
	}

	tickets, total, err := h.ticketService.List(filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"tickets": tickets, "total": total})
}

// Get returns one ticket
// GET /api/v1/tickets/:id
func (h *TicketHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ticket ID"})
	}

	ticket, err := h.ticketService.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ticket)
}

// AssignBody represents an assignment request body
type AssignBody struct {
	AdminID uuid.UUID `json:"admin_id"`
}

// Assign puts a ticket in progress under an admin
// POST /api/v1/tickets/:id/assign
func (h *TicketHandler) Assign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ticket ID"})
	}

	var body AssignBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if body.AdminID == uuid.Nil {
		// Default to self-assignment
		adminID, err := uuid.Parse(actor(c))
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		}
		body.AdminID = adminID
	}

	if err := h.ticketService.Assign(id, body.AdminID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ticket assigned"})
}

// ResolveBody represents a resolution request body
type ResolveBody struct {
	Notes string `json:"notes"`
}

// Resolve closes out an open/in-progress ticket with notes
// POST /api/v1/tickets/:id/resolve
func (h *TicketHandler) Resolve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ticket ID"})
	}
	adminID, err := uuid.Parse(actor(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var body ResolveBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.ticketService.Resolve(service.ResolveTicketRequest{
		TicketID: id,
		AdminID:  adminID,
		Notes:    body.Notes,
	}); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ticket resolved"})
}

// Close archives a resolved ticket
// POST /api/v1/tickets/:id/close
func (h *TicketHandler) Close(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ticket ID"})
	}
	adminID, err := uuid.Parse(actor(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := h.ticketService.Close(id, adminID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ticket closed"})
}
