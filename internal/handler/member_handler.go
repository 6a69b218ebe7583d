package handler

import (
	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/internal/service"
	"go-rewards-admin/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MemberHandler struct {
	userService service.UserService
}

func NewMemberHandler(userService service.UserService) *MemberHandler {
	return &MemberHandler{userService: userService}
}

// Register creates a program member with their stakeholder profile
// POST /api/v1/members
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	req.Actor = actor(c)

	user, err := h.userService.RegisterMember(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(user.ToResponse())
}

// List returns members filtered by type, status and search text
// GET /api/v1/members
func (h *MemberHandler) List(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	filter := repository.MemberFilter{
		StakeholderType: model.StakeholderType(c.Query("stakeholder_type")),
		ApprovalStatus:  model.BlockStatus(c.Query("status")),
		Search:          c.Query("search"),
		Limit:           limit,
		Offset:          offset,
	}

	members, total, err := h.userService.ListMembers(filter)
	if err != nil {
		return fail(c, err)
	}

	responses := make([]model.UserResponse, len(members))
	for i, m := range members {
		responses[i] = m.ToResponse()
	}
	return c.JSON(fiber.Map{"members": responses, "total": total})
}

// Get returns one member
// GET /api/v1/members/:id
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid member ID"})
	}

	user, err := h.userService.GetMember(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user.ToResponse())
}

// StatusRequest represents a block-status transition request body
type StatusRequest struct {
	Status string `json:"status"`
}

// SetStatus moves a member along the approval/block state machine
// PATCH /api/v1/members/:id/status
func (h *MemberHandler) SetStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid member ID"})
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Status == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Status is required"})
	}

	if err := h.userService.TransitionBlockStatus(id, model.BlockStatus(req.Status), actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Status updated", "status": req.Status})
}

// ReferrerRequest represents a referrer change request body
type ReferrerRequest struct {
	ReferrerID *uuid.UUID `json:"referrer_id"`
}

// SetReferrer rewires a member's referrer, keeping the forest acyclic
// PATCH /api/v1/members/:id/referrer
func (h *MemberHandler) SetReferrer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid member ID"})
	}

	var req ReferrerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.userService.ChangeReferrer(id, req.ReferrerID, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Referrer updated"})
}

// AssignScope binds a member to location/SKU/user-type tree slices
// POST /api/v1/members/:id/scopes
func (h *MemberHandler) AssignScope(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid member ID"})
	}

	var req service.AssignScopeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	req.UserID = id
	req.Actor = actor(c)

	mapping, err := h.userService.AssignScope(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(mapping)
}

// Scopes lists a member's scope mappings
// GET /api/v1/members/:id/scopes
func (h *MemberHandler) Scopes(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid member ID"})
	}

	scopes, err := h.userService.ScopesForUser(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"scopes": scopes})
}
