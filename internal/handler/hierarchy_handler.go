package handler

import (
	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/service"
	"go-rewards-admin/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type HierarchyHandler struct {
	hierarchyService service.HierarchyService
}

func NewHierarchyHandler(hierarchyService service.HierarchyService) *HierarchyHandler {
	return &HierarchyHandler{hierarchyService: hierarchyService}
}

func hierarchyKind(c *fiber.Ctx) (model.HierarchyKind, bool) {
	kind := model.HierarchyKind(c.Params("kind"))
	return kind, kind.IsValid()
}

// AtLevel lists all nodes of a tree at a given depth
// GET /api/v1/hierarchies/:kind/levels/:levelNumber/nodes?client_id=...
func (h *HierarchyHandler) AtLevel(c *fiber.Ctx) error {
	kind, ok := hierarchyKind(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown hierarchy kind"})
	}
	levelNumber, err := c.ParamsInt("levelNumber")
	if err != nil || levelNumber < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid level number"})
	}
	clientID, err := uuid.Parse(c.Query("client_id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "client_id is required"})
	}

	nodes, err := h.hierarchyService.AtLevel(kind, clientID, levelNumber)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"nodes": nodes})
}

// Children lists a node's direct children
// GET /api/v1/hierarchies/:kind/nodes/:id/children
func (h *HierarchyHandler) Children(c *fiber.Ctx) error {
	kind, ok := hierarchyKind(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown hierarchy kind"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid node ID"})
	}

	nodes, err := h.hierarchyService.Children(kind, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"nodes": nodes})
}

// Ancestors returns the chain from a node's parent to the root
// GET /api/v1/hierarchies/:kind/nodes/:id/ancestors
func (h *HierarchyHandler) Ancestors(c *fiber.Ctx) error {
	kind, ok := hierarchyKind(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown hierarchy kind"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid node ID"})
	}

	nodes, err := h.hierarchyService.Ancestors(kind, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"nodes": nodes})
}

// Descendants returns the subtree below a node
// GET /api/v1/hierarchies/:kind/nodes/:id/descendants
func (h *HierarchyHandler) Descendants(c *fiber.Ctx) error {
	kind, ok := hierarchyKind(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown hierarchy kind"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid node ID"})
	}

	nodes, err := h.hierarchyService.Descendants(kind, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"nodes": nodes})
}

// CreateLevel adds a named depth to a tree
// POST /api/v1/hierarchies/:kind/levels
func (h *HierarchyHandler) CreateLevel(c *fiber.Ctx) error {
	kind, ok := hierarchyKind(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown hierarchy kind"})
	}

	var req service.CreateLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	req.Kind = kind
	req.Actor = actor(c)
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}

	id, err := h.hierarchyService.CreateLevel(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"id": id})
}

// CreateNode adds a node to a tree
// POST /api/v1/hierarchies/:kind/nodes
func (h *HierarchyHandler) CreateNode(c *fiber.Ctx) error {
	kind, ok := hierarchyKind(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown hierarchy kind"})
	}

	var req service.CreateNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	req.Kind = kind
	req.Actor = actor(c)
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}

	node, err := h.hierarchyService.CreateNode(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(node)
}

// ReparentBody represents a reparent request body
type ReparentBody struct {
	NewParentID *uuid.UUID `json:"new_parent_id"`
}

// Reparent moves a node under a new parent
// PATCH /api/v1/hierarchies/:kind/nodes/:id/parent
func (h *HierarchyHandler) Reparent(c *fiber.Ctx) error {
	kind, ok := hierarchyKind(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown hierarchy kind"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid node ID"})
	}

	var body ReparentBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.hierarchyService.Reparent(kind, id, body.NewParentID, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Node reparented"})
}
