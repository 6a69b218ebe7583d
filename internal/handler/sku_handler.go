package handler

import (
	"go-rewards-admin/internal/service"
	"go-rewards-admin/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SKUHandler struct {
	skuService service.SKUService
}

func NewSKUHandler(skuService service.SKUService) *SKUHandler {
	return &SKUHandler{skuService: skuService}
}

// CreateVariant adds a scannable variant under a SKU node
// POST /api/v1/skus/variants
func (h *SKUHandler) CreateVariant(c *fiber.Ctx) error {
	var req service.CreateVariantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	req.Actor = actor(c)

	v, err := h.skuService.CreateVariant(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(v)
}

// Variants lists variants under a SKU node
// GET /api/v1/skus/:entityId/variants
func (h *SKUHandler) Variants(c *fiber.Ctx) error {
	entityID, err := uuid.Parse(c.Params("entityId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid SKU entity ID"})
	}

	variants, err := h.skuService.VariantsForEntity(entityID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"variants": variants})
}

// SetPointConfig appends a point configuration for a variant
// POST /api/v1/skus/point-configs
func (h *SKUHandler) SetPointConfig(c *fiber.Ctx) error {
	var req service.PointConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	req.Actor = actor(c)

	cfg, err := h.skuService.SetPointConfig(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(cfg)
}

// AccessBody represents a participant access grant request body
type AccessBody struct {
	UserID      uuid.UUID `json:"user_id"`
	SKUEntityID uuid.UUID `json:"sku_entity_id"`
}

// GrantAccess restricts a member to a SKU subtree
// POST /api/v1/skus/access
func (h *SKUHandler) GrantAccess(c *fiber.Ctx) error {
	var body AccessBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if body.UserID == uuid.Nil || body.SKUEntityID == uuid.Nil {
		return c.Status(400).JSON(fiber.Map{"error": "user_id and sku_entity_id are required"})
	}

	if err := h.skuService.GrantAccess(body.UserID, body.SKUEntityID, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Access granted"})
}
