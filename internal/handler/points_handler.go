package handler

import (
	"go-rewards-admin/internal/service"
	"go-rewards-admin/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PointsHandler struct {
	pointsService service.PointsService
}

func NewPointsHandler(pointsService service.PointsService) *PointsHandler {
	return &PointsHandler{pointsService: pointsService}
}

// RecordEarning records a scan/sale earn event and credits the ledger
// POST /api/v1/points/earn
func (h *PointsHandler) RecordEarning(c *fiber.Ctx) error {
	var req service.EarnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	req.Actor = actor(c)

	txn, entry, err := h.pointsService.RecordEarning(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"transaction": txn, "ledger_entry": entry})
}

// Adjust posts a manual credit or debit against a member
// POST /api/v1/points/adjust
func (h *PointsHandler) Adjust(c *fiber.Ctx) error {
	var req service.AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	req.Actor = actor(c)

	entry, err := h.pointsService.AdjustPoints(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(entry)
}

// Balance returns a member's current point balances
// GET /api/v1/points/:userId/balance
func (h *PointsHandler) Balance(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	row, err := h.pointsService.Balance(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(row)
}

// Ledger returns a member's ledger rows, newest first
// GET /api/v1/points/:userId/ledger
func (h *PointsHandler) Ledger(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	limit, offset := parsePagination(c)
	entries, total, err := h.pointsService.Ledger(userID, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries, "total": total})
}

// Transactions returns a member's earn events
// GET /api/v1/points/:userId/transactions
func (h *PointsHandler) Transactions(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	limit, offset := parsePagination(c)
	txns, err := h.pointsService.Transactions(userID, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txns})
}
