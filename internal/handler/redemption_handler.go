package handler

import (
	"encoding/json"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/internal/service"
	"go-rewards-admin/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RedemptionHandler struct {
	redemptionService service.RedemptionService
}

func NewRedemptionHandler(redemptionService service.RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{redemptionService: redemptionService}
}

// Submit opens a redemption request, debiting the member's points
// POST /api/v1/redemptions
func (h *RedemptionHandler) Submit(c *fiber.Ctx) error {
	var req service.SubmitRedemptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	req.Actor = actor(c)

	red, err := h.redemptionService.Submit(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(red)
}

// List returns redemptions for the finance screens
// GET /api/v1/redemptions
func (h *RedemptionHandler) List(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	filter := repository.RedemptionFilter{
		StatusCode:      c.Query("status"),
		StakeholderType: model.StakeholderType(c.Query("stakeholder_type")),
		Limit:           limit,
		Offset:          offset,
	}
	if userParam := c.Query("user_id"); userParam != "" {
		userID, err := uuid.Parse(userParam)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid user_id"})
		}
		filter.UserID = &userID
	}

	reds, total, err := h.redemptionService.List(filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"redemptions": reds, "total": total})
}

// Get returns one redemption with its approval record
// GET /api/v1/redemptions/:id
func (h *RedemptionHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid redemption ID"})
	}

	red, err := h.redemptionService.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(red)
}

// DecisionBody represents an approve/reject/escalate request body
type DecisionBody struct {
	Notes string `json:"notes"`
}

func (h *RedemptionHandler) decisionRequest(c *fiber.Ctx) (service.DecisionRequest, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return service.DecisionRequest{}, err
	}
	adminID, err := uuid.Parse(actor(c))
	if err != nil {
		return service.DecisionRequest{}, err
	}

	var body DecisionBody
	_ = c.BodyParser(&body) // notes are optional

	return service.DecisionRequest{
		RedemptionID: id,
		AdminID:      adminID,
		Notes:        body.Notes,
	}, nil
}

// Approve records an approval decision
// POST /api/v1/redemptions/:id/approve
func (h *RedemptionHandler) Approve(c *fiber.Ctx) error {
	req, err := h.decisionRequest(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ID"})
	}
	if err := h.redemptionService.Approve(req); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Redemption approved"})
}

// Reject records a rejection and refunds the member's points
// POST /api/v1/redemptions/:id/reject
func (h *RedemptionHandler) Reject(c *fiber.Ctx) error {
	req, err := h.decisionRequest(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ID"})
	}
	if req.Notes == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Rejection notes are required"})
	}
	if err := h.redemptionService.Reject(req); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Redemption rejected and points refunded"})
}

// Escalate pushes a pending redemption up an approval level
// POST /api/v1/redemptions/:id/escalate
func (h *RedemptionHandler) Escalate(c *fiber.Ctx) error {
	req, err := h.decisionRequest(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ID"})
	}
	if err := h.redemptionService.Escalate(req); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Redemption escalated"})
}

// FulfillBody represents the fulfilment request body. OrderData carries the
// raw marketplace order payload and is stored verbatim.
type FulfillBody struct {
	AmazonOrderID string          `json:"amazon_order_id"`
	OrderStatus   string          `json:"order_status"`
	OrderData     json.RawMessage `json:"order_data"`
}

// Fulfill closes out an approved redemption
// POST /api/v1/redemptions/:id/fulfill
func (h *RedemptionHandler) Fulfill(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid redemption ID"})
	}
	adminID, err := uuid.Parse(actor(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var body FulfillBody
	_ = c.BodyParser(&body)

	if err := h.redemptionService.Fulfill(service.FulfillRequest{
		RedemptionID:  id,
		AdminID:       adminID,
		AmazonOrderID: body.AmazonOrderID,
		OrderStatus:   body.OrderStatus,
		OrderData:     datatypes.JSON(body.OrderData),
	}); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Redemption fulfilled"})
}

// AuditTrail returns every approval transition of a redemption
// GET /api/v1/redemptions/:id/audit
func (h *RedemptionHandler) AuditTrail(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid redemption ID"})
	}

	logs, err := h.redemptionService.AuditTrail(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"audit_logs": logs})
}

// SetThreshold upserts an approval threshold for a reward kind and
// stakeholder type
// PUT /api/v1/redemptions/thresholds
func (h *RedemptionHandler) SetThreshold(c *fiber.Ctx) error {
	var t model.RedemptionThreshold
	if err := c.BodyParser(&t); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.redemptionService.SetThreshold(&t); err != nil {
		return fail(c, err)
	}
	return c.JSON(t)
}

// ListRewards returns the physical reward catalogue
// GET /api/v1/redemptions/rewards
func (h *RedemptionHandler) ListRewards(c *fiber.Ctx) error {
	rewards, err := h.redemptionService.ListPhysicalRewards(c.QueryBool("active_only", true))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"rewards": rewards})
}

// SaveReward creates or updates a physical reward
// PUT /api/v1/redemptions/rewards
func (h *RedemptionHandler) SaveReward(c *fiber.Ctx) error {
	var rw model.PhysicalReward
	if err := c.BodyParser(&rw); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(rw); errs != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}

	if err := h.redemptionService.SavePhysicalReward(&rw); err != nil {
		return fail(c, err)
	}
	return c.JSON(rw)
}

// AmazonOrders lists a member's ingested Amazon orders
// GET /api/v1/redemptions/amazon-orders/:userId
func (h *RedemptionHandler) AmazonOrders(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	orders, err := h.redemptionService.AmazonOrdersForUser(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}
