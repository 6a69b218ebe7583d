package handler

import (
	"go-rewards-admin/internal/service"
	"go-rewards-admin/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type KYCHandler struct {
	kycService service.KYCService
}

func NewKYCHandler(kycService service.KYCService) *KYCHandler {
	return &KYCHandler{kycService: kycService}
}

// Submit stores or resubmits a member's KYC document
// POST /api/v1/kyc/documents
func (h *KYCHandler) Submit(c *fiber.Ctx) error {
	var req service.SubmitDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	req.Actor = actor(c)

	doc, err := h.kycService.SubmitDocument(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(doc)
}

// Pending lists documents awaiting review, oldest first
// GET /api/v1/kyc/pending
func (h *KYCHandler) Pending(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	docs, total, err := h.kycService.PendingDocuments(limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"documents": docs, "total": total})
}

// ForUser lists a member's documents
// GET /api/v1/kyc/users/:userId
func (h *KYCHandler) ForUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	docs, err := h.kycService.DocumentsForUser(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"documents": docs})
}

// DecideBody represents a verify/reject request body
type DecideBody struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason,omitempty"`
}

// Decide records a verify/reject decision on a pending document
// POST /api/v1/kyc/documents/:id/decide
func (h *KYCHandler) Decide(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid document ID"})
	}
	adminID, err := uuid.Parse(actor(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var body DecideBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.kycService.SetDocumentStatus(service.DocumentDecisionRequest{
		DocumentID: id,
		AdminID:    adminID,
		Verified:   body.Verified,
		Reason:     body.Reason,
	}); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Document decision recorded"})
}
