package handler

import (
	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest represents the reset password request body
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login handles admin authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	response, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		// Return 401 for authentication errors
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(response)
}

// ResetPassword handles password change
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Email == "" || req.OldPassword == "" || req.NewPassword == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email, old_password, and new_password are required"})
	}

	if len(req.NewPassword) < 8 {
		return c.Status(400).JSON(fiber.Map{"error": "New password must be at least 8 characters"})
	}

	if err := h.authService.ResetPassword(req.Email, req.OldPassword, req.NewPassword); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	userID := c.Locals("user_id")
	if userID == nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := uuid.Parse(userID.(string))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	if err := h.authService.Heartbeat(id); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update heartbeat"})
	}

	return c.JSON(fiber.Map{"message": "Heartbeat received", "status": "online"})
}

// OTPRequest represents the OTP issue/verify request body
type OTPRequest struct {
	Phone string `json:"phone"`
	Type  string `json:"type"`
	Code  string `json:"code,omitempty"`
}

// IssueOTP creates an OTP for a member phone
// POST /api/v1/auth/otp
func (h *AuthHandler) IssueOTP(c *fiber.Ctx) error {
	var req OTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Phone == "" || req.Type == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Phone and type are required"})
	}

	result, err := h.authService.IssueOTP(req.Phone, model.OTPType(req.Type))
	if err != nil {
		return fail(c, err)
	}

	// The plain code goes to the SMS gateway, never into the response
	return c.JSON(fiber.Map{"message": "OTP sent", "expires_at": result.ExpiresAt})
}

// VerifyOTP checks an OTP code
// POST /api/v1/auth/otp/verify
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req OTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Phone == "" || req.Type == "" || req.Code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Phone, type, and code are required"})
	}

	user, err := h.authService.VerifyOTP(req.Phone, model.OTPType(req.Type), req.Code)
	if err != nil {
		return fail(c, err)
	}

	resp := fiber.Map{"message": "OTP verified"}
	if user != nil {
		resp["user"] = user.ToResponse()
	}
	return c.JSON(resp)
}
