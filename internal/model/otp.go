package model

import (
	"time"

	"github.com/google/uuid"
)

// OTPMaster stores issued one-time passwords. The delivery channel (SMS /
// WhatsApp) is an external collaborator; only the record lives here.
type OTPMaster struct {
	BaseModel
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"` // nil for pre-registration OTPs
	Phone      string     `gorm:"type:varchar(20);not null;index" json:"phone" validate:"required"`
	CodeHash   string     `gorm:"type:varchar(255);not null" json:"-"` // bcrypt of the 6-digit code
	Type       OTPType    `gorm:"type:varchar(20);not null" json:"type" validate:"required,oneof=login password_reset registration kyc"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expires_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	Attempts   int        `gorm:"default:0" json:"attempts"`
}

func (OTPMaster) TableName() string { return "otp_master" }

// Expired reports whether the OTP can no longer be verified.
func (o *OTPMaster) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
