package model

import (
	"time"

	"github.com/google/uuid"
)

// KYCDocument holds one identity document per (user, document type). A
// rejected document may be resubmitted in place (value overwritten, status
// reset to pending); a verified one is final.
type KYCDocument struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_kyc_user_doc,priority:1" json:"user_id" validate:"uuid_required"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DocumentType string    `gorm:"type:varchar(50);not null;uniqueIndex:uniq_kyc_user_doc,priority:2" json:"document_type" validate:"required"` // aadhaar, pan, gst, bank_proof

	DocumentValue string `gorm:"type:varchar(100);not null" json:"document_value" validate:"required"` // document number
	DocumentURL   string `gorm:"type:varchar(500)" json:"document_url"`                                // signed-URL storage key

	VerificationStatus KYCStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"verification_status"`
	RejectionReason    string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	VerifiedBy         *uuid.UUID `gorm:"type:uuid" json:"verified_by,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
}

func (KYCDocument) TableName() string { return "kyc_documents" }
