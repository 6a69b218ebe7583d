package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionStatus for point transactions.
type TransactionStatus string

const (
	TxCompleted TransactionStatus = "completed"
	TxReversed  TransactionStatus = "reversed"
)

// EarningType is a lookup for how points were earned (scan, sale, referral
// bonus, campaign).
type EarningType struct {
	BaseModel
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name string `gorm:"type:varchar(100)" json:"name"`
}

func (EarningType) TableName() string { return "earning_types" }

// Default earning types seeded at startup.
var DefaultEarningTypes = []EarningType{
	{Code: "qr_scan", Name: "QR Code Scan"},
	{Code: "sale", Name: "Counter Sale"},
	{Code: "referral_bonus", Name: "Referral Bonus"},
	{Code: "campaign", Name: "Campaign Reward"},
	{Code: "adjustment", Name: "Manual Adjustment"},
}

// PointTransaction is a raw earn event. The former *_transactions /
// *_transaction_logs table pairs are collapsed into this single table plus an
// audit shadow written by the AfterCreate hook.
type PointTransaction struct {
	BaseModel
	UserID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id" validate:"uuid_required"`
	User            *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StakeholderType StakeholderType   `gorm:"type:varchar(20);not null;index" json:"stakeholder_type" validate:"required"`
	EarningTypeID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"earning_type_id" validate:"uuid_required"`
	EarningType     *EarningType      `gorm:"foreignKey:EarningTypeID" json:"earning_type,omitempty"`
	SKUVariantID    *uuid.UUID        `gorm:"type:uuid;index" json:"sku_variant_id,omitempty"`
	SKUVariant      *SKUVariant       `gorm:"foreignKey:SKUVariantID" json:"sku_variant,omitempty"`
	Points          int64             `gorm:"not null" json:"points" validate:"gt=0"`
	Status          TransactionStatus `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	SourceReference string            `gorm:"type:varchar(100);index" json:"source_reference"` // scanned QR code / invoice no
}

func (PointTransaction) TableName() string { return "point_transactions" }

// AfterCreate writes the audit shadow row in the same transaction, replacing
// the original duplicated second application write.
func (t *PointTransaction) AfterCreate(tx *gorm.DB) error {
	return tx.Create(&PointTransactionLog{
		TransactionID:   t.ID,
		UserID:          t.UserID,
		StakeholderType: t.StakeholderType,
		EarningTypeID:   t.EarningTypeID,
		Points:          t.Points,
		Status:          t.Status,
		SourceReference: t.SourceReference,
	}).Error
}

// PointTransactionLog is the append-only audit copy of a point transaction.
type PointTransactionLog struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"transaction_id"`
	UserID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	StakeholderType StakeholderType   `gorm:"type:varchar(20);not null" json:"stakeholder_type"`
	EarningTypeID   uuid.UUID         `gorm:"type:uuid;not null" json:"earning_type_id"`
	Points          int64             `gorm:"not null" json:"points"`
	Status          TransactionStatus `gorm:"type:varchar(20);not null" json:"status"`
	SourceReference string            `gorm:"type:varchar(100)" json:"source_reference"`
	CreatedAt       time.Time         `json:"created_at"`
}

func (PointTransactionLog) TableName() string { return "point_transaction_logs" }

func (l *PointTransactionLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// PointLedger is the append-only running-balance ledger. For a user ordered
// by creation, each row's opening balance equals the previous row's closing
// balance; opening + signed amount == closing. The ledger writer guarantees
// this transactionally with the profile row locked.
type PointLedger struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_user_time,priority:1" json:"user_id"`
	StakeholderType StakeholderType `gorm:"type:varchar(20);not null" json:"stakeholder_type"`
	EntryType       LedgerEntryType `gorm:"type:varchar(10);not null" json:"entry_type"`
	Amount          int64           `gorm:"not null" json:"amount"` // always positive; EntryType carries the sign
	OpeningBalance  int64           `gorm:"not null" json:"opening_balance"`
	ClosingBalance  int64           `gorm:"not null" json:"closing_balance"`
	ReferenceID     *uuid.UUID      `gorm:"type:uuid;index" json:"reference_id,omitempty"` // point transaction or redemption
	ReferenceKind   string          `gorm:"type:varchar(30)" json:"reference_kind"`        // "transaction", "redemption", "refund"
	Narration       string          `gorm:"type:varchar(255)" json:"narration"`
	CreatedAt       time.Time       `gorm:"index:idx_ledger_user_time,priority:2" json:"created_at"`
	CreatedBy       string          `json:"created_by"`
}

func (PointLedger) TableName() string { return "point_ledgers" }

func (l *PointLedger) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// SignedAmount returns the amount with the sign implied by the entry type.
func (l *PointLedger) SignedAmount() int64 {
	if l.EntryType == LedgerDebit {
		return -l.Amount
	}
	return l.Amount
}
