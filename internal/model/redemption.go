package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RewardKind is what a redemption pays out as.
type RewardKind string

const (
	RewardAmazonVoucher RewardKind = "amazon_voucher"
	RewardPhysical      RewardKind = "physical"
	RewardBankTransfer  RewardKind = "bank_transfer"
)

// RedemptionStatus is a lookup table, not an enum, to match the source
// schema. Codes mirror the approval state machine.
type RedemptionStatus struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name string `gorm:"type:varchar(100)" json:"name"`
}

func (RedemptionStatus) TableName() string { return "redemption_statuses" }

// Redemption status codes seeded at startup.
const (
	RedemptionPending   = "PENDING"
	RedemptionApproved  = "APPROVED"
	RedemptionRejected  = "REJECTED"
	RedemptionEscalated = "ESCALATED"
	RedemptionFulfilled = "FULFILLED"
)

var DefaultRedemptionStatuses = []RedemptionStatus{
	{Code: RedemptionPending, Name: "Pending Approval"},
	{Code: RedemptionApproved, Name: "Approved"},
	{Code: RedemptionRejected, Name: "Rejected"},
	{Code: RedemptionEscalated, Name: "Escalated"},
	{Code: RedemptionFulfilled, Name: "Fulfilled"},
}

// Redemption is a member's request to convert points into a reward. Points
// are debited from the ledger when the request is accepted; a rejection
// credits them back.
type Redemption struct {
	BaseModel
	UserID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id" validate:"uuid_required"`
	User            *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StakeholderType StakeholderType   `gorm:"type:varchar(20);not null" json:"stakeholder_type" validate:"required"`
	Points          int64             `gorm:"not null" json:"points" validate:"gt=0"`
	RewardKind      RewardKind        `gorm:"type:varchar(30);not null" json:"reward_kind" validate:"required,oneof=amazon_voucher physical bank_transfer"`
	MonetaryValue   decimal.Decimal   `gorm:"type:decimal(12,2);default:0" json:"monetary_value"`
	StatusID        uint              `gorm:"not null;index" json:"status_id"`
	Status          *RedemptionStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`

	PhysicalRewardID *uuid.UUID      `gorm:"type:uuid;index" json:"physical_reward_id,omitempty"`
	PhysicalReward   *PhysicalReward `gorm:"foreignKey:PhysicalRewardID" json:"physical_reward,omitempty"`

	Approval *RedemptionApproval `gorm:"foreignKey:RedemptionID" json:"approval,omitempty"`
}

func (Redemption) TableName() string { return "redemptions" }

// RedemptionApproval is the one-to-one approval record for a redemption. The
// unique index on RedemptionID is the backstop against double approval rows;
// conditional updates on ApprovalStatus are the guard against overwriting a
// terminal decision.
type RedemptionApproval struct {
	BaseModel
	RedemptionID    uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"redemption_id"`
	ApprovalStatus  ApprovalStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"approval_status"`
	ApprovalLevel   string         `gorm:"type:varchar(30)" json:"approval_level"` // e.g. FINANCE, ADMIN, AUTO
	ApprovedBy      *uuid.UUID     `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	RejectionReason string         `gorm:"type:text" json:"rejection_reason,omitempty"`
	EscalationNotes string         `gorm:"type:text" json:"escalation_notes,omitempty"`
}

func (RedemptionApproval) TableName() string { return "redemption_approvals" }

// ApprovalAuditLog records every approval-status transition. The latest row's
// NewStatus must match the approval's current status.
type ApprovalAuditLog struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	RedemptionID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"redemption_id"`
	PreviousStatus ApprovalStatus `gorm:"type:varchar(20)" json:"previous_status"`
	NewStatus      ApprovalStatus `gorm:"type:varchar(20);not null" json:"new_status"`
	PerformedBy    string         `gorm:"type:varchar(100);not null" json:"performed_by"`
	Notes          string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (ApprovalAuditLog) TableName() string { return "approval_audit_logs" }

func (l *ApprovalAuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// RedemptionThreshold decides whether a redemption of a given kind, for a
// given stakeholder type, needs a human approval and at which level.
// Redemptions strictly below ThresholdValue with RequiresApproval=false
// auto-approve.
type RedemptionThreshold struct {
	BaseModel
	ThresholdType    RewardKind      `gorm:"type:varchar(30);not null;uniqueIndex:uniq_threshold,priority:1" json:"threshold_type"`
	StakeholderType  StakeholderType `gorm:"type:varchar(20);not null;uniqueIndex:uniq_threshold,priority:2" json:"stakeholder_type"`
	ThresholdValue   int64           `gorm:"not null" json:"threshold_value"`
	RequiresApproval bool            `gorm:"not null;default:true" json:"requires_approval"`
	ApprovalLevel    string          `gorm:"type:varchar(30);not null;default:'FINANCE'" json:"approval_level"`
}

func (RedemptionThreshold) TableName() string { return "redemption_thresholds" }

// PhysicalReward is a catalogue item redeemable for points.
type PhysicalReward struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description string          `gorm:"type:text" json:"description"`
	PointsCost  int64           `gorm:"not null" json:"points_cost" validate:"gt=0"`
	Value       decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"value"`
	ImageURL    string          `gorm:"type:varchar(500)" json:"image_url"`
	StockCount  int             `gorm:"default:0" json:"stock_count"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
}

func (PhysicalReward) TableName() string { return "physical_rewards" }

// UserAmazonOrder holds externally ingested Amazon order data for voucher
// redemptions. OrderData is the opaque marketplace payload.
type UserAmazonOrder struct {
	BaseModel
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id" validate:"uuid_required"`
	RedemptionID  *uuid.UUID      `gorm:"type:uuid;index" json:"redemption_id,omitempty"`
	AmazonOrderID string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"amazon_order_id" validate:"required"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"amount"`
	OrderStatus   string          `gorm:"type:varchar(50)" json:"order_status"`
	OrderData     datatypes.JSON  `gorm:"type:jsonb" json:"order_data,omitempty"`
}

func (UserAmazonOrder) TableName() string { return "user_amazon_orders" }
