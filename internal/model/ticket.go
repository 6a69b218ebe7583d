package model

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus and TicketType are lookup tables matching the source schema.
type TicketStatus struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name string `gorm:"type:varchar(100)" json:"name"`
}

func (TicketStatus) TableName() string { return "ticket_statuses" }

const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"
)

var DefaultTicketStatuses = []TicketStatus{
	{Code: TicketOpen, Name: "Open"},
	{Code: TicketInProgress, Name: "In Progress"},
	{Code: TicketResolved, Name: "Resolved"},
	{Code: TicketClosed, Name: "Closed"},
}

type TicketType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name string `gorm:"type:varchar(100)" json:"name"`
}

func (TicketType) TableName() string { return "ticket_types" }

var DefaultTicketTypes = []TicketType{
	{Code: "points", Name: "Points Dispute"},
	{Code: "redemption", Name: "Redemption Issue"},
	{Code: "kyc", Name: "KYC Issue"},
	{Code: "app", Name: "App Problem"},
	{Code: "other", Name: "Other"},
}

// Ticket is a member support ticket. ResolvedAt/ResolutionNotes are populated
// once, on resolution; resolution is only allowed from open/in_progress.
type Ticket struct {
	BaseModel
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id" validate:"uuid_required"`
	User        *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TypeID      uint           `gorm:"not null;index" json:"type_id" validate:"required"`
	Type        *TicketType    `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	StatusID    uint           `gorm:"not null;index" json:"status_id"`
	Status      *TicketStatus  `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Priority    TicketPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Subject     string         `gorm:"type:varchar(255);not null" json:"subject" validate:"required"`
	Description string         `gorm:"type:text" json:"description"`

	AssignedTo *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	Assignee   *User      `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`

	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolutionNotes string     `gorm:"type:text" json:"resolution_notes,omitempty"`
}

func (Ticket) TableName() string { return "tickets" }

// AmazonTicket tracks issues against externally ingested Amazon orders.
type AmazonTicket struct {
	BaseModel
	TicketID      uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"ticket_id" validate:"uuid_required"`
	Ticket        *Ticket          `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
	AmazonOrderID *uuid.UUID       `gorm:"type:uuid;index" json:"amazon_order_id,omitempty"`
	AmazonOrder   *UserAmazonOrder `gorm:"foreignKey:AmazonOrderID" json:"amazon_order,omitempty"`
	IssueCode     string           `gorm:"type:varchar(50)" json:"issue_code"` // not_delivered, wrong_amount, cancelled
}

func (AmazonTicket) TableName() string { return "amazon_tickets" }
