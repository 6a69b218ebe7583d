package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records an admin mutation against any entity.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ActorID    string         `gorm:"type:varchar(100);index" json:"actor_id"`
	EntityName string         `gorm:"type:varchar(50);index" json:"entity_name"`
	EntityID   string         `gorm:"type:varchar(100);index" json:"entity_id"`
	Action     string         `gorm:"type:varchar(50)" json:"action"` // create, update, approve, reject, ...
	Detail     datatypes.JSON `gorm:"type:jsonb" json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// SystemLog captures backend events worth persisting beyond process logs.
type SystemLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Level     string         `gorm:"type:varchar(10);index" json:"level"`
	Source    string         `gorm:"type:varchar(100)" json:"source"`
	Message   string         `gorm:"type:text" json:"message"`
	Context   datatypes.JSON `gorm:"type:jsonb" json:"context,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (SystemLog) TableName() string { return "system_logs" }

func (l *SystemLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Notification is an in-app message for a member or admin. The websocket hub
// additionally pushes these to connected admin clients.
type Notification struct {
	BaseModel
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"` // nil = broadcast
	Title  string     `gorm:"type:varchar(255);not null" json:"title"`
	Body   string     `gorm:"type:text" json:"body"`
	Kind   string     `gorm:"type:varchar(50);index" json:"kind"` // redemption_update, ticket_update, kyc_update
	IsRead bool       `gorm:"default:false;index" json:"is_read"`
}

func (Notification) TableName() string { return "notifications" }
