package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SKUEntity is a node of the product hierarchy (see hierarchy.go). Leaf nodes
// carry variants that are physically scanned/sold.
type SKUEntity struct {
	BaseModel
	ClientID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"client_id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Code           string          `gorm:"type:varchar(50);index" json:"code"`
	LevelID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"level_id" validate:"uuid_required"`
	Level          *SKULevelMaster `gorm:"foreignKey:LevelID" json:"level,omitempty"`
	ParentEntityID *uuid.UUID      `gorm:"type:uuid;index" json:"parent_entity_id,omitempty"`
	ParentEntity   *SKUEntity      `gorm:"foreignKey:ParentEntityID" json:"parent_entity,omitempty"`

	Variants []SKUVariant `gorm:"foreignKey:SKUEntityID" json:"variants,omitempty"`
}

func (SKUEntity) TableName() string { return "sku_entities" }

// SKUVariant is a sellable/scannable unit of a SKU.
type SKUVariant struct {
	BaseModel
	SKUEntityID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"sku_entity_id" validate:"uuid_required"`
	SKUEntity     *SKUEntity      `gorm:"foreignKey:SKUEntityID" json:"sku_entity,omitempty"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	VariantCode   string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"variant_code" validate:"required"`
	InventoryType InventoryType   `gorm:"type:varchar(10);not null;default:'inner'" json:"inventory_type" validate:"omitempty,oneof=inner outer"`
	UnitsPerPack  int             `gorm:"default:1" json:"units_per_pack"`
	MRP           decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"mrp"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
}

func (SKUVariant) TableName() string { return "sku_variants" }

// SKUPointConfig defines how many points a scan/sale of a variant earns for a
// given stakeholder type. The latest effective config wins.
type SKUPointConfig struct {
	BaseModel
	SKUVariantID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_point_config_lookup,priority:1" json:"sku_variant_id" validate:"uuid_required"`
	SKUVariant      *SKUVariant     `gorm:"foreignKey:SKUVariantID" json:"sku_variant,omitempty"`
	StakeholderType StakeholderType `gorm:"type:varchar(20);not null;index:idx_point_config_lookup,priority:2" json:"stakeholder_type" validate:"required"`
	Points          int64           `gorm:"not null" json:"points" validate:"gt=0"`
	EffectiveFrom   time.Time       `gorm:"not null;index" json:"effective_from"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
}

func (SKUPointConfig) TableName() string { return "sku_point_configs" }

// ParticipantSKUAccess restricts which SKU subtrees a member may earn on.
// Absence of rows for a user means unrestricted access.
type ParticipantSKUAccess struct {
	BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uniq_participant_sku,priority:1" json:"user_id" validate:"uuid_required"`
	SKUEntityID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uniq_participant_sku,priority:2" json:"sku_entity_id" validate:"uuid_required"`
	SKUEntity   *SKUEntity `gorm:"foreignKey:SKUEntityID" json:"sku_entity,omitempty"`
}

func (ParticipantSKUAccess) TableName() string { return "participant_sku_access" }
