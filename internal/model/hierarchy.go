package model

import (
	"github.com/google/uuid"
)

// The three master hierarchies (location, SKU, user-type) share the same
// shape: a level master defining named depths and an entity table forming a
// tree per client via a nullable self-referencing parent. Cycle and
// level-depth rules are not expressible as constraints here; the hierarchy
// service validates them inside the writing transaction.

// HierarchyKind selects which tree a resolver call operates on.
type HierarchyKind string

const (
	HierarchyLocation HierarchyKind = "location"
	HierarchySKU      HierarchyKind = "sku"
	HierarchyUserType HierarchyKind = "user_type"
)

// EntityTable returns the entity table backing this hierarchy.
func (k HierarchyKind) EntityTable() string {
	switch k {
	case HierarchyLocation:
		return "location_entities"
	case HierarchySKU:
		return "sku_entities"
	default:
		return "user_type_entities"
	}
}

// LevelTable returns the level-master table backing this hierarchy.
func (k HierarchyKind) LevelTable() string {
	switch k {
	case HierarchyLocation:
		return "location_level_masters"
	case HierarchySKU:
		return "sku_level_masters"
	default:
		return "user_type_level_masters"
	}
}

func (k HierarchyKind) IsValid() bool {
	return k == HierarchyLocation || k == HierarchySKU || k == HierarchyUserType
}

// TreeNode is the generic row shape the hierarchy resolver works with. All
// entity tables project onto it: {id, parent, level number, name}.
type TreeNode struct {
	ID             uuid.UUID  `json:"id"`
	ClientID       uuid.UUID  `json:"client_id"`
	Name           string     `json:"name"`
	LevelID        uuid.UUID  `json:"level_id"`
	LevelNumber    int        `json:"level_number"`
	ParentEntityID *uuid.UUID `json:"parent_entity_id,omitempty"`
}

// LocationLevelMaster names the depths of the geography tree (e.g. zone,
// state, district, city).
type LocationLevelMaster struct {
	BaseModel
	ClientID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"client_id"`
	Name          string     `gorm:"type:varchar(100);not null" json:"name" validate:"required"`
	LevelNumber   int        `gorm:"not null;index" json:"level_number" validate:"gt=0"`
	ParentLevelID *uuid.UUID `gorm:"type:uuid;index" json:"parent_level_id,omitempty"`
}

func (LocationLevelMaster) TableName() string { return "location_level_masters" }

// LocationEntity is a node of the geography tree.
type LocationEntity struct {
	BaseModel
	ClientID       uuid.UUID            `gorm:"type:uuid;index;not null" json:"client_id"`
	Name           string               `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Code           string               `gorm:"type:varchar(50);index" json:"code"`
	LevelID        uuid.UUID            `gorm:"type:uuid;not null;index" json:"level_id" validate:"uuid_required"`
	Level          *LocationLevelMaster `gorm:"foreignKey:LevelID" json:"level,omitempty"`
	ParentEntityID *uuid.UUID           `gorm:"type:uuid;index" json:"parent_entity_id,omitempty"`
	ParentEntity   *LocationEntity      `gorm:"foreignKey:ParentEntityID" json:"parent_entity,omitempty"`
}

func (LocationEntity) TableName() string { return "location_entities" }

// SKULevelMaster names the depths of the product tree (e.g. category, brand,
// range, item). Replaces the fixed skuLevel1..6 design with arbitrary depth.
type SKULevelMaster struct {
	BaseModel
	ClientID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"client_id"`
	Name          string     `gorm:"type:varchar(100);not null" json:"name" validate:"required"`
	LevelNumber   int        `gorm:"not null;index" json:"level_number" validate:"gt=0"`
	ParentLevelID *uuid.UUID `gorm:"type:uuid;index" json:"parent_level_id,omitempty"`
}

func (SKULevelMaster) TableName() string { return "sku_level_masters" }

// UserTypeLevelMaster names the depths of the stakeholder-type tree.
type UserTypeLevelMaster struct {
	BaseModel
	ClientID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"client_id"`
	Name          string     `gorm:"type:varchar(100);not null" json:"name" validate:"required"`
	LevelNumber   int        `gorm:"not null;index" json:"level_number" validate:"gt=0"`
	ParentLevelID *uuid.UUID `gorm:"type:uuid;index" json:"parent_level_id,omitempty"`
}

func (UserTypeLevelMaster) TableName() string { return "user_type_level_masters" }

// UserTypeEntity is a node of the stakeholder-type tree (e.g. distributor >
// dealer > retailer).
type UserTypeEntity struct {
	BaseModel
	ClientID       uuid.UUID            `gorm:"type:uuid;index;not null" json:"client_id"`
	Name           string               `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Code           string               `gorm:"type:varchar(50);index" json:"code"`
	LevelID        uuid.UUID            `gorm:"type:uuid;not null;index" json:"level_id" validate:"uuid_required"`
	Level          *UserTypeLevelMaster `gorm:"foreignKey:LevelID" json:"level,omitempty"`
	ParentEntityID *uuid.UUID           `gorm:"type:uuid;index" json:"parent_entity_id,omitempty"`
	ParentEntity   *UserTypeEntity      `gorm:"foreignKey:ParentEntityID" json:"parent_entity,omitempty"`
}

func (UserTypeEntity) TableName() string { return "user_type_entities" }
