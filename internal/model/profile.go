package model

import (
	"github.com/google/uuid"
)

// ProfileBalances carries the denormalized balance columns shared by all
// stakeholder profile tables. These are a materialized view over
// point_ledgers: the ledger writer updates them in the same transaction that
// inserts the ledger row, with the profile row locked.
type ProfileBalances struct {
	PointsBalance int64 `gorm:"not null;default:0" json:"points_balance"`
	TotalEarnings int64 `gorm:"not null;default:0" json:"total_earnings"`
	TotalRedeemed int64 `gorm:"not null;default:0" json:"total_redeemed"`
}

// RetailerProfile is the retailer-specific stakeholder row.
type RetailerProfile struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id" validate:"uuid_required"`
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProfileBalances

	ShopName    string `gorm:"type:varchar(255)" json:"shop_name"`
	GSTNumber   string `gorm:"type:varchar(30)" json:"gst_number"`
	CounterSize string `gorm:"type:varchar(30)" json:"counter_size"`
}

func (RetailerProfile) TableName() string { return "retailer_profiles" }

// ElectricianProfile is the electrician-specific stakeholder row.
type ElectricianProfile struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id" validate:"uuid_required"`
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProfileBalances

	LicenseNumber   string `gorm:"type:varchar(50)" json:"license_number"`
	YearsExperience int    `json:"years_experience"`
}

func (ElectricianProfile) TableName() string { return "electrician_profiles" }

// CounterSalesProfile is the counter-sales-agent stakeholder row.
type CounterSalesProfile struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id" validate:"uuid_required"`
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProfileBalances

	RetailerProfileID *uuid.UUID       `gorm:"type:uuid;index" json:"retailer_profile_id,omitempty"`
	RetailerProfile   *RetailerProfile `gorm:"foreignKey:RetailerProfileID" json:"retailer_profile,omitempty"`
	CounterName       string           `gorm:"type:varchar(255)" json:"counter_name"`
}

func (CounterSalesProfile) TableName() string { return "counter_sales_profiles" }
