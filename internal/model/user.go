package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User covers both program members (retailers, electricians, counter-sales
// agents) and admin-panel users. Members authenticate via OTP; admins carry a
// bcrypt password plus role/privileges.
type User struct {
	BaseModel
	Phone    string  `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone" validate:"required"`
	Email    *string `gorm:"type:varchar(255);index:uniq_users_email,unique,where:email IS NOT NULL" json:"email,omitempty" validate:"omitempty,email"`
	Password string  `gorm:"type:varchar(255)" json:"-"` // empty for OTP-only members
	FullName string  `gorm:"type:varchar(255)" json:"full_name" validate:"required"`

	// Member classification: node in the user-type hierarchy.
	UserTypeEntityID *uuid.UUID      `gorm:"type:uuid;index" json:"user_type_entity_id"`
	UserTypeEntity   *UserTypeEntity `gorm:"foreignKey:UserTypeEntityID" json:"user_type_entity,omitempty"`
	StakeholderType  StakeholderType `gorm:"type:varchar(20);index" json:"stakeholder_type"`

	// Referral forest. The schema cannot prevent self-reference or cycles;
	// UserService validates the chain on write.
	ReferrerID *uuid.UUID `gorm:"type:uuid;index" json:"referrer_id,omitempty"`
	Referrer   *User      `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`

	ApprovalStatus BlockStatus `gorm:"type:varchar(30);not null;default:'basic_registration';index" json:"approval_status"`

	// Admin-panel fields
	RoleID       *uint       `gorm:"index" json:"role_id"`
	Role         *Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	Privileges   []Privilege `gorm:"many2many:user_privileges;" json:"privileges,omitempty"`
	TokenVersion string      `gorm:"type:varchar(255);default:''" json:"-"` // single session enforcement
	LastSeenAt   *time.Time  `json:"last_seen_at,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// HasPrivilege checks if the user has a specific privilege
func (u *User) HasPrivilege(code string) bool {
	for _, p := range u.Privileges {
		if p.Code == code {
			return true
		}
	}
	return false
}

// GetPrivilegeCodes returns a slice of all privilege codes for this user
func (u *User) GetPrivilegeCodes() []string {
	codes := make([]string, len(u.Privileges))
	for i, p := range u.Privileges {
		codes[i] = p.Code
	}
	return codes
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID              uuid.UUID       `json:"id"`
	Phone           string          `json:"phone"`
	Email           *string         `json:"email,omitempty"`
	FullName        string          `json:"full_name"`
	StakeholderType StakeholderType `json:"stakeholder_type,omitempty"`
	UserTypeEntity  *UserTypeEntity `json:"user_type_entity,omitempty"`
	ReferrerID      *uuid.UUID      `json:"referrer_id,omitempty"`
	ApprovalStatus  BlockStatus     `json:"approval_status"`
	RoleID          *uint           `json:"role_id,omitempty"`
	Role            *Role           `json:"role,omitempty"`
	IsActive        bool            `json:"is_active"`
	LastSeenAt      *time.Time      `json:"last_seen_at,omitempty"`
	Privileges      []Privilege     `json:"privileges,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:              u.ID,
		Phone:           u.Phone,
		Email:           u.Email,
		FullName:        u.FullName,
		StakeholderType: u.StakeholderType,
		UserTypeEntity:  u.UserTypeEntity,
		ReferrerID:      u.ReferrerID,
		ApprovalStatus:  u.ApprovalStatus,
		RoleID:          u.RoleID,
		Role:            u.Role,
		IsActive:        u.IsActive,
		LastSeenAt:      u.LastSeenAt,
		Privileges:      u.Privileges,
		CreatedAt:       u.CreatedAt,
	}
}

// UserScopeMapping binds a user to the slice of the location and SKU trees
// they operate in.
type UserScopeMapping struct {
	BaseModel
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id" validate:"uuid_required"`
	User             *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	UserTypeEntityID *uuid.UUID      `gorm:"type:uuid;index" json:"user_type_entity_id,omitempty"`
	LocationEntityID *uuid.UUID      `gorm:"type:uuid;index" json:"location_entity_id,omitempty"`
	LocationEntity   *LocationEntity `gorm:"foreignKey:LocationEntityID" json:"location_entity,omitempty"`
	SKUEntityID      *uuid.UUID      `gorm:"type:uuid;index" json:"sku_entity_id,omitempty"`
	SKUEntity        *SKUEntity      `gorm:"foreignKey:SKUEntityID" json:"sku_entity,omitempty"`
}

func (UserScopeMapping) TableName() string { return "user_scope_mappings" }
