package model

// Role represents admin-panel roles
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // MASTER_ADMIN, ADMIN, ...
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleMasterAdmin  = "MASTER_ADMIN"
	RoleAdmin        = "ADMIN"
	RoleFinanceAdmin = "FINANCE_ADMIN"
	RoleSupportAdmin = "SUPPORT_ADMIN"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full system access with all privileges",
	},
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Member, master-data and ticket administration",
	},
	{
		Code:        RoleFinanceAdmin,
		Name:        "Finance Administrator",
		Description: "Redemption approvals and finance reporting",
	},
	{
		Code:        RoleSupportAdmin,
		Name:        "Support Administrator",
		Description: "Ticket handling and member support",
	},
}
