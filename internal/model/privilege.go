package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "redemption:approve"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// Admin user management
	{Code: "user:view", Name: "View Admin User"},
	{Code: "user:create", Name: "Create Admin User"},
	{Code: "user:update", Name: "Update Admin User"},
	{Code: "user:delete", Name: "Delete Admin User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Member management
	{Code: "member:view", Name: "View Member"},
	{Code: "member:create", Name: "Create Member"},
	{Code: "member:update", Name: "Update Member"},
	{Code: "member:block", Name: "Block / Unblock Member"},
	// Master data (hierarchies, SKUs, point configs)
	{Code: "master:view", Name: "View Masters"},
	{Code: "master:manage", Name: "Manage Masters"},
	// Points & ledger
	{Code: "points:view", Name: "View Ledgers"},
	{Code: "points:adjust", Name: "Manual Point Adjustment"},
	// Redemptions / finance
	{Code: "redemption:view", Name: "View Redemptions"},
	{Code: "redemption:approve", Name: "Approve / Reject Redemption"},
	{Code: "redemption:escalate", Name: "Escalate Redemption"},
	// KYC
	{Code: "kyc:view", Name: "View KYC Documents"},
	{Code: "kyc:verify", Name: "Verify KYC Documents"},
	// Tickets
	{Code: "ticket:view", Name: "View Tickets"},
	{Code: "ticket:manage", Name: "Assign / Resolve Tickets"},
	// Dashboard & MIS
	{Code: "dashboard:view", Name: "View Dashboard"},
	{Code: "mis:view", Name: "View MIS Reports"},
}
