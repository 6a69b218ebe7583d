package model

// BlockStatus tracks a member's registration/approval progress and block state.
// Stored as text for migration continuity with the original block_status enum.
type BlockStatus string

const (
	StatusBasicRegistration BlockStatus = "basic_registration"
	StatusKYCPending        BlockStatus = "kyc_pending"
	StatusKYCSubmitted      BlockStatus = "kyc_submitted"
	StatusKYCVerified       BlockStatus = "kyc_verified"
	StatusApproved          BlockStatus = "approved"
	StatusRejected          BlockStatus = "rejected"
	StatusBlocked           BlockStatus = "blocked"
	StatusSuspended         BlockStatus = "suspended"
	StatusNone              BlockStatus = "none"
)

// blockTransitions defines the allowed block-status state machine. The schema
// alone never enforced this; UpdateApprovalStatus does.
var blockTransitions = map[BlockStatus][]BlockStatus{
	StatusBasicRegistration: {StatusKYCPending, StatusRejected},
	StatusKYCPending:        {StatusKYCSubmitted, StatusRejected},
	StatusKYCSubmitted:      {StatusKYCVerified, StatusKYCPending, StatusRejected},
	StatusKYCVerified:       {StatusApproved, StatusRejected},
	StatusApproved:          {StatusBlocked, StatusSuspended, StatusNone},
	StatusBlocked:           {StatusApproved, StatusNone},
	StatusSuspended:         {StatusApproved, StatusBlocked, StatusNone},
	StatusRejected:          {StatusBasicRegistration},
	StatusNone:              {StatusApproved, StatusBlocked},
}

// CanTransitionTo reports whether the block-status state machine allows moving
// from s to next.
func (s BlockStatus) CanTransitionTo(next BlockStatus) bool {
	for _, allowed := range blockTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StakeholderType identifies which earning-ledger family a member belongs to.
type StakeholderType string

const (
	StakeholderRetailer     StakeholderType = "retailer"
	StakeholderElectrician  StakeholderType = "electrician"
	StakeholderCounterSales StakeholderType = "counter_sales"
)

// ProfileTable returns the stakeholder profile table carrying the denormalized
// balance columns for this type.
func (t StakeholderType) ProfileTable() string {
	switch t {
	case StakeholderRetailer:
		return "retailer_profiles"
	case StakeholderElectrician:
		return "electrician_profiles"
	default:
		return "counter_sales_profiles"
	}
}

// IsValid reports whether t names a known stakeholder type.
func (t StakeholderType) IsValid() bool {
	return t == StakeholderRetailer || t == StakeholderElectrician || t == StakeholderCounterSales
}

// LedgerEntryType is the direction of a ledger row.
type LedgerEntryType string

const (
	LedgerCredit LedgerEntryType = "CREDIT"
	LedgerDebit  LedgerEntryType = "DEBIT"
)

// InventoryType distinguishes inner units from outer packs on a SKU variant.
type InventoryType string

const (
	InventoryInner InventoryType = "inner"
	InventoryOuter InventoryType = "outer"
)

// OTPType is the purpose an OTP record was issued for.
type OTPType string

const (
	OTPLogin         OTPType = "login"
	OTPPasswordReset OTPType = "password_reset"
	OTPRegistration  OTPType = "registration"
	OTPKYC           OTPType = "kyc"
)

// ApprovalStatus is the redemption approval state machine. APPROVED and
// REJECTED are terminal.
type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "PENDING"
	ApprovalApproved  ApprovalStatus = "APPROVED"
	ApprovalRejected  ApprovalStatus = "REJECTED"
	ApprovalEscalated ApprovalStatus = "ESCALATED"
)

// IsTerminal reports whether no further approval transitions are allowed.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

// KYCStatus is the document verification lifecycle.
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCVerified KYCStatus = "verified"
	KYCRejected KYCStatus = "rejected"
)

// TicketPriority for support tickets.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)
