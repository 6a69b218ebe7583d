package repository

import (
	"time"

	"go-rewards-admin/internal/model"

	"gorm.io/gorm"
)

// PointsMovementData is one day of issued vs redeemed points, for charts.
type PointsMovementData struct {
	Date     string `json:"date"`
	Issued   int64  `json:"issued"`
	Redeemed int64  `json:"redeemed"`
}

// DashboardStats is the overview block on the admin dashboard.
type DashboardStats struct {
	TotalMembers     int64 `json:"total_members"`
	PendingApprovals int64 `json:"pending_approvals"`
	PendingKYC       int64 `json:"pending_kyc"`
	OpenTickets      int64 `json:"open_tickets"`
	PointsIssued     int64 `json:"points_issued"`
	PointsRedeemed   int64 `json:"points_redeemed"`
}

// MemberCountRow is members grouped by stakeholder type and approval status.
type MemberCountRow struct {
	StakeholderType string `json:"stakeholder_type"`
	ApprovalStatus  string `json:"approval_status"`
	Count           int64  `json:"count"`
}

// TopEarnerRow for the MIS top-earners report.
type TopEarnerRow struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Earned   int64  `json:"earned"`
}

type MISRepository interface {
	GetPointsMovement(startDate, endDate time.Time) ([]PointsMovementData, error)
	GetDashboardStats() (*DashboardStats, error)
	GetMemberCounts() ([]MemberCountRow, error)
	GetTopEarners(startDate, endDate time.Time, limit int) ([]TopEarnerRow, error)
}

type misRepo struct {
	db *gorm.DB
}

func NewMISRepo(db *gorm.DB) MISRepository {
	return &misRepo{db}
}

func (r *misRepo) GetPointsMovement(startDate, endDate time.Time) ([]PointsMovementData, error) {
	var results []PointsMovementData

	// Aggregate ledger entries per day
	rows, err := r.db.Model(&model.PointLedger{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN entry_type = 'CREDIT' THEN amount ELSE 0 END), 0) as issued,
			COALESCE(SUM(CASE WHEN entry_type = 'DEBIT' THEN amount ELSE 0 END), 0) as redeemed
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data PointsMovementData
		if err := rows.Scan(&data.Date, &data.Issued, &data.Redeemed); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}

func (r *misRepo) GetDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats

	r.db.Model(&model.User{}).Where("role_id IS NULL").Count(&stats.TotalMembers)

	r.db.Model(&model.RedemptionApproval{}).
		Where("approval_status IN ?", []model.ApprovalStatus{model.ApprovalPending, model.ApprovalEscalated}).
		Count(&stats.PendingApprovals)

	r.db.Model(&model.KYCDocument{}).
		Where("verification_status = ?", model.KYCPending).
		Count(&stats.PendingKYC)

	r.db.Model(&model.Ticket{}).
		Joins("JOIN ticket_statuses ts ON ts.id = tickets.status_id").
		Where("ts.code IN ?", []string{model.TicketOpen, model.TicketInProgress}).
		Count(&stats.OpenTickets)

	r.db.Model(&model.PointLedger{}).
		Where("entry_type = ?", model.LedgerCredit).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.PointsIssued)

	r.db.Model(&model.PointLedger{}).
		Where("entry_type = ?", model.LedgerDebit).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.PointsRedeemed)

	return &stats, nil
}

func (r *misRepo) GetMemberCounts() ([]MemberCountRow, error) {
	var results []MemberCountRow
	err := r.db.Model(&model.User{}).
		Select("stakeholder_type, approval_status, COUNT(*) as count").
		Where("role_id IS NULL").
		Group("stakeholder_type, approval_status").
		Find(&results).Error
	return results, err
}

func (r *misRepo) GetTopEarners(startDate, endDate time.Time, limit int) ([]TopEarnerRow, error) {
	var results []TopEarnerRow
	err := r.db.Model(&model.PointLedger{}).
		Select(`point_ledgers.user_id as user_id, users.full_name as full_name, users.phone as phone,
			COALESCE(SUM(point_ledgers.amount), 0) as earned`).
		Joins("JOIN users ON users.id = point_ledgers.user_id").
		Where("point_ledgers.entry_type = ? AND point_ledgers.created_at BETWEEN ? AND ?",
			model.LedgerCredit, startDate, endDate).
		Group("point_ledgers.user_id, users.full_name, users.phone").
		Order("earned DESC").
		Limit(limit).
		Find(&results).Error
	return results, err
}
