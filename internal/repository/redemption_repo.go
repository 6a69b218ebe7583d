package repository

import (
	"time"

	"go-rewards-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RedemptionFilter narrows redemption listings for the finance screens.
type RedemptionFilter struct {
	StatusCode      string
	StakeholderType model.StakeholderType
	UserID          *uuid.UUID
	Limit           int
	Offset          int
}

type RedemptionRepository interface {
	Create(tx *gorm.DB, red *model.Redemption) error
	FindByID(id uuid.UUID) (*model.Redemption, error)
	FindAll(filter RedemptionFilter) ([]model.Redemption, int64, error)
	UpdateStatus(tx *gorm.DB, id uuid.UUID, statusID uint) error
	// TransitionStatus conditionally moves a redemption out of one status and
	// returns the affected row count; zero means a concurrent writer moved it
	// first.
	TransitionStatus(tx *gorm.DB, id uuid.UUID, fromStatusID, toStatusID uint) (int64, error)

	CreateApproval(tx *gorm.DB, approval *model.RedemptionApproval) error
	FindApproval(tx *gorm.DB, redemptionID uuid.UUID) (*model.RedemptionApproval, error)
	// TransitionApproval conditionally moves an approval out of one of the
	// given statuses and returns the affected row count; zero means a
	// concurrent writer got there first or the approval is terminal.
	TransitionApproval(tx *gorm.DB, redemptionID uuid.UUID, from []model.ApprovalStatus, updates map[string]interface{}) (int64, error)

	CreateAuditLog(tx *gorm.DB, log *model.ApprovalAuditLog) error
	AuditLogsFor(redemptionID uuid.UUID) ([]model.ApprovalAuditLog, error)

	FindThreshold(kind model.RewardKind, st model.StakeholderType) (*model.RedemptionThreshold, error)
	UpsertThreshold(t *model.RedemptionThreshold) error

	StatusByCode(code string) (*model.RedemptionStatus, error)
	SeedStatuses() error

	FindPhysicalReward(id uuid.UUID) (*model.PhysicalReward, error)
	ListPhysicalRewards(activeOnly bool) ([]model.PhysicalReward, error)
	SavePhysicalReward(rw *model.PhysicalReward) error
	// DecrementStock atomically takes one unit off an in-stock reward; zero
	// affected rows means it sold out underneath the caller.
	DecrementStock(tx *gorm.DB, id uuid.UUID) (int64, error)

	CreateAmazonOrder(tx *gorm.DB, order *model.UserAmazonOrder) error
	AmazonOrdersForUser(userID uuid.UUID) ([]model.UserAmazonOrder, error)

	Transaction(fn func(tx *gorm.DB) error) error
}

type redemptionRepo struct {
	db *gorm.DB
}

func NewRedemptionRepo(db *gorm.DB) RedemptionRepository {
	return &redemptionRepo{db}
}

func (r *redemptionRepo) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *redemptionRepo) Create(tx *gorm.DB, red *model.Redemption) error {
	return tx.Create(red).Error
}

func (r *redemptionRepo) FindByID(id uuid.UUID) (*model.Redemption, error) {
	var red model.Redemption
	err := r.db.Preload("User").Preload("Status").Preload("Approval").Preload("PhysicalReward").
		First(&red, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &red, nil
}

func (r *redemptionRepo) FindAll(filter RedemptionFilter) ([]model.Redemption, int64, error) {
	q := r.db.Model(&model.Redemption{})
	if filter.StatusCode != "" {
		q = q.Joins("JOIN redemption_statuses rs ON rs.id = redemptions.status_id").
			Where("rs.code = ?", filter.StatusCode)
	}
	if filter.StakeholderType != "" {
		q = q.Where("redemptions.stakeholder_type = ?", filter.StakeholderType)
	}
	if filter.UserID != nil {
		q = q.Where("redemptions.user_id = ?", *filter.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var reds []model.Redemption
	err := q.Preload("User").Preload("Status").Preload("Approval").
		Order("redemptions.created_at DESC").
		Find(&reds).Error
	return reds, total, err
}

func (r *redemptionRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, statusID uint) error {
	return tx.Model(&model.Redemption{}).Where("id = ?", id).Update("status_id", statusID).Error
}

func (r *redemptionRepo) TransitionStatus(tx *gorm.DB, id uuid.UUID, fromStatusID, toStatusID uint) (int64, error) {
	res := tx.Model(&model.Redemption{}).
		Where("id = ? AND status_id = ?", id, fromStatusID).
		Update("status_id", toStatusID)
	return res.RowsAffected, res.Error
}

func (r *redemptionRepo) CreateApproval(tx *gorm.DB, approval *model.RedemptionApproval) error {
	return tx.Create(approval).Error
}

func (r *redemptionRepo) FindApproval(tx *gorm.DB, redemptionID uuid.UUID) (*model.RedemptionApproval, error) {
	if tx == nil {
		tx = r.db
	}
	var approval model.RedemptionApproval
	err := tx.Where("redemption_id = ?", redemptionID).First(&approval).Error
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *redemptionRepo) TransitionApproval(tx *gorm.DB, redemptionID uuid.UUID, from []model.ApprovalStatus, updates map[string]interface{}) (int64, error) {
	updates["updated_at"] = time.Now()
	result := tx.Model(&model.RedemptionApproval{}).
		Where("redemption_id = ? AND approval_status IN ?", redemptionID, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *redemptionRepo) CreateAuditLog(tx *gorm.DB, log *model.ApprovalAuditLog) error {
	return tx.Create(log).Error
}

func (r *redemptionRepo) AuditLogsFor(redemptionID uuid.UUID) ([]model.ApprovalAuditLog, error) {
	var logs []model.ApprovalAuditLog
	err := r.db.Where("redemption_id = ?", redemptionID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	return logs, err
}

func (r *redemptionRepo) FindThreshold(kind model.RewardKind, st model.StakeholderType) (*model.RedemptionThreshold, error) {
	var t model.RedemptionThreshold
	err := r.db.Where("threshold_type = ? AND stakeholder_type = ?", kind, st).First(&t).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *redemptionRepo) UpsertThreshold(t *model.RedemptionThreshold) error {
	existing, err := r.FindThreshold(t.ThresholdType, t.StakeholderType)
	if err != nil {
		return err
	}
	if existing != nil {
		t.ID = existing.ID
		t.CreatedAt = existing.CreatedAt
	}
	return r.db.Save(t).Error
}

func (r *redemptionRepo) StatusByCode(code string) (*model.RedemptionStatus, error) {
	var status model.RedemptionStatus
	if err := r.db.Where("code = ?", code).First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// SeedStatuses creates the redemption status lookup rows if missing
func (r *redemptionRepo) SeedStatuses() error {
	for _, s := range model.DefaultRedemptionStatuses {
		var existing model.RedemptionStatus
		if err := r.db.Where("code = ?", s.Code).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := r.db.Create(&s).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *redemptionRepo) FindPhysicalReward(id uuid.UUID) (*model.PhysicalReward, error) {
	var rw model.PhysicalReward
	if err := r.db.First(&rw, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rw, nil
}

func (r *redemptionRepo) ListPhysicalRewards(activeOnly bool) ([]model.PhysicalReward, error) {
	q := r.db.Model(&model.PhysicalReward{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rewards []model.PhysicalReward
	err := q.Order("points_cost ASC").Find(&rewards).Error
	return rewards, err
}

func (r *redemptionRepo) SavePhysicalReward(rw *model.PhysicalReward) error {
	return r.db.Save(rw).Error
}

func (r *redemptionRepo) DecrementStock(tx *gorm.DB, id uuid.UUID) (int64, error) {
	result := tx.Model(&model.PhysicalReward{}).
		Where("id = ? AND stock_count > 0", id).
		Update("stock_count", gorm.Expr("stock_count - 1"))
	return result.RowsAffected, result.Error
}

func (r *redemptionRepo) CreateAmazonOrder(tx *gorm.DB, order *model.UserAmazonOrder) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(order).Error
}

func (r *redemptionRepo) AmazonOrdersForUser(userID uuid.UUID) ([]model.UserAmazonOrder, error) {
	var orders []model.UserAmazonOrder
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}
