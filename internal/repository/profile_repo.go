package repository

import (
	"time"

	"go-rewards-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileBalanceRow is the projection of a stakeholder profile used by the
// ledger writer. All three profile tables share these columns.
type ProfileBalanceRow struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	PointsBalance int64     `json:"points_balance"`
	TotalEarnings int64     `json:"total_earnings"`
	TotalRedeemed int64     `json:"total_redeemed"`
}

type ProfileRepository interface {
	CreateRetailer(tx *gorm.DB, p *model.RetailerProfile) error
	CreateElectrician(tx *gorm.DB, p *model.ElectricianProfile) error
	CreateCounterSales(tx *gorm.DB, p *model.CounterSalesProfile) error

	// GetBalancesForUpdate locks the profile row of the given stakeholder type
	// and returns its balance columns. Must run inside a transaction.
	GetBalancesForUpdate(tx *gorm.DB, st model.StakeholderType, userID uuid.UUID) (*ProfileBalanceRow, error)

	// UpdateBalances writes the denormalized balance columns. Must run in the
	// same transaction as the ledger insert.
	UpdateBalances(tx *gorm.DB, st model.StakeholderType, userID uuid.UUID, row *ProfileBalanceRow) error

	GetBalances(st model.StakeholderType, userID uuid.UUID) (*ProfileBalanceRow, error)
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db}
}

func (r *profileRepo) CreateRetailer(tx *gorm.DB, p *model.RetailerProfile) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(p).Error
}

func (r *profileRepo) CreateElectrician(tx *gorm.DB, p *model.ElectricianProfile) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(p).Error
}

func (r *profileRepo) CreateCounterSales(tx *gorm.DB, p *model.CounterSalesProfile) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(p).Error
}

func (r *profileRepo) GetBalancesForUpdate(tx *gorm.DB, st model.StakeholderType, userID uuid.UUID) (*ProfileBalanceRow, error) {
	var row ProfileBalanceRow
	err := LockForUpdate(tx).
		Table(st.ProfileTable()).
		Select("id", "user_id", "points_balance", "total_earnings", "total_redeemed").
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *profileRepo) UpdateBalances(tx *gorm.DB, st model.StakeholderType, userID uuid.UUID, row *ProfileBalanceRow) error {
	return tx.Table(st.ProfileTable()).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"points_balance": row.PointsBalance,
			"total_earnings": row.TotalEarnings,
			"total_redeemed": row.TotalRedeemed,
			"updated_at":     time.Now(),
		}).Error
}

func (r *profileRepo) GetBalances(st model.StakeholderType, userID uuid.UUID) (*ProfileBalanceRow, error) {
	var row ProfileBalanceRow
	err := r.db.Table(st.ProfileTable()).
		Select("id", "user_id", "points_balance", "total_earnings", "total_redeemed").
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
