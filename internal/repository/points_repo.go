package repository

import (
	"go-rewards-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PointsRepository interface {
	CreateTransaction(tx *gorm.DB, t *model.PointTransaction) error
	CreateLedgerEntry(tx *gorm.DB, entry *model.PointLedger) error
	LastLedgerEntry(tx *gorm.DB, userID uuid.UUID) (*model.PointLedger, error)
	LedgerForUser(userID uuid.UUID, limit, offset int) ([]model.PointLedger, int64, error)
	TransactionsForUser(userID uuid.UUID, limit, offset int) ([]model.PointTransaction, error)
	// FindTransactionBySource returns the transaction recorded against a source
	// reference (scanned QR code, invoice number), or nil. Used for scan dedupe.
	FindTransactionBySource(source string) (*model.PointTransaction, error)
	FindEarningTypeByCode(code string) (*model.EarningType, error)
	SeedEarningTypes() error
	Transaction(fn func(tx *gorm.DB) error) error
}

type pointsRepo struct {
	db *gorm.DB
}

func NewPointsRepo(db *gorm.DB) PointsRepository {
	return &pointsRepo{db}
}

func (r *pointsRepo) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *pointsRepo) CreateTransaction(tx *gorm.DB, t *model.PointTransaction) error {
	return tx.Create(t).Error
}

func (r *pointsRepo) CreateLedgerEntry(tx *gorm.DB, entry *model.PointLedger) error {
	return tx.Create(entry).Error
}

// LastLedgerEntry returns the newest ledger row for a user, or nil if the
// ledger is empty.
func (r *pointsRepo) LastLedgerEntry(tx *gorm.DB, userID uuid.UUID) (*model.PointLedger, error) {
	if tx == nil {
		tx = r.db
	}
	var entry model.PointLedger
	err := tx.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *pointsRepo) LedgerForUser(userID uuid.UUID, limit, offset int) ([]model.PointLedger, int64, error) {
	q := r.db.Model(&model.PointLedger{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.PointLedger
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Order("created_at DESC, id DESC").Find(&entries).Error
	return entries, total, err
}

func (r *pointsRepo) TransactionsForUser(userID uuid.UUID, limit, offset int) ([]model.PointTransaction, error) {
	var txns []model.PointTransaction
	q := r.db.Preload("EarningType").Preload("SKUVariant").
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&txns).Error
	return txns, err
}

func (r *pointsRepo) FindTransactionBySource(source string) (*model.PointTransaction, error) {
	var t model.PointTransaction
	err := r.db.Where("source_reference = ? AND status = ?", source, model.TxCompleted).First(&t).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *pointsRepo) FindEarningTypeByCode(code string) (*model.EarningType, error) {
	var et model.EarningType
	if err := r.db.Where("code = ?", code).First(&et).Error; err != nil {
		return nil, err
	}
	return &et, nil
}

// SeedEarningTypes creates default earning types if they don't exist
func (r *pointsRepo) SeedEarningTypes() error {
	for _, et := range model.DefaultEarningTypes {
		var existing model.EarningType
		if err := r.db.Where("code = ?", et.Code).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := r.db.Create(&et).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
