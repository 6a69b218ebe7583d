package repository

import (
	"time"

	"go-rewards-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SKURepository interface {
	CreateVariant(v *model.SKUVariant) error
	UpdateVariant(v *model.SKUVariant) error
	FindVariantByID(id uuid.UUID) (*model.SKUVariant, error)
	FindVariantByCode(code string) (*model.SKUVariant, error)
	VariantsForEntity(entityID uuid.UUID) ([]model.SKUVariant, error)

	CreatePointConfig(cfg *model.SKUPointConfig) error
	// EffectivePointConfig returns the newest active config for a variant and
	// stakeholder type whose effective_from is not in the future.
	EffectivePointConfig(variantID uuid.UUID, st model.StakeholderType, at time.Time) (*model.SKUPointConfig, error)

	GrantAccess(access *model.ParticipantSKUAccess) error
	AccessEntityIDs(userID uuid.UUID) ([]uuid.UUID, error)
}

type skuRepo struct {
	db *gorm.DB
}

func NewSKURepo(db *gorm.DB) SKURepository {
	return &skuRepo{db}
}

func (r *skuRepo) CreateVariant(v *model.SKUVariant) error {
	return r.db.Create(v).Error
}

func (r *skuRepo) UpdateVariant(v *model.SKUVariant) error {
	return r.db.Save(v).Error
}

func (r *skuRepo) FindVariantByID(id uuid.UUID) (*model.SKUVariant, error) {
	var v model.SKUVariant
	if err := r.db.Preload("SKUEntity").First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *skuRepo) FindVariantByCode(code string) (*model.SKUVariant, error) {
	var v model.SKUVariant
	if err := r.db.Preload("SKUEntity").Where("variant_code = ?", code).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *skuRepo) VariantsForEntity(entityID uuid.UUID) ([]model.SKUVariant, error) {
	var variants []model.SKUVariant
	err := r.db.Where("sku_entity_id = ?", entityID).Order("name").Find(&variants).Error
	return variants, err
}

func (r *skuRepo) CreatePointConfig(cfg *model.SKUPointConfig) error {
	return r.db.Create(cfg).Error
}

func (r *skuRepo) EffectivePointConfig(variantID uuid.UUID, st model.StakeholderType, at time.Time) (*model.SKUPointConfig, error) {
	var cfg model.SKUPointConfig
	err := r.db.Where(
		"sku_variant_id = ? AND stakeholder_type = ? AND is_active = ? AND effective_from <= ?",
		variantID, st, true, at,
	).Order("effective_from DESC").First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *skuRepo) GrantAccess(access *model.ParticipantSKUAccess) error {
	return r.db.Create(access).Error
}

func (r *skuRepo) AccessEntityIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&model.ParticipantSKUAccess{}).
		Where("user_id = ?", userID).
		Pluck("sku_entity_id", &ids).Error
	return ids, err
}
