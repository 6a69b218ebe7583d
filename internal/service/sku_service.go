package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/pkg/apperr"
)

type CreateVariantRequest struct {
	SKUEntityID   uuid.UUID           `json:"sku_entity_id" validate:"uuid_required"`
	Name          string              `json:"name" validate:"required"`
	VariantCode   string              `json:"variant_code" validate:"required"`
	InventoryType model.InventoryType `json:"inventory_type" validate:"omitempty,oneof=inner outer"`
	UnitsPerPack  int                 `json:"units_per_pack"`
	MRP           string              `json:"mrp"` // decimal string
	Actor         string              `json:"-"`
}

type PointConfigRequest struct {
	SKUVariantID    uuid.UUID             `json:"sku_variant_id" validate:"uuid_required"`
	StakeholderType model.StakeholderType `json:"stakeholder_type" validate:"required,oneof=retailer electrician counter_sales"`
	Points          int64                 `json:"points" validate:"gt=0"`
	EffectiveFrom   *time.Time            `json:"effective_from,omitempty"`
	Actor           string                `json:"-"`
}

type SKUService interface {
	CreateVariant(req CreateVariantRequest) (*model.SKUVariant, error)
	VariantsForEntity(entityID uuid.UUID) ([]model.SKUVariant, error)
	// SetPointConfig appends a new config row; earlier rows stay for history
	// and the newest effective one wins at earn time.
	SetPointConfig(req PointConfigRequest) (*model.SKUPointConfig, error)
	GrantAccess(userID, skuEntityID uuid.UUID, actor string) error
	AccessEntityIDs(userID uuid.UUID) ([]uuid.UUID, error)
}

type skuService struct {
	skuRepo       repository.SKURepository
	hierarchyRepo repository.HierarchyRepository
	userRepo      repository.UserRepository
}

func NewSKUService(
	skuRepo repository.SKURepository,
	hierarchyRepo repository.HierarchyRepository,
	userRepo repository.UserRepository,
) SKUService {
	return &skuService{
		skuRepo:       skuRepo,
		hierarchyRepo: hierarchyRepo,
		userRepo:      userRepo,
	}
}

func (s *skuService) CreateVariant(req CreateVariantRequest) (*model.SKUVariant, error) {
	// 1. The owning SKU node must exist
	if _, err := s.hierarchyRepo.FindNode(nil, model.HierarchySKU, req.SKUEntityID); err != nil {
		return nil, apperr.NotFound("SKU entity %s", req.SKUEntityID)
	}

	// 2. Variant codes are the scan identity and must be unique
	if existing, err := s.skuRepo.FindVariantByCode(req.VariantCode); err == nil && existing != nil {
		return nil, apperr.Conflict("variant code %q already exists", req.VariantCode)
	}

	inventoryType := req.InventoryType
	if inventoryType == "" {
		inventoryType = model.InventoryInner
	}
	unitsPerPack := req.UnitsPerPack
	if unitsPerPack <= 0 {
		unitsPerPack = 1
	}

	v := &model.SKUVariant{
		SKUEntityID:   req.SKUEntityID,
		Name:          req.Name,
		VariantCode:   req.VariantCode,
		InventoryType: inventoryType,
		UnitsPerPack:  unitsPerPack,
		IsActive:      true,
	}
	v.CreatedBy = req.Actor
	if req.MRP != "" {
		mrp, err := decimal.NewFromString(req.MRP)
		if err != nil {
			return nil, apperr.Validation("invalid MRP %q", req.MRP)
		}
		v.MRP = mrp
	}

	if err := s.skuRepo.CreateVariant(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *skuService) VariantsForEntity(entityID uuid.UUID) ([]model.SKUVariant, error) {
	return s.skuRepo.VariantsForEntity(entityID)
}

func (s *skuService) SetPointConfig(req PointConfigRequest) (*model.SKUPointConfig, error) {
	if req.Points <= 0 {
		return nil, apperr.Validation("points must be positive, got %d", req.Points)
	}
	if !req.StakeholderType.IsValid() {
		return nil, apperr.Validation("unknown stakeholder type %q", req.StakeholderType)
	}
	if _, err := s.skuRepo.FindVariantByID(req.SKUVariantID); err != nil {
		return nil, apperr.NotFound("SKU variant %s", req.SKUVariantID)
	}

	effectiveFrom := time.Now()
	if req.EffectiveFrom != nil {
		effectiveFrom = *req.EffectiveFrom
	}

	cfg := &model.SKUPointConfig{
		SKUVariantID:    req.SKUVariantID,
		StakeholderType: req.StakeholderType,
		Points:          req.Points,
		EffectiveFrom:   effectiveFrom,
		IsActive:        true,
	}
	cfg.CreatedBy = req.Actor
	if err := s.skuRepo.CreatePointConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *skuService) GrantAccess(userID, skuEntityID uuid.UUID, actor string) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return apperr.NotFound("user %s", userID)
	}
	if _, err := s.hierarchyRepo.FindNode(nil, model.HierarchySKU, skuEntityID); err != nil {
		return apperr.NotFound("SKU entity %s", skuEntityID)
	}

	access := &model.ParticipantSKUAccess{
		UserID:      userID,
		SKUEntityID: skuEntityID,
	}
	access.CreatedBy = actor
	return s.skuRepo.GrantAccess(access)
}

func (s *skuService) AccessEntityIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	return s.skuRepo.AccessEntityIDs(userID)
}
