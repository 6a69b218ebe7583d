package service

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/pkg/apperr"
)

// LedgerRequest is one balance-changing event to append to the ledger.
type LedgerRequest struct {
	UserID          uuid.UUID
	StakeholderType model.StakeholderType
	EntryType       model.LedgerEntryType
	Amount          int64 // always positive; EntryType carries the sign
	ReferenceID     *uuid.UUID
	ReferenceKind   string // "transaction", "redemption", "refund"
	Narration       string
	Actor           string
}

// EarnRequest records a member earning event (QR scan, counter sale).
type EarnRequest struct {
	UserID          uuid.UUID `json:"user_id" validate:"uuid_required"`
	EarningTypeCode string    `json:"earning_type_code" validate:"required"`
	SKUVariantCode  string    `json:"sku_variant_code" validate:"required"`
	Quantity        int64     `json:"quantity"`
	SourceReference string    `json:"source_reference" validate:"required"` // QR code payload / invoice no
	Actor           string    `json:"-"`
}

type AdjustRequest struct {
	UserID    uuid.UUID             `json:"user_id" validate:"uuid_required"`
	EntryType model.LedgerEntryType `json:"entry_type" validate:"required,oneof=CREDIT DEBIT"`
	Amount    int64                 `json:"amount" validate:"gt=0"`
	Narration string                `json:"narration" validate:"required"`
	Actor     string                `json:"-"`
}

type PointsService interface {
	// Post appends a ledger entry inside an existing transaction, keeping the
	// running-balance chain and the profile balance columns consistent.
	Post(tx *gorm.DB, req LedgerRequest) (*model.PointLedger, error)
	// PostEntry is Post wrapped in its own transaction.
	PostEntry(req LedgerRequest) (*model.PointLedger, error)
	RecordEarning(req EarnRequest) (*model.PointTransaction, *model.PointLedger, error)
	AdjustPoints(req AdjustRequest) (*model.PointLedger, error)
	Balance(userID uuid.UUID) (*repository.ProfileBalanceRow, error)
	Ledger(userID uuid.UUID, limit, offset int) ([]model.PointLedger, int64, error)
	Transactions(userID uuid.UUID, limit, offset int) ([]model.PointTransaction, error)
}

type pointsService struct {
	pointsRepo  repository.PointsRepository
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	skuRepo     repository.SKURepository
}

func NewPointsService(
	pointsRepo repository.PointsRepository,
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	skuRepo repository.SKURepository,
) PointsService {
	return &pointsService{
		pointsRepo:  pointsRepo,
		profileRepo: profileRepo,
		userRepo:    userRepo,
		skuRepo:     skuRepo,
	}
}

// Post is the single write path for point balances. It locks the stakeholder
// profile row, reads the previous closing balance, and writes the ledger row
// and the denormalized balance columns in the caller's transaction. Two
// concurrent earns serialize on the row lock, so the chain never forks.
func (s *pointsService) Post(tx *gorm.DB, req LedgerRequest) (*model.PointLedger, error) {
	if req.Amount <= 0 {
		return nil, apperr.Validation("ledger amount must be positive, got %d", req.Amount)
	}
	if !req.StakeholderType.IsValid() {
		return nil, apperr.Validation("unknown stakeholder type %q", req.StakeholderType)
	}

	// 1. Lock the profile row for the duration of the transaction
	balances, err := s.profileRepo.GetBalancesForUpdate(tx, req.StakeholderType, req.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("no %s profile for user %s", req.StakeholderType, req.UserID)
		}
		return nil, err
	}

	// 2. Opening balance continues the chain from the last ledger row
	opening := balances.PointsBalance
	last, err := s.pointsRepo.LastLedgerEntry(tx, req.UserID)
	if err != nil {
		return nil, err
	}
	if last != nil {
		opening = last.ClosingBalance
	}

	entry := &model.PointLedger{
		UserID:          req.UserID,
		StakeholderType: req.StakeholderType,
		EntryType:       req.EntryType,
		Amount:          req.Amount,
		OpeningBalance:  opening,
		ReferenceID:     req.ReferenceID,
		ReferenceKind:   req.ReferenceKind,
		Narration:       req.Narration,
		CreatedBy:       req.Actor,
	}

	// 3. Debits must not overdraw
	closing := opening + entry.SignedAmount()
	if closing < 0 {
		return nil, apperr.Validation("insufficient points balance: have %d, need %d", opening, req.Amount)
	}
	entry.ClosingBalance = closing

	if err := s.pointsRepo.CreateLedgerEntry(tx, entry); err != nil {
		return nil, err
	}

	// 4. Keep the profile's denormalized columns in step with the ledger
	balances.PointsBalance = closing
	switch {
	case req.EntryType == model.LedgerDebit:
		balances.TotalRedeemed += req.Amount
	case req.ReferenceKind == "refund":
		balances.TotalRedeemed -= req.Amount
	default:
		balances.TotalEarnings += req.Amount
	}
	if err := s.profileRepo.UpdateBalances(tx, req.StakeholderType, req.UserID, balances); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *pointsService) PostEntry(req LedgerRequest) (*model.PointLedger, error) {
	var entry *model.PointLedger
	err := s.pointsRepo.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.Post(tx, req)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *pointsService) RecordEarning(req EarnRequest) (*model.PointTransaction, *model.PointLedger, error) {
	// 1. Only approved members earn points
	user, err := s.userRepo.FindByID(req.UserID)
	if err != nil {
		return nil, nil, apperr.NotFound("user %s", req.UserID)
	}
	if user.ApprovalStatus != model.StatusApproved {
		return nil, nil, apperr.Validation("member is %s, not eligible to earn points", user.ApprovalStatus)
	}

	// 2. A QR code / invoice can only be claimed once
	if req.SourceReference != "" {
		existing, err := s.pointsRepo.FindTransactionBySource(req.SourceReference)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil {
			return nil, nil, apperr.Conflict("reference %q already claimed", req.SourceReference)
		}
	}

	earningType, err := s.pointsRepo.FindEarningTypeByCode(req.EarningTypeCode)
	if err != nil {
		return nil, nil, apperr.NotFound("earning type %q", req.EarningTypeCode)
	}

	variant, err := s.skuRepo.FindVariantByCode(req.SKUVariantCode)
	if err != nil {
		return nil, nil, apperr.NotFound("SKU variant %q", req.SKUVariantCode)
	}

	// 3. Resolve the active point configuration for this variant and
	// stakeholder type
	cfg, err := s.skuRepo.EffectivePointConfig(variant.ID, user.StakeholderType, time.Now())
	if err != nil {
		return nil, nil, err
	}
	if cfg == nil {
		return nil, nil, apperr.Validation("no active point configuration for variant %q and %s", req.SKUVariantCode, user.StakeholderType)
	}

	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}
	points := cfg.Points * qty

	// 4. Transaction row and ledger credit commit together
	var txn *model.PointTransaction
	var entry *model.PointLedger
	err = s.pointsRepo.Transaction(func(tx *gorm.DB) error {
		txn = &model.PointTransaction{
			UserID:          req.UserID,
			StakeholderType: user.StakeholderType,
			EarningTypeID:   earningType.ID,
			SKUVariantID:    &variant.ID,
			Points:          points,
			Status:          model.TxCompleted,
			SourceReference: req.SourceReference,
		}
		txn.CreatedBy = req.Actor
		if err := s.pointsRepo.CreateTransaction(tx, txn); err != nil {
			return err
		}

		entry, err = s.Post(tx, LedgerRequest{
			UserID:          req.UserID,
			StakeholderType: user.StakeholderType,
			EntryType:       model.LedgerCredit,
			Amount:          points,
			ReferenceID:     &txn.ID,
			ReferenceKind:   "transaction",
			Narration:       earningType.Name,
			Actor:           req.Actor,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return txn, entry, nil
}

func (s *pointsService) AdjustPoints(req AdjustRequest) (*model.PointLedger, error) {
	user, err := s.userRepo.FindByID(req.UserID)
	if err != nil {
		return nil, apperr.NotFound("user %s", req.UserID)
	}
	if !user.StakeholderType.IsValid() {
		return nil, apperr.Validation("user %s has no stakeholder profile", req.UserID)
	}

	return s.PostEntry(LedgerRequest{
		UserID:          req.UserID,
		StakeholderType: user.StakeholderType,
		EntryType:       req.EntryType,
		Amount:          req.Amount,
		ReferenceKind:   "adjustment",
		Narration:       req.Narration,
		Actor:           req.Actor,
	})
}

func (s *pointsService) Balance(userID uuid.UUID) (*repository.ProfileBalanceRow, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperr.NotFound("user %s", userID)
	}
	if !user.StakeholderType.IsValid() {
		return nil, apperr.Validation("user %s has no stakeholder profile", userID)
	}
	row, err := s.profileRepo.GetBalances(user.StakeholderType, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("no %s profile for user %s", user.StakeholderType, userID)
		}
		return nil, err
	}
	return row, nil
}

func (s *pointsService) Ledger(userID uuid.UUID, limit, offset int) ([]model.PointLedger, int64, error) {
	return s.pointsRepo.LedgerForUser(userID, limit, offset)
}

func (s *pointsService) Transactions(userID uuid.UUID, limit, offset int) ([]model.PointTransaction, error) {
	return s.pointsRepo.TransactionsForUser(userID, limit, offset)
}
