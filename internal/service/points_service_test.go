package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/pkg/apperr"
)

// seedVariant creates a SKU level, node, variant and a retailer point config
// so RecordEarning has something to price against.
func seedVariant(t *testing.T, e *env, code string, points int64) *model.SKUVariant {
	t.Helper()
	clientID := uuid.New()
	levelID, err := e.hierarchy.CreateLevel(CreateLevelRequest{
		Kind:        model.HierarchySKU,
		ClientID:    clientID,
		Name:        "Category",
		LevelNumber: 1,
		Actor:       "test",
	})
	require.NoError(t, err)

	node, err := e.hierarchy.CreateNode(CreateNodeRequest{
		Kind:     model.HierarchySKU,
		ClientID: clientID,
		Name:     "Wires",
		Code:     "WIRES",
		LevelID:  levelID,
		Actor:    "test",
	})
	require.NoError(t, err)

	variant, err := e.sku.CreateVariant(CreateVariantRequest{
		SKUEntityID: node.ID,
		Name:        "Wire 90m",
		VariantCode: code,
		MRP:         "1250.50",
		Actor:       "test",
	})
	require.NoError(t, err)

	_, err = e.sku.SetPointConfig(PointConfigRequest{
		SKUVariantID:    variant.ID,
		StakeholderType: model.StakeholderRetailer,
		Points:          points,
		Actor:           "test",
	})
	require.NoError(t, err)
	return variant
}

func TestLedgerChainsClosingBalances(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9000000001")

	first, err := e.points.PostEntry(LedgerRequest{
		UserID:          user.ID,
		StakeholderType: user.StakeholderType,
		EntryType:       model.LedgerCredit,
		Amount:          50,
		ReferenceKind:   "adjustment",
		Narration:       "first credit",
		Actor:           "test",
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), first.OpeningBalance)
	require.Equal(t, int64(50), first.ClosingBalance)

	second, err := e.points.PostEntry(LedgerRequest{
		UserID:          user.ID,
		StakeholderType: user.StakeholderType,
		EntryType:       model.LedgerCredit,
		Amount:          50,
		ReferenceKind:   "adjustment",
		Narration:       "second credit",
		Actor:           "test",
	})
	require.NoError(t, err)

	// The second entry must open where the first closed
	require.Equal(t, first.ClosingBalance, second.OpeningBalance)
	require.Equal(t, int64(100), second.ClosingBalance)

	balance, err := e.points.Balance(user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(100), balance.PointsBalance)
	require.Equal(t, int64(100), balance.TotalEarnings)
}

func TestDebitCannotOverdraw(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9000000002")
	creditPoints(t, e, user, 30)

	_, err := e.points.PostEntry(LedgerRequest{
		UserID:          user.ID,
		StakeholderType: user.StakeholderType,
		EntryType:       model.LedgerDebit,
		Amount:          50,
		ReferenceKind:   "adjustment",
		Narration:       "overdraw attempt",
		Actor:           "test",
	})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	// Failed debit must leave the balance untouched
	balance, err := e.points.Balance(user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(30), balance.PointsBalance)
}

func TestDebitUpdatesTotalRedeemed(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9000000003")
	creditPoints(t, e, user, 100)

	entry, err := e.points.PostEntry(LedgerRequest{
		UserID:          user.ID,
		StakeholderType: user.StakeholderType,
		EntryType:       model.LedgerDebit,
		Amount:          40,
		ReferenceKind:   "redemption",
		Narration:       "reward redemption",
		Actor:           "test",
	})
	require.NoError(t, err)
	require.Equal(t, int64(60), entry.ClosingBalance)

	balance, err := e.points.Balance(user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(60), balance.PointsBalance)
	require.Equal(t, int64(100), balance.TotalEarnings)
	require.Equal(t, int64(40), balance.TotalRedeemed)
}

func TestRecordEarningPricesFromPointConfig(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9000000004")
	seedVariant(t, e, "WIRE-90M", 25)

	txn, entry, err := e.points.RecordEarning(EarnRequest{
		UserID:          user.ID,
		EarningTypeCode: "qr_scan",
		SKUVariantCode:  "WIRE-90M",
		Quantity:        3,
		SourceReference: "QR-AAA-001",
		Actor:           "test",
	})
	require.NoError(t, err)
	require.Equal(t, int64(75), txn.Points)
	require.Equal(t, int64(75), entry.ClosingBalance)
	require.Equal(t, model.TxCompleted, txn.Status)
}

func TestRecordEarningRejectsDuplicateReference(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9000000005")
	seedVariant(t, e, "WIRE-90M", 25)

	_, _, err := e.points.RecordEarning(EarnRequest{
		UserID:          user.ID,
		EarningTypeCode: "qr_scan",
		SKUVariantCode:  "WIRE-90M",
		Quantity:        1,
		SourceReference: "QR-AAA-002",
		Actor:           "test",
	})
	require.NoError(t, err)

	_, _, err = e.points.RecordEarning(EarnRequest{
		UserID:          user.ID,
		EarningTypeCode: "qr_scan",
		SKUVariantCode:  "WIRE-90M",
		Quantity:        1,
		SourceReference: "QR-AAA-002",
		Actor:           "test",
	})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))

	balance, err := e.points.Balance(user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(25), balance.PointsBalance)
}

func TestRecordEarningRequiresApprovedMember(t *testing.T) {
	e := newEnv(t)
	seedVariant(t, e, "WIRE-90M", 25)

	user := &model.User{
		Phone:           "9000000006",
		FullName:        "Pending Member",
		StakeholderType: model.StakeholderRetailer,
		ApprovalStatus:  model.StatusKYCPending,
		IsActive:        true,
	}
	require.NoError(t, e.db.Create(user).Error)
	require.NoError(t, e.db.Create(&model.RetailerProfile{UserID: user.ID}).Error)

	_, _, err := e.points.RecordEarning(EarnRequest{
		UserID:          user.ID,
		EarningTypeCode: "qr_scan",
		SKUVariantCode:  "WIRE-90M",
		Quantity:        1,
		SourceReference: "QR-AAA-003",
		Actor:           "test",
	})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))
}

func TestAdjustPointsWritesAdjustmentEntry(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9000000007")

	entry, err := e.points.AdjustPoints(AdjustRequest{
		UserID:    user.ID,
		EntryType: model.LedgerCredit,
		Amount:    500,
		Narration: "goodwill credit",
		Actor:     "admin",
	})
	require.NoError(t, err)
	require.Equal(t, int64(500), entry.ClosingBalance)
	require.Equal(t, "adjustment", entry.ReferenceKind)

	entries, total, err := e.points.Ledger(user.ID, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
}
