package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/pkg/apperr"
)

func TestCreateVariantRejectsDuplicateCode(t *testing.T) {
	e := newEnv(t)
	variant := seedVariant(t, e, "SWITCH-6A", 10)

	_, err := e.sku.CreateVariant(CreateVariantRequest{
		SKUEntityID: variant.SKUEntityID,
		Name:        "Another 6A Switch",
		VariantCode: "SWITCH-6A",
		Actor:       "test",
	})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))

	_, err = e.sku.CreateVariant(CreateVariantRequest{
		SKUEntityID: variant.SKUEntityID,
		Name:        "Bad Price",
		VariantCode: "SWITCH-16A",
		MRP:         "not-a-number",
		Actor:       "test",
	})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))
}

func TestVariantDefaultsToInnerSingleUnit(t *testing.T) {
	e := newEnv(t)
	variant := seedVariant(t, e, "FAN-1200", 10)

	require.Equal(t, model.InventoryInner, variant.InventoryType)
	require.Equal(t, 1, variant.UnitsPerPack)
	require.True(t, variant.IsActive)

	variants, err := e.sku.VariantsForEntity(variant.SKUEntityID)
	require.NoError(t, err)
	require.Len(t, variants, 1)
}

func TestNewestPointConfigWinsAtEarnTime(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9700000001")
	variant := seedVariant(t, e, "WIRE-45M", 10)

	// A newer config supersedes the one seeded at 10 points
	later := time.Now().Add(time.Millisecond)
	_, err := e.sku.SetPointConfig(PointConfigRequest{
		SKUVariantID:    variant.ID,
		StakeholderType: model.StakeholderRetailer,
		Points:          40,
		EffectiveFrom:   &later,
		Actor:           "test",
	})
	require.NoError(t, err)

	// A future config must not apply yet
	future := time.Now().Add(24 * time.Hour)
	_, err = e.sku.SetPointConfig(PointConfigRequest{
		SKUVariantID:    variant.ID,
		StakeholderType: model.StakeholderRetailer,
		Points:          99,
		EffectiveFrom:   &future,
		Actor:           "test",
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	txn, _, err := e.points.RecordEarning(EarnRequest{
		UserID:          user.ID,
		EarningTypeCode: "qr_scan",
		SKUVariantCode:  "WIRE-45M",
		Quantity:        2,
		SourceReference: "QR-CFG-001",
		Actor:           "test",
	})
	require.NoError(t, err)
	require.Equal(t, int64(80), txn.Points)
}

func TestPointConfigOnlyAppliesToItsStakeholderType(t *testing.T) {
	e := newEnv(t)
	variant := seedVariant(t, e, "MCB-32A", 15) // retailer config only

	electrician, err := e.users.RegisterMember(RegisterMemberRequest{
		Phone:           "9700000002",
		FullName:        "Working Electrician",
		StakeholderType: model.StakeholderElectrician,
		Actor:           "test",
	})
	require.NoError(t, err)
	require.NoError(t, e.db.Model(electrician).Update("approval_status", model.StatusApproved).Error)

	_, _, err = e.points.RecordEarning(EarnRequest{
		UserID:          electrician.ID,
		EarningTypeCode: "qr_scan",
		SKUVariantCode:  "MCB-32A",
		SourceReference: "QR-CFG-002",
		Actor:           "test",
	})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	// Configured for electricians, the same scan goes through
	_, err = e.sku.SetPointConfig(PointConfigRequest{
		SKUVariantID:    variant.ID,
		StakeholderType: model.StakeholderElectrician,
		Points:          20,
		Actor:           "test",
	})
	require.NoError(t, err)

	txn, _, err := e.points.RecordEarning(EarnRequest{
		UserID:          electrician.ID,
		EarningTypeCode: "qr_scan",
		SKUVariantCode:  "MCB-32A",
		SourceReference: "QR-CFG-003",
		Actor:           "test",
	})
	require.NoError(t, err)
	require.Equal(t, int64(20), txn.Points)
}

func TestGrantAccessListsEntities(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9700000003")
	variant := seedVariant(t, e, "TUBE-20W", 10)

	require.NoError(t, e.sku.GrantAccess(user.ID, variant.SKUEntityID, "admin"))

	ids, err := e.sku.AccessEntityIDs(user.ID)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	require.Equal(t, variant.SKUEntityID, ids[0])
}
