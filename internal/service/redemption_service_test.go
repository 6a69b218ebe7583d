package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/pkg/apperr"
)

func redemptionStatusCode(t *testing.T, e *env, redemptionID uuid.UUID) string {
	t.Helper()
	red, err := e.redemption.Get(redemptionID)
	require.NoError(t, err)
	require.NotNil(t, red.Status)
	return red.Status.Code
}

func TestSubmitAutoApprovesBelowDefaultThreshold(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9100000001")
	creditPoints(t, e, user, 2000)

	red, err := e.redemption.Submit(SubmitRedemptionRequest{
		UserID:     user.ID,
		RewardKind: model.RewardAmazonVoucher,
		Points:     500,
		Actor:      user.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, model.RedemptionApproved, redemptionStatusCode(t, e, red.ID))

	// Auto approval leaves a single synthetic audit row
	trail, err := e.redemption.AuditTrail(red.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	require.Equal(t, "system", trail[0].PerformedBy)
	require.Equal(t, model.ApprovalPending, trail[0].PreviousStatus)
	require.Equal(t, model.ApprovalApproved, trail[0].NewStatus)

	balance, err := e.points.Balance(user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1500), balance.PointsBalance)
	require.Equal(t, int64(500), balance.TotalRedeemed)
}

func TestSubmitAboveThresholdWaitsForApproval(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9100000002")
	creditPoints(t, e, user, 2000)

	red, err := e.redemption.Submit(SubmitRedemptionRequest{
		UserID:     user.ID,
		RewardKind: model.RewardAmazonVoucher,
		Points:     1500,
		Actor:      user.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, model.RedemptionPending, redemptionStatusCode(t, e, red.ID))

	// Points are debited at submit, not at approval
	balance, err := e.points.Balance(user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(500), balance.PointsBalance)
}

func TestThresholdRowOverridesDefaultPolicy(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9100000003")
	creditPoints(t, e, user, 2000)

	require.NoError(t, e.redemption.SetThreshold(&model.RedemptionThreshold{
		ThresholdType:    model.RewardAmazonVoucher,
		StakeholderType:  model.StakeholderRetailer,
		ThresholdValue:   100,
		RequiresApproval: true,
		ApprovalLevel:    "FINANCE",
	}))

	// 50 is below the default threshold, but the row demands approval
	red, err := e.redemption.Submit(SubmitRedemptionRequest{
		UserID:     user.ID,
		RewardKind: model.RewardAmazonVoucher,
		Points:     50,
		Actor:      user.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, model.RedemptionPending, redemptionStatusCode(t, e, red.ID))
}

func TestSubmitRejectsInsufficientBalance(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9100000004")
	creditPoints(t, e, user, 100)

	_, err := e.redemption.Submit(SubmitRedemptionRequest{
		UserID:     user.ID,
		RewardKind: model.RewardAmazonVoucher,
		Points:     500,
		Actor:      user.ID.String(),
	})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	// Rolled back: nothing debited, nothing recorded
	balance, err := e.points.Balance(user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(100), balance.PointsBalance)
	all, total, err := e.redemption.List(repository.RedemptionFilter{Limit: 10})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, all)
}

func TestApproveTwiceConflicts(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9100000005")
	creditPoints(t, e, user, 2000)
	admin := uuid.New()

	red, err := e.redemption.Submit(SubmitRedemptionRequest{
		UserID:     user.ID,
		RewardKind: model.RewardAmazonVoucher,
		Points:     1500,
		Actor:      user.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, e.redemption.Approve(DecisionRequest{RedemptionID: red.ID, AdminID: admin}))
	require.Equal(t, model.RedemptionApproved, redemptionStatusCode(t, e, red.ID))

	err = e.redemption.Approve(DecisionRequest{RedemptionID: red.ID, AdminID: admin})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))
}

func TestRejectRefundsPoints(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9100000006")
	creditPoints(t, e, user, 2000)
	admin := uuid.New()

	red, err := e.redemption.Submit(SubmitRedemptionRequest{
		UserID:     user.ID,
		RewardKind: model.RewardAmazonVoucher,
		Points:     1500,
		Actor:      user.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, e.redemption.Reject(DecisionRequest{
		RedemptionID: red.ID,
		AdminID:      admin,
		Notes:        "failed verification",
	}))
	require.Equal(t, model.RedemptionRejected, redemptionStatusCode(t, e, red.ID))

	// The refund restores the balance and unwinds total_redeemed
	balance, err := e.points.Balance(user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2000), balance.PointsBalance)
	require.Equal(t, int64(0), balance.TotalRedeemed)

	// Audit trail: submitted, then rejected
	trail, err := e.redemption.AuditTrail(red.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	require.Equal(t, model.ApprovalRejected, trail[len(trail)-1].NewStatus)
}

func TestEscalatedRedemptionCanStillBeDecided(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9100000007")
	creditPoints(t, e, user, 2000)
	admin := uuid.New()

	red, err := e.redemption.Submit(SubmitRedemptionRequest{
		UserID:     user.ID,
		RewardKind: model.RewardAmazonVoucher,
		Points:     1500,
		Actor:      user.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, e.redemption.Escalate(DecisionRequest{
		RedemptionID: red.ID,
		AdminID:      admin,
		Notes:        "needs senior sign-off",
	}))
	require.Equal(t, model.RedemptionEscalated, redemptionStatusCode(t, e, red.ID))

	// Escalating a second time is not allowed
	err = e.redemption.Escalate(DecisionRequest{RedemptionID: red.ID, AdminID: admin})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))

	require.NoError(t, e.redemption.Approve(DecisionRequest{RedemptionID: red.ID, AdminID: admin}))
	require.Equal(t, model.RedemptionApproved, redemptionStatusCode(t, e, red.ID))
}

func TestPhysicalRewardStockReservedAtSubmit(t *testing.T) {
	e := newEnv(t)
	first := approvedRetailer(t, e, "9100000008")
	second := approvedRetailer(t, e, "9100000009")
	creditPoints(t, e, first, 2000)
	creditPoints(t, e, second, 2000)

	reward := &model.PhysicalReward{
		Name:       "Mixer Grinder",
		PointsCost: 300,
		StockCount: 1,
		IsActive:   true,
	}
	require.NoError(t, e.redemption.SavePhysicalReward(reward))

	red, err := e.redemption.Submit(SubmitRedemptionRequest{
		UserID:           first.ID,
		RewardKind:       model.RewardPhysical,
		PhysicalRewardID: &reward.ID,
		Actor:            first.ID.String(),
	})
	require.NoError(t, err)
	// Cost comes from the catalogue, not the request
	require.Equal(t, int64(300), red.Points)

	_, err = e.redemption.Submit(SubmitRedemptionRequest{
		UserID:           second.ID,
		RewardKind:       model.RewardPhysical,
		PhysicalRewardID: &reward.ID,
		Actor:            second.ID.String(),
	})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))

	// The failed submit must not have debited the second member
	balance, err := e.points.Balance(second.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2000), balance.PointsBalance)
}

func TestFulfillVoucherRecordsAmazonOrder(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9100000010")
	creditPoints(t, e, user, 2000)
	admin := uuid.New()

	red, err := e.redemption.Submit(SubmitRedemptionRequest{
		UserID:     user.ID,
		RewardKind: model.RewardAmazonVoucher,
		Points:     500,
		Actor:      user.ID.String(),
	})
	require.NoError(t, err)
	// 500 auto-approves, so it is immediately fulfillable

	// Voucher fulfilment without an order reference is rejected
	err = e.redemption.Fulfill(FulfillRequest{RedemptionID: red.ID, AdminID: admin})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	require.NoError(t, e.redemption.Fulfill(FulfillRequest{
		RedemptionID:  red.ID,
		AdminID:       admin,
		AmazonOrderID: "AMZ-404-7788",
		OrderStatus:   "placed",
		OrderData:     datatypes.JSON(`{"asin":"B0TEST","quantity":1}`),
	}))
	require.Equal(t, model.RedemptionFulfilled, redemptionStatusCode(t, e, red.ID))

	orders, err := e.redemption.AmazonOrdersForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "AMZ-404-7788", orders[0].AmazonOrderID)
	require.JSONEq(t, `{"asin":"B0TEST","quantity":1}`, string(orders[0].OrderData))
}

func TestFulfillIsOneShot(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9100000012")
	creditPoints(t, e, user, 2000)
	admin := uuid.New()

	red, err := e.redemption.Submit(SubmitRedemptionRequest{
		UserID:     user.ID,
		RewardKind: model.RewardAmazonVoucher,
		Points:     500,
		Actor:      user.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, e.redemption.Fulfill(FulfillRequest{
		RedemptionID:  red.ID,
		AdminID:       admin,
		AmazonOrderID: "AMZ-500-0001",
		OrderStatus:   "placed",
	}))

	// A second admin repeating the fulfilment must lose the status race and
	// leave a single marketplace order behind
	err = e.redemption.Fulfill(FulfillRequest{
		RedemptionID:  red.ID,
		AdminID:       uuid.New(),
		AmazonOrderID: "AMZ-500-0002",
		OrderStatus:   "placed",
	})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))

	orders, err := e.redemption.AmazonOrdersForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "AMZ-500-0001", orders[0].AmazonOrderID)
}

func TestFulfillRequiresApprovedStatus(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9100000011")
	creditPoints(t, e, user, 2000)
	admin := uuid.New()

	red, err := e.redemption.Submit(SubmitRedemptionRequest{
		UserID:     user.ID,
		RewardKind: model.RewardBankTransfer,
		Points:     1500,
		Actor:      user.ID.String(),
	})
	require.NoError(t, err)

	err = e.redemption.Fulfill(FulfillRequest{RedemptionID: red.ID, AdminID: admin})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))
}
