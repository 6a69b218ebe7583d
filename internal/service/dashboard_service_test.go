package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/pkg/apperr"
)

func TestDashboardStatsCountActivity(t *testing.T) {
	e := newEnv(t)
	member := approvedRetailer(t, e, "9600000001")
	creditPoints(t, e, member, 2000)

	_, err := e.redemption.Submit(SubmitRedemptionRequest{
		UserID:     member.ID,
		RewardKind: model.RewardAmazonVoucher,
		Points:     1500, // above threshold, stays pending
		Actor:      member.ID.String(),
	})
	require.NoError(t, err)

	_, err = e.tickets.Create(CreateTicketRequest{
		UserID:   member.ID,
		TypeCode: "points",
		Subject:  "Missing points",
		Actor:    member.ID.String(),
	})
	require.NoError(t, err)

	stats, err := e.dashboard.Stats()
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalMembers)
	require.Equal(t, int64(1), stats.PendingApprovals)
	require.Equal(t, int64(1), stats.OpenTickets)
	require.Equal(t, int64(2000), stats.PointsIssued)
	require.Equal(t, int64(1500), stats.PointsRedeemed)
}

func TestPointsMovementAggregatesByDay(t *testing.T) {
	e := newEnv(t)
	member := approvedRetailer(t, e, "9600000002")
	creditPoints(t, e, member, 300)
	creditPoints(t, e, member, 200)

	today := time.Now().Format("2006-01-02")
	movement, err := e.dashboard.PointsMovement(
		time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
		time.Now().AddDate(0, 0, 1).Format("2006-01-02"))
	require.NoError(t, err)
	require.Len(t, movement, 1)
	require.Equal(t, today, movement[0].Date)
	require.Equal(t, int64(500), movement[0].Issued)
	require.Equal(t, int64(0), movement[0].Redeemed)
}

func TestPointsMovementRejectsBadDates(t *testing.T) {
	e := newEnv(t)

	_, err := e.dashboard.PointsMovement("not-a-date", "")
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	_, err = e.dashboard.PointsMovement("2026-08-10", "2026-08-01")
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))
}

func TestTopEarnersOrdersByCredits(t *testing.T) {
	e := newEnv(t)
	small := approvedRetailer(t, e, "9600000003")
	big := approvedRetailer(t, e, "9600000004")
	creditPoints(t, e, small, 100)
	creditPoints(t, e, big, 900)

	rows, err := e.dashboard.TopEarners("", "", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, big.ID.String(), rows[0].UserID)
	require.Equal(t, int64(900), rows[0].Earned)
	require.Equal(t, small.ID.String(), rows[1].UserID)
}

func TestMemberCountsGroupByTypeAndStatus(t *testing.T) {
	e := newEnv(t)
	approvedRetailer(t, e, "9600000005")
	approvedRetailer(t, e, "9600000006")
	_, err := e.users.RegisterMember(RegisterMemberRequest{
		Phone:           "9600000007",
		FullName:        "New Electrician",
		StakeholderType: model.StakeholderElectrician,
		Actor:           "test",
	})
	require.NoError(t, err)

	rows, err := e.dashboard.MemberCounts()
	require.NoError(t, err)

	byKey := map[string]int64{}
	for _, row := range rows {
		byKey[row.StakeholderType+"/"+row.ApprovalStatus] = row.Count
	}
	require.Equal(t, int64(2), byKey["retailer/approved"])
	require.Equal(t, int64(1), byKey["electrician/basic_registration"])
}
