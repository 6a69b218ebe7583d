package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/pkg/apperr"
)

func adminUser(t *testing.T, e *env, phone string) *model.User {
	t.Helper()
	role := &model.Role{Code: "SUPPORT_ADMIN_" + phone, Name: "Support Admin"}
	require.NoError(t, e.db.Create(role).Error)

	email := phone + "@example.com"
	user := &model.User{
		Phone:    phone,
		Email:    &email,
		FullName: "Support Admin",
		RoleID:   &role.ID,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func ticketStatusCode(t *testing.T, e *env, ticketID uuid.UUID) string {
	t.Helper()
	ticket, err := e.tickets.Get(ticketID)
	require.NoError(t, err)
	require.NotNil(t, ticket.Status)
	return ticket.Status.Code
}

func TestCreateTicketDefaultsToOpenMedium(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9400000001")

	ticket, err := e.tickets.Create(CreateTicketRequest{
		UserID:   user.ID,
		TypeCode: "points",
		Subject:  "Points not credited for last scan",
		Actor:    user.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, model.PriorityMedium, ticket.Priority)
	require.Equal(t, model.TicketOpen, ticketStatusCode(t, e, ticket.ID))
}

func TestCreateTicketUnknownTypeRejected(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9400000002")

	_, err := e.tickets.Create(CreateTicketRequest{
		UserID:   user.ID,
		TypeCode: "nonexistent",
		Subject:  "whatever",
		Actor:    user.ID.String(),
	})
	require.Error(t, err)
	require.True(t, apperr.IsNotFound(err))
}

func TestAmazonTicketCarriesOrderLinkage(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9400000003")
	orderID := uuid.New()

	ticket, err := e.tickets.Create(CreateTicketRequest{
		UserID:        user.ID,
		TypeCode:      "redemption",
		Subject:       "Voucher never arrived",
		AmazonOrderID: &orderID,
		IssueCode:     "VOUCHER_NOT_DELIVERED",
		Actor:         user.ID.String(),
	})
	require.NoError(t, err)

	var at model.AmazonTicket
	require.NoError(t, e.db.Where("ticket_id = ?", ticket.ID).First(&at).Error)
	require.Equal(t, "VOUCHER_NOT_DELIVERED", at.IssueCode)
	require.NotNil(t, at.AmazonOrderID)
	require.Equal(t, orderID, *at.AmazonOrderID)
}

func TestTicketWritesRollBackTogether(t *testing.T) {
	e := newEnv(t)
	user := approvedRetailer(t, e, "9400000007")
	repo := repository.NewTicketRepo(e.db)

	ticketType, err := repo.TypeByCode("redemption")
	require.NoError(t, err)
	openStatus, err := repo.StatusByCode(model.TicketOpen)
	require.NoError(t, err)

	// Both inserts honor the supplied transaction, so aborting it leaves
	// neither row behind
	sentinel := errors.New("abort")
	err = repo.Transaction(func(tx *gorm.DB) error {
		ticket := &model.Ticket{
			UserID:   user.ID,
			TypeID:   ticketType.ID,
			StatusID: openStatus.ID,
			Priority: model.PriorityMedium,
			Subject:  "never lands",
		}
		if err := repo.Create(tx, ticket); err != nil {
			return err
		}
		orderID := uuid.New()
		at := &model.AmazonTicket{TicketID: ticket.ID, AmazonOrderID: &orderID}
		if err := repo.CreateAmazonTicket(tx, at); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	var ticketCount, amazonCount int64
	require.NoError(t, e.db.Model(&model.Ticket{}).Count(&ticketCount).Error)
	require.NoError(t, e.db.Model(&model.AmazonTicket{}).Count(&amazonCount).Error)
	require.Zero(t, ticketCount)
	require.Zero(t, amazonCount)
}

func TestAssignRequiresAdminUser(t *testing.T) {
	e := newEnv(t)
	member := approvedRetailer(t, e, "9400000004")

	ticket, err := e.tickets.Create(CreateTicketRequest{
		UserID:   member.ID,
		TypeCode: "app",
		Subject:  "App crashes on login",
		Actor:    member.ID.String(),
	})
	require.NoError(t, err)

	// Members have no role; they cannot take tickets
	err = e.tickets.Assign(ticket.ID, member.ID)
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	admin := adminUser(t, e, "8000000001")
	require.NoError(t, e.tickets.Assign(ticket.ID, admin.ID))
	require.Equal(t, model.TicketInProgress, ticketStatusCode(t, e, ticket.ID))
}

func TestResolveOnlyOnce(t *testing.T) {
	e := newEnv(t)
	member := approvedRetailer(t, e, "9400000005")
	admin := adminUser(t, e, "8000000002")

	ticket, err := e.tickets.Create(CreateTicketRequest{
		UserID:   member.ID,
		TypeCode: "kyc",
		Subject:  "KYC stuck in review",
		Actor:    member.ID.String(),
	})
	require.NoError(t, err)

	// Notes are mandatory
	err = e.tickets.Resolve(ResolveTicketRequest{TicketID: ticket.ID, AdminID: admin.ID})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	require.NoError(t, e.tickets.Resolve(ResolveTicketRequest{
		TicketID: ticket.ID,
		AdminID:  admin.ID,
		Notes:    "documents re-queued for review",
	}))
	require.Equal(t, model.TicketResolved, ticketStatusCode(t, e, ticket.ID))

	// A resolved ticket cannot be resolved again
	err = e.tickets.Resolve(ResolveTicketRequest{
		TicketID: ticket.ID,
		AdminID:  admin.ID,
		Notes:    "resolving twice",
	})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))

	got, err := e.tickets.Get(ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResolvedAt)
	require.Equal(t, "documents re-queued for review", got.ResolutionNotes)
}

func TestCloseRequiresResolved(t *testing.T) {
	e := newEnv(t)
	member := approvedRetailer(t, e, "9400000006")
	admin := adminUser(t, e, "8000000003")

	ticket, err := e.tickets.Create(CreateTicketRequest{
		UserID:   member.ID,
		TypeCode: "other",
		Subject:  "General question",
		Actor:    member.ID.String(),
	})
	require.NoError(t, err)

	// Open tickets cannot be closed directly
	err = e.tickets.Close(ticket.ID, admin.ID)
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))

	require.NoError(t, e.tickets.Resolve(ResolveTicketRequest{
		TicketID: ticket.ID,
		AdminID:  admin.ID,
		Notes:    "answered over the phone",
	}))
	require.NoError(t, e.tickets.Close(ticket.ID, admin.ID))
	require.Equal(t, model.TicketClosed, ticketStatusCode(t, e, ticket.ID))

	// Closed tickets stay out of the open queue
	open, total, err := e.tickets.List(repository.TicketFilter{StatusCode: model.TicketOpen, Limit: 10})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, open)
}
