package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/internal/ws"
	"go-rewards-admin/pkg/config"
)

// newTestDB opens a per-test in-memory database to avoid cross-test
// interference, migrates the full schema and seeds the lookup tables.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Privilege{},
		&model.UserScopeMapping{},
		&model.RetailerProfile{},
		&model.ElectricianProfile{},
		&model.CounterSalesProfile{},
		&model.LocationLevelMaster{},
		&model.LocationEntity{},
		&model.SKULevelMaster{},
		&model.SKUEntity{},
		&model.SKUVariant{},
		&model.SKUPointConfig{},
		&model.ParticipantSKUAccess{},
		&model.UserTypeLevelMaster{},
		&model.UserTypeEntity{},
		&model.EarningType{},
		&model.PointTransaction{},
		&model.PointTransactionLog{},
		&model.PointLedger{},
		&model.RedemptionStatus{},
		&model.Redemption{},
		&model.RedemptionApproval{},
		&model.ApprovalAuditLog{},
		&model.RedemptionThreshold{},
		&model.PhysicalReward{},
		&model.UserAmazonOrder{},
		&model.KYCDocument{},
		&model.TicketStatus{},
		&model.TicketType{},
		&model.Ticket{},
		&model.AmazonTicket{},
		&model.OTPMaster{},
		&model.AuditLog{},
		&model.SystemLog{},
		&model.Notification{},
	))

	require.NoError(t, repository.NewPointsRepo(db).SeedEarningTypes())
	require.NoError(t, repository.NewRedemptionRepo(db).SeedStatuses())
	require.NoError(t, repository.NewTicketRepo(db).SeedLookups())

	return db
}

// env bundles every service wired against one test database.
type env struct {
	db         *gorm.DB
	users      UserService
	points     PointsService
	redemption RedemptionService
	hierarchy  HierarchyService
	sku        SKUService
	kyc        KYCService
	tickets    TicketService
	auth       AuthService
	dashboard  DashboardService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := newTestDB(t)
	hub := ws.NewHub()

	userRepo := repository.NewUserRepo(db)
	profileRepo := repository.NewProfileRepo(db)
	hierarchyRepo := repository.NewHierarchyRepo(db)
	pointsRepo := repository.NewPointsRepo(db)
	redemptionRepo := repository.NewRedemptionRepo(db)
	skuRepo := repository.NewSKURepo(db)
	kycRepo := repository.NewKYCRepo(db)
	ticketRepo := repository.NewTicketRepo(db)
	otpRepo := repository.NewOTPRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)

	points := NewPointsService(pointsRepo, profileRepo, userRepo, skuRepo)
	return &env{
		db:     db,
		users:  NewUserService(userRepo, profileRepo, roleRepo, privilegeRepo, auditRepo),
		points: points,
		redemption: NewRedemptionService(redemptionRepo, userRepo, auditRepo, points, config.RedemptionConfig{
			DefaultThreshold:     1000,
			DefaultApprovalLevel: "FINANCE",
		}, hub),
		hierarchy: NewHierarchyService(hierarchyRepo),
		sku:       NewSKUService(skuRepo, hierarchyRepo, userRepo),
		kyc:       NewKYCService(kycRepo, userRepo, auditRepo, hub),
		tickets:   NewTicketService(ticketRepo, userRepo, auditRepo, hub),
		auth:      NewAuthService(userRepo, otpRepo),
		dashboard: NewDashboardService(repository.NewMISRepo(db)),
	}
}

// approvedRetailer creates an approved retailer member with a profile.
func approvedRetailer(t *testing.T, e *env, phone string) *model.User {
	t.Helper()
	user := &model.User{
		Phone:           phone,
		FullName:        "Test Retailer " + phone,
		StakeholderType: model.StakeholderRetailer,
		ApprovalStatus:  model.StatusApproved,
		IsActive:        true,
	}
	require.NoError(t, e.db.Create(user).Error)
	require.NoError(t, e.db.Create(&model.RetailerProfile{UserID: user.ID, ShopName: "Shop " + phone}).Error)
	return user
}

// creditPoints gives a member an opening balance through the ledger writer.
func creditPoints(t *testing.T, e *env, user *model.User, amount int64) {
	t.Helper()
	_, err := e.points.PostEntry(LedgerRequest{
		UserID:          user.ID,
		StakeholderType: user.StakeholderType,
		EntryType:       model.LedgerCredit,
		Amount:          amount,
		ReferenceKind:   "adjustment",
		Narration:       "test opening balance",
		Actor:           "test",
	})
	require.NoError(t, err)
}
