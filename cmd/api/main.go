package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-rewards-admin/internal/handler"
	"go-rewards-admin/internal/middleware"
	"go-rewards-admin/internal/model"
	"go-rewards-admin/internal/repository"
	"go-rewards-admin/internal/service"
	"go-rewards-admin/internal/ws"
	"go-rewards-admin/pkg/config"
	"go-rewards-admin/pkg/database"
	"go-rewards-admin/pkg/jwt"
	"go-rewards-admin/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env and config
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: os.Getenv("LOG_LEVEL")})
	jwt.Configure(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpirationHours)

	// 2. Setup Database
	db := database.ConnectDB(cfg.DB)
	if err := autoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("auto-migration failed")
	}

	// 3. Seed lookups, privileges, roles, and the master admin
	seedDefaults(db, log)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
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
	misRepo := repository.NewMISRepo(db)

	authService := service.NewAuthService(userRepo, otpRepo)
	userService := service.NewUserService(userRepo, profileRepo, roleRepo, privilegeRepo, auditRepo)
	hierarchyService := service.NewHierarchyService(hierarchyRepo)
	pointsService := service.NewPointsService(pointsRepo, profileRepo, userRepo, skuRepo)
	redemptionService := service.NewRedemptionService(redemptionRepo, userRepo, auditRepo, pointsService, cfg.Redemption, wsHub)
	skuService := service.NewSKUService(skuRepo, hierarchyRepo, userRepo)
	kycService := service.NewKYCService(kycRepo, userRepo, auditRepo, wsHub)
	ticketService := service.NewTicketService(ticketRepo, userRepo, auditRepo, wsHub)
	dashboardService := service.NewDashboardService(misRepo)

	authHandler := handler.NewAuthHandler(authService)
	memberHandler := handler.NewMemberHandler(userService)
	adminHandler := handler.NewAdminHandler(userService)
	hierarchyHandler := handler.NewHierarchyHandler(hierarchyService)
	pointsHandler := handler.NewPointsHandler(pointsService)
	redemptionHandler := handler.NewRedemptionHandler(redemptionService)
	skuHandler := handler.NewSKUHandler(skuService)
	kycHandler := handler.NewKYCHandler(kycService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/otp", authHandler.IssueOTP)
	auth.Post("/otp/verify", authHandler.VerifyOTP)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard / MIS
	protected.Get("/dashboard/stats", middleware.RequirePrivilege("dashboard:view"), dashboardHandler.Stats)
	protected.Get("/dashboard/points-movement", middleware.RequirePrivilege("mis:view"), dashboardHandler.PointsMovement)
	protected.Get("/dashboard/member-counts", middleware.RequirePrivilege("mis:view"), dashboardHandler.MemberCounts)
	protected.Get("/dashboard/top-earners", middleware.RequirePrivilege("mis:view"), dashboardHandler.TopEarners)

	// Member management
	protected.Get("/members", middleware.RequirePrivilege("member:view"), memberHandler.List)
	protected.Post("/members", middleware.RequirePrivilege("member:create"), memberHandler.Register)
	protected.Get("/members/:id", middleware.RequirePrivilege("member:view"), memberHandler.Get)
	protected.Patch("/members/:id/status", middleware.RequirePrivilege("member:block"), memberHandler.SetStatus)
	protected.Patch("/members/:id/referrer", middleware.RequirePrivilege("member:update"), memberHandler.SetReferrer)
	protected.Get("/members/:id/scopes", middleware.RequirePrivilege("member:view"), memberHandler.Scopes)
	protected.Post("/members/:id/scopes", middleware.RequirePrivilege("member:update"), memberHandler.AssignScope)

	// Master hierarchies
	protected.Get("/hierarchies/:kind/levels/:levelNumber/nodes", middleware.RequirePrivilege("master:view"), hierarchyHandler.AtLevel)
	protected.Post("/hierarchies/:kind/levels", middleware.RequirePrivilege("master:manage"), hierarchyHandler.CreateLevel)
	protected.Post("/hierarchies/:kind/nodes", middleware.RequirePrivilege("master:manage"), hierarchyHandler.CreateNode)
	protected.Get("/hierarchies/:kind/nodes/:id/children", middleware.RequirePrivilege("master:view"), hierarchyHandler.Children)
	protected.Get("/hierarchies/:kind/nodes/:id/ancestors", middleware.RequirePrivilege("master:view"), hierarchyHandler.Ancestors)
	protected.Get("/hierarchies/:kind/nodes/:id/descendants", middleware.RequirePrivilege("master:view"), hierarchyHandler.Descendants)
	protected.Patch("/hierarchies/:kind/nodes/:id/parent", middleware.RequirePrivilege("master:manage"), hierarchyHandler.Reparent)

	// SKU catalogue
	protected.Post("/skus/variants", middleware.RequirePrivilege("master:manage"), skuHandler.CreateVariant)
	protected.Get("/skus/:entityId/variants", middleware.RequirePrivilege("master:view"), skuHandler.Variants)
	protected.Post("/skus/point-configs", middleware.RequirePrivilege("master:manage"), skuHandler.SetPointConfig)
	protected.Post("/skus/access", middleware.RequirePrivilege("master:manage"), skuHandler.GrantAccess)

	// Points
	protected.Post("/points/earn", middleware.RequirePrivilege("points:adjust"), pointsHandler.RecordEarning)
	protected.Post("/points/adjust", middleware.RequirePrivilege("points:adjust"), pointsHandler.Adjust)
	protected.Get("/points/:userId/balance", middleware.RequirePrivilege("points:view"), pointsHandler.Balance)
	protected.Get("/points/:userId/ledger", middleware.RequirePrivilege("points:view"), pointsHandler.Ledger)
	protected.Get("/points/:userId/transactions", middleware.RequirePrivilege("points:view"), pointsHandler.Transactions)

	// Redemptions
	protected.Post("/redemptions", middleware.RequirePrivilege("redemption:view"), redemptionHandler.Submit)
	protected.Get("/redemptions", middleware.RequirePrivilege("redemption:view"), redemptionHandler.List)
	protected.Put("/redemptions/thresholds", middleware.RequirePrivilege("redemption:approve"), redemptionHandler.SetThreshold)
	protected.Get("/redemptions/rewards", middleware.RequirePrivilege("redemption:view"), redemptionHandler.ListRewards)
	protected.Put("/redemptions/rewards", middleware.RequirePrivilege("redemption:approve"), redemptionHandler.SaveReward)
	protected.Get("/redemptions/amazon-orders/:userId", middleware.RequirePrivilege("redemption:view"), redemptionHandler.AmazonOrders)
	protected.Get("/redemptions/:id", middleware.RequirePrivilege("redemption:view"), redemptionHandler.Get)
	protected.Get("/redemptions/:id/audit", middleware.RequirePrivilege("redemption:view"), redemptionHandler.AuditTrail)
	protected.Post("/redemptions/:id/approve", middleware.RequirePrivilege("redemption:approve"), redemptionHandler.Approve)
	protected.Post("/redemptions/:id/reject", middleware.RequirePrivilege("redemption:approve"), redemptionHandler.Reject)
	protected.Post("/redemptions/:id/escalate", middleware.RequirePrivilege("redemption:escalate"), redemptionHandler.Escalate)
	protected.Post("/redemptions/:id/fulfill", middleware.RequirePrivilege("redemption:approve"), redemptionHandler.Fulfill)

	// KYC
	protected.Post("/kyc/documents", middleware.RequirePrivilege("kyc:view"), kycHandler.Submit)
	protected.Get("/kyc/pending", middleware.RequirePrivilege("kyc:view"), kycHandler.Pending)
	protected.Get("/kyc/users/:userId", middleware.RequirePrivilege("kyc:view"), kycHandler.ForUser)
	protected.Post("/kyc/documents/:id/decide", middleware.RequirePrivilege("kyc:verify"), kycHandler.Decide)

	// Tickets
	protected.Post("/tickets", middleware.RequirePrivilege("ticket:view"), ticketHandler.Create)
	protected.Get("/tickets", middleware.RequirePrivilege("ticket:view"), ticketHandler.List)
	protected.Get("/tickets/:id", middleware.RequirePrivilege("ticket:view"), ticketHandler.Get)
	protected.Post("/tickets/:id/assign", middleware.RequirePrivilege("ticket:manage"), ticketHandler.Assign)
	protected.Post("/tickets/:id/resolve", middleware.RequirePrivilege("ticket:manage"), ticketHandler.Resolve)
	protected.Post("/tickets/:id/close", middleware.RequirePrivilege("ticket:manage"), ticketHandler.Close)

	// Admin users
	protected.Get("/admins", middleware.RequirePrivilege("user:view"), adminHandler.List)
	protected.Post("/admins", middleware.RequirePrivilege("user:create"), adminHandler.Create)
	protected.Put("/admins/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), adminHandler.SetPrivileges)
	protected.Post("/admins/:id/deactivate", middleware.RequirePrivilege("user:update"), adminHandler.Deactivate)

	// Roles and privileges lookup
	protected.Get("/roles", func(c *fiber.Ctx) error {
		roles, err := roleRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch roles"})
		}
		return c.JSON(roles)
	})
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.App.Port)); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
	)
}

// seedDefaults creates lookup rows, default privileges/roles, and the master
// admin user if they don't exist.
func seedDefaults(db *gorm.DB, log *logger.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)
	pointsRepo := repository.NewPointsRepo(db)
	redemptionRepo := repository.NewRedemptionRepo(db)
	ticketRepo := repository.NewTicketRepo(db)

	// 1. Privileges and roles first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Warn().Err(err).Msg("failed to seed privileges")
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Warn().Err(err).Msg("failed to seed roles")
	}

	// 2. Domain lookups
	if err := pointsRepo.SeedEarningTypes(); err != nil {
		log.Warn().Err(err).Msg("failed to seed earning types")
	}
	if err := redemptionRepo.SeedStatuses(); err != nil {
		log.Warn().Err(err).Msg("failed to seed redemption statuses")
	}
	if err := ticketRepo.SeedLookups(); err != nil {
		log.Warn().Err(err).Msg("failed to seed ticket lookups")
	}

	// 3. Role -> privilege assignments
	allPrivileges, _ := privilegeRepo.FindAll()

	assign := func(roleCode string, keep func(code string) bool) {
		role, err := roleRepo.FindByCode(roleCode)
		if err != nil || len(role.Privileges) > 0 {
			return
		}
		var privileges []model.Privilege
		for _, p := range allPrivileges {
			if keep(p.Code) {
				privileges = append(privileges, p)
			}
		}
		if err := db.Model(role).Association("Privileges").Replace(privileges); err != nil {
			log.Warn().Err(err).Str("role", roleCode).Msg("failed to assign role privileges")
		}
	}

	// MASTER_ADMIN gets everything
	assign(model.RoleMasterAdmin, func(string) bool { return true })
	// ADMIN gets everything except admin-user management
	assign(model.RoleAdmin, func(code string) bool {
		return code != "user:create" && code != "user:update" &&
			code != "user:delete" && code != "user:update_privilege"
	})
	// FINANCE_ADMIN handles redemptions, points, and reporting
	assign(model.RoleFinanceAdmin, func(code string) bool {
		switch code {
		case "redemption:view", "redemption:approve", "redemption:escalate",
			"points:view", "dashboard:view", "mis:view", "member:view":
			return true
		}
		return false
	})
	// SUPPORT_ADMIN handles tickets and member support
	assign(model.RoleSupportAdmin, func(code string) bool {
		switch code {
		case "ticket:view", "ticket:manage", "member:view", "kyc:view", "dashboard:view":
			return true
		}
		return false
	})

	// 4. Master admin user
	adminEmail := "admin@example.com"
	if _, err := userRepo.FindByEmail(adminEmail); err != nil {
		masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
		if err != nil {
			log.Warn().Err(err).Msg("master role missing, skipping admin seed")
			return
		}

		admin := &model.User{
			Email:          &adminEmail,
			Phone:          "0000000000",
			FullName:       "Master Administrator",
			RoleID:         &masterRole.ID,
			IsActive:       true,
			ApprovalStatus: model.StatusNone,
			Privileges:     masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Warn().Err(err).Msg("failed to hash admin password")
			return
		}
		if err := userRepo.Create(nil, admin); err != nil {
			log.Warn().Err(err).Msg("failed to create admin user")
		} else {
			log.Info().Str("email", adminEmail).Msg("admin user created")
		}
	}
}
