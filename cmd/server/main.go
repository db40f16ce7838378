package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"club-membership/internal/adapters/http/handlers"
	"club-membership/internal/adapters/http/middleware"
	"club-membership/internal/adapters/http/routes"
	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/config"
	"club-membership/internal/core/services"
	"club-membership/internal/pkg/password"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	_ "club-membership/docs" // Swagger docs
)

// @title Club Membership API
// @version 1.0
// @description Membership status engine: rule evaluation, re-evaluation and semester finalization

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	password.SetCost(cfg.BcryptCost)

	tiers, err := services.ParseTierPolicy(cfg.Rules.TierPolicy)
	if err != nil {
		log.Fatalf("❌ Invalid RULES_TIER_POLICY: %v", err)
	}
	policy := services.EvaluationPolicy{
		Tiers:          tiers,
		ApplyMaxPoints: cfg.Rules.ApplyMaxPoints,
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	if cfg.Seed.Enabled {
		if err := config.NewSeeder(db, cfg.Seed).Run(); err != nil {
			log.Printf("⚠️ Warning: Failed to seed data: %v", err)
		}
	}

	h, cronService := wire(db, cfg, policy)

	if cfg.Cron.Enabled {
		if err := cronService.Start(); err != nil {
			log.Fatalf("❌ Failed to start cron: %v", err)
		}
		defer cronService.Stop()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Club Membership API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, h, cfg)

	go gracefulShutdown(app)

	log.Printf("🚀 Server starting on port %s [MODE: %s, tiers: %s]", cfg.Port, cfg.AppMode, policy.Tiers)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// wire builds repositories, services and handlers
func wire(db *gorm.DB, cfg *config.Config, policy services.EvaluationPolicy) (*routes.Handlers, *services.CronService) {
	tx := repositories.NewTransactor(db)
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	semesterRepo := repositories.NewSemesterRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	membershipRepo := repositories.NewMembershipRepository(db)
	ruleRepo := repositories.NewRuleRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)
	exemptionRepo := repositories.NewExemptionRepository(db)
	historyRepo := repositories.NewStatusHistoryRepository(db)

	evaluator := services.NewRuleEvaluator(policy)
	statusService := services.NewStatusService(ruleRepo, attendanceRepo, membershipRepo, historyRepo, evaluator)
	semesterService := services.NewSemesterService(tx, semesterRepo, membershipRepo, historyRepo, statusService)
	exemptionService := services.NewExemptionService(tx, exemptionRepo, semesterRepo, memberRepo, membershipRepo, historyRepo)
	ruleService := services.NewRuleConfigService(ruleRepo, semesterRepo)
	attendanceService := services.NewAttendanceService(attendanceRepo, ruleRepo, memberRepo)
	summaryService := services.NewSummaryService(membershipRepo, historyRepo)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, orgRepo, refreshTokenRepo)

	h := &routes.Handlers{
		Health:     handlers.NewHealthHandler(),
		Auth:       handlers.NewAuthHandler(authService, cfg),
		User:       handlers.NewUserHandler(userService),
		Master:     handlers.NewMasterHandler(orgRepo, semesterRepo, memberRepo, membershipRepo),
		Semester:   handlers.NewSemesterHandler(semesterService),
		Membership: handlers.NewMembershipHandler(statusService),
		Rule:       handlers.NewRuleHandler(ruleService),
		Exemption:  handlers.NewExemptionHandler(exemptionService),
		Attendance: handlers.NewAttendanceHandler(attendanceService),
		Summary:    handlers.NewSummaryHandler(summaryService),
	}

	return h, services.NewCronService(cfg.Cron.Schedule, refreshTokenRepo, exemptionService)
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
