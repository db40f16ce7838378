package routes

import (
	"time"

	"club-membership/internal/adapters/http/handlers"
	"club-membership/internal/adapters/http/middleware"
	"club-membership/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	User       *handlers.UserHandler
	Master     *handlers.MasterHandler
	Semester   *handlers.SemesterHandler
	Membership *handlers.MembershipHandler
	Rule       *handlers.RuleHandler
	Exemption  *handlers.ExemptionHandler
	Attendance *handlers.AttendanceHandler
	Summary    *handlers.SummaryHandler
}

// Setup configures all routes for the application
func Setup(app *fiber.App, h *Handlers, cfg *config.Config) {
	// Health check & root routes
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, h, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(router fiber.Router, h *Handlers, cfg *config.Config) {
	router.Get("/", h.Health.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, h.Auth, cfg)

	// Batch status runs (Officer/Admin, org checked against the body)
	router.Post("/finalizeSemester",
		middleware.AuthMiddleware(cfg), middleware.OfficerOrAdmin(), middleware.RunRateLimiter(),
		h.Semester.FinalizeSemester)
	router.Post("/reEvaluateStatus",
		middleware.AuthMiddleware(cfg), middleware.OfficerOrAdmin(), middleware.RunRateLimiter(),
		h.Semester.ReEvaluateStatus)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, h.User)

	// Profile routes (Authenticated)
	profileRoutes := router.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	profileRoutes.Put("/password", h.User.ChangePassword)

	// Master data
	masterRoutes := router.Group("/master")
	masterRoutes.Use(middleware.AuthMiddleware(cfg))
	masterRoutes.Use(middleware.OfficerOrAdmin())
	setupMasterRoutes(masterRoutes, h.Master)

	// Expired exemption report (Admin only)
	router.Get("/exemptions/expired",
		middleware.AuthMiddleware(cfg), middleware.AdminOnly(), middleware.NoCacheHeaders(),
		h.Exemption.ListExpiredExemptions)

	// Organization-scoped routes (Officer of the org or Admin)
	orgRoutes := router.Group("/orgs/:orgID")
	orgRoutes.Use(middleware.AuthMiddleware(cfg))
	orgRoutes.Use(middleware.OfficerOrAdmin())
	orgRoutes.Use(middleware.OrgScope())
	setupOrgRoutes(orgRoutes, h)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders(), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Post("/", handler.CreateUser)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeleteUser)
}

// setupMasterRoutes configures master data routes; writes are Admin only
func setupMasterRoutes(router fiber.Router, handler *handlers.MasterHandler) {
	router.Get("/semesters", middleware.PrivateCacheHeaders(5*time.Minute), handler.ListSemesters)
	router.Post("/semesters", middleware.AdminOnly(), handler.CreateSemester)

	router.Get("/organizations", handler.ListOrganizations)
	router.Post("/organizations", middleware.AdminOnly(), handler.CreateOrganization)

	router.Get("/members", handler.SearchMembers)
	router.Post("/members", handler.CreateMember)
	router.Patch("/members/:id", handler.UpdateMember)
}

// setupOrgRoutes configures routes under /orgs/:orgID
func setupOrgRoutes(router fiber.Router, h *Handlers) {
	sem := router.Group("/semesters/:semesterID")

	// Roster and status
	sem.Get("/members", h.Membership.ListMembers)
	sem.Post("/members", h.Master.EnrollMember)
	sem.Get("/members/:memberID/status", middleware.NoCacheHeaders(), h.Membership.GetMemberStatus)
	sem.Get("/members/:memberID/attendance", h.Attendance.MemberAttendance)
	sem.Get("/summary", middleware.NoCacheHeaders(), h.Summary.GetSemesterSummary)

	// Rule configuration
	sem.Get("/event-types", h.Rule.ListEventTypes)
	sem.Post("/event-types", h.Rule.CreateEventType)
	sem.Get("/requirement", h.Rule.GetRequirement)
	sem.Put("/requirement", h.Rule.SetRequirement)
	router.Put("/event-types/:id", h.Rule.UpdateEventType)
	router.Delete("/event-types/:id", h.Rule.DeleteEventType)
	router.Post("/event-types/:id/rules", h.Rule.CreateRule)
	router.Put("/rules/:id", h.Rule.UpdateRule)
	router.Delete("/rules/:id", h.Rule.DeleteRule)

	// Events and attendance
	sem.Get("/events", h.Attendance.ListEvents)
	router.Post("/events", h.Attendance.CreateEvent)
	router.Post("/attendance", h.Attendance.CheckIn)

	// Exemptions
	router.Get("/exemptions", h.Exemption.ListExemptions)
	router.Post("/exemptions", h.Exemption.GrantExemption)
	router.Delete("/members/:memberID/exemption", h.Exemption.RevokeExemption)
}
