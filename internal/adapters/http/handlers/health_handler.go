package handlers

import (
	"time"

	"club-membership/internal/config"

	"github.com/gofiber/fiber/v2"
)

// Version is the API version reported by the info endpoints
const Version = "1.0.0"

// HealthHandler handles health check endpoints
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	mode := ""
	if config.AppConfig != nil {
		mode = config.AppConfig.AppMode
	}
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🚀 Club Membership API is running",
		"mode":    mode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck reports API and database health; 503 when the database is unreachable
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	began := time.Now()
	dbErr := config.HealthCheck()
	pingMs := time.Since(began).Milliseconds()

	database := fiber.Map{"status": "healthy", "ping_ms": pingMs}
	overall, code := "ok", fiber.StatusOK
	if dbErr != nil {
		database = fiber.Map{"status": "unhealthy"}
		overall, code = "degraded", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":         overall,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"checks": fiber.Map{
			"api":      "healthy",
			"database": database,
		},
	})
}

// APIInfo handles API v1 info
// @Summary API v1 info
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Club Membership API v1",
		"version": Version,
	})
}
