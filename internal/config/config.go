package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode    string
	Port       string
	BcryptCost int
	Database   DatabaseConfig
	JWT        JWTConfig
	Cookie     CookieConfig
	Rules      RulesConfig
	Cron       CronConfig
	Seed       SeedConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql | sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Path     string // sqlite file
	MaxOpen  int
	MaxIdle  int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
	MaxSessions      int // live refresh tokens kept per officer; 0 disables the cap
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// RulesConfig holds rule evaluation policy
type RulesConfig struct {
	TierPolicy     string // stack | highest
	ApplyMaxPoints bool
}

// CronConfig holds background job configuration
type CronConfig struct {
	Enabled  bool
	Schedule string
}

// SeedConfig holds development seed configuration
type SeedConfig struct {
	Enabled         bool
	RulesFile       string
	AdminUsername   string
	AdminPassword   string
	OfficerPassword string // shared by the officers listed in RulesFile
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	// Build config based on APP_MODE
	bcryptCost, _ := strconv.Atoi(getEnv("BCRYPT_COST", "12"))

	config := &Config{
		AppMode:    appMode,
		Port:       getEnv("PORT", "3000"),
		BcryptCost: bcryptCost,
		Database:   loadDatabaseConfig(appMode),
		JWT:        loadJWTConfig(appMode),
		Cookie:     loadCookieConfig(appMode),
		Rules:      loadRulesConfig(),
		Cron:       loadCronConfig(),
		Seed:       loadSeedConfig(appMode),
	}

	if config.Database.Driver != "mysql" && config.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'sqlite')", config.Database.Driver)
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	maxOpen, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "100"))
	maxIdle, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "10"))

	return DatabaseConfig{
		Driver:   strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", "mysql"))),
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "club_membership"),
		Path:     getEnv(prefix+"DB_PATH", "club_membership.db"),
		MaxOpen:  maxOpen,
		MaxIdle:  maxIdle,
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))
	maxSessions, _ := strconv.Atoi(getEnv("JWT_MAX_SESSIONS", "5"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
		MaxSessions:      maxSessions,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// loadRulesConfig loads rule evaluation policy
func loadRulesConfig() RulesConfig {
	applyMax, err := strconv.ParseBool(getEnv("RULES_APPLY_MAX_POINTS", "true"))
	if err != nil {
		applyMax = true
	}

	return RulesConfig{
		TierPolicy:     strings.TrimSpace(getEnv("RULES_TIER_POLICY", "stack")),
		ApplyMaxPoints: applyMax,
	}
}

// loadCronConfig loads background job config
func loadCronConfig() CronConfig {
	enabled, _ := strconv.ParseBool(getEnv("CRON_ENABLED", "true"))

	return CronConfig{
		Enabled:  enabled,
		Schedule: getEnv("CRON_SCHEDULE", "0 3 * * *"),
	}
}

// loadSeedConfig loads seed config; seeding defaults on in dev only
func loadSeedConfig(mode string) SeedConfig {
	enabled, err := strconv.ParseBool(getEnv("SEED_ENABLED", ""))
	if err != nil {
		enabled = mode == "dev"
	}

	return SeedConfig{
		Enabled:         enabled,
		RulesFile:       getEnv("SEED_RULES_FILE", ""),
		AdminUsername:   getEnv("SEED_ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("SEED_ADMIN_PASSWORD", "admin123456"),
		OfficerPassword: getEnv("SEED_OFFICER_PASSWORD", "officer123456"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return getEnv("CLIENT_URL", "http://localhost:5173")
	}
	return origins
}
