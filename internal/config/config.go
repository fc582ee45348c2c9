package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Spaces resolver modes. In "local" mode spaces live in the same database;
// in "remote" mode they are fetched from a separate spaces service over HTTP.
const (
	SpacesModeLocal  = "local"
	SpacesModeRemote = "remote"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	DBDSN        string

	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	// Reservation duration bounds enforced on every create/update.
	ReservationMinDuration time.Duration
	ReservationMaxDuration time.Duration

	// Space resolution.
	SpacesMode       string
	SpacesBaseURL    string
	SpacesTimeout    time.Duration
	DefaultSpaceName string

	// Local file storage root for space photos.
	StoragePath string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	ttl, err := getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", "15m")
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTokenTTL = ttl

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	// Reservation duration bounds (defaults: 30m minimum, 4h maximum)
	cfg.ReservationMinDuration, err = getEnvAsDuration("RESERVATION_MIN_DURATION", "30m")
	if err != nil {
		return nil, err
	}
	cfg.ReservationMaxDuration, err = getEnvAsDuration("RESERVATION_MAX_DURATION", "4h")
	if err != nil {
		return nil, err
	}
	if cfg.ReservationMinDuration <= 0 || cfg.ReservationMaxDuration < cfg.ReservationMinDuration {
		return nil, fmt.Errorf("reservation duration bounds are inconsistent")
	}

	// Spaces mode (default: local). Remote mode requires a base URL.
	cfg.SpacesMode = getEnv("SPACES_MODE", SpacesModeLocal)
	if cfg.SpacesMode != SpacesModeLocal && cfg.SpacesMode != SpacesModeRemote {
		return nil, fmt.Errorf("SPACES_MODE must be %q or %q", SpacesModeLocal, SpacesModeRemote)
	}
	cfg.SpacesBaseURL = getEnv("SPACES_BASE_URL", "")
	if cfg.SpacesMode == SpacesModeRemote && cfg.SpacesBaseURL == "" {
		return nil, fmt.Errorf("SPACES_BASE_URL is required when SPACES_MODE=remote")
	}
	cfg.SpacesTimeout, err = getEnvAsDuration("SPACES_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	// Singleton space used when a reservation does not specify one.
	cfg.DefaultSpaceName = getEnv("DEFAULT_SPACE_NAME", "Módulo 3")

	// Local file storage root (default: ./data)
	cfg.StoragePath = getEnv("STORAGE_PATH", "./data")

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsDuration retrieves an environment variable as a time.Duration.
func getEnvAsDuration(key, defaultValue string) (time.Duration, error) {
	valStr := getEnv(key, defaultValue)
	d, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	return d, nil
}
