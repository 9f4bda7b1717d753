package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	AWS          AWSConfig
	Event        EventConfig
	Admin        AdminConfig
	Confirmation ConfirmationConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds session token signing settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and the profile images bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	ProfileImagesBucket  string
	PresignExpireMinutes int
}

// EventConfig describes the single event this deployment serves.
type EventConfig struct {
	Name              string
	BaseURL           string // origin embedded in QR code values
	RegistrationLimit int
	MinAge            int
	MaxAge            int
}

// AdminConfig holds the dashboard PIN. PINHash takes precedence; a plain PIN
// is hashed at startup so only the hash is held in memory afterwards.
type AdminConfig struct {
	PIN     string
	PINHash string
}

// ConfirmationConfig holds the generative-text endpoint settings for
// check-in confirmation messages. Empty endpoint disables generation and
// every check-in gets the fallback template.
type ConfirmationConfig struct {
	Endpoint   string
	APIKey     string
	Model      string
	TimeoutSec int
}

// DSN returns the PostgreSQL connection string. If DatabaseConfig.URL is set
// (DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", "postgres://localhost:5432/swiftcheck?sslmode=disable"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "swiftcheck"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 12),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ProfileImagesBucket:  getEnv("AWS_S3_PROFILE_IMAGES_BUCKET", "swiftcheck-profile-images"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Event: EventConfig{
			Name:              getEnv("EVENT_NAME", "SwiftCheck Event"),
			BaseURL:           getEnv("EVENT_BASE_URL", "http://localhost:3000"),
			RegistrationLimit: getEnvInt("REGISTRATION_LIMIT", 50),
			MinAge:            getEnvInt("EVENT_MIN_AGE", 0),
			MaxAge:            getEnvInt("EVENT_MAX_AGE", 120),
		},
		Admin: AdminConfig{
			PIN:     getEnv("ADMIN_PIN", ""),
			PINHash: getEnv("ADMIN_PIN_HASH", ""),
		},
		Confirmation: ConfirmationConfig{
			Endpoint:   getEnv("CONFIRMATION_ENDPOINT", ""),
			APIKey:     getEnv("CONFIRMATION_API_KEY", ""),
			Model:      getEnv("CONFIRMATION_MODEL", ""),
			TimeoutSec: getEnvInt("CONFIRMATION_TIMEOUT_SEC", 10),
		},
	}
	if cfg.Admin.PIN == "" && cfg.Admin.PINHash == "" {
		return nil, fmt.Errorf("ADMIN_PIN or ADMIN_PIN_HASH must be set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
