package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBConn   string
	LogLevel string
	AppEnv   string

	JWTSecret string
	JWTTTL    time.Duration

	// Card numbers are encrypted at rest; both keys are hex encoded env values.
	EncryptionKey []byte
	HMACSecret    string

	RateLimitMax    int
	RateLimitWindow time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	ReminderDaysAhead int

	CBRURL     string
	CORSOrigin string
}

// NewConfig loads configuration from environment variables, reading a .env
// file first when one is present
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBConn:            getEnv("DB_CONN", "host=localhost port=5432 user=cardkeeper password=cardkeeper dbname=cardkeeper sslmode=disable"),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		AppEnv:            getEnv("APP_ENV", "development"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		HMACSecret:        getEnv("HMAC_SECRET", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SenderEmail:       getEnv("SENDER_EMAIL", ""),
		CBRURL:            getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		CORSOrigin:        getEnv("CORS_ORIGIN", "http://localhost:5173"),
		ReminderDaysAhead: getEnvInt("REMINDER_DAYS_AHEAD", 3),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RateLimitMax:      getEnvInt("RATE_LIMIT_MAX", 100),
	}

	cfg.JWTTTL = time.Duration(getEnvInt("JWT_TTL_HOURS", 168)) * time.Hour
	cfg.RateLimitWindow = time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 15)) * time.Minute

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	keyHex := getEnv("ENCRYPTION_KEY", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be hex encoded: %w", err)
	}
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must decode to 16, 24, or 32 bytes, got %d", len(key))
	}
	cfg.EncryptionKey = key

	return cfg, nil
}

// Development reports whether the service runs in a non-production profile.
// Error responses include underlying detail only in this mode.
func (c *Config) Development() bool {
	return c.AppEnv != "production"
}

// SMTPConfigured reports whether reminder emails can be sent.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SenderEmail != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultVal
	}
	return n
}
