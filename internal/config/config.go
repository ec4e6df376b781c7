package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port        string
	DBConn      string
	LogLevel    string
	JWTSecret   string
	RedisAddr   string // empty disables the dashboard view cache
	RefRateURL  string
	AdminUser   string
	AdminPass   string
	AdminEmail  string
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	SenderEmail string
	Settings    Settings
}

// Settings are the operational tunables of the credit engine. They are
// injected into each component invocation rather than read from a global.
type Settings struct {
	PenaltyRatePercent float64 // late-payment penalty per 30 days late, percent
	GracePeriodDays    int     // days past due before an installment counts as late
	AlertWindowDays    int     // look-ahead for payment reminders
	InterestMethod     string  // "simple" is the only supported method
	Currency           string
}

// NewConfig loads configuration from the environment, reading a .env file
// first when one is present.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBConn:      getEnv("DB_CONN", "host=localhost port=5432 user=finance password=finance dbname=finance sslmode=disable"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-key-change-in-production"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		RefRateURL:  getEnv("REF_RATE_URL", ""),
		AdminUser:   getEnv("ADMIN_USERNAME", ""),
		AdminPass:   getEnv("ADMIN_PASSWORD", ""),
		AdminEmail:  getEnv("ADMIN_EMAIL", "admin@example.com"),
		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getEnv("SMTP_PORT", "587"),
		SMTPUser:    getEnv("SMTP_USERNAME", ""),
		SMTPPass:    getEnv("SMTP_PASSWORD", ""),
		SenderEmail: getEnv("SENDER_EMAIL", "noreply@finance-manager.local"),
		Settings:    DefaultSettings(),
	}

	var err error
	if cfg.Settings.PenaltyRatePercent, err = getEnvFloat("PENALTY_RATE", cfg.Settings.PenaltyRatePercent); err != nil {
		return nil, err
	}
	if cfg.Settings.GracePeriodDays, err = getEnvInt("GRACE_PERIOD_DAYS", cfg.Settings.GracePeriodDays); err != nil {
		return nil, err
	}
	if cfg.Settings.AlertWindowDays, err = getEnvInt("ALERT_WINDOW_DAYS", cfg.Settings.AlertWindowDays); err != nil {
		return nil, err
	}
	cfg.Settings.Currency = getEnv("CURRENCY", cfg.Settings.Currency)

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Settings.PenaltyRatePercent < 0 {
		return nil, fmt.Errorf("PENALTY_RATE must not be negative")
	}

	return cfg, nil
}

// DefaultSettings mirrors the defaults of the system settings record.
func DefaultSettings() Settings {
	return Settings{
		PenaltyRatePercent: 5.0,
		GracePeriodDays:    0,
		AlertWindowDays:    7,
		InterestMethod:     "simple",
		Currency:           "FCFA",
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
