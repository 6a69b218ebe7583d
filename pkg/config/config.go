package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config groups all application configuration, read via Viper from env vars
// and optionally a local config file. Env vars win.
type Config struct {
	App        AppConfig
	DB         DBConfig
	JWT        JWTConfig
	Redemption RedemptionConfig
}

type AppConfig struct {
	Env  string // development, staging, production
	Name string
	Port int
}

// DBConfig holds PostgreSQL settings. If DatabaseURL is set it is used as the
// complete DSN; otherwise the DSN is built from the individual fields.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	TimeZone    string
}

// DSN returns the connection string to hand to the postgres driver.
func (c DBConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// RedemptionConfig carries fallback workflow settings used when no
// redemption_thresholds row matches a request.
type RedemptionConfig struct {
	DefaultThreshold     int64  // points above which approval is always required
	DefaultApprovalLevel string // level that must act when no threshold row exists
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // missing file is fine, env vars still apply
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "Rewards Admin API")
	v.SetDefault("PORT", 3000)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "rewards")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("JWT_ISSUER", "go-rewards-admin")
	v.SetDefault("REDEMPTION_DEFAULT_THRESHOLD", 1000)
	v.SetDefault("REDEMPTION_DEFAULT_APPROVAL_LEVEL", "FINANCE")

	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("APP_ENV"),
			Name: v.GetString("APP_NAME"),
			Port: v.GetInt("PORT"),
		},
		DB: DBConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			TimeZone:    v.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			ExpirationHours: v.GetInt("JWT_EXPIRATION_HOURS"),
			Issuer:          v.GetString("JWT_ISSUER"),
		},
		Redemption: RedemptionConfig{
			DefaultThreshold:     v.GetInt64("REDEMPTION_DEFAULT_THRESHOLD"),
			DefaultApprovalLevel: v.GetString("REDEMPTION_DEFAULT_APPROVAL_LEVEL"),
		},
	}

	if cfg.JWT.Secret == "" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}
