package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32         `mapstructure:"DB_MIN_CONNS"`
	TerminologyAPIHost string        `mapstructure:"TERMINOLOGY_API_HOST"`
	TerminologyAPIKey  string        `mapstructure:"TERMINOLOGY_API_KEY"`
	TerminologyTimeout time.Duration `mapstructure:"TERMINOLOGY_TIMEOUT"`
	AuthSigningKey     string        `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer         string        `mapstructure:"AUTH_ISSUER"`
	DevPrincipal       string        `mapstructure:"DEV_PRINCIPAL"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS       float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int           `mapstructure:"RATE_LIMIT_BURST"`
}

// Load reads configuration from the environment and an optional .env file.
// DATABASE_URL is not enforced here; commands that need the database call
// RequireDatabase.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("TERMINOLOGY_TIMEOUT", "5s")
	v.SetDefault("AUTH_ISSUER", "namaste-server")
	v.SetDefault("DEV_PRINCIPAL", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("TERMINOLOGY_API_HOST")
	v.BindEnv("TERMINOLOGY_API_KEY")
	v.BindEnv("TERMINOLOGY_TIMEOUT")
	v.BindEnv("AUTH_SIGNING_KEY")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("DEV_PRINCIPAL")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	cfg.TerminologyAPIHost = strings.TrimRight(strings.TrimSpace(cfg.TerminologyAPIHost), "/")
	cfg.TerminologyAPIKey = strings.TrimSpace(cfg.TerminologyAPIKey)

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// RegistryConfigured reports whether both the registry host and its API key
// are present. Without either the terminology client runs in fallback mode.
func (c *Config) RegistryConfigured() bool {
	return c.TerminologyAPIHost != "" && c.TerminologyAPIKey != ""
}

// RequireDatabase returns an error when DATABASE_URL is missing.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Validate checks that the configuration is safe to serve with. Outside
// development a JWT signing key of at least 32 bytes is required.
func (c *Config) Validate() error {
	if err := c.RequireDatabase(); err != nil {
		return err
	}
	if c.TerminologyTimeout <= 0 {
		return fmt.Errorf("TERMINOLOGY_TIMEOUT must be positive, got %s", c.TerminologyTimeout)
	}
	if !c.IsDev() {
		if c.AuthSigningKey == "" {
			return fmt.Errorf("AUTH_SIGNING_KEY is required when ENV=%q", c.Env)
		}
		if len(c.AuthSigningKey) < 32 {
			return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 bytes, got %d", len(c.AuthSigningKey))
		}
		if c.DevPrincipal != "" {
			return fmt.Errorf("DEV_PRINCIPAL is only allowed in development")
		}
	}
	return nil
}
