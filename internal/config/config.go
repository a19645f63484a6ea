package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	KeycloakURL           string `mapstructure:"KEYCLOAK_URL"`
	KeycloakRealm         string `mapstructure:"KEYCLOAK_REALM"`
	KeycloakClientID      string `mapstructure:"KEYCLOAK_CLIENT_ID"`
	KeycloakAdminUser     string `mapstructure:"KEYCLOAK_ADMIN"`
	KeycloakAdminPassword string `mapstructure:"KEYCLOAK_ADMIN_PASSWORD"`

	GatewayURL        string `mapstructure:"GATEWAY_URL"`
	PatientServiceURL string `mapstructure:"PATIENT_SERVICE_URL"`

	// DatabaseURL is optional. When set, sessions are stored in Postgres and
	// survive restarts; otherwise an in-memory store is used.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	HTTPTimeoutSeconds int     `mapstructure:"HTTP_TIMEOUT_SECONDS"`
	SessionTTLMinutes  int     `mapstructure:"SESSION_TTL_MINUTES"`
	RateLimitRPS       float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int     `mapstructure:"RATE_LIMIT_BURST"`

	NotifyPollSeconds int `mapstructure:"NOTIFY_POLL_SECONDS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults match the local docker-compose development layout.
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("KEYCLOAK_URL", "http://localhost:8180")
	v.SetDefault("KEYCLOAK_REALM", "medinsight")
	v.SetDefault("KEYCLOAK_CLIENT_ID", "medinsight-client")
	v.SetDefault("KEYCLOAK_ADMIN", "admin")
	v.SetDefault("KEYCLOAK_ADMIN_PASSWORD", "admin")
	v.SetDefault("GATEWAY_URL", "http://localhost:8080")
	v.SetDefault("PATIENT_SERVICE_URL", "http://localhost:8081")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 10)
	v.SetDefault("SESSION_TTL_MINUTES", 60)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("NOTIFY_POLL_SECONDS", 30)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "CORS_ORIGINS",
		"KEYCLOAK_URL", "KEYCLOAK_REALM", "KEYCLOAK_CLIENT_ID",
		"KEYCLOAK_ADMIN", "KEYCLOAK_ADMIN_PASSWORD",
		"GATEWAY_URL", "PATIENT_SERVICE_URL",
		"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"HTTP_TIMEOUT_SECONDS", "SESSION_TTL_MINUTES",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "NOTIFY_POLL_SECONDS",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: Default Keycloak admin credentials are in effect.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// HTTPTimeout is the fixed timeout applied to every outbound request.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// SessionTTL is how long an issued session stays valid in the store.
func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// NotifyPollInterval is the base interval of the notification poller.
func (c *Config) NotifyPollInterval() time.Duration {
	if c.NotifyPollSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NotifyPollSeconds) * time.Second
}

// Validate checks that the configuration is safe to run. The registration
// flow bootstraps every request with the Keycloak admin account, so in
// production the shipped default credentials are refused outright.
func (c *Config) Validate() error {
	if c.KeycloakURL == "" {
		return fmt.Errorf("KEYCLOAK_URL is required")
	}
	if c.KeycloakRealm == "" {
		return fmt.Errorf("KEYCLOAK_REALM is required")
	}
	if c.GatewayURL == "" {
		return fmt.Errorf("GATEWAY_URL is required")
	}
	if c.IsProduction() {
		if c.KeycloakAdminPassword == "" || c.KeycloakAdminPassword == "admin" {
			return fmt.Errorf("KEYCLOAK_ADMIN_PASSWORD must be set to a non-default value in production")
		}
		for _, o := range c.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain \"*\" in production")
			}
		}
	}
	return nil
}
