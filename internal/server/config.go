package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/elskow/food-review/internal/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

const defaultConfigPath = "./config/server"

var (
	ErrMissingAccessSecret  = errors.New("auth.access_secret (ACCESS_SECRET) is required")
	ErrMissingRefreshSecret = errors.New("auth.refresh_secret (REFRESH_SECRET) is required")
	ErrSameTokenSecrets     = errors.New("access and refresh secrets must differ")
)

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.host":                 "SERVER_HOST",
	"server.port":                 "SERVER_PORT",
	"auth.access_secret":          "ACCESS_SECRET",
	"auth.access_token_duration":  "ACCESS_TOKEN_TTL",
	"auth.refresh_secret":         "REFRESH_SECRET",
	"auth.refresh_token_duration": "REFRESH_TOKEN_TTL",
	"auth.otp_duration":           "OTP_TTL",
	"database.host":               "DB_HOST",
	"database.port":               "DB_PORT",
	"database.user":               "DB_USER",
	"database.password":           "DB_PASSWORD",
	"database.name":               "DB_NAME",
	"database.ssl_mode":           "DB_SSL_MODE",
	"mail.provider":               "MAIL_PROVIDER",
	"mail.host":                   "MAIL_HOST",
	"mail.port":                   "MAIL_PORT",
	"mail.username":               "MAIL_USERNAME",
	"mail.password":               "MAIL_PASSWORD",
	"mail.from":                   "MAIL_FROM",
	"mail.resend_api_key":         "RESEND_API_KEY",
}

// LoadConfig reads and validates the full application configuration.
func LoadConfig() (*config.AppConfig, error) {
	cfg, err := loadConfig(configPath())
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadMigrationConfig reads the configuration without requiring token
// secrets, which the migration command never uses.
func LoadMigrationConfig() (*config.AppConfig, error) {
	return loadConfig(configPath())
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultConfigPath
}

func loadConfig(path string) (*config.AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(path)

	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)

	v.SetDefault("auth.access_token_duration", time.Hour)
	v.SetDefault("auth.refresh_token_duration", 7*24*time.Hour)
	v.SetDefault("auth.otp_duration", 5*time.Minute)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.subject", "Your password reset code")

	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("rate_limit.ttl", 5*time.Minute)
}

// Validate rejects configurations the process cannot start with. Missing
// token secrets are fatal at startup, never a per-request failure.
func Validate(cfg *config.AppConfig) error {
	if cfg.Auth.AccessSecret == "" {
		return ErrMissingAccessSecret
	}
	if cfg.Auth.RefreshSecret == "" {
		return ErrMissingRefreshSecret
	}
	if cfg.Auth.AccessSecret == cfg.Auth.RefreshSecret {
		return ErrSameTokenSecrets
	}
	if cfg.Auth.AccessTokenDuration <= 0 || cfg.Auth.RefreshTokenDuration <= 0 {
		return fmt.Errorf("token durations must be positive")
	}
	if cfg.Auth.OTPDuration <= 0 {
		return fmt.Errorf("auth.otp_duration must be positive")
	}
	for _, cidr := range cfg.Server.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("invalid server.trusted_proxies entry %q: %w", cidr, err)
		}
	}
	return nil
}
