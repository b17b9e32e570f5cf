package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host        string        `mapstructure:"host"`
	Port        string        `mapstructure:"port"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// TrustedProxies lists the CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type AuthConfig struct {
	AccessSecret         string        `mapstructure:"access_secret"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshSecret        string        `mapstructure:"refresh_secret"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	OTPDuration          time.Duration `mapstructure:"otp_duration"`
	BcryptCost           int           `mapstructure:"bcrypt_cost"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	// AutoMigrate runs pending goose migrations on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

type MailConfig struct {
	Provider     string `mapstructure:"provider"` // "smtp", "resend" or "log"
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	From         string `mapstructure:"from"`
	Subject      string `mapstructure:"subject"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	TTL               time.Duration `mapstructure:"ttl"`
}

type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Mail      MailConfig      `mapstructure:"mail"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// DSN builds the postgres connection string shared by gorm and goose.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
	)
}
