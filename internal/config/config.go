package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds every runtime setting of the service. Values come from
// environment variables (REELKIT_ prefix) with an optional local .env file.
type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Automation AutomationConfig `mapstructure:"automation"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

type DeploymentConfig struct {
	Mode string `mapstructure:"mode"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type AuthConfig struct {
	// Secret is the HMAC secret the identity provider signs access tokens with.
	Secret string `mapstructure:"secret"`
}

type StripeConfig struct {
	// WebhookSecret enables signature verification when set. Empty means the
	// endpoint accepts unsigned payloads (mock/billing-sandbox mode).
	WebhookSecret string `mapstructure:"webhook_secret"`
	// Provider name recorded in webhook logs ("stripe" or "mock").
	Provider string `mapstructure:"provider"`
}

type AutomationConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type StorageConfig struct {
	Bucket       string        `mapstructure:"bucket"`
	Region       string        `mapstructure:"region"`
	SignedURLTTL time.Duration `mapstructure:"signed_url_ttl"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// NewConfig loads configuration from the environment.
func NewConfig() (*Configuration, error) {
	// Best-effort: a missing .env is fine in deployed environments.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("REELKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", "api")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("postgres.auto_migrate", false)
	v.SetDefault("stripe.provider", "stripe")
	v.SetDefault("automation.timeout", 5*time.Second)
	v.SetDefault("automation.max_retries", 3)
	v.SetDefault("storage.signed_url_ttl", time.Hour)
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.sample_rate", 1.0)
}

// Validate checks settings without which the service cannot run at all.
func (c *Configuration) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	return nil
}

// GetDefaultConfig returns a minimal configuration for scripts and tests.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: "local"},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: "debug"},
		Stripe:     StripeConfig{Provider: "mock"},
		Automation: AutomationConfig{Timeout: 5 * time.Second, MaxRetries: 3},
		Storage:    StorageConfig{SignedURLTTL: time.Hour},
	}
}
