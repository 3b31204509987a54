package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string        `mapstructure:"APP_PORT"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`
	TrustedProxies    []string      `mapstructure:"TRUSTED_PROXIES"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	TokenTTL          time.Duration `mapstructure:"TOKEN_TTL"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis backs the stats cache and the IPN queue.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Public base URLs used for gateway callbacks and browser redirects.
	ServerURL string `mapstructure:"SERVER_URL"`
	ClientURL string `mapstructure:"CLIENT_URL"`

	// Payment gateway.
	PaymentGateway  string `mapstructure:"PAYMENT_GATEWAY"`
	PaymentCurrency string `mapstructure:"PAYMENT_CURRENCY"`
	StoreID         string `mapstructure:"STORE_ID"`
	StorePassword   string `mapstructure:"STORE_PASSWORD"`
	IsLive          bool   `mapstructure:"IS_LIVE"`
	StripeKey       string `mapstructure:"STRIPE_KEY"`

	// StripeWebhookSecret is the whsec_ signing secret of the webhook endpoint.
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	// Cloudinary uploads.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`
}

// ErrMissingSecret is returned when no JWT signing secret is configured.
var ErrMissingSecret = errors.New("config: JWT_SECRET is required")

var keys = []string{
	"APP_PORT", "ENV", "LOG_LEVEL", "MAX_REQUESTS_PER_MIN", "TRUSTED_PROXIES", "JWT_SECRET", "TOKEN_TTL",
	"DATABASE_URL", "DATABASE_NAME",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_CACHE_DB", "REDIS_QUEUE_DB",
	"SERVER_URL", "CLIENT_URL",
	"PAYMENT_GATEWAY", "PAYMENT_CURRENCY", "STORE_ID", "STORE_PASSWORD", "IS_LIVE", "STRIPE_KEY", "STRIPE_WEBHOOK_SECRET",
	"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET", "CLOUDINARY_FOLDER",
}

// Load reads config.yaml (if present) from "." or "./config", overlays the
// environment and applies defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	// Unmarshal only sees env-only keys that viper already knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "nestmart")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("SERVER_URL", "http://localhost:8080")
	v.SetDefault("CLIENT_URL", "http://localhost:5173")
	v.SetDefault("PAYMENT_GATEWAY", "sslcommerz")
	v.SetDefault("PAYMENT_CURRENCY", "BDT")
	v.SetDefault("IS_LIVE", false)
	v.SetDefault("CLOUDINARY_FOLDER", "nestmart/listings")

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	switch c.PaymentGateway {
	case "sslcommerz", "stripe":
	default:
		return fmt.Errorf("config: unsupported PAYMENT_GATEWAY %q", c.PaymentGateway)
	}
	return nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CloudinaryEnabled reports whether upload credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
