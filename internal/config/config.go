// Package config loads the service configuration from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the service.
type Config struct {
	Server   ServerConfig   `envPrefix:""`
	Mongo    MongoConfig    `envPrefix:""`
	Auth     AuthConfig     `envPrefix:""`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Storage  StorageConfig  `envPrefix:"STORAGE_"`
	SMTP     SMTPConfig     `envPrefix:"SMTP_"`
	Stripe   StripeConfig   `envPrefix:"STRIPE_"`
	Security SecurityConfig `envPrefix:""`
	Log      LogConfig      `envPrefix:"LOG_"`
	App      AppConfig      `envPrefix:""`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"PORT" envDefault:"3030"`
	BodyLimitMB     int           `env:"BODY_LIMIT_MB" envDefault:"50"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     string        `env:"CORS_ORIGINS" envDefault:"*"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"300"`
	// ProxyHeader (e.g. X-Forwarded-For) is read for the client address only
	// on requests from TrustedProxies.
	ProxyHeader    string   `env:"PROXY_HEADER"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// Addr is the host:port to listen on.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// MongoConfig holds the document database settings.
type MongoConfig struct {
	URI         string        `env:"MONGODB_URI,required"`
	Database    string        `env:"DATABASE_NAME" envDefault:"edwin"`
	MaxPoolSize uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`
	MinPoolSize uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"5"`
	Timeout     time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecretKey   string        `env:"JWT_SECRET_KEY,required"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"edwin-api"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"168h"`
}

// RedisConfig holds the cache and pub/sub connection.
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// StorageConfig holds the S3-compatible blob store.
type StorageConfig struct {
	Endpoint      string        `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey     string        `env:"ACCESS_KEY"`
	SecretKey     string        `env:"SECRET_KEY"`
	Bucket        string        `env:"BUCKET" envDefault:"edwin-drive"`
	Region        string        `env:"REGION" envDefault:"us-east-1"`
	UseSSL        bool          `env:"USE_SSL" envDefault:"false"`
	PresignTTL    time.Duration `env:"PRESIGN_TTL" envDefault:"15m"`
	MaxUploadSize int64         `env:"MAX_UPLOAD_BYTES" envDefault:"26214400"`
}

// SMTPConfig holds the outgoing mail relay. An empty Host selects the
// log-only sender.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"no-reply@edwin.local"`
	FromName string `env:"FROM_NAME" envDefault:"Edwin"`
}

// Enabled reports whether a relay is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// StripeConfig holds the payment provider settings.
type StripeConfig struct {
	SecretKey          string `env:"SECRET_KEY"`
	WebhookSecret      string `env:"WEBHOOK_SECRET"`
	PriceProID         string `env:"PRICE_PRO"`
	PriceEnterpriseID  string `env:"PRICE_ENTERPRISE"`
	SuccessURL         string `env:"SUCCESS_URL" envDefault:"http://localhost:5173/billing/success"`
	CancelURL          string `env:"CANCEL_URL" envDefault:"http://localhost:5173/billing/cancel"`
	PortalReturnURL    string `env:"PORTAL_RETURN_URL" envDefault:"http://localhost:5173/settings/billing"`
	EventDedupeTTLHour int    `env:"EVENT_DEDUPE_TTL_HOURS" envDefault:"72"`
}

// SecurityConfig holds the key used to seal SecureId passwords.
type SecurityConfig struct {
	SecureIDKeyHex string `env:"SECURE_ID_KEY,required"`
}

// Key decodes the hex key.
func (s SecurityConfig) Key() ([]byte, error) {
	return hex.DecodeString(s.SecureIDKeyHex)
}

// LogConfig selects the logging backend.
type LogConfig struct {
	Level   string `env:"LEVEL" envDefault:"info"`
	Format  string `env:"FORMAT" envDefault:"text"`
	Backend string `env:"BACKEND" envDefault:"logrus"`
}

// AppConfig holds product-level settings.
type AppConfig struct {
	Name          string        `env:"APP_NAME" envDefault:"Edwin"`
	PublicURL     string        `env:"APP_PUBLIC_URL" envDefault:"http://localhost:5173"`
	InvitationTTL time.Duration `env:"INVITATION_TTL" envDefault:"168h"`
	Environment   string        `env:"ENVIRONMENT" envDefault:"development"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the process environment into a validated Config.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that struct tags cannot express.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecretKey) < 32 {
		return errors.New("JWT_SECRET_KEY must be at least 32 characters long")
	}
	key, err := c.Security.Key()
	if err != nil {
		return fmt.Errorf("SECURE_ID_KEY must be hex encoded: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("SECURE_ID_KEY must decode to 32 bytes, got %d", len(key))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	if c.App.InvitationTTL <= 0 {
		return errors.New("INVITATION_TTL must be positive")
	}
	c.Log.Backend = strings.ToLower(c.Log.Backend)
	return nil
}

// IsProduction reports whether ENVIRONMENT names a production deployment.
func (c *Config) IsProduction() bool {
	e := strings.ToLower(c.App.Environment)
	return e == "production" || e == "prod"
}

// PriceForPlan returns the configured Stripe price id for a paid plan.
func (s StripeConfig) PriceForPlan(plan string) string {
	switch plan {
	case "pro":
		return s.PriceProID
	case "enterprise":
		return s.PriceEnterpriseID
	}
	return ""
}

// PlanForPrice is the inverse of PriceForPlan.
func (s StripeConfig) PlanForPrice(priceID string) string {
	switch {
	case priceID == "":
		return ""
	case priceID == s.PriceProID:
		return "pro"
	case priceID == s.PriceEnterpriseID:
		return "enterprise"
	}
	return ""
}
