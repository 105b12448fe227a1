// Package config loads the listing desk configuration from environment
// variables. Every field carries its variable name and default in struct tags;
// Load fills them and Validate reports every problem at once.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Webhook    WebhookConfig
	Session    SessionConfig
	Storage    StorageConfig
	Automation AutomationConfig
	Rate       RateLimitConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout stays at zero by default: view responses are streamed
	// while webhooks are in flight.
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`

	// MaxUploadSize caps the multipart import body in bytes (default: 200MB).
	MaxUploadSize int64 `env:"SERVER_MAX_UPLOAD_SIZE" default:"209715200"`

	// TrustedProxies are CIDRs or single IPs whose X-Real-IP and
	// X-Forwarded-For headers are believed. Empty trusts nobody.
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES"`
}

// WebhookConfig holds the automation backend endpoints. Only the order sync
// endpoint is mandatory; actions whose URL is empty fail with a configuration
// error when triggered.
type WebhookConfig struct {
	SyncURL        string `env:"WEBHOOK_SYNC_URL" envAlt:"WEBHOOK_URL" required:"true"`
	DetailsURL     string `env:"WEBHOOK_DETAILS_URL"`
	SaveURL        string `env:"WEBHOOK_SAVE_URL"`
	ReadyURL       string `env:"WEBHOOK_READY_URL"`
	ASINURL        string `env:"WEBHOOK_ASIN_URL"`
	TitleURL       string `env:"WEBHOOK_TITLE_URL"`
	TranslateURL   string `env:"WEBHOOK_TRANSLATE_URL"`
	CompetitionURL string `env:"WEBHOOK_COMPETITION_URL"`
	FinancialURL   string `env:"WEBHOOK_FINANCIAL_URL"`
	UploadURL      string `env:"WEBHOOK_UPLOAD_URL"`

	// Timeout bounds a single webhook round trip (default: 60s).
	Timeout time.Duration `env:"WEBHOOK_TIMEOUT" default:"60s"`

	// AccessCode seeds new sessions; users can still change it in the UI.
	AccessCode string `env:"WEBHOOK_ACCESS_CODE"`
}

// SessionConfig holds browser session settings.
type SessionConfig struct {
	CookieName string `env:"SESSION_COOKIE_NAME" default:"listingdesk_session"`

	// IdleTimeout evicts sessions without requests for this long (default: 2h).
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"2h"`

	ReapInterval   time.Duration `env:"SESSION_REAP_INTERVAL" default:"5m"`
	SearchDebounce time.Duration `env:"SESSION_SEARCH_DEBOUNCE" default:"300ms"`
}

// StorageConfig selects where order and financial snapshots survive
// session restarts.
type StorageConfig struct {
	// Backend is one of memory, redis, postgres (default: memory).
	Backend string `env:"STORAGE_BACKEND" default:"memory"`

	RedisAddr     string `env:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" default:"0"`

	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`
	MaxConns    int    `env:"DB_MAX_CONNS" default:"10"`

	SnapshotTTL time.Duration `env:"SNAPSHOT_TTL" default:"12h"`
}

// AutomationConfig bounds concurrent automation triggers across sessions.
type AutomationConfig struct {
	MaxConcurrent int           `env:"AUTOMATION_MAX_CONCURRENT" default:"4"`
	MaxWait       time.Duration `env:"AUTOMATION_MAX_WAIT" default:"20s"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// AutomationLimit is requests per minute for endpoints that trigger
	// automations or uploads (default: 20).
	AutomationLimit int `env:"RATE_LIMIT_AUTOMATION" default:"20"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: info).
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json (default: text).
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
