package config

import (
	"fmt"
	"maps"
	"net/url"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

var durationType = reflect.TypeOf(time.Duration(0))

// Load reads configuration from the process environment, applies defaults
// and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load over an arbitrary variable source.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	if err := populate(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error. Only main should call it.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// populate walks the struct and fills every field tagged with env.
func populate(v reflect.Value, lookup LookupFunc) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := populate(fv, lookup); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		value := firstSet(lookup, name, field.Tag.Get("envAlt"))
		if value == "" {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", name)
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := assign(fv, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
	}

	return nil
}

func firstSet(lookup LookupFunc, names ...string) string {
	for _, n := range names {
		if n == "" {
			continue
		}
		if v, ok := lookup(n); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// assign parses value into the field according to its kind.
func assign(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		var items []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Validate checks the configuration and returns one error listing every
// problem found.
func (c *Config) Validate() error {
	var errs []string
	addf := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		addf("SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		addf("SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		addf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.MaxUploadSize <= 0 {
		addf("SERVER_MAX_UPLOAD_SIZE must be positive")
	}

	webhooks := map[string]string{
		"WEBHOOK_SYNC_URL":        c.Webhook.SyncURL,
		"WEBHOOK_DETAILS_URL":     c.Webhook.DetailsURL,
		"WEBHOOK_SAVE_URL":        c.Webhook.SaveURL,
		"WEBHOOK_READY_URL":       c.Webhook.ReadyURL,
		"WEBHOOK_ASIN_URL":        c.Webhook.ASINURL,
		"WEBHOOK_TITLE_URL":       c.Webhook.TitleURL,
		"WEBHOOK_TRANSLATE_URL":   c.Webhook.TranslateURL,
		"WEBHOOK_COMPETITION_URL": c.Webhook.CompetitionURL,
		"WEBHOOK_FINANCIAL_URL":   c.Webhook.FinancialURL,
		"WEBHOOK_UPLOAD_URL":      c.Webhook.UploadURL,
	}
	for _, name := range slices.Sorted(maps.Keys(webhooks)) {
		raw := webhooks[name]
		if raw == "" {
			if name == "WEBHOOK_SYNC_URL" {
				addf("WEBHOOK_SYNC_URL is required")
			}
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			addf("%s (%q) must be an absolute http(s) URL", name, raw)
		}
	}
	if c.Webhook.Timeout <= 0 {
		addf("WEBHOOK_TIMEOUT must be positive")
	}

	if c.Session.CookieName == "" {
		addf("SESSION_COOKIE_NAME must not be empty")
	}
	if c.Session.IdleTimeout <= 0 {
		addf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.Session.ReapInterval <= 0 {
		addf("SESSION_REAP_INTERVAL must be positive")
	}
	if c.Session.SearchDebounce < 0 {
		addf("SESSION_SEARCH_DEBOUNCE must be non-negative")
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "memory":
	case "redis":
		if c.Storage.RedisAddr == "" {
			addf("REDIS_ADDR is required when STORAGE_BACKEND=redis")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			addf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
		if c.Storage.MaxConns <= 0 {
			addf("DB_MAX_CONNS must be positive")
		}
	default:
		addf("STORAGE_BACKEND (%q) must be one of: memory, redis, postgres", c.Storage.Backend)
	}
	if c.Storage.SnapshotTTL <= 0 {
		addf("SNAPSHOT_TTL must be positive")
	}

	if c.Automation.MaxConcurrent <= 0 {
		addf("AUTOMATION_MAX_CONCURRENT must be positive")
	}
	if c.Automation.MaxWait <= 0 {
		addf("AUTOMATION_MAX_WAIT must be positive")
	}

	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		addf("RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.AutomationLimit <= 0 {
		addf("RATE_LIMIT_AUTOMATION must be positive when rate limiting is enabled")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		addf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		addf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String renders the config for logs with credentials masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q}, ", c.Server.Addr())
	fmt.Fprintf(&b, "Webhook: {SyncURL: %q, Timeout: %s, AccessCode: %s}, ",
		maskURL(c.Webhook.SyncURL), c.Webhook.Timeout, maskSecret(c.Webhook.AccessCode))
	fmt.Fprintf(&b, "Storage: {Backend: %q, Redis: %q, Database: %s, TTL: %s}, ",
		c.Storage.Backend, c.Storage.RedisAddr, maskSecret(c.Storage.DatabaseURL), c.Storage.SnapshotTTL)
	fmt.Fprintf(&b, "Automation: {MaxConcurrent: %d, MaxWait: %s}, ",
		c.Automation.MaxConcurrent, c.Automation.MaxWait)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

func maskSecret(s string) string {
	if s == "" {
		return "[unset]"
	}
	return "[MASKED]"
}

// maskURL keeps scheme and host so operators can tell endpoints apart.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return maskSecret(raw)
	}
	return u.Scheme + "://" + u.Host + "/..."
}
