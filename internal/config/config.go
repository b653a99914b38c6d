package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string

	GatewayBaseURL      string
	GatewayCommerceCode string
	GatewayAPIKey       string
	GatewayTimeout      time.Duration
	GatewayRPS          float64

	PublicBaseURL string
	FrontendURL   string
	JWTSecret     string

	ConfigCacheTTL  time.Duration
	CorrelationTTL  time.Duration
	HeuristicWindow time.Duration

	RedisAddr           string
	KafkaBrokers        []string
	NotificationTopic   string
	NotificationWorkers int
	NotificationQueue   int

	Currency        currency.Unit
	LogLevel        string
	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress          = ":8080"
	defaultJWTSecret           = "change-me-in-production"
	defaultGatewayTimeout      = 15 * time.Second
	defaultGatewayRPS          = 10
	defaultPublicBaseURL       = "http://localhost:8080"
	defaultFrontendURL         = "http://localhost:3000"
	defaultConfigCacheTTL      = time.Minute
	defaultCorrelationTTL      = 2 * time.Hour
	defaultHeuristicWindow     = 2 * time.Hour
	defaultNotificationTopic   = "storefront.notifications"
	defaultNotificationWorkers = 2
	defaultNotificationQueue   = 256
	defaultCurrency            = "CLP"
	defaultLogLevel            = "info"
	defaultShutdownTimeout     = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		GatewayBaseURL:      getString(lookup, "GATEWAY_BASE_URL", ""),
		GatewayCommerceCode: getString(lookup, "GATEWAY_COMMERCE_CODE", ""),
		GatewayAPIKey:       getString(lookup, "GATEWAY_API_KEY", ""),
		GatewayTimeout:      getDuration(lookup, "GATEWAY_TIMEOUT", defaultGatewayTimeout),
		GatewayRPS:          getFloat(lookup, "GATEWAY_RPS", defaultGatewayRPS),
		PublicBaseURL:       getString(lookup, "PUBLIC_BASE_URL", defaultPublicBaseURL),
		FrontendURL:         getString(lookup, "FRONTEND_URL", defaultFrontendURL),
		JWTSecret:           getString(lookup, "JWT_SECRET", defaultJWTSecret),
		ConfigCacheTTL:      getDuration(lookup, "CONFIG_CACHE_TTL", defaultConfigCacheTTL),
		CorrelationTTL:      getDuration(lookup, "CORRELATION_TTL", defaultCorrelationTTL),
		HeuristicWindow:     getDuration(lookup, "HEURISTIC_WINDOW", defaultHeuristicWindow),
		RedisAddr:           getString(lookup, "REDIS_ADDR", ""),
		NotificationTopic:   getString(lookup, "NOTIFICATION_TOPIC", defaultNotificationTopic),
		NotificationWorkers: getInt(lookup, "NOTIFICATION_WORKERS", defaultNotificationWorkers),
		NotificationQueue:   getInt(lookup, "NOTIFICATION_QUEUE", defaultNotificationQueue),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		brokers      = getString(lookup, "KAFKA_BROKERS", "")
		currencyCode = getString(lookup, "STORE_CURRENCY", defaultCurrency)

		durations = []struct {
			name  string
			label string
			dst   *time.Duration
			raw   string
		}{
			{"gateway-timeout", "gateway timeout", &cfg.GatewayTimeout, cfg.GatewayTimeout.String()},
			{"config-ttl", "config cache ttl", &cfg.ConfigCacheTTL, cfg.ConfigCacheTTL.String()},
			{"correlation-ttl", "correlation ttl", &cfg.CorrelationTTL, cfg.CorrelationTTL.String()},
			{"heuristic-window", "heuristic window", &cfg.HeuristicWindow, cfg.HeuristicWindow.String()},
			{"shutdown-timeout", "shutdown timeout", &cfg.ShutdownTimeout, cfg.ShutdownTimeout.String()},
		}
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.GatewayBaseURL, "g", cfg.GatewayBaseURL, "Payment gateway base URL")
	fs.StringVar(&cfg.GatewayCommerceCode, "gateway-commerce-code", cfg.GatewayCommerceCode, "Payment gateway API key id")
	fs.StringVar(&cfg.GatewayAPIKey, "gateway-api-key", cfg.GatewayAPIKey, "Payment gateway API key secret")
	fs.Float64Var(&cfg.GatewayRPS, "gateway-rps", cfg.GatewayRPS, "Outbound gateway requests per second")
	fs.StringVar(&cfg.PublicBaseURL, "public-url", cfg.PublicBaseURL, "Public base URL used for gateway return")
	fs.StringVar(&cfg.FrontendURL, "frontend-url", cfg.FrontendURL, "Storefront URL used for browser redirects")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for verifying auth tokens")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address of the correlation cache")
	fs.StringVar(&brokers, "kafka", brokers, "Comma separated Kafka brokers for notifications")
	fs.StringVar(&cfg.NotificationTopic, "notification-topic", cfg.NotificationTopic, "Kafka topic for order events")
	fs.IntVar(&cfg.NotificationWorkers, "notification-workers", cfg.NotificationWorkers, "Number of notification workers")
	fs.IntVar(&cfg.NotificationQueue, "notification-queue", cfg.NotificationQueue, "Notification queue capacity")
	fs.StringVar(&currencyCode, "currency", currencyCode, "ISO 4217 store currency")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	for i := range durations {
		fs.StringVar(&durations[i].raw, durations[i].name, durations[i].raw, durations[i].label)
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	for _, d := range durations {
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.label, err)
		}
		*d.dst = v
	}

	unit, err := parseCurrency(currencyCode)
	if err != nil {
		return nil, err
	}
	cfg.Currency = unit
	cfg.KafkaBrokers = splitList(brokers)

	if cfg.JWTSecret, err = readSecretFile(lookup, "JWT_SECRET_FILE", cfg.JWTSecret); err != nil {
		return nil, fmt.Errorf("read jwt secret file: %w", err)
	}
	if cfg.GatewayAPIKey, err = readSecretFile(lookup, "GATEWAY_API_KEY_FILE", cfg.GatewayAPIKey); err != nil {
		return nil, fmt.Errorf("read gateway api key file: %w", err)
	}

	cfg.normalize()

	switch {
	case cfg.DatabaseURI == "":
		return nil, fmt.Errorf("database URI must be provided")
	case cfg.GatewayBaseURL == "":
		return nil, fmt.Errorf("gateway base URL must be provided")
	case cfg.GatewayCommerceCode == "" || cfg.GatewayAPIKey == "":
		return nil, fmt.Errorf("gateway credentials must be provided")
	}

	return cfg, nil
}

func (c *Config) normalize() {
	if c.GatewayTimeout <= 0 {
		c.GatewayTimeout = defaultGatewayTimeout
	}
	if c.GatewayRPS <= 0 {
		c.GatewayRPS = defaultGatewayRPS
	}
	if c.ConfigCacheTTL <= 0 {
		c.ConfigCacheTTL = defaultConfigCacheTTL
	}
	if c.CorrelationTTL <= 0 {
		c.CorrelationTTL = defaultCorrelationTTL
	}
	if c.HeuristicWindow <= 0 {
		c.HeuristicWindow = defaultHeuristicWindow
	}
	if c.NotificationWorkers <= 0 {
		c.NotificationWorkers = defaultNotificationWorkers
	}
	if c.NotificationQueue <= 0 {
		c.NotificationQueue = defaultNotificationQueue
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	c.FrontendURL = strings.TrimRight(c.FrontendURL, "/")
	c.GatewayBaseURL = strings.TrimRight(c.GatewayBaseURL, "/")
}

func parseCurrency(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return currency.Unit{}, fmt.Errorf("invalid store currency %q: %w", code, err)
	}
	return unit, nil
}

func readSecretFile(lookup envLookup, key, current string) (string, error) {
	path, ok := lookup(key)
	if !ok || path == "" {
		return current, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
