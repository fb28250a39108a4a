package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string

	// Database
	DatabaseURL string

	// Razorpay
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	RazorpayAPIBaseURL    string
	PaymentCurrency       string

	// Realtime fan-out across instances (optional)
	RedisURL string

	// Cron spec for closing ended auctions (seconds field included)
	AuctionCloseSchedule string

	// Host patterns accepted as Origin on websocket upgrades
	WebsocketOrigins []string

	// Server
	Port        string
	Environment string
	BaseURL     string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RazorpayKeyID:         getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayWebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
		RazorpayAPIBaseURL:    getEnv("RAZORPAY_API_BASE_URL", "https://api.razorpay.com/v1/"),
		PaymentCurrency:       getEnv("PAYMENT_CURRENCY", "INR"),

		RedisURL: getEnv("REDIS_URL", ""),

		AuctionCloseSchedule: getEnv("AUCTION_CLOSE_SCHEDULE", "@every 30s"),
		WebsocketOrigins:     splitList(getEnv("WS_ALLOWED_ORIGINS", "")),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.RazorpayWebhookSecret == "" {
		return fmt.Errorf("RAZORPAY_WEBHOOK_SECRET is required")
	}
	if c.RazorpayKeyID == "" || c.RazorpayKeySecret == "" {
		return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}
	if len(c.PaymentCurrency) != 3 {
		return fmt.Errorf("PAYMENT_CURRENCY must be a 3-letter ISO code, got %q", c.PaymentCurrency)
	}
	return nil
}

// IdentityEnabled reports whether the Supabase admin API can be used for
// signup provisioning.
func (c *Config) IdentityEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceRoleKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
