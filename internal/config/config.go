// Package config loads application configuration from environment variables.
// envconfig maps environment variables onto the Config struct fields.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds ALL application settings.
type Config struct {
	// --- HTTP server ---
	HTTPHost string `envconfig:"HTTP_HOST" default:"0.0.0.0"`
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8080"`
	// Comma-separated list of allowed CORS origins. "*" allows everything.
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	// --- Database ---
	// Inside Docker "localhost" is almost always wrong. Default is "postgres"
	// (the docker-compose service name); override DB_HOST=localhost for local runs.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"shillearn"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"shillearnhub"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Africa/Nairobi"`

	// --- Auth ---
	JWTSecret        string        `envconfig:"JWT_SECRET" required:"true"`
	JWTAccessExpiry  time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"1h"`
	JWTRefreshExpiry time.Duration `envconfig:"JWT_REFRESH_EXPIRY" default:"720h"`
	// OTP codes are valid for one 10-minute window.
	OTPPeriodSeconds int `envconfig:"OTP_PERIOD_SECONDS" default:"600"`

	// --- Membership ---
	MembershipDays int `envconfig:"MEMBERSHIP_DAYS" default:"365"`

	// --- Referral ---
	// Commission percentages for levels 1..5, comma-separated.
	ReferralRatesRaw string `envconfig:"REFERRAL_COMMISSION_RATES" default:"10,5,3,2,1"`
	ReferralRates    []int  `envconfig:"-"` // filled from ReferralRatesRaw

	// --- Wallet / withdrawals ---
	// Minimum withdrawal amount in KES.
	MinWithdrawalAmount int64 `envconfig:"MIN_WITHDRAWAL_AMOUNT" default:"500"`

	// --- M-Pesa gateway ---
	MpesaConsumerKey    string `envconfig:"MPESA_CONSUMER_KEY"`
	MpesaConsumerSecret string `envconfig:"MPESA_CONSUMER_SECRET"`
	MpesaAPIURL         string `envconfig:"MPESA_API_URL" default:"https://sandbox.safaricom.co.ke"`
	MpesaShortcode      string `envconfig:"MPESA_BUSINESS_SHORTCODE" default:"174379"`
	MpesaPasskey        string `envconfig:"MPESA_PASSKEY"`
	MpesaCallbackURL    string `envconfig:"MPESA_CALLBACK_URL" default:"https://example.com/api/payments/mpesa/callback"`

	// --- Notifications ---
	// Telegram admin alerts are optional; disabled when the token is empty.
	TelegramBotToken    string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatID int64  `envconfig:"TELEGRAM_ADMIN_CHAT_ID"`

	// --- Rate limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be a valid port, got %d", c.HTTPPort)
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if len(c.ReferralRates) == 0 || len(c.ReferralRates) > 5 {
		return fmt.Errorf("REFERRAL_COMMISSION_RATES must list 1..5 levels")
	}
	for i, r := range c.ReferralRates {
		if r < 0 || r > 100 {
			return fmt.Errorf("REFERRAL_COMMISSION_RATES level %d out of range: %d", i+1, r)
		}
	}
	if c.MinWithdrawalAmount < 0 {
		return fmt.Errorf("MIN_WITHDRAWAL_AMOUNT must be >= 0")
	}
	if c.OTPPeriodSeconds <= 0 {
		return fmt.Errorf("OTP_PERIOD_SECONDS must be > 0")
	}
	if c.MembershipDays <= 0 {
		return fmt.Errorf("MEMBERSHIP_DAYS must be > 0")
	}
	return nil
}

// Load reads environment variables and fills the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	rates, err := parseIntCSV(cfg.ReferralRatesRaw)
	if err != nil {
		return nil, fmt.Errorf("REFERRAL_COMMISSION_RATES parse: %w", err)
	}
	cfg.ReferralRates = rates

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseIntCSV(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad int %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
