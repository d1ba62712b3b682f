package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	DatabaseURL string
	RedisAddr   string

	// SMS gateway credentials. When SMSAccountSID is empty the sender
	// runs in simulation mode and only logs outbound messages.
	SMSAccountSID  string
	SMSAuthToken   string
	SMSFromNumber  string
	SMSGatewayBase string

	HTTPListenAddr string
	AdminToken     string

	CronSpecDispatch string

	LookaheadDays      int
	CooldownHours      int
	MaxAttemptsPerDay  int
	SendTimeout        time.Duration
	MaxConcurrentSends int
	DispatchLockTTL    time.Duration

	DefaultLocale string
	LogLevel      string
	Environment   string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}

	cfg.SMSAccountSID = os.Getenv("SMS_ACCOUNT_SID")
	cfg.SMSAuthToken = os.Getenv("SMS_AUTH_TOKEN")
	cfg.SMSFromNumber = os.Getenv("SMS_FROM_NUMBER")
	cfg.SMSGatewayBase = os.Getenv("SMS_GATEWAY_BASE_URL")
	if cfg.SMSGatewayBase == "" {
		cfg.SMSGatewayBase = "https://api.twilio.com"
	}
	if cfg.SMSAccountSID != "" && cfg.SMSAuthToken == "" {
		return nil, fmt.Errorf("SMS_AUTH_TOKEN is not set but SMS_ACCOUNT_SID is")
	}

	cfg.HTTPListenAddr = os.Getenv("HTTP_LISTEN_ADDR")
	if cfg.HTTPListenAddr == "" {
		cfg.HTTPListenAddr = ":8080"
	}
	cfg.AdminToken = os.Getenv("ADMIN_TOKEN")

	cfg.CronSpecDispatch = os.Getenv("CRON_SPEC_DISPATCH")
	if cfg.CronSpecDispatch == "" {
		cfg.CronSpecDispatch = "0 9 * * *" // 9 AM daily
	}

	var err error
	if cfg.LookaheadDays, err = intEnv("LOOKAHEAD_DAYS", 3); err != nil {
		return nil, err
	}
	if cfg.CooldownHours, err = intEnv("COOLDOWN_HOURS", 24); err != nil {
		return nil, err
	}
	if cfg.MaxAttemptsPerDay, err = intEnv("MAX_ATTEMPTS_PER_DAY", 3); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrentSends, err = intEnv("MAX_CONCURRENT_SENDS", 1); err != nil {
		return nil, err
	}

	sendTimeoutMs, err := intEnv("SEND_TIMEOUT_MS", 10000)
	if err != nil {
		return nil, err
	}
	cfg.SendTimeout = time.Duration(sendTimeoutMs) * time.Millisecond

	lockTTLSec, err := intEnv("DISPATCH_LOCK_TTL_SECONDS", 900)
	if err != nil {
		return nil, err
	}
	cfg.DispatchLockTTL = time.Duration(lockTTLSec) * time.Second

	cfg.DefaultLocale = strings.ToLower(os.Getenv("DEFAULT_LOCALE"))
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "sasak"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	return cfg, nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", name)
	}
	return v, nil
}
