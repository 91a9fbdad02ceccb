// Package config loads kioskd settings from an optional .env file and the
// environment. Variables already set in the environment win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr       string
	TerminalID string

	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Identity IdentityConfig
	Payment  PaymentConfig
	Checkout CheckoutConfig

	// CatalogPath is an optional JSON menu file; empty uses the house menu.
	CatalogPath string

	// OrderNumberHold is how long a display number stays reserved.
	OrderNumberHold time.Duration
}

type DBConfig struct {
	Driver string // sqlite | postgres | memory
	Path   string
	URL    string
}

type RedisConfig struct {
	Addr     string
	Password string
}

// Enabled reports whether order numbers are reserved in Redis.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type AuthConfig struct {
	// Secret signs terminal tokens. Empty disables token checks.
	Secret   string
	TokenTTL time.Duration
}

type IdentityConfig struct {
	MemberLogin  bool
	Provider     string // simulated | code
	SignupPolicy string // always | skip_known
}

type PaymentConfig struct {
	ProcessingDelay time.Duration
	DisplayDelay    time.Duration
}

type CheckoutConfig struct {
	Attempts int
	Backoff  time.Duration
}

// Load reads envFile, if given, and then the environment. A missing
// envFile is an error; a missing default .env is not.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	var errs []error
	cfg := &Config{
		Addr:       getEnv("KIOSK_ADDR", ":8080"),
		TerminalID: getEnv("TERMINAL_ID", "kiosk-1"),
		DB: DBConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Path:   getEnv("DB_PATH", "./data/kiosk.db"),
			URL:    getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Auth: AuthConfig{
			Secret:   getEnv("JWT_SECRET", ""),
			TokenTTL: getDuration("TOKEN_TTL", 720*time.Hour, &errs),
		},
		Identity: IdentityConfig{
			MemberLogin: getBool("MEMBER_LOGIN", true, &errs),
			Provider:    strings.ToLower(getEnv("OTP_PROVIDER", "simulated")),
		},
		Payment: PaymentConfig{
			ProcessingDelay: getDuration("PAYMENT_PROCESSING_DELAY", 2500*time.Millisecond, &errs),
			DisplayDelay:    getDuration("PAYMENT_DISPLAY_DELAY", 1500*time.Millisecond, &errs),
		},
		Checkout: CheckoutConfig{
			Attempts: getInt("CHECKOUT_ATTEMPTS", 3, &errs),
			Backoff:  getDuration("CHECKOUT_BACKOFF", 200*time.Millisecond, &errs),
		},
		CatalogPath:     getEnv("CATALOG_PATH", ""),
		OrderNumberHold: getDuration("ORDER_NUMBER_HOLD", 4*time.Hour, &errs),
	}

	// A code provider remembers members, so returning members skip signup
	// unless told otherwise.
	defaultPolicy := "always"
	if cfg.Identity.Provider == "code" {
		defaultPolicy = "skip_known"
	}
	cfg.Identity.SignupPolicy = strings.ToLower(getEnv("SIGNUP_POLICY", defaultPolicy))

	errs = append(errs, cfg.validate()...)
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	switch c.DB.Driver {
	case "sqlite", "memory":
	case "postgres":
		if c.DB.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of sqlite, postgres, memory", c.DB.Driver))
	}
	switch c.Identity.Provider {
	case "simulated", "code":
	default:
		errs = append(errs, fmt.Errorf("OTP_PROVIDER %q is not one of simulated, code", c.Identity.Provider))
	}
	switch c.Identity.SignupPolicy {
	case "skip_known":
	case "always":
		// The code provider refuses to register a number twice.
		if c.Identity.Provider == "code" && c.Identity.MemberLogin {
			errs = append(errs, errors.New("SIGNUP_POLICY=always cannot be used with OTP_PROVIDER=code"))
		}
	default:
		errs = append(errs, fmt.Errorf("SIGNUP_POLICY %q is not one of always, skip_known", c.Identity.SignupPolicy))
	}
	if c.Checkout.Attempts < 1 {
		errs = append(errs, errors.New("CHECKOUT_ATTEMPTS must be at least 1"))
	}
	return errs
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func getBool(key string, def bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

func getInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}
