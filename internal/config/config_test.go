package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var keys = []string{
	"KIOSK_ADDR", "TERMINAL_ID", "DB_DRIVER", "DB_PATH", "DATABASE_URL",
	"REDIS_ADDR", "REDIS_PASSWORD", "JWT_SECRET", "TOKEN_TTL", "MEMBER_LOGIN",
	"OTP_PROVIDER", "PAYMENT_PROCESSING_DELAY", "PAYMENT_DISPLAY_DELAY",
	"CHECKOUT_ATTEMPTS", "CHECKOUT_BACKOFF", "CATALOG_PATH", "ORDER_NUMBER_HOLD",
	"SIGNUP_POLICY",
}

// clearEnv unsets every key for the test and restores it afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	// Keep a stray .env in the package directory from leaking in.
	t.Chdir(t.TempDir())
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.TerminalID != "kiosk-1" {
		t.Errorf("addr=%q terminal=%q", cfg.Addr, cfg.TerminalID)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.Path != "./data/kiosk.db" {
		t.Errorf("db = %+v", cfg.DB)
	}
	if cfg.Redis.Enabled() || cfg.Auth.Secret != "" {
		t.Error("redis and auth should be off by default")
	}
	if !cfg.Identity.MemberLogin || cfg.Identity.Provider != "simulated" || cfg.Identity.SignupPolicy != "always" {
		t.Errorf("identity = %+v", cfg.Identity)
	}
	if cfg.Payment.ProcessingDelay != 2500*time.Millisecond || cfg.Payment.DisplayDelay != 1500*time.Millisecond {
		t.Errorf("payment = %+v", cfg.Payment)
	}
	if cfg.Checkout.Attempts != 3 || cfg.Checkout.Backoff != 200*time.Millisecond {
		t.Errorf("checkout = %+v", cfg.Checkout)
	}
	if cfg.OrderNumberHold != 4*time.Hour || cfg.Auth.TokenTTL != 720*time.Hour {
		t.Errorf("hold=%v ttl=%v", cfg.OrderNumberHold, cfg.Auth.TokenTTL)
	}
}

func TestEnvFileAndOverrides(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "kiosk.env")
	content := "DB_DRIVER=memory\nMEMBER_LOGIN=false\nPAYMENT_DISPLAY_DELAY=2s\nTERMINAL_ID=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("TERMINAL_ID", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB.Driver != "memory" || cfg.Identity.MemberLogin || cfg.Payment.DisplayDelay != 2*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.TerminalID != "from-env" {
		t.Errorf("terminal = %q, environment should win over the file", cfg.TerminalID)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for a missing explicit env file")
	}
}

func TestSignupPolicyFollowsProvider(t *testing.T) {
	tests := []struct {
		provider, policy, want string
	}{
		{"simulated", "", "always"},
		{"code", "", "skip_known"},
		{"simulated", "SKIP_KNOWN", "skip_known"},
	}
	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.policy, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("OTP_PROVIDER", tt.provider)
			t.Setenv("SIGNUP_POLICY", tt.policy)

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Identity.SignupPolicy != tt.want {
				t.Errorf("SignupPolicy = %q, want %q", cfg.Identity.SignupPolicy, tt.want)
			}
		})
	}

	t.Run("code/always", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OTP_PROVIDER", "code")
		t.Setenv("SIGNUP_POLICY", "always")
		if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "SIGNUP_POLICY") {
			t.Errorf("error = %v, want SIGNUP_POLICY rejected for the code provider", err)
		}
	})
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"DB_DRIVER", "mysql", "DB_DRIVER"},
		{"DB_DRIVER", "postgres", "DATABASE_URL"},
		{"OTP_PROVIDER", "carrier-pigeon", "OTP_PROVIDER"},
		{"SIGNUP_POLICY", "sometimes", "SIGNUP_POLICY"},
		{"MEMBER_LOGIN", "maybe", "MEMBER_LOGIN"},
		{"CHECKOUT_ATTEMPTS", "0", "CHECKOUT_ATTEMPTS"},
		{"CHECKOUT_ATTEMPTS", "three", "CHECKOUT_ATTEMPTS"},
		{"PAYMENT_PROCESSING_DELAY", "soon", "PAYMENT_PROCESSING_DELAY"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
