package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/auth"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/config"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/identity"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage/memory"
)

func writeEnv(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuildWithMemoryStore(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "")
	cfg, err := config.Load(writeEnv(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	a, err := build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer a.Close()

	srv := httptest.NewServer(a.handler)
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestBuildWithSQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "nested", "kiosk.db"))
	t.Setenv("OTP_PROVIDER", "code")
	cfg, err := config.Load(writeEnv(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	a, err := build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	a.Close()
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	out, err := run(t, "token", "--env-file", writeEnv(t), "--terminal", "kiosk-7")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	claims, err := auth.NewJWTManager("cli-secret", 0).Validate(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.TerminalID != "kiosk-7" {
		t.Errorf("terminal = %q", claims.TerminalID)
	}

	t.Setenv("JWT_SECRET", "")
	if _, err := run(t, "token", "--env-file", writeEnv(t)); err != errNoSecret {
		t.Errorf("error = %v, want errNoSecret", err)
	}
}

func TestMenuCommand(t *testing.T) {
	t.Setenv("CATALOG_PATH", "")
	out, err := run(t, "menu", "--env-file", writeEnv(t))
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	for _, want := range []string{"HOT COFFEE", "Classic Kapé", "₱89.00", "ADD-ONS", "+₱30.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("menu output missing %q", want)
		}
	}
}

type lastMessage struct{ body string }

func (m *lastMessage) Send(ctx context.Context, phone, body string) error {
	m.body = body
	return nil
}

var sixDigits = regexp.MustCompile(`\d{6}`)

// memberLogin runs the member path to completion with the code the
// messenger received and returns the final state.
func memberLogin(t *testing.T, flow *identity.Flow, msg *lastMessage, phone, name string) identity.State {
	t.Helper()
	ctx := context.Background()
	s := identity.Start()

	apply := func(in identity.Input) {
		t.Helper()
		next, err := flow.Handle(ctx, s, in)
		if err != nil {
			t.Fatalf("%T at %s: %v", in, s.Stage, err)
		}
		s = next
	}

	apply(identity.ChooseMember{})
	apply(identity.SetPhone{Value: phone})
	apply(identity.SendCode{})
	apply(identity.SetCode{Value: sixDigits.FindString(msg.body)})
	apply(identity.Verify{})
	if s.Stage == identity.StageMemberSignup {
		apply(identity.SetDisplayName{Value: name})
		apply(identity.CreateAccount{})
	}
	return s
}

func TestReturningMemberWithCodeProvider(t *testing.T) {
	t.Setenv("OTP_PROVIDER", "code")
	t.Setenv("SIGNUP_POLICY", "")
	t.Setenv("MEMBER_LOGIN", "true")
	cfg, err := config.Load(writeEnv(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	msg := &lastMessage{}
	flow := identityFlow(cfg.Identity, memory.New(), msg)

	first := memberLogin(t, flow, msg, "09171234567", "Ana")
	if first.Stage != identity.StageResolved || first.Resolved != "Ana" {
		t.Fatalf("first visit: stage=%s resolved=%q err=%q", first.Stage, first.Resolved, first.Err)
	}

	second := memberLogin(t, flow, msg, "09171234567", "Ana")
	if second.Stage != identity.StageResolved || second.Resolved != "Ana" {
		t.Errorf("second visit: stage=%s resolved=%q err=%q", second.Stage, second.Resolved, second.Err)
	}
}
