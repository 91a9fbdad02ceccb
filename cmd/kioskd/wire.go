package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/auth"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/catalog"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/checkout"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/config"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/identity"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/ordernum"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/payment"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/service"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/server"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage/memory"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage/postgres"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage/sqlite"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/stream"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/workflow"
)

// kioskStore is what every storage backend provides.
type kioskStore interface {
	storage.OrderStore
	storage.MemberStore
}

// otpTTL is how long an issued member code stays valid.
const otpTTL = 5 * time.Minute

// app holds the wired components and what must be closed on shutdown.
type app struct {
	handler http.Handler
	machine *workflow.Machine
	closers []func() error
}

func (a *app) Close() {
	if a.machine != nil {
		a.machine.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("Shutdown step failed", "error", err)
		}
	}
}

func loadCatalog(cfg *config.Config) (catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	slog.Info("Catalog loaded", "path", cfg.CatalogPath, "items_count", len(cat.Items()))
	return cat, nil
}

func openStore(ctx context.Context, cfg config.DBConfig) (kioskStore, error) {
	switch cfg.Driver {
	case "memory":
		slog.Warn("Using in-memory storage; orders are lost on exit")
		return memory.New(), nil
	case "postgres":
		store, err := postgres.New(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", "postgres")
		return store, nil
	default:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		store, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", "sqlite", "database", cfg.Path)
		return store, nil
	}
}

func identityFlow(cfg config.IdentityConfig, members storage.MemberStore, messenger identity.Messenger) *identity.Flow {
	var provider identity.Provider = identity.Simulated{}
	if cfg.Provider == "code" {
		provider = identity.NewCodeProvider(members, messenger, otpTTL, 3)
	}
	opts := identity.Options{MemberLogin: cfg.MemberLogin, NeedsSignup: identity.AlwaysSignUp}
	if cfg.SignupPolicy == "skip_known" {
		opts.NeedsSignup = identity.SkipKnownMembers
	}
	return identity.NewFlow(provider, opts)
}

// build wires every component from cfg.
func build(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	var reserver ordernum.Reserver = ordernum.NewMemoryReserver()
	if cfg.Redis.Enabled() {
		rr, err := ordernum.NewRedisReserver(ctx, cfg.Redis.Addr, cfg.Redis.Password, "")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rr.Close)
		reserver = rr
		slog.Info("Order numbers reserved in redis", "addr", cfg.Redis.Addr)
	}
	numbers := ordernum.New(reserver, cfg.OrderNumberHold)

	orchestrator := checkout.New(store, numbers, checkout.Options{
		Attempts: cfg.Checkout.Attempts,
		Backoff:  cfg.Checkout.Backoff,
	})

	a.machine, err = workflow.NewMachine(workflow.Config{
		Catalog:      cat,
		Checkout:     orchestrator,
		Identity:     identityFlow(cfg.Identity, store, identity.LogMessenger{}),
		Processor:    payment.SimulatedProcessor{Delay: cfg.Payment.ProcessingDelay},
		DisplayDelay: cfg.Payment.DisplayDelay,
		OnPaymentSucceeded: func(r payment.Receipt) {
			slog.Info("Payment confirmed", "terminal_id", cfg.TerminalID, "reference", r.Reference, "amount", r.Amount.String())
		},
	})
	if err != nil {
		return nil, err
	}

	var jwt *auth.JWTManager
	if cfg.Auth.Secret != "" {
		jwt = auth.NewJWTManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	} else {
		slog.Warn("JWT_SECRET is not set; RPC and stream endpoints are open")
	}

	a.handler = server.New(server.Options{
		Kiosk:  service.NewKioskService(a.machine, cat),
		Stream: stream.NewHandler(a.machine, nil),
		JWT:    jwt,
	})
	return a, nil
}

var errNoSecret = errors.New("JWT_SECRET must be set to issue terminal tokens")
