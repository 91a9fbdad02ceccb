package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/auth"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/catalog"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/checkout"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/middleware"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/money"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/payment"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage/sqlite"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/workflow"
)

// setupTestServer creates a test server backed by a temporary SQLite database.
func setupTestServer(t *testing.T, opts ...connect.HandlerOption) (*KioskServiceClient, *sqlite.SQLiteStore) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "kiosk.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cat := catalog.Default()
	machine, err := workflow.NewMachine(workflow.Config{
		Catalog:      cat,
		Checkout:     checkout.New(store, nil, checkout.Options{}),
		Processor:    payment.SimulatedProcessor{},
		DisplayDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("failed to create machine: %v", err)
	}
	t.Cleanup(machine.Close)

	path, handler := NewKioskServiceHandler(NewKioskService(machine, cat), opts...)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewKioskServiceClient(server.Client(), server.URL), store
}

func send(t *testing.T, client *KioskServiceClient, cmds ...workflow.Command) workflow.View {
	t.Helper()
	var v workflow.View
	for _, c := range cmds {
		resp, err := client.Dispatch(context.Background(), connect.NewRequest(&DispatchRequest{Command: c}))
		if err != nil {
			t.Fatalf("Dispatch(%s) failed: %v", c.Type, err)
		}
		v = resp.Msg.View
	}
	return v
}

func TestGetView(t *testing.T) {
	client, _ := setupTestServer(t)

	resp, err := client.GetView(context.Background(), connect.NewRequest(&GetViewRequest{}))
	if err != nil {
		t.Fatalf("GetView failed: %v", err)
	}
	v := resp.Msg.View
	if v.Step != workflow.StepWelcome {
		t.Errorf("step = %s, want welcome", v.Step)
	}
	if !v.Has(workflow.ActionStart) {
		t.Errorf("actions = %v, want start", v.Actions)
	}
}

func TestGetMenu(t *testing.T) {
	client, _ := setupTestServer(t)

	resp, err := client.GetMenu(context.Background(), connect.NewRequest(&GetMenuRequest{}))
	if err != nil {
		t.Fatalf("GetMenu failed: %v", err)
	}
	if len(resp.Msg.Items) != 12 || len(resp.Msg.Categories) != 4 || len(resp.Msg.AddOns) != 3 {
		t.Errorf("items=%d categories=%d add-ons=%d", len(resp.Msg.Items), len(resp.Msg.Categories), len(resp.Msg.AddOns))
	}
	if resp.Msg.Items[0].Price != money.Pesos(89) {
		t.Errorf("first price = %s", resp.Msg.Items[0].Price)
	}

	resp, err = client.GetMenu(context.Background(), connect.NewRequest(&GetMenuRequest{Category: "Frappes"}))
	if err != nil {
		t.Fatalf("GetMenu(Frappes) failed: %v", err)
	}
	if len(resp.Msg.Items) != 3 {
		t.Errorf("frappes = %d, want 3", len(resp.Msg.Items))
	}

	_, err = client.GetMenu(context.Background(), connect.NewRequest(&GetMenuRequest{Category: "Pastries"}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("unknown category code = %v, want NotFound", connect.CodeOf(err))
	}
}

func TestDispatchASAPOrder(t *testing.T) {
	client, store := setupTestServer(t)

	v := send(t, client,
		workflow.Command{Type: workflow.ActionStart},
		workflow.Command{Type: workflow.ActionChooseGuest},
		workflow.Command{Type: workflow.ActionSetGuestName, Value: "Juan"},
		workflow.Command{Type: workflow.ActionContinue},
		workflow.Command{Type: workflow.ActionDineIn},
		workflow.Command{Type: workflow.ActionASAP},
		workflow.Command{Type: workflow.ActionOpenItem, Value: "1"},
		workflow.Command{Type: workflow.ActionConfirmCustomization},
		workflow.Command{Type: workflow.ActionOpenItem, Value: "5"},
		workflow.Command{Type: workflow.ActionToggleAddOn, Value: "Extra Shot"},
		workflow.Command{Type: workflow.ActionToggleAddOn, Value: "Coffee Jelly"},
		workflow.Command{Type: workflow.ActionConfirmCustomization},
		workflow.Command{Type: workflow.ActionViewCart},
	)
	if v.Total == nil || *v.Total != money.Pesos(263) {
		t.Fatalf("total = %v, want 263.00", v.Total)
	}

	v = send(t, client, workflow.Command{Type: workflow.ActionPlaceOrder})
	if v.Step != workflow.StepConfirmation || v.Order == nil {
		t.Fatalf("step = %s order = %v", v.Step, v.Order)
	}

	saved, err := store.GetOrder(context.Background(), v.Order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if saved.PaymentStatus != models.Unpaid || saved.Total != money.Pesos(263) || len(saved.Lines) != 2 {
		t.Errorf("saved = %+v", saved)
	}
}

func TestDispatchErrorCodes(t *testing.T) {
	client, _ := setupTestServer(t)

	tests := []struct {
		name string
		cmd  workflow.Command
		want connect.Code
	}{
		{"unknown command", workflow.Command{Type: "fly"}, connect.CodeInvalidArgument},
		{"missing value", workflow.Command{Type: workflow.ActionOpenItem}, connect.CodeInvalidArgument},
		{"wrong step", workflow.Command{Type: workflow.ActionPlaceOrder}, connect.CodeFailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Dispatch(context.Background(), connect.NewRequest(&DispatchRequest{Command: tt.cmd}))
			if connect.CodeOf(err) != tt.want {
				t.Errorf("code = %v, want %v (err %v)", connect.CodeOf(err), tt.want, err)
			}
		})
	}

	// Identity gate closed: continue with an empty name.
	send(t, client,
		workflow.Command{Type: workflow.ActionStart},
		workflow.Command{Type: workflow.ActionChooseGuest},
	)
	_, err := client.Dispatch(context.Background(), connect.NewRequest(&DispatchRequest{
		Command: workflow.Command{Type: workflow.ActionContinue},
	}))
	if connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Errorf("continue code = %v, want FailedPrecondition", connect.CodeOf(err))
	}
}

func TestRequireTerminal(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	client, _ := setupTestServer(t, connect.WithInterceptors(
		middleware.RequireTerminal(jwtManager),
		middleware.LoggingInterceptor(KioskServiceGetViewProcedure),
	))

	_, err := client.GetView(context.Background(), connect.NewRequest(&GetViewRequest{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("anonymous code = %v, want Unauthenticated", connect.CodeOf(err))
	}
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		t.Fatalf("error is not a connect error: %v", err)
	}

	token, err := jwtManager.Generate("kiosk-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	req := connect.NewRequest(&GetViewRequest{})
	req.Header().Set("Authorization", "Bearer "+token)
	if _, err := client.GetView(context.Background(), req); err != nil {
		t.Errorf("authenticated GetView failed: %v", err)
	}

	bad := connect.NewRequest(&GetViewRequest{})
	bad.Header().Set("Authorization", "Token "+token)
	if _, err := client.GetView(context.Background(), bad); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("malformed header code = %v", connect.CodeOf(err))
	}
}
