package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/money"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "kiosk-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleOrder() *models.Order {
	slot := time.Date(2026, 3, 14, 9, 45, 0, 0, time.UTC)
	return &models.Order{
		Number:        "417",
		GuestName:     "Juan",
		DiningOption:  models.TakeOut,
		TimingMode:    models.Scheduled,
		ScheduledTime: &slot,
		PaymentStatus: models.Paid,
		Total:         money.Pesos(263),
		Lines: []models.OrderLine{
			{MenuItemName: "Classic Kapé", Price: money.Pesos(89), Quantity: 1, Sugar: "100%", Milk: "Full Cream"},
			{
				MenuItemName: "Iced Kapé Latte",
				Price:        money.Pesos(119),
				Quantity:     1,
				Sugar:        "50%",
				Milk:         "Oat",
				AddOns:       []string{"Extra Shot", "Coffee Jelly"},
				AddOnsTotal:  money.Pesos(55),
			},
		},
	}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("PlaceOrder generates IDs and defaults", func(t *testing.T) {
		order := sampleOrder()
		if err := store.PlaceOrder(ctx, order); err != nil {
			t.Fatalf("PlaceOrder failed: %v", err)
		}

		if order.ID == "" {
			t.Error("Expected order ID to be generated")
		}
		if order.Status != models.StatusPending {
			t.Errorf("Expected status pending, got %q", order.Status)
		}
		if order.CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}
		for i, line := range order.Lines {
			if line.ID == "" || line.OrderID != order.ID {
				t.Errorf("line %d: id=%q order_id=%q", i, line.ID, line.OrderID)
			}
		}
	})

	t.Run("GetOrder retrieves complete order", func(t *testing.T) {
		original := sampleOrder()
		if err := store.PlaceOrder(ctx, original); err != nil {
			t.Fatalf("PlaceOrder failed: %v", err)
		}

		retrieved, err := store.GetOrder(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetOrder failed: %v", err)
		}

		if retrieved.Number != "417" || retrieved.GuestName != "Juan" {
			t.Errorf("number/guest = %q/%q", retrieved.Number, retrieved.GuestName)
		}
		if retrieved.Total != money.Pesos(263) {
			t.Errorf("Expected total 263.00, got %s", retrieved.Total)
		}
		if retrieved.PaymentStatus != models.Paid || retrieved.TimingMode != models.Scheduled {
			t.Errorf("payment/timing = %q/%q", retrieved.PaymentStatus, retrieved.TimingMode)
		}
		if retrieved.ScheduledTime == nil || !retrieved.ScheduledTime.Equal(*original.ScheduledTime) {
			t.Errorf("scheduled time = %v", retrieved.ScheduledTime)
		}
		if len(retrieved.Lines) != 2 {
			t.Fatalf("Expected 2 lines, got %d", len(retrieved.Lines))
		}

		latte := retrieved.Lines[1]
		if latte.MenuItemName != "Iced Kapé Latte" || latte.Total() != money.Pesos(174) {
			t.Errorf("latte = %+v total %s", latte, latte.Total())
		}
		if len(latte.AddOns) != 2 || latte.AddOns[0] != "Extra Shot" {
			t.Errorf("add-ons = %v", latte.AddOns)
		}
		if retrieved.Lines[0].AddOns == nil {
			t.Error("Expected empty add-ons slice, got nil")
		}
	})

	t.Run("two-call contract with compensation", func(t *testing.T) {
		order := sampleOrder()
		order.ScheduledTime = nil
		order.TimingMode = models.ASAP
		order.PaymentStatus = models.Unpaid

		id, err := store.CreateOrder(ctx, order)
		if err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
		if err := store.AddLineItems(ctx, id, order.Lines); err != nil {
			t.Fatalf("AddLineItems failed: %v", err)
		}

		got, err := store.GetOrder(ctx, id)
		if err != nil {
			t.Fatalf("GetOrder failed: %v", err)
		}
		if got.ScheduledTime != nil || len(got.Lines) != 2 {
			t.Errorf("scheduled=%v lines=%d", got.ScheduledTime, len(got.Lines))
		}

		if err := store.DeleteOrder(ctx, id); err != nil {
			t.Fatalf("DeleteOrder failed: %v", err)
		}
		if _, err := store.GetOrder(ctx, id); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}

		var orphans int
		if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM order_items WHERE order_id = ?", id).Scan(&orphans); err != nil {
			t.Fatalf("count: %v", err)
		}
		if orphans != 0 {
			t.Errorf("Expected lines to cascade, found %d", orphans)
		}
	})

	t.Run("line items for unknown order are rejected", func(t *testing.T) {
		lines := sampleOrder().Lines
		if err := store.AddLineItems(ctx, "missing", lines); err == nil {
			t.Error("Expected foreign key error")
		}
	})

	t.Run("GetOrder not found", func(t *testing.T) {
		_, err := store.GetOrder(ctx, "non-existent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestMembers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.MemberByPhone(ctx, "09171234567")
	if err != nil || got != nil {
		t.Fatalf("unknown phone: %v, %v", got, err)
	}

	m := &models.Member{ID: "m-1", Phone: "09171234567", DisplayName: "Maria", CreatedAt: 1700000000}
	if err := store.CreateMember(ctx, m); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}
	if err := store.CreateMember(ctx, &models.Member{ID: "m-2", Phone: m.Phone, DisplayName: "Dup"}); err == nil {
		t.Error("Expected unique phone violation")
	}

	got, err = store.MemberByPhone(ctx, m.Phone)
	if err != nil {
		t.Fatalf("MemberByPhone failed: %v", err)
	}
	if got == nil || *got != *m {
		t.Errorf("member = %+v, want %+v", got, m)
	}
}
