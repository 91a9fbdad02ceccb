package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/money"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage"
)

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	order := &models.Order{
		Number:        "123",
		GuestName:     "Juan",
		PaymentStatus: models.Unpaid,
		Total:         money.Pesos(89),
		Lines:         []models.OrderLine{{MenuItemName: "Classic Kapé", Price: money.Pesos(89), Quantity: 1, AddOns: []string{"Extra Shot"}}},
	}
	if err := s.PlaceOrder(ctx, order); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.ID == "" || order.Lines[0].ID == "" {
		t.Fatal("IDs not assigned")
	}

	got, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	got.Lines[0].AddOns[0] = "mutated"

	again, _ := s.GetOrder(ctx, order.ID)
	if again.Lines[0].AddOns[0] != "Extra Shot" {
		t.Error("stored order aliased by caller")
	}
}

func TestTwoCallContract(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.AddLineItems(ctx, "missing", nil); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("AddLineItems unknown order error = %v", err)
	}

	id, err := s.CreateOrder(ctx, &models.Order{Number: "200", Lines: []models.OrderLine{{MenuItemName: "ignored"}}})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	got, _ := s.GetOrder(ctx, id)
	if len(got.Lines) != 0 {
		t.Errorf("CreateOrder stored %d lines, want header only", len(got.Lines))
	}

	if err := s.AddLineItems(ctx, id, []models.OrderLine{{MenuItemName: "Spanish Latte", Quantity: 1}}); err != nil {
		t.Fatalf("AddLineItems: %v", err)
	}
	got, _ = s.GetOrder(ctx, id)
	if len(got.Lines) != 1 || got.Lines[0].OrderID != id {
		t.Errorf("lines = %+v", got.Lines)
	}

	_ = s.DeleteOrder(ctx, id)
	if s.Len() != 0 {
		t.Errorf("Len() = %d after delete", s.Len())
	}
}

func TestMembers(t *testing.T) {
	ctx := context.Background()
	s := New()

	if m, err := s.MemberByPhone(ctx, "09171234567"); m != nil || err != nil {
		t.Fatalf("unknown phone: %v, %v", m, err)
	}
	if err := s.CreateMember(ctx, &models.Member{ID: "1", Phone: "09171234567", DisplayName: "Maria"}); err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if err := s.CreateMember(ctx, &models.Member{ID: "2", Phone: "09171234567"}); err == nil {
		t.Error("duplicate phone accepted")
	}
	m, _ := s.MemberByPhone(ctx, "09171234567")
	if m == nil || m.DisplayName != "Maria" {
		t.Errorf("member = %+v", m)
	}
}
