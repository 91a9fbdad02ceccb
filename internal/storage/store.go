// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// OrderStore defines the interface for order storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// memory) without changing the checkout layer.
type OrderStore interface {
	// CreateOrder persists the order header only and returns the assigned ID.
	// order.ID and order.CreatedAt are populated if unset. Lines are ignored.
	CreateOrder(ctx context.Context, order *models.Order) (string, error)

	// AddLineItems persists line snapshots for an existing order. Line IDs
	// are populated if unset.
	AddLineItems(ctx context.Context, orderID string, lines []models.OrderLine) error

	// DeleteOrder removes an order and any of its lines. Deleting an
	// unknown order is not an error.
	DeleteOrder(ctx context.Context, orderID string) error

	// GetOrder retrieves an order with its lines.
	// Returns ErrNotFound if the order does not exist.
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)

	// Close releases any resources held by the store.
	Close() error
}

// AtomicOrderStore is implemented by stores that can write an order header
// and its lines in a single transaction.
type AtomicOrderStore interface {
	OrderStore

	// PlaceOrder persists order and order.Lines atomically, populating IDs.
	PlaceOrder(ctx context.Context, order *models.Order) error
}

// MemberStore persists loyalty members.
type MemberStore interface {
	// MemberByPhone returns nil, nil when no member has the number.
	MemberByPhone(ctx context.Context, phone string) (*models.Member, error)

	// CreateMember inserts a new member.
	CreateMember(ctx context.Context, member *models.Member) error
}
