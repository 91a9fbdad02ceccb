// Package sqlite provides a SQLite-backed implementation of the storage interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/money"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage"
)

// Ensure SQLiteStore implements the storage interfaces
var (
	_ storage.AtomicOrderStore = (*SQLiteStore)(nil)
	_ storage.MemberStore      = (*SQLiteStore)(nil)
)

// SQLiteStore implements the storage interfaces using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// PRAGMAs are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// PlaceOrder persists the header and all lines in one transaction.
func (s *SQLiteStore) PlaceOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertHeader(ctx, tx, order); err != nil {
		return err
	}
	if err := insertLines(ctx, tx, order.ID, order.Lines); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateOrder persists the order header.
func (s *SQLiteStore) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	if err := insertHeader(ctx, s.db, order); err != nil {
		return "", err
	}
	return order.ID, nil
}

// AddLineItems persists lines for an existing order in one transaction.
func (s *SQLiteStore) AddLineItems(ctx context.Context, orderID string, lines []models.OrderLine) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertLines(ctx, tx, orderID, lines); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteOrder removes an order; its lines cascade.
func (s *SQLiteStore) DeleteOrder(ctx context.Context, orderID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", orderID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

func insertHeader(ctx context.Context, ex execer, order *models.Order) error {
	// Generate IDs if not set
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}

	var scheduled sql.NullInt64
	if order.ScheduledTime != nil {
		scheduled = sql.NullInt64{Int64: order.ScheduledTime.Unix(), Valid: true}
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO orders (id, order_number, guest_name, dining_option, timing_mode, scheduled_time,
			status, payment_status, payment_reference, total_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.Number,
		order.GuestName,
		string(order.DiningOption),
		string(order.TimingMode),
		scheduled,
		string(order.Status),
		string(order.PaymentStatus),
		order.PaymentReference,
		int64(order.Total),
		order.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func insertLines(ctx context.Context, ex execer, orderID string, lines []models.OrderLine) error {
	for i := range lines {
		line := &lines[i]
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		line.OrderID = orderID

		addOns, err := json.Marshal(nonNil(line.AddOns))
		if err != nil {
			return fmt.Errorf("failed to encode add-ons: %w", err)
		}

		_, err = ex.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, position, menu_item_name, price, quantity,
				sugar_level, milk_type, add_ons, add_ons_total)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID, orderID, i, line.MenuItemName, int64(line.Price), line.Quantity,
			line.Sugar, line.Milk, string(addOns), int64(line.AddOnsTotal),
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

// GetOrder retrieves an order by ID, including all line items.
func (s *SQLiteStore) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order := &models.Order{}
	var (
		dining, timing, status, payment string
		scheduled                       sql.NullInt64
		total, created                  int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, order_number, guest_name, dining_option, timing_mode, scheduled_time,
			status, payment_status, payment_reference, total_amount, created_at
		FROM orders WHERE id = ?`,
		orderID,
	).Scan(&order.ID, &order.Number, &order.GuestName, &dining, &timing, &scheduled,
		&status, &payment, &order.PaymentReference, &total, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", orderID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	order.DiningOption = models.DiningOption(dining)
	order.TimingMode = models.TimingMode(timing)
	order.Status = models.OrderStatus(status)
	order.PaymentStatus = models.PaymentStatus(payment)
	order.Total = money.Amount(total)
	order.CreatedAt = time.Unix(created, 0)
	if scheduled.Valid {
		t := time.Unix(scheduled.Int64, 0)
		order.ScheduledTime = &t
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, menu_item_name, price, quantity, sugar_level, milk_type, add_ons, add_ons_total
		FROM order_items WHERE order_id = ? ORDER BY position`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		line := models.OrderLine{OrderID: orderID}
		var price, addOnsTotal int64
		var addOns string
		if err := rows.Scan(&line.ID, &line.MenuItemName, &price, &line.Quantity,
			&line.Sugar, &line.Milk, &addOns, &addOnsTotal); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if err := json.Unmarshal([]byte(addOns), &line.AddOns); err != nil {
			return nil, fmt.Errorf("failed to decode add-ons: %w", err)
		}
		line.Price = money.Amount(price)
		line.AddOnsTotal = money.Amount(addOnsTotal)
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	return order, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
