// Package postgres provides a PostgreSQL-backed implementation of the
// storage interfaces using a pgx connection pool. Money columns are
// NUMERIC(10,2) and cross the boundary as exact decimals.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/money"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage"
)

var (
	_ storage.AtomicOrderStore = (*Store)(nil)
	_ storage.MemberStore      = (*Store)(nil)
)

// Store implements the storage interfaces on a pgxpool.Pool.
type Store struct {
	pool *pgxpool.Pool
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// New connects to databaseURL and ensures the schema exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// PlaceOrder persists the header and all lines in one transaction.
func (s *Store) PlaceOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertHeader(ctx, tx, order); err != nil {
		return err
	}
	if err := insertLines(ctx, tx, order.ID, order.Lines); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateOrder persists the order header.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	if err := insertHeader(ctx, s.pool, order); err != nil {
		return "", err
	}
	return order.ID, nil
}

// AddLineItems persists lines for an existing order.
func (s *Store) AddLineItems(ctx context.Context, orderID string, lines []models.OrderLine) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return insertLines(ctx, tx, orderID, lines)
	})
}

// DeleteOrder removes an order; its lines cascade.
func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM orders WHERE id = $1", orderID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

func insertHeader(ctx context.Context, q querier, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}

	_, err := q.Exec(ctx, `
		INSERT INTO orders (id, order_number, guest_name, dining_option, timing_mode, scheduled_time,
			status, payment_status, payment_reference, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		order.ID,
		order.Number,
		order.GuestName,
		string(order.DiningOption),
		string(order.TimingMode),
		order.ScheduledTime,
		string(order.Status),
		string(order.PaymentStatus),
		order.PaymentReference,
		order.Total.Decimal(),
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func insertLines(ctx context.Context, q querier, orderID string, lines []models.OrderLine) error {
	for i := range lines {
		line := &lines[i]
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		line.OrderID = orderID

		addOns := line.AddOns
		if addOns == nil {
			addOns = []string{}
		}

		_, err := q.Exec(ctx, `
			INSERT INTO order_items (id, order_id, position, menu_item_name, price, quantity,
				sugar_level, milk_type, add_ons, add_ons_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			line.ID, orderID, i, line.MenuItemName, line.Price.Decimal(), line.Quantity,
			line.Sugar, line.Milk, addOns, line.AddOnsTotal.Decimal(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

// GetOrder retrieves an order by ID, including all line items.
func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order := &models.Order{}
	var (
		dining, timing, status, payment string
		total                           decimal.Decimal
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, order_number, guest_name, dining_option, timing_mode, scheduled_time,
			status, payment_status, payment_reference, total_amount, created_at
		FROM orders WHERE id = $1`,
		orderID,
	).Scan(&order.ID, &order.Number, &order.GuestName, &dining, &timing, &order.ScheduledTime,
		&status, &payment, &order.PaymentReference, &total, &order.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", orderID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	order.DiningOption = models.DiningOption(dining)
	order.TimingMode = models.TimingMode(timing)
	order.Status = models.OrderStatus(status)
	order.PaymentStatus = models.PaymentStatus(payment)
	if order.Total, err = money.FromDecimal(total); err != nil {
		return nil, fmt.Errorf("invalid total_amount: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, menu_item_name, price, quantity, sugar_level, milk_type, add_ons, add_ons_total
		FROM order_items WHERE order_id = $1 ORDER BY position`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		line := models.OrderLine{OrderID: orderID}
		var price, addOnsTotal decimal.Decimal
		if err := rows.Scan(&line.ID, &line.MenuItemName, &price, &line.Quantity,
			&line.Sugar, &line.Milk, &line.AddOns, &addOnsTotal); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if line.Price, err = money.FromDecimal(price); err != nil {
			return nil, fmt.Errorf("invalid price: %w", err)
		}
		if line.AddOnsTotal, err = money.FromDecimal(addOnsTotal); err != nil {
			return nil, fmt.Errorf("invalid add_ons_total: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	return order, nil
}

// CreateMember inserts a new member.
func (s *Store) CreateMember(ctx context.Context, member *models.Member) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO members (id, phone, display_name, created_at) VALUES ($1, $2, $3, $4)",
		member.ID, member.Phone, member.DisplayName, member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// MemberByPhone retrieves a member by mobile number.
func (s *Store) MemberByPhone(ctx context.Context, phone string) (*models.Member, error) {
	member := &models.Member{}
	err := s.pool.QueryRow(ctx,
		"SELECT id::text, phone, display_name, created_at FROM members WHERE phone = $1",
		phone,
	).Scan(&member.ID, &member.Phone, &member.DisplayName, &member.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by phone: %w", err)
	}
	return member, nil
}
