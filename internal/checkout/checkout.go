// Package checkout turns a priced cart into a persisted order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/metrics"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/ordernum"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/payment"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/pricing"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage"
)

var (
	// ErrEmptyCart is returned when there is nothing to order.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrPaymentRequired is returned for a scheduled order without a receipt.
	ErrPaymentRequired = errors.New("scheduled orders must be paid before checkout")

	// ErrPersistFailed is returned after every storage attempt failed.
	ErrPersistFailed = errors.New("order could not be saved")

	errOrphanedHeader = errors.New("order header left without lines")
)

// Request is an immutable snapshot of the session at "Place Order".
type Request struct {
	GuestName     string
	DiningOption  models.DiningOption
	TimingMode    models.TimingMode
	ScheduledTime *time.Time
	Quote         pricing.Quote

	// Receipt is the completed charge for a scheduled order.
	Receipt *payment.Receipt
}

// Options tunes persistence retries.
type Options struct {
	// Attempts is the total number of storage attempts. Defaults to 3.
	Attempts int

	// Backoff is the wait before the second attempt; it doubles after each
	// failure. Defaults to 200ms.
	Backoff time.Duration
}

// Orchestrator assigns an order number and writes the order exactly once.
type Orchestrator struct {
	store   storage.OrderStore
	numbers *ordernum.Allocator
	opts    Options
	now     func() time.Time
}

// New creates an Orchestrator. A nil allocator draws unreserved numbers.
func New(store storage.OrderStore, numbers *ordernum.Allocator, opts Options) *Orchestrator {
	if numbers == nil {
		numbers = ordernum.New(nil, 0)
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	return &Orchestrator{store: store, numbers: numbers, opts: opts, now: time.Now}
}

// BuildOrder snapshots req into an unsaved order.
func BuildOrder(req Request, number string, now time.Time) (*models.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	status := models.Unpaid
	var reference string
	if req.TimingMode == models.Scheduled {
		status = models.Paid
		reference = req.Receipt.Reference
	}

	var scheduled *time.Time
	if req.TimingMode == models.Scheduled && req.ScheduledTime != nil {
		t := *req.ScheduledTime
		scheduled = &t
	}

	order := &models.Order{
		ID:               uuid.New().String(),
		Number:           number,
		GuestName:        req.GuestName,
		DiningOption:     req.DiningOption,
		TimingMode:       req.TimingMode,
		ScheduledTime:    scheduled,
		Status:           models.StatusPending,
		PaymentStatus:    status,
		PaymentReference: reference,
		Total:            req.Quote.Total,
		CreatedAt:        now,
		Lines:            make([]models.OrderLine, 0, len(req.Quote.Lines)),
	}
	for _, pl := range req.Quote.Lines {
		c := pl.Line.Customization.Clone()
		order.Lines = append(order.Lines, models.OrderLine{
			MenuItemName: pl.Line.Item.Name,
			Price:        pl.Line.Item.Price,
			Quantity:     pl.Line.Quantity,
			Sugar:        c.Sugar,
			Milk:         c.Milk,
			AddOns:       c.AddOns,
			AddOnsTotal:  pl.AddOnsTotal,
		})
	}
	return order, nil
}

func validate(req Request) error {
	if len(req.Quote.Lines) == 0 {
		return ErrEmptyCart
	}
	if req.TimingMode == models.Scheduled && req.Receipt == nil {
		return ErrPaymentRequired
	}
	return nil
}

// Checkout persists req as a new order and returns it.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) (*models.Order, error) {
	start := time.Now()
	defer func() { metrics.CheckoutDuration.Observe(time.Since(start).Seconds()) }()

	if err := validate(req); err != nil {
		return nil, err
	}

	number, err := o.numbers.Next(ctx)
	if err != nil {
		metrics.CheckoutFailures.Inc()
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}

	order, err := BuildOrder(req, number, o.now())
	if err != nil {
		return nil, err
	}

	if err := o.persist(ctx, order); err != nil {
		if rerr := o.numbers.Release(ctx, number); rerr != nil {
			slog.Warn("Failed to release order number", "order_number", number, "error", rerr)
		}
		metrics.CheckoutFailures.Inc()
		slog.Error("Checkout failed", "order_number", number, "error", err)
		return nil, err
	}

	metrics.OrdersCreated.WithLabelValues(string(order.PaymentStatus)).Inc()
	slog.Info("Order placed",
		"order_id", order.ID,
		"order_number", order.Number,
		"payment_status", order.PaymentStatus,
		"total", order.Total.String(),
		"lines", len(order.Lines))
	return order, nil
}

func (o *Orchestrator) persist(ctx context.Context, order *models.Order) error {
	backoff := o.opts.Backoff
	var lastErr error
	for attempt := 1; attempt <= o.opts.Attempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%w: %w", ErrPersistFailed, ctx.Err())
			case <-timer.C:
			}
			backoff *= 2
		}

		lastErr = o.write(ctx, order)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, errOrphanedHeader) {
			// Another CreateOrder would collide with the header left behind.
			break
		}
		slog.Warn("Order write failed",
			"order_id", order.ID,
			"attempt", attempt,
			"max_attempts", o.opts.Attempts,
			"error", lastErr)
	}
	return fmt.Errorf("%w: %w", ErrPersistFailed, lastErr)
}

// write performs one storage attempt. Stores that cannot write atomically
// get the two-call sequence with a compensating delete.
func (o *Orchestrator) write(ctx context.Context, order *models.Order) error {
	if atomic, ok := o.store.(storage.AtomicOrderStore); ok {
		return atomic.PlaceOrder(ctx, order)
	}

	id, err := o.store.CreateOrder(ctx, order)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	order.ID = id

	if err := o.store.AddLineItems(ctx, id, order.Lines); err != nil {
		if derr := o.store.DeleteOrder(ctx, id); derr != nil {
			slog.Error("Failed to remove order without lines", "order_id", id, "error", derr)
			return errors.Join(fmt.Errorf("add line items: %w", err), fmt.Errorf("%w: %w", errOrphanedHeader, derr))
		}
		return fmt.Errorf("add line items: %w", err)
	}
	return nil
}
