// Package ordernum allocates the 3-digit display numbers printed on order
// tickets.
//
// Display numbers are not primary keys; orders are keyed by UUID in
// storage. A Reserver keeps a number out of circulation for as long as the
// order it names is likely to be on the pickup board.
package ordernum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"
)

const (
	// Min and Max bound the display range.
	Min = 100
	Max = 999

	defaultAttempts = 64
)

// ErrExhausted is returned when no free number was found.
var ErrExhausted = errors.New("no free order number available")

// Reserver claims display numbers for a hold period.
type Reserver interface {
	// Reserve claims number for ttl. It reports false if the number is
	// already held.
	Reserve(ctx context.Context, number string, ttl time.Duration) (bool, error)

	// Release returns number to circulation.
	Release(ctx context.Context, number string) error
}

// Allocator hands out display numbers.
type Allocator struct {
	reserver Reserver
	hold     time.Duration
	attempts int
	intn     func(n int) int
}

// New creates an Allocator. A nil reserver disables the uniqueness check
// and every draw is accepted.
func New(reserver Reserver, hold time.Duration) *Allocator {
	return &Allocator{
		reserver: reserver,
		hold:     hold,
		attempts: defaultAttempts,
		intn:     rand.IntN,
	}
}

// Next draws random numbers in [Min, Max] until one can be reserved.
func (a *Allocator) Next(ctx context.Context) (string, error) {
	for i := 0; i < a.attempts; i++ {
		number := strconv.Itoa(Min + a.intn(Max-Min+1))
		if a.reserver == nil {
			return number, nil
		}

		ok, err := a.reserver.Reserve(ctx, number, a.hold)
		if err != nil {
			return "", fmt.Errorf("failed to reserve order number: %w", err)
		}
		if ok {
			return number, nil
		}
		slog.Debug("Order number in use, drawing again", "number", number)
	}
	return "", ErrExhausted
}

// Release frees a number whose order was never stored.
func (a *Allocator) Release(ctx context.Context, number string) error {
	if a.reserver == nil || number == "" {
		return nil
	}
	return a.reserver.Release(ctx, number)
}
