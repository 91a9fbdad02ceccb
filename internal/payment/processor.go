package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/money"
)

// ErrDeclined is returned by a Processor that refuses a charge.
var ErrDeclined = errors.New("payment was declined")

// Request is a single charge.
type Request struct {
	Payer  string       `json:"payer"`
	Amount money.Amount `json:"amount"`
}

// Receipt proves a completed charge.
type Receipt struct {
	Reference string       `json:"reference"`
	Payer     string       `json:"payer"`
	Amount    money.Amount `json:"amount"`
	ChargedAt time.Time    `json:"charged_at"`
}

// Processor settles a charge. Implementations must not abandon a charge
// that has started; callers detach ctx cancellation before calling.
type Processor interface {
	Charge(ctx context.Context, req Request) (Receipt, error)
}

// SimulatedProcessor waits Delay and then always succeeds.
type SimulatedProcessor struct {
	Delay time.Duration
}

var _ Processor = SimulatedProcessor{}

// Charge blocks for the processing delay. Cancellation of ctx is ignored.
func (p SimulatedProcessor) Charge(ctx context.Context, req Request) (Receipt, error) {
	slog.Debug("Simulated charge started", "amount", req.Amount.String(), "delay", p.Delay)
	if p.Delay > 0 {
		time.Sleep(p.Delay)
	}
	return Receipt{
		Reference: "SIM-" + uuid.New().String(),
		Payer:     req.Payer,
		Amount:    req.Amount,
		ChargedAt: time.Now(),
	}, nil
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, req Request) (Receipt, error)

func (f ProcessorFunc) Charge(ctx context.Context, req Request) (Receipt, error) {
	return f(ctx, req)
}
