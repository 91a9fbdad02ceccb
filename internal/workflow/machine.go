package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/catalog"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/checkout"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/identity"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/metrics"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/payment"
)

const (
	// DefaultProcessingDelay is how long the simulated charge takes.
	DefaultProcessingDelay = 2500 * time.Millisecond

	// DefaultDisplayDelay is how long the payment success screen shows.
	DefaultDisplayDelay = 1500 * time.Millisecond

	saveFailedMessage    = "We couldn't save your order. Please try again."
	paymentFailedMessage = "Payment could not be completed. Please try again."
)

// Config wires a Machine to its collaborators.
type Config struct {
	Catalog  catalog.Catalog
	Checkout *checkout.Orchestrator

	// Identity defaults to the simulated provider with member login off.
	Identity *identity.Flow

	// Processor defaults to a SimulatedProcessor with DefaultProcessingDelay.
	Processor payment.Processor

	// DisplayDelay is the time between payment success and checkout.
	DisplayDelay time.Duration

	// OnPaymentSucceeded is called exactly once per completed payment,
	// after the display delay. It runs outside the machine lock.
	OnPaymentSucceeded func(payment.Receipt)

	Now   func() time.Time
	NewID func() string
}

// Machine owns one kiosk session and executes the effects Reduce returns.
// It is safe for concurrent use.
type Machine struct {
	cfg Config

	mu      sync.Mutex
	session Session
	timer   *time.Timer
	subs    map[int]chan View
	nextSub int
	hooks   []func()
	closed  bool

	wg sync.WaitGroup
}

// NewMachine creates a Machine at Welcome.
func NewMachine(cfg Config) (*Machine, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("workflow: catalog is required")
	}
	if cfg.Checkout == nil {
		return nil, errors.New("workflow: checkout orchestrator is required")
	}
	if cfg.Identity == nil {
		cfg.Identity = identity.NewFlow(identity.Simulated{}, identity.Options{})
	}
	if cfg.Processor == nil {
		cfg.Processor = payment.SimulatedProcessor{Delay: DefaultProcessingDelay}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Machine{
		cfg:     cfg,
		session: NewSession(),
		subs:    make(map[int]chan View),
	}, nil
}

func (m *Machine) env() Env {
	return Env{
		Catalog:  m.cfg.Catalog,
		Identity: m.cfg.Identity.Options(),
		Now:      m.cfg.Now(),
		NewID:    m.cfg.NewID,
	}
}

// Dispatch applies a guest event and any synchronous effects it causes.
// The returned view reflects the session after all of them, including on
// error.
func (m *Machine) Dispatch(ctx context.Context, e Event) (View, error) {
	m.mu.Lock()
	err := m.apply(ctx, e)
	v := Render(m.env(), m.session)
	hooks := m.takeHooks()
	m.mu.Unlock()

	runHooks(hooks)
	return v, err
}

// View returns the current view.
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Render(m.env(), m.session)
}

// Session returns a copy of the current session.
func (m *Machine) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session
	s.Cart = s.cloneCart()
	return s
}

// Subscribe returns a channel that receives the view after every change,
// starting with the current one. Slow subscribers miss intermediate views
// but always get the latest. Call the returned func to unsubscribe.
func (m *Machine) Subscribe() (<-chan View, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan View, 8)
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- Render(m.env(), m.session)

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
}

// Close stops pending timers, closes subscriptions, and waits for an
// in-flight charge to finish.
func (m *Machine) Close() {
	m.mu.Lock()
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
	}
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	m.mu.Unlock()

	m.wg.Wait()
}

// apply reduces e and keeps performing effects until none are left or one
// is asynchronous. Caller holds m.mu.
func (m *Machine) apply(ctx context.Context, e Event) error {
	for e != nil {
		prev := m.session
		next, eff, err := Reduce(m.env(), m.session, e)
		if err != nil {
			return err
		}
		m.session = next
		m.observe(prev, e)
		m.publish()

		e, err = m.perform(ctx, eff)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) observe(prev Session, e Event) {
	if from, to := prev.StepName(), m.session.StepName(); from != to {
		metrics.WorkflowTransitions.WithLabelValues(string(to)).Inc()
		slog.Debug("Workflow step changed", "from", from, "to", to)
	}

	if _, ok := e.(PaymentDisplayed); ok && m.session.Receipt != nil && m.cfg.OnPaymentSucceeded != nil {
		receipt := *m.session.Receipt
		hook := m.cfg.OnPaymentSucceeded
		m.hooks = append(m.hooks, func() { hook(receipt) })
	}
}

func (m *Machine) perform(ctx context.Context, eff Effect) (Event, error) {
	switch eff := eff.(type) {
	case nil:
		return nil, nil

	case ResolveIdentity:
		answer, err := m.cfg.Identity.Execute(ctx, eff.Request)
		if err != nil {
			return nil, fmt.Errorf("identity provider: %w", err)
		}
		return Identity{Input: answer}, nil

	case Persist:
		// A started checkout must finish even if the caller goes away.
		order, err := m.cfg.Checkout.Checkout(context.WithoutCancel(ctx), eff.Request)
		if err != nil {
			slog.Error("Checkout failed", "guest", eff.Request.GuestName, "error", err)
			return CheckoutFailed{Reason: saveFailedMessage}, nil
		}
		return CheckoutSucceeded{Order: order}, nil

	case ReportAbandoned:
		metrics.Payments.WithLabelValues("abandoned").Inc()
		slog.Warn("Paid order abandoned without saving",
			"reference", eff.Receipt.Reference,
			"amount", eff.Receipt.Amount.String(),
			"payer", eff.Receipt.Payer,
			"guest", eff.GuestName,
			"lines", eff.Lines)
		return nil, nil

	case Charge:
		m.wg.Add(1)
		go m.charge(context.WithoutCancel(ctx), eff)
		return nil, nil

	case AwaitDisplay:
		attempt := eff.Attempt
		m.timer = time.AfterFunc(m.cfg.DisplayDelay, func() {
			m.deliver(PaymentDisplayed{Attempt: attempt})
		})
		return nil, nil
	}
	return nil, fmt.Errorf("unknown effect %T", eff)
}

func (m *Machine) charge(ctx context.Context, c Charge) {
	defer m.wg.Done()

	slog.Info("Payment started", "attempt", c.Attempt, "amount", c.Request.Amount.String())
	receipt, err := m.cfg.Processor.Charge(ctx, c.Request)

	var e Event
	switch {
	case err == nil:
		metrics.Payments.WithLabelValues("success").Inc()
		slog.Info("Payment successful", "attempt", c.Attempt, "reference", receipt.Reference)
		e = PaymentCharged{Attempt: c.Attempt, Receipt: receipt}
	case errors.Is(err, payment.ErrDeclined):
		metrics.Payments.WithLabelValues("declined").Inc()
		slog.Info("Payment declined", "attempt", c.Attempt, "error", err)
		e = PaymentDeclined{Attempt: c.Attempt, Reason: err.Error()}
	default:
		metrics.Payments.WithLabelValues("error").Inc()
		slog.Error("Payment failed", "attempt", c.Attempt, "error", err)
		e = PaymentDeclined{Attempt: c.Attempt, Reason: paymentFailedMessage}
	}
	m.deliver(e)
}

// deliver applies an effect outcome that arrives asynchronously.
func (m *Machine) deliver(e Event) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if err := m.apply(context.Background(), e); err != nil {
		slog.Warn("Dropped workflow event", "event", fmt.Sprintf("%T", e), "error", err)
	}
	hooks := m.takeHooks()
	m.mu.Unlock()

	runHooks(hooks)
}

func (m *Machine) publish() {
	if len(m.subs) == 0 {
		return
	}
	v := Render(m.env(), m.session)
	for _, ch := range m.subs {
		select {
		case ch <- v:
		default:
			// Drop the oldest queued view to make room for the latest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

func (m *Machine) takeHooks() []func() {
	hooks := m.hooks
	m.hooks = nil
	return hooks
}

func runHooks(hooks []func()) {
	for _, h := range hooks {
		h()
	}
}
