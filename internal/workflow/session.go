// Package workflow sequences the kiosk screens.
//
//	Welcome -> Auth -> Service -> Timing -> Menu <-> Cart -> [Payment] -> Confirmation
//	   ^                                                                      |
//	   +------------------------------ New Order -----------------------------+
//
// Reduce is a pure function over Session. It never performs I/O; anything
// that must happen outside (identity provider calls, charging, persisting)
// is returned as an Effect and its outcome is fed back as another Event.
// Machine is the runtime that owns one Session and executes effects.
package workflow

import (
	"time"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/identity"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/payment"
)

// StepName identifies a screen.
type StepName string

const (
	StepWelcome      StepName = "welcome"
	StepAuth         StepName = "auth"
	StepService      StepName = "service"
	StepTiming       StepName = "timing"
	StepMenu         StepName = "menu"
	StepCart         StepName = "cart"
	StepPayment      StepName = "payment"
	StepConfirmation StepName = "confirmation"
)

// Step is the current screen together with the data only that screen needs.
type Step interface {
	Name() StepName
}

type (
	// Welcome waits for the first tap.
	Welcome struct{}

	// Auth hosts the identity sub-flow.
	Auth struct {
		Identity identity.State
	}

	// Service asks dine-in or take-out.
	Service struct{}

	// Timing asks asap or scheduled. Slots are fixed when the picker opens.
	Timing struct {
		Picking  bool
		Slots    []time.Time
		Selected *time.Time
	}

	// Menu lists items. Customizing is the open dialog, if any.
	Menu struct {
		Category    string
		Customizing *Customizing
	}

	// Cart shows the lines. Placing is set while the order is being saved;
	// Err holds the last checkout failure.
	Cart struct {
		Placing bool
		Err     string
	}

	// Payment hosts the prepayment protocol. Acknowledged is set once the
	// success screen has been shown and checkout has been triggered.
	Payment struct {
		Payment      payment.State
		Acknowledged bool
	}

	// Confirmation shows the placed order.
	Confirmation struct {
		Order *models.Order
	}
)

func (Welcome) Name() StepName      { return StepWelcome }
func (Auth) Name() StepName         { return StepAuth }
func (Service) Name() StepName      { return StepService }
func (Timing) Name() StepName       { return StepTiming }
func (Menu) Name() StepName         { return StepMenu }
func (Cart) Name() StepName         { return StepCart }
func (Payment) Name() StepName      { return StepPayment }
func (Confirmation) Name() StepName { return StepConfirmation }

// Customizing is the state of the customization dialog.
type Customizing struct {
	Item          models.MenuItem
	Customization models.Customization
}

// Session is one guest's interaction, from Welcome to New Order.
type Session struct {
	Step Step

	GuestName     string
	DiningOption  models.DiningOption
	TimingMode    models.TimingMode
	ScheduledTime *time.Time

	// Cart lines in insertion order.
	Cart []models.CartLine

	// Receipt is a completed charge whose order is not yet saved. While it
	// is held the cart is locked and checkout does not charge again.
	Receipt *payment.Receipt

	// OrderNumber and OrderID are set on Confirmation.
	OrderNumber string
	OrderID     string
}

// NewSession returns the reset state.
func NewSession() Session {
	return Session{Step: Welcome{}, TimingMode: models.ASAP}
}

// StepName returns the current screen.
func (s Session) StepName() StepName {
	if s.Step == nil {
		return StepWelcome
	}
	return s.Step.Name()
}

// CartLocked reports whether cart edits are refused.
func (s Session) CartLocked() bool {
	return s.Receipt != nil
}

func (s Session) cloneCart() []models.CartLine {
	out := make([]models.CartLine, len(s.Cart))
	for i, l := range s.Cart {
		out[i] = l.Clone()
	}
	return out
}
