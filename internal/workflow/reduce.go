package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/catalog"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/checkout"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/identity"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/payment"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/pricing"
)

var (
	// ErrInvalidEvent is returned for an event the current step does not accept.
	ErrInvalidEvent = errors.New("event not accepted at this step")

	// ErrActionDisabled is returned for an action whose gate is closed.
	ErrActionDisabled = errors.New("action is not enabled")

	// ErrEmptyCart is returned by PlaceOrder on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrCartLocked is returned for cart edits while a payment is held.
	ErrCartLocked = errors.New("cart is locked by a completed payment")

	// ErrCustomizing is returned for menu events while the dialog is open.
	ErrCustomizing = errors.New("customization dialog is open")

	// ErrInvalidChoice is returned for a value outside the offered options.
	ErrInvalidChoice = errors.New("choice is not offered")
)

// Env is what Reduce may consult besides the session.
type Env struct {
	Catalog  catalog.Catalog
	Identity identity.Options

	// Now is the wall clock at the time of the event.
	Now time.Time

	// NewID returns a fresh unique suffix for cart line ids. Defaults to
	// a random UUID.
	NewID func() string
}

func (e Env) lineID(itemID string) string {
	newID := e.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return itemID + "-" + newID()
}

// Reduce applies e to s. On error the returned session is s unchanged and
// the effect is nil.
func Reduce(env Env, s Session, e Event) (Session, Effect, error) {
	if s.Step == nil {
		s.Step = Welcome{}
	}

	var (
		next Session
		eff  Effect
		err  error
	)
	switch st := s.Step.(type) {
	case Welcome:
		next, eff, err = reduceWelcome(s, e)
	case Auth:
		next, eff, err = reduceAuth(env, s, st, e)
	case Service:
		next, eff, err = reduceService(s, e)
	case Timing:
		next, eff, err = reduceTiming(env, s, st, e)
	case Menu:
		next, eff, err = reduceMenu(env, s, st, e)
	case Cart:
		next, eff, err = reduceCart(env, s, st, e)
	case Payment:
		next, eff, err = reducePayment(env, s, st, e)
	case Confirmation:
		next, eff, err = reduceConfirmation(s, e)
	default:
		err = fmt.Errorf("unknown step %T", s.Step)
	}
	if err != nil {
		return s, nil, err
	}
	return next, eff, nil
}

func invalid(s Session, e Event) error {
	return fmt.Errorf("%w: %T at %s", ErrInvalidEvent, e, s.StepName())
}

func reduceWelcome(s Session, e Event) (Session, Effect, error) {
	if _, ok := e.(Start); !ok {
		return s, nil, invalid(s, e)
	}
	s.Step = Auth{Identity: identity.Start()}
	return s, nil, nil
}

func reduceAuth(env Env, s Session, st Auth, e Event) (Session, Effect, error) {
	var in identity.Input
	switch e := e.(type) {
	case Back:
		if st.Identity.Stage == identity.StageChoose {
			s.Step = Welcome{}
			return s, nil, nil
		}
		in = identity.Back{}
	case Identity:
		in = e.Input
	default:
		return s, nil, invalid(s, e)
	}

	id, req, err := identity.Next(st.Identity, in, env.Identity)
	if err != nil {
		return s, nil, fmt.Errorf("identity: %w", err)
	}
	if id.Done() {
		s.GuestName = id.Resolved
		s.Step = Service{}
		return s, nil, nil
	}
	s.Step = Auth{Identity: id}
	if req != nil {
		return s, ResolveIdentity{Request: req}, nil
	}
	return s, nil, nil
}

func reduceService(s Session, e Event) (Session, Effect, error) {
	switch e := e.(type) {
	case ChooseDining:
		if !e.Option.Valid() {
			return s, nil, fmt.Errorf("%w: dining option %q", ErrInvalidChoice, e.Option)
		}
		s.DiningOption = e.Option
		s.Step = Timing{}
		return s, nil, nil
	case Back:
		// Identity is captured again from the start.
		s.GuestName = ""
		s.Step = Auth{Identity: identity.Start()}
		return s, nil, nil
	}
	return s, nil, invalid(s, e)
}

func reduceTiming(env Env, s Session, st Timing, e Event) (Session, Effect, error) {
	if st.Picking {
		switch e.(type) {
		case ChooseASAP, ChooseScheduled:
			return s, nil, invalid(s, e)
		}
	}

	switch e := e.(type) {
	case ChooseASAP:
		s.TimingMode = models.ASAP
		s.ScheduledTime = nil
		s.Step = Menu{}
		return s, nil, nil

	case ChooseScheduled:
		s.Step = Timing{Picking: true, Slots: Slots(env.Now)}
		return s, nil, nil

	case SelectSlot:
		if !st.Picking {
			return s, nil, invalid(s, e)
		}
		slot, ok := offered(st.Slots, e.At)
		if !ok {
			return s, nil, fmt.Errorf("%w: slot %s", ErrInvalidChoice, e.At.Format(time.RFC3339))
		}
		st.Selected = &slot
		s.Step = st
		return s, nil, nil

	case ConfirmSlot:
		if !st.Picking || st.Selected == nil {
			return s, nil, ErrActionDisabled
		}
		at := *st.Selected
		s.TimingMode = models.Scheduled
		s.ScheduledTime = &at
		s.Step = Menu{}
		return s, nil, nil

	case Back:
		if st.Picking {
			s.Step = Timing{}
			return s, nil, nil
		}
		s.Step = Service{}
		return s, nil, nil
	}
	return s, nil, invalid(s, e)
}

func reduceMenu(env Env, s Session, st Menu, e Event) (Session, Effect, error) {
	if st.Customizing != nil {
		return reduceCustomizing(env, s, st, e)
	}

	switch e := e.(type) {
	case SelectCategory:
		if e.Category != "" && len(env.Catalog.ItemsIn(e.Category)) == 0 {
			return s, nil, fmt.Errorf("%w: category %q", ErrInvalidChoice, e.Category)
		}
		st.Category = e.Category
		s.Step = st
		return s, nil, nil

	case OpenItem:
		item, err := env.Catalog.Item(e.ItemID)
		if err != nil {
			return s, nil, err
		}
		st.Customizing = &Customizing{Item: item, Customization: models.DefaultCustomization()}
		s.Step = st
		return s, nil, nil

	case ViewCart:
		s.Step = Cart{}
		return s, nil, nil

	case Back:
		s.Step = Timing{}
		return s, nil, nil
	}
	return s, nil, invalid(s, e)
}

func reduceCustomizing(env Env, s Session, st Menu, e Event) (Session, Effect, error) {
	c := *st.Customizing
	c.Customization = c.Customization.Clone()

	switch e := e.(type) {
	case SetSugar:
		if !models.ValidSugar(e.Level) {
			return s, nil, fmt.Errorf("%w: sugar level %q", ErrInvalidChoice, e.Level)
		}
		c.Customization.Sugar = e.Level

	case SetMilk:
		if !models.ValidMilk(e.Milk) {
			return s, nil, fmt.Errorf("%w: milk %q", ErrInvalidChoice, e.Milk)
		}
		c.Customization.Milk = e.Milk

	case ToggleAddOn:
		// Deselecting is always allowed; selecting needs a catalog entry.
		if _, ok := env.Catalog.AddOn(e.Name); !ok && !c.Customization.HasAddOn(e.Name) {
			return s, nil, fmt.Errorf("%w: add-on %q", ErrInvalidChoice, e.Name)
		}
		c.Customization = c.Customization.ToggleAddOn(e.Name)

	case ConfirmCustomization:
		line := models.CartLine{
			ID:            env.lineID(c.Item.ID),
			Item:          models.RefOf(c.Item),
			Quantity:      1,
			Customization: c.Customization,
		}
		s.Cart = append(s.cloneCart(), line)
		s.Step = Menu{Category: st.Category}
		return s, nil, nil

	case CancelCustomization:
		s.Step = Menu{Category: st.Category}
		return s, nil, nil

	default:
		return s, nil, fmt.Errorf("%w: %T", ErrCustomizing, e)
	}

	st.Customizing = &c
	s.Step = st
	return s, nil, nil
}

func reduceCart(env Env, s Session, st Cart, e Event) (Session, Effect, error) {
	if st.Placing {
		switch e := e.(type) {
		case CheckoutSucceeded:
			return confirm(s, e.Order), nil, nil
		case CheckoutFailed:
			s.Step = Cart{Err: e.Reason}
			return s, nil, nil
		}
		return s, nil, ErrActionDisabled
	}

	switch e := e.(type) {
	case RemoveLine:
		if s.CartLocked() {
			return s, nil, ErrCartLocked
		}
		kept := make([]models.CartLine, 0, len(s.Cart))
		for _, l := range s.Cart {
			if l.ID != e.LineID {
				kept = append(kept, l.Clone())
			}
		}
		s.Cart = kept
		s.Step = Cart{}
		return s, nil, nil

	case Back:
		if s.CartLocked() {
			return s, nil, ErrCartLocked
		}
		s.Step = Menu{}
		return s, nil, nil

	case AbandonOrder:
		if !s.CartLocked() {
			return s, nil, ErrActionDisabled
		}
		report := ReportAbandoned{Receipt: *s.Receipt, GuestName: s.GuestName, Lines: len(s.Cart)}
		return NewSession(), report, nil

	case PlaceOrder:
		if len(s.Cart) == 0 {
			return s, nil, ErrEmptyCart
		}
		if s.Receipt == nil && s.TimingMode == models.Scheduled {
			quote := pricing.Price(env.Catalog, s.Cart)
			s.Step = Payment{Payment: payment.Start(quote.Total)}
			return s, nil, nil
		}
		s.Step = Cart{Placing: true}
		return s, Persist{Request: checkoutRequest(env, s)}, nil
	}
	return s, nil, invalid(s, e)
}

func reducePayment(env Env, s Session, st Payment, e Event) (Session, Effect, error) {
	if st.Acknowledged {
		switch e := e.(type) {
		case CheckoutSucceeded:
			return confirm(s, e.Order), nil, nil
		case CheckoutFailed:
			// The receipt stays on the session so a retry does not charge again.
			s.Step = Cart{Err: e.Reason}
			return s, nil, nil
		}
		return s, nil, ErrActionDisabled
	}

	var in payment.Input
	switch e := e.(type) {
	case Back:
		if !st.Payment.CanGoBack() {
			return s, nil, ErrActionDisabled
		}
		s.Step = Cart{}
		return s, nil, nil

	case PaymentDisplayed:
		if !st.Payment.Paid() || e.Attempt != st.Payment.Attempt {
			return s, nil, invalid(s, e)
		}
		st.Acknowledged = true
		s.Step = st
		return s, Persist{Request: checkoutRequest(env, s)}, nil

	case SetPayer:
		in = payment.SetPayer{Value: e.Value}
	case SubmitPayment:
		in = payment.Submit{}
	case RetryPayment:
		in = payment.Retry{}
	case PaymentCharged:
		in = payment.Charged{Attempt: e.Attempt, Receipt: e.Receipt}
	case PaymentDeclined:
		in = payment.Declined{Attempt: e.Attempt, Reason: e.Reason}
	default:
		return s, nil, invalid(s, e)
	}

	ps, err := payment.Next(st.Payment, in)
	if err != nil {
		return s, nil, fmt.Errorf("payment: %w", err)
	}
	st.Payment = ps
	s.Step = st

	switch in.(type) {
	case payment.Submit:
		return s, Charge{Attempt: ps.Attempt, Request: payment.RequestFor(ps)}, nil
	case payment.Charged:
		receipt := *ps.Receipt
		s.Receipt = &receipt
		return s, AwaitDisplay{Attempt: ps.Attempt}, nil
	}
	return s, nil, nil
}

func reduceConfirmation(s Session, e Event) (Session, Effect, error) {
	if _, ok := e.(NewOrder); !ok {
		return s, nil, invalid(s, e)
	}
	return NewSession(), nil, nil
}

func confirm(s Session, order *models.Order) Session {
	s.OrderNumber = order.Number
	s.OrderID = order.ID
	s.Receipt = nil
	s.Step = Confirmation{Order: order}
	return s
}

// checkoutRequest snapshots the session for the orchestrator.
func checkoutRequest(env Env, s Session) checkout.Request {
	var scheduled *time.Time
	if s.ScheduledTime != nil {
		t := *s.ScheduledTime
		scheduled = &t
	}
	var receipt *payment.Receipt
	if s.Receipt != nil {
		r := *s.Receipt
		receipt = &r
	}
	return checkout.Request{
		GuestName:     s.GuestName,
		DiningOption:  s.DiningOption,
		TimingMode:    s.TimingMode,
		ScheduledTime: scheduled,
		Quote:         pricing.Price(env.Catalog, s.Cart),
		Receipt:       receipt,
	}
}
