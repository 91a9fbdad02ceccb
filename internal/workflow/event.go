package workflow

import (
	"time"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/checkout"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/identity"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/payment"
)

// Event is an input to Reduce.
type Event interface {
	workflowEvent()
}

// Guest events.
type (
	Start struct{}
	Back  struct{}

	// Identity forwards an input to the identity sub-flow.
	Identity struct{ Input identity.Input }

	ChooseDining struct{ Option models.DiningOption }

	ChooseASAP      struct{}
	ChooseScheduled struct{}
	SelectSlot      struct{ At time.Time }
	ConfirmSlot     struct{}

	SelectCategory struct{ Category string }
	OpenItem       struct{ ItemID string }

	SetSugar             struct{ Level string }
	SetMilk              struct{ Milk string }
	ToggleAddOn          struct{ Name string }
	ConfirmCustomization struct{}
	CancelCustomization  struct{}

	ViewCart   struct{}
	RemoveLine struct{ LineID string }
	PlaceOrder struct{}

	SetPayer      struct{ Value string }
	SubmitPayment struct{}
	RetryPayment  struct{}

	NewOrder struct{}

	// AbandonOrder gives up on a paid cart that could not be saved.
	AbandonOrder struct{}
)

// Outcomes of effects, fed back by Machine.
type (
	PaymentCharged struct {
		Attempt int
		Receipt payment.Receipt
	}
	PaymentDeclined struct {
		Attempt int
		Reason  string
	}
	// PaymentDisplayed fires when the success screen has been shown long
	// enough.
	PaymentDisplayed struct{ Attempt int }

	CheckoutSucceeded struct{ Order *models.Order }
	CheckoutFailed    struct{ Reason string }
)

func (Start) workflowEvent()                {}
func (Back) workflowEvent()                 {}
func (Identity) workflowEvent()             {}
func (ChooseDining) workflowEvent()         {}
func (ChooseASAP) workflowEvent()           {}
func (ChooseScheduled) workflowEvent()      {}
func (SelectSlot) workflowEvent()           {}
func (ConfirmSlot) workflowEvent()          {}
func (SelectCategory) workflowEvent()       {}
func (OpenItem) workflowEvent()             {}
func (SetSugar) workflowEvent()             {}
func (SetMilk) workflowEvent()              {}
func (ToggleAddOn) workflowEvent()          {}
func (ConfirmCustomization) workflowEvent() {}
func (CancelCustomization) workflowEvent()  {}
func (ViewCart) workflowEvent()             {}
func (RemoveLine) workflowEvent()           {}
func (PlaceOrder) workflowEvent()           {}
func (SetPayer) workflowEvent()             {}
func (SubmitPayment) workflowEvent()        {}
func (RetryPayment) workflowEvent()         {}
func (NewOrder) workflowEvent()             {}
func (AbandonOrder) workflowEvent()         {}
func (PaymentCharged) workflowEvent()       {}
func (PaymentDeclined) workflowEvent()      {}
func (PaymentDisplayed) workflowEvent()     {}
func (CheckoutSucceeded) workflowEvent()    {}
func (CheckoutFailed) workflowEvent()       {}

// Effect is work Reduce asks the runtime to perform.
type Effect interface {
	workflowEffect()
}

type (
	// ResolveIdentity asks the identity provider to answer Request. The
	// answer is fed back as Identity{Input: answer}.
	ResolveIdentity struct{ Request identity.Request }

	// Charge starts a payment. The outcome is PaymentCharged or
	// PaymentDeclined tagged with Attempt.
	Charge struct {
		Attempt int
		Request payment.Request
	}

	// AwaitDisplay schedules PaymentDisplayed after the display delay.
	AwaitDisplay struct{ Attempt int }

	// Persist runs checkout. The outcome is CheckoutSucceeded or
	// CheckoutFailed.
	Persist struct{ Request checkout.Request }

	// ReportAbandoned records a settled charge whose order was never saved.
	ReportAbandoned struct {
		Receipt   payment.Receipt
		GuestName string
		Lines     int
	}
)

func (ResolveIdentity) workflowEffect() {}
func (Charge) workflowEffect()          {}
func (AwaitDisplay) workflowEffect()    {}
func (Persist) workflowEffect()         {}
func (ReportAbandoned) workflowEffect() {}
