package models

import (
	"time"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/money"
)

// DiningOption is where the guest will have the order.
type DiningOption string

const (
	DineIn  DiningOption = "dine_in"
	TakeOut DiningOption = "take_out"
)

// Valid reports whether d is a known option.
func (d DiningOption) Valid() bool {
	return d == DineIn || d == TakeOut
}

// Label returns the human form used on receipts.
func (d DiningOption) Label() string {
	switch d {
	case DineIn:
		return "Dine-in"
	case TakeOut:
		return "Take-out"
	default:
		return ""
	}
}

// TimingMode is whether the order is brewed now or for a reserved slot.
type TimingMode string

const (
	ASAP      TimingMode = "asap"
	Scheduled TimingMode = "scheduled"
)

// PaymentStatus is recorded on every persisted order.
type PaymentStatus string

const (
	Paid   PaymentStatus = "paid"
	Unpaid PaymentStatus = "unpaid"
)

// OrderStatus is the cashier-side lifecycle. The kiosk only ever creates
// orders as pending; the dashboard moves them along.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// Order is the persisted result of a completed checkout.
type Order struct {
	// ID is the store-side primary key (UUID format).
	ID string `json:"id"`

	// Number is the 3-digit display number called out at the counter.
	// It is not a key; see ordernum for how duplicates are avoided.
	Number string `json:"order_number"`

	// GuestName is the resolved identity for this session.
	GuestName string `json:"guest_name"`

	DiningOption DiningOption `json:"dining_option"`
	TimingMode   TimingMode   `json:"timing_mode"`

	// ScheduledTime is set iff TimingMode is Scheduled.
	ScheduledTime *time.Time `json:"scheduled_time"`

	// Status starts as StatusPending.
	Status OrderStatus `json:"status"`

	PaymentStatus PaymentStatus `json:"payment_status"`

	// PaymentReference is the processor receipt for paid orders.
	PaymentReference string `json:"payment_reference,omitempty"`

	// Total is the sum of all line totals.
	Total money.Amount `json:"total_amount"`

	// Lines are snapshots of the cart at checkout time.
	Lines []OrderLine `json:"items"`

	// CreatedAt is when the order was assembled.
	CreatedAt time.Time `json:"created_at"`
}

// OrderLine is a frozen copy of one cart line.
type OrderLine struct {
	// ID is the store-side identifier (UUID format).
	ID string `json:"id"`

	// OrderID references the owning Order.
	OrderID string `json:"order_id"`

	// MenuItemName is the item name at checkout time.
	MenuItemName string `json:"menu_item_name"`

	// Price is the unit price captured when the line was added.
	Price money.Amount `json:"price"`

	Quantity int      `json:"quantity"`
	Sugar    string   `json:"sugar_level"`
	Milk     string   `json:"milk_type"`
	AddOns   []string `json:"add_ons"`

	// AddOnsTotal is the per-unit add-on surcharge at checkout time.
	AddOnsTotal money.Amount `json:"add_ons_total"`
}

// Total returns (Price + AddOnsTotal) * Quantity.
func (l OrderLine) Total() money.Amount {
	return l.Price.Add(l.AddOnsTotal).Times(l.Quantity)
}
