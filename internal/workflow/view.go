package workflow

import (
	"time"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/identity"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/money"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/payment"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/pricing"
)

// Action names a control the guest can use on the current screen. The
// same names are used as command types on the wire.
type Action string

const (
	ActionStart                Action = "start"
	ActionBack                 Action = "back"
	ActionChooseGuest          Action = "choose_guest"
	ActionChooseMember         Action = "choose_member"
	ActionSetGuestName         Action = "set_guest_name"
	ActionContinue             Action = "continue"
	ActionSetPhone             Action = "set_phone"
	ActionSendCode             Action = "send_code"
	ActionSetCode              Action = "set_code"
	ActionVerify               Action = "verify"
	ActionSetDisplayName       Action = "set_display_name"
	ActionCreateAccount        Action = "create_account"
	ActionDineIn               Action = "dine_in"
	ActionTakeOut              Action = "take_out"
	ActionASAP                 Action = "asap"
	ActionScheduled            Action = "scheduled"
	ActionSelectSlot           Action = "select_slot"
	ActionConfirmSlot          Action = "confirm_slot"
	ActionSelectCategory       Action = "select_category"
	ActionOpenItem             Action = "open_item"
	ActionSetSugar             Action = "set_sugar"
	ActionSetMilk              Action = "set_milk"
	ActionToggleAddOn          Action = "toggle_add_on"
	ActionConfirmCustomization Action = "confirm_customization"
	ActionCancelCustomization  Action = "cancel_customization"
	ActionViewCart             Action = "view_cart"
	ActionRemoveLine           Action = "remove_line"
	ActionPlaceOrder           Action = "place_order"
	ActionSetPayer             Action = "set_payer"
	ActionSubmitPayment        Action = "submit_payment"
	ActionRetryPayment         Action = "retry_payment"
	ActionNewOrder             Action = "new_order"
	ActionAbandonOrder         Action = "abandon_order"
)

// View is an immutable rendering of a session.
type View struct {
	Step          StepName            `json:"step"`
	GuestName     string              `json:"guest_name,omitempty"`
	DiningOption  models.DiningOption `json:"dining_option,omitempty"`
	TimingMode    models.TimingMode   `json:"timing_mode"`
	ScheduledTime *time.Time          `json:"scheduled_time,omitempty"`

	Cart      []LineView `json:"cart"`
	CartCount int        `json:"cart_count"`

	// Total is absent for an empty cart.
	Total *money.Amount `json:"total,omitempty"`

	Actions []Action `json:"actions"`

	Identity    *identity.State  `json:"identity,omitempty"`
	Payment     *payment.State   `json:"payment,omitempty"`
	Slots       []time.Time      `json:"slots,omitempty"`
	Selected    *time.Time       `json:"selected_slot,omitempty"`
	Category    string           `json:"category,omitempty"`
	Customizing *CustomizingView `json:"customizing,omitempty"`

	// Busy is set while the order is being saved.
	Busy bool `json:"busy,omitempty"`

	// CartLocked is set while a completed payment awaits its order.
	CartLocked bool `json:"cart_locked,omitempty"`

	OrderNumber string        `json:"order_number,omitempty"`
	Order       *models.Order `json:"order,omitempty"`

	Error string `json:"error,omitempty"`
}

// LineView is one priced cart line.
type LineView struct {
	ID          string       `json:"id"`
	ItemID      string       `json:"item_id"`
	Name        string       `json:"name"`
	UnitPrice   money.Amount `json:"unit_price"`
	Quantity    int          `json:"quantity"`
	Sugar       string       `json:"sugar"`
	Milk        string       `json:"milk"`
	AddOns      []string     `json:"add_ons"`
	AddOnsTotal money.Amount `json:"add_ons_total"`
	Total       money.Amount `json:"total"`
}

// CustomizingView is the open customization dialog with a live preview.
type CustomizingView struct {
	Item      models.MenuItem `json:"item"`
	Sugar     string          `json:"sugar"`
	Milk      string          `json:"milk"`
	AddOns    []string        `json:"add_ons"`
	LineTotal money.Amount    `json:"line_total"`
}

// Has reports whether a is enabled.
func (v View) Has(a Action) bool {
	for _, x := range v.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// Render builds the view of s.
func Render(env Env, s Session) View {
	quote := pricing.Price(env.Catalog, s.Cart)

	v := View{
		Step:          s.StepName(),
		GuestName:     s.GuestName,
		DiningOption:  s.DiningOption,
		TimingMode:    s.TimingMode,
		ScheduledTime: s.ScheduledTime,
		Cart:          make([]LineView, 0, len(quote.Lines)),
		CartCount:     len(s.Cart),
		CartLocked:    s.CartLocked(),
		OrderNumber:   s.OrderNumber,
	}
	for _, pl := range quote.Lines {
		v.Cart = append(v.Cart, LineView{
			ID:          pl.Line.ID,
			ItemID:      pl.Line.Item.ID,
			Name:        pl.Line.Item.Name,
			UnitPrice:   pl.Line.Item.Price,
			Quantity:    pl.Line.Quantity,
			Sugar:       pl.Line.Customization.Sugar,
			Milk:        pl.Line.Customization.Milk,
			AddOns:      pl.Line.Customization.AddOns,
			AddOnsTotal: pl.AddOnsTotal,
			Total:       pl.Total,
		})
	}
	if len(s.Cart) > 0 {
		total := quote.Total
		v.Total = &total
	}

	switch st := s.Step.(type) {
	case nil, Welcome:
		v.Actions = []Action{ActionStart}

	case Auth:
		id := st.Identity
		v.Identity = &id
		v.Error = id.Err
		v.Actions = identityActions(env, id)

	case Service:
		v.Actions = []Action{ActionDineIn, ActionTakeOut, ActionBack}

	case Timing:
		if st.Picking {
			v.Slots = st.Slots
			v.Selected = st.Selected
			v.Actions = []Action{ActionSelectSlot}
			if st.Selected != nil {
				v.Actions = append(v.Actions, ActionConfirmSlot)
			}
		} else {
			v.Actions = []Action{ActionASAP, ActionScheduled}
		}
		v.Actions = append(v.Actions, ActionBack)

	case Menu:
		v.Category = st.Category
		if c := st.Customizing; c != nil {
			line := models.CartLine{Item: models.RefOf(c.Item), Quantity: 1, Customization: c.Customization}
			v.Customizing = &CustomizingView{
				Item:      c.Item,
				Sugar:     c.Customization.Sugar,
				Milk:      c.Customization.Milk,
				AddOns:    c.Customization.AddOns,
				LineTotal: pricing.LineTotal(env.Catalog, line),
			}
			v.Actions = []Action{
				ActionSetSugar, ActionSetMilk, ActionToggleAddOn,
				ActionConfirmCustomization, ActionCancelCustomization,
			}
		} else {
			v.Actions = []Action{ActionSelectCategory, ActionOpenItem, ActionViewCart, ActionBack}
		}

	case Cart:
		v.Busy = st.Placing
		v.Error = st.Err
		if st.Placing {
			break
		}
		if !s.CartLocked() {
			if len(s.Cart) > 0 {
				v.Actions = append(v.Actions, ActionRemoveLine)
			}
			v.Actions = append(v.Actions, ActionBack)
		}
		if len(s.Cart) > 0 {
			v.Actions = append(v.Actions, ActionPlaceOrder)
		}
		if s.CartLocked() {
			v.Actions = append(v.Actions, ActionAbandonOrder)
		}

	case Payment:
		ps := st.Payment
		v.Payment = &ps
		v.Error = ps.Err
		v.Busy = st.Acknowledged
		switch {
		case ps.Stage == payment.StageInput:
			v.Actions = []Action{ActionSetPayer}
			if ps.CanSubmit() {
				v.Actions = append(v.Actions, ActionSubmitPayment)
			}
			v.Actions = append(v.Actions, ActionBack)
		case ps.CanRetry():
			v.Actions = []Action{ActionRetryPayment}
		}

	case Confirmation:
		v.Order = st.Order
		v.Actions = []Action{ActionNewOrder}
	}

	if v.Actions == nil {
		v.Actions = []Action{}
	}
	return v
}

func identityActions(env Env, id identity.State) []Action {
	switch id.Stage {
	case identity.StageChoose:
		actions := []Action{ActionChooseGuest}
		if env.Identity.MemberLogin {
			actions = append(actions, ActionChooseMember)
		}
		return append(actions, ActionBack)
	case identity.StageGuestName:
		return gated([]Action{ActionSetGuestName}, id.CanContinue(), ActionContinue)
	case identity.StageMemberPhone:
		return gated([]Action{ActionSetPhone}, id.CanSendCode(), ActionSendCode)
	case identity.StageMemberOTP:
		return gated([]Action{ActionSetCode}, id.CanVerify(), ActionVerify)
	case identity.StageMemberSignup:
		return gated([]Action{ActionSetDisplayName}, id.CanCreateAccount(), ActionCreateAccount)
	}
	return []Action{}
}

func gated(actions []Action, enabled bool, a Action) []Action {
	if enabled {
		actions = append(actions, a)
	}
	return append(actions, ActionBack)
}
