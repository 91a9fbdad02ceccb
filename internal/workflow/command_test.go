package workflow

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/identity"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
)

func TestCommandEvent(t *testing.T) {
	slot := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		cmd  Command
		want Event
	}{
		{"start", Command{Type: ActionStart}, Start{}},
		{"guest name", Command{Type: ActionSetGuestName, Value: "Juan"}, Identity{Input: identity.SetGuestName{Value: "Juan"}}},
		{"empty guest name is allowed", Command{Type: ActionSetGuestName}, Identity{Input: identity.SetGuestName{}}},
		{"take out", Command{Type: ActionTakeOut}, ChooseDining{Option: models.TakeOut}},
		{"slot from time", Command{Type: ActionSelectSlot, Time: &slot}, SelectSlot{At: slot}},
		{"slot from value", Command{Type: ActionSelectSlot, Value: "2026-03-14T10:30:00Z"}, SelectSlot{At: slot}},
		{"all categories", Command{Type: ActionSelectCategory}, SelectCategory{}},
		{"open item", Command{Type: ActionOpenItem, Value: "5"}, OpenItem{ItemID: "5"}},
		{"add-on", Command{Type: ActionToggleAddOn, Value: "Extra Shot"}, ToggleAddOn{Name: "Extra Shot"}},
		{"remove line", Command{Type: ActionRemoveLine, Value: "5-abc"}, RemoveLine{LineID: "5-abc"}},
		{"payer", Command{Type: ActionSetPayer, Value: "0917"}, SetPayer{Value: "0917"}},
		{"new order", Command{Type: ActionNewOrder}, NewOrder{}},
		{"abandon order", Command{Type: ActionAbandonOrder}, AbandonOrder{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.Event()
			if err != nil {
				t.Fatalf("Event() error: %v", err)
			}
			if sel, ok := got.(SelectSlot); ok {
				if !sel.At.Equal(tt.want.(SelectSlot).At) {
					t.Errorf("slot = %v, want %v", sel.At, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Event() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr error
	}{
		{"unknown", Command{Type: "teleport"}, ErrUnknownCommand},
		{"outcome events are not commands", Command{Type: "payment_charged"}, ErrUnknownCommand},
		{"open item without id", Command{Type: ActionOpenItem}, ErrMissingValue},
		{"sugar without level", Command{Type: ActionSetSugar}, ErrMissingValue},
		{"slot without time", Command{Type: ActionSelectSlot}, ErrMissingValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cmd.Event(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := (Command{Type: ActionSelectSlot, Value: "half past ten"}).Event(); err == nil {
		t.Error("expected error for unparseable slot")
	}
}

func TestCommandJSON(t *testing.T) {
	var c Command
	if err := json.Unmarshal([]byte(`{"type":"toggle_add_on","value":"Coffee Jelly"}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	e, err := c.Event()
	if err != nil {
		t.Fatalf("Event: %v", err)
	}
	if e != (ToggleAddOn{Name: "Coffee Jelly"}) {
		t.Errorf("event = %#v", e)
	}
}

func TestEveryActionDecodes(t *testing.T) {
	actions := []Action{
		ActionStart, ActionBack, ActionChooseGuest, ActionChooseMember, ActionSetGuestName,
		ActionContinue, ActionSetPhone, ActionSendCode, ActionSetCode, ActionVerify,
		ActionSetDisplayName, ActionCreateAccount, ActionDineIn, ActionTakeOut, ActionASAP,
		ActionScheduled, ActionSelectSlot, ActionConfirmSlot, ActionSelectCategory, ActionOpenItem,
		ActionSetSugar, ActionSetMilk, ActionToggleAddOn, ActionConfirmCustomization,
		ActionCancelCustomization, ActionViewCart, ActionRemoveLine, ActionPlaceOrder,
		ActionSetPayer, ActionSubmitPayment, ActionRetryPayment, ActionNewOrder,
		ActionAbandonOrder,
	}
	at := testNow
	for _, a := range actions {
		if _, err := (Command{Type: a, Value: "x", Time: &at}).Event(); err != nil {
			t.Errorf("%s: %v", a, err)
		}
	}
}
