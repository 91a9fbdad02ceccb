package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/identity"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
)

// ErrUnknownCommand is returned for a command type with no event.
var ErrUnknownCommand = errors.New("unknown command")

// ErrMissingValue is returned when a command needs a value it lacks.
var ErrMissingValue = errors.New("command is missing its value")

// Command is the wire form of a guest event.
type Command struct {
	Type Action `json:"type"`

	// Value carries text input, an item id, a line id, a category, a
	// sugar level, a milk type, or an add-on name depending on Type.
	Value string `json:"value,omitempty"`

	// Time carries the slot for select_slot.
	Time *time.Time `json:"time,omitempty"`
}

// Event decodes c. Only guest events can be expressed; effect outcomes
// never come from the wire.
func (c Command) Event() (Event, error) {
	switch c.Type {
	case ActionStart:
		return Start{}, nil
	case ActionBack:
		return Back{}, nil

	case ActionChooseGuest:
		return Identity{Input: identity.ChooseGuest{}}, nil
	case ActionChooseMember:
		return Identity{Input: identity.ChooseMember{}}, nil
	case ActionSetGuestName:
		return Identity{Input: identity.SetGuestName{Value: c.Value}}, nil
	case ActionContinue:
		return Identity{Input: identity.Continue{}}, nil
	case ActionSetPhone:
		return Identity{Input: identity.SetPhone{Value: c.Value}}, nil
	case ActionSendCode:
		return Identity{Input: identity.SendCode{}}, nil
	case ActionSetCode:
		return Identity{Input: identity.SetCode{Value: c.Value}}, nil
	case ActionVerify:
		return Identity{Input: identity.Verify{}}, nil
	case ActionSetDisplayName:
		return Identity{Input: identity.SetDisplayName{Value: c.Value}}, nil
	case ActionCreateAccount:
		return Identity{Input: identity.CreateAccount{}}, nil

	case ActionDineIn:
		return ChooseDining{Option: models.DineIn}, nil
	case ActionTakeOut:
		return ChooseDining{Option: models.TakeOut}, nil

	case ActionASAP:
		return ChooseASAP{}, nil
	case ActionScheduled:
		return ChooseScheduled{}, nil
	case ActionSelectSlot:
		if c.Time != nil {
			return SelectSlot{At: *c.Time}, nil
		}
		if c.Value == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingValue, c.Type)
		}
		at, err := time.Parse(time.RFC3339, c.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid slot time %q: %w", c.Value, err)
		}
		return SelectSlot{At: at}, nil
	case ActionConfirmSlot:
		return ConfirmSlot{}, nil

	case ActionSelectCategory:
		return SelectCategory{Category: c.Value}, nil
	case ActionOpenItem:
		return c.needValue(OpenItem{ItemID: c.Value})
	case ActionSetSugar:
		return c.needValue(SetSugar{Level: c.Value})
	case ActionSetMilk:
		return c.needValue(SetMilk{Milk: c.Value})
	case ActionToggleAddOn:
		return c.needValue(ToggleAddOn{Name: c.Value})
	case ActionConfirmCustomization:
		return ConfirmCustomization{}, nil
	case ActionCancelCustomization:
		return CancelCustomization{}, nil

	case ActionViewCart:
		return ViewCart{}, nil
	case ActionRemoveLine:
		return c.needValue(RemoveLine{LineID: c.Value})
	case ActionPlaceOrder:
		return PlaceOrder{}, nil

	case ActionSetPayer:
		return SetPayer{Value: c.Value}, nil
	case ActionSubmitPayment:
		return SubmitPayment{}, nil
	case ActionRetryPayment:
		return RetryPayment{}, nil

	case ActionNewOrder:
		return NewOrder{}, nil
	case ActionAbandonOrder:
		return AbandonOrder{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
}

func (c Command) needValue(e Event) (Event, error) {
	if c.Value == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingValue, c.Type)
	}
	return e, nil
}
