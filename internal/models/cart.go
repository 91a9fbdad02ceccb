package models

import "github.com/jhedenpat/kapekiosk-v1-0/internal/money"

// Customization is the guest's configuration of one drink.
type Customization struct {
	// Sugar is one of SugarLevels.
	Sugar string `json:"sugar"`

	// Milk is one of MilkTypes.
	Milk string `json:"milk"`

	// AddOns are add-on names in the order they were selected. No duplicates.
	AddOns []string `json:"add_ons"`
}

// DefaultCustomization returns the preselected dialog values.
func DefaultCustomization() Customization {
	return Customization{
		Sugar:  DefaultSugar,
		Milk:   DefaultMilk,
		AddOns: []string{},
	}
}

// HasAddOn reports whether name is selected.
func (c Customization) HasAddOn(name string) bool {
	return contains(c.AddOns, name)
}

// ToggleAddOn returns a copy with name added, or removed if already present.
func (c Customization) ToggleAddOn(name string) Customization {
	out := c.Clone()
	for i, a := range out.AddOns {
		if a == name {
			out.AddOns = append(out.AddOns[:i], out.AddOns[i+1:]...)
			return out
		}
	}
	out.AddOns = append(out.AddOns, name)
	return out
}

// Clone returns a deep copy.
func (c Customization) Clone() Customization {
	addOns := make([]string, len(c.AddOns))
	copy(addOns, c.AddOns)
	c.AddOns = addOns
	return c
}

// ItemRef is the part of a MenuItem a cart line keeps.
// It is captured when the line is created.
type ItemRef struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Price money.Amount `json:"price"`
}

// RefOf captures a MenuItem for a cart line.
func RefOf(item MenuItem) ItemRef {
	return ItemRef{ID: item.ID, Name: item.Name, Price: item.Price}
}

// CartLine is one customized drink awaiting checkout.
type CartLine struct {
	// ID uniquely identifies the line within the session.
	ID string `json:"id"`

	// Item is the menu item as it was priced when the line was added.
	Item ItemRef `json:"item"`

	// Quantity is always positive. Defaults to 1.
	Quantity int `json:"quantity"`

	// Customization holds sugar, milk, and add-on choices.
	Customization Customization `json:"customization"`
}

// Clone returns a deep copy of the line.
func (l CartLine) Clone() CartLine {
	l.Customization = l.Customization.Clone()
	return l
}
