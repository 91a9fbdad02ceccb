package models

import "github.com/jhedenpat/kapekiosk-v1-0/internal/money"

// MenuItem is a single orderable drink from the catalog.
type MenuItem struct {
	// ID is the catalog identifier (e.g., "1").
	ID string `json:"id"`

	// Name is the display name (e.g., "Classic Kapé").
	Name string `json:"name"`

	// Description is the short blurb shown under the name.
	Description string `json:"description"`

	// Price is the unit price in centavos. Never negative.
	Price money.Amount `json:"price"`

	// Category groups items into menu tabs (e.g., "Hot Coffee").
	Category string `json:"category"`
}

// AddOn is an optional extra that can be attached to any drink.
type AddOn struct {
	// Name is the unique key of the add-on (e.g., "Extra Shot").
	Name string `json:"name"`

	// Price is the surcharge in centavos. Never negative.
	Price money.Amount `json:"price"`
}

// SugarLevels is the fixed, ordered set of sugar options.
var SugarLevels = []string{"0%", "25%", "50%", "75%", "100%"}

// MilkTypes is the fixed set of milk options.
var MilkTypes = []string{"Full Cream", "Oat", "Soy", "Almond"}

const (
	// DefaultSugar is preselected when a customization dialog opens.
	DefaultSugar = "100%"

	// DefaultMilk is preselected when a customization dialog opens.
	DefaultMilk = "Full Cream"
)

// ValidSugar reports whether level is one of SugarLevels.
func ValidSugar(level string) bool {
	return contains(SugarLevels, level)
}

// ValidMilk reports whether milk is one of MilkTypes.
func ValidMilk(milk string) bool {
	return contains(MilkTypes, milk)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
