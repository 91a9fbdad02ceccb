// Package pricing computes cart totals. Every function here is pure.
package pricing

import (
	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/money"
)

// AddOnLookup resolves an add-on by name. catalog.Catalog satisfies it.
type AddOnLookup interface {
	AddOn(name string) (models.AddOn, bool)
}

// AddOnTotal sums the surcharge of every add-on on the line.
// An add-on the catalog no longer knows contributes zero.
func AddOnTotal(addOns AddOnLookup, line models.CartLine) money.Amount {
	var total money.Amount
	for _, name := range line.Customization.AddOns {
		if a, ok := addOns.AddOn(name); ok {
			total = total.Add(a.Price)
		}
	}
	return total
}

// LineTotal computes (unit price + add-on total) × quantity.
//
// The unit price is the one captured on the line, not the current catalog
// price. A non-positive quantity is priced as zero.
func LineTotal(addOns AddOnLookup, line models.CartLine) money.Amount {
	if line.Quantity <= 0 {
		return money.Zero
	}
	return line.Item.Price.Add(AddOnTotal(addOns, line)).Times(line.Quantity)
}

// CartTotal sums LineTotal over the cart.
func CartTotal(addOns AddOnLookup, cart []models.CartLine) money.Amount {
	var total money.Amount
	for _, line := range cart {
		total = total.Add(LineTotal(addOns, line))
	}
	return total
}

// PricedLine is a cart line together with its computed amounts.
type PricedLine struct {
	Line        models.CartLine
	AddOnsTotal money.Amount // per unit
	Total       money.Amount
}

// Quote is a priced snapshot of a whole cart.
type Quote struct {
	Lines []PricedLine
	Total money.Amount
}

// Price prices every line of the cart in order.
func Price(addOns AddOnLookup, cart []models.CartLine) Quote {
	q := Quote{Lines: make([]PricedLine, 0, len(cart))}
	for _, line := range cart {
		pl := PricedLine{
			Line:        line.Clone(),
			AddOnsTotal: AddOnTotal(addOns, line),
			Total:       LineTotal(addOns, line),
		}
		q.Lines = append(q.Lines, pl)
		q.Total = q.Total.Add(pl.Total)
	}
	return q
}
