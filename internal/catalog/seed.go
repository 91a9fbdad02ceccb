package catalog

import (
	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/money"
)

// Default returns the house menu.
func Default() *Static {
	c, err := New(defaultItems(), defaultAddOns())
	if err != nil {
		panic("catalog: invalid default menu: " + err.Error())
	}
	return c
}

func defaultAddOns() []models.AddOn {
	return []models.AddOn{
		{Name: "Extra Shot", Price: money.Pesos(30)},
		{Name: "Coffee Jelly", Price: money.Pesos(25)},
		{Name: "Whipped Cream", Price: money.Pesos(20)},
	}
}

func defaultItems() []models.MenuItem {
	return []models.MenuItem{
		{ID: "1", Name: "Classic Kapé", Description: "Rich Filipino-style brewed coffee", Price: money.Pesos(89), Category: "Hot Coffee"},
		{ID: "2", Name: "Spanish Latte", Description: "Creamy espresso with condensed milk", Price: money.Pesos(129), Category: "Hot Coffee"},
		{ID: "3", Name: "Café Americano", Description: "Bold espresso with hot water", Price: money.Pesos(99), Category: "Hot Coffee"},
		{ID: "4", Name: "Kapé Mocha", Description: "Espresso, chocolate & steamed milk", Price: money.Pesos(139), Category: "Hot Coffee"},
		{ID: "5", Name: "Iced Kapé Latte", Description: "Cold espresso with fresh milk over ice", Price: money.Pesos(119), Category: "Iced Coffee"},
		{ID: "6", Name: "Iced Caramel Macchiato", Description: "Vanilla, milk, espresso & caramel drizzle", Price: money.Pesos(149), Category: "Iced Coffee"},
		{ID: "7", Name: "Cold Brew", Description: "Slow-steeped for 18 hours, ultra smooth", Price: money.Pesos(129), Category: "Iced Coffee"},
		{ID: "8", Name: "Java Chip Frappe", Description: "Blended chocolate chips, coffee & cream", Price: money.Pesos(159), Category: "Frappes"},
		{ID: "9", Name: "Matcha Frappe", Description: "Premium matcha blended with milk & ice", Price: money.Pesos(149), Category: "Frappes"},
		{ID: "10", Name: "Mango Graham Frappe", Description: "Filipino classic turned into a frappe", Price: money.Pesos(139), Category: "Frappes"},
		{ID: "11", Name: "Taro Milk Tea", Description: "Creamy ube-purple taro with pearls", Price: money.Pesos(119), Category: "Non-Coffee"},
		{ID: "12", Name: "Strawberry Lemonade", Description: "Fresh strawberry with tangy citrus", Price: money.Pesos(109), Category: "Non-Coffee"},
	}
}
