// Package catalog provides read-only access to menu items and add-ons.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/money"
)

// ErrItemNotFound is returned when a menu item id is unknown.
var ErrItemNotFound = errors.New("menu item not found")

// Catalog is the read-only catalog collaborator.
type Catalog interface {
	// Items returns every menu item in display order.
	Items() []models.MenuItem

	// Categories returns category names in first-appearance order.
	Categories() []string

	// ItemsIn returns the items of one category in display order.
	ItemsIn(category string) []models.MenuItem

	// Item looks up a menu item by id.
	Item(id string) (models.MenuItem, error)

	// AddOns returns every add-on in display order.
	AddOns() []models.AddOn

	// AddOn looks up an add-on by its unique name.
	AddOn(name string) (models.AddOn, bool)
}

// Static is an in-memory Catalog built once and never mutated.
type Static struct {
	items      []models.MenuItem
	byID       map[string]models.MenuItem
	categories []string
	addOns     []models.AddOn
	addOnByKey map[string]models.AddOn
}

var _ Catalog = (*Static)(nil)

// New builds a Static catalog. Item ids and add-on names must be unique and
// prices must not be negative.
func New(items []models.MenuItem, addOns []models.AddOn) (*Static, error) {
	c := &Static{
		byID:       make(map[string]models.MenuItem, len(items)),
		addOnByKey: make(map[string]models.AddOn, len(addOns)),
	}

	seen := make(map[string]bool)
	for _, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("menu item %q has no id", item.Name)
		}
		if _, dup := c.byID[item.ID]; dup {
			return nil, fmt.Errorf("duplicate menu item id %q", item.ID)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("menu item %q: %w", item.ID, money.ErrNegative)
		}
		c.byID[item.ID] = item
		c.items = append(c.items, item)
		if !seen[item.Category] {
			seen[item.Category] = true
			c.categories = append(c.categories, item.Category)
		}
	}

	for _, a := range addOns {
		if _, dup := c.addOnByKey[a.Name]; dup {
			return nil, fmt.Errorf("duplicate add-on %q", a.Name)
		}
		if a.Price < 0 {
			return nil, fmt.Errorf("add-on %q: %w", a.Name, money.ErrNegative)
		}
		c.addOnByKey[a.Name] = a
		c.addOns = append(c.addOns, a)
	}

	return c, nil
}

func (c *Static) Items() []models.MenuItem {
	out := make([]models.MenuItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Static) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Static) ItemsIn(category string) []models.MenuItem {
	var out []models.MenuItem
	for _, item := range c.items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

func (c *Static) Item(id string) (models.MenuItem, error) {
	item, ok := c.byID[id]
	if !ok {
		return models.MenuItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, nil
}

func (c *Static) AddOns() []models.AddOn {
	out := make([]models.AddOn, len(c.addOns))
	copy(out, c.addOns)
	return out
}

func (c *Static) AddOn(name string) (models.AddOn, bool) {
	a, ok := c.addOnByKey[name]
	return a, ok
}

// file is the on-disk JSON layout. Prices are decimal strings.
type file struct {
	Items []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       string `json:"price"`
		Category    string `json:"category"`
	} `json:"items"`
	AddOns []struct {
		Name  string `json:"name"`
		Price string `json:"price"`
	} `json:"add_ons"`
}

// Load reads a catalog JSON file.
func Load(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}

	items := make([]models.MenuItem, 0, len(f.Items))
	for _, it := range f.Items {
		price, err := money.Parse(it.Price)
		if err != nil {
			return nil, fmt.Errorf("menu item %q: %w", it.ID, err)
		}
		items = append(items, models.MenuItem{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Price:       price,
			Category:    it.Category,
		})
	}

	addOns := make([]models.AddOn, 0, len(f.AddOns))
	for _, a := range f.AddOns {
		price, err := money.Parse(a.Price)
		if err != nil {
			return nil, fmt.Errorf("add-on %q: %w", a.Name, err)
		}
		addOns = append(addOns, models.AddOn{Name: a.Name, Price: price})
	}

	return New(items, addOns)
}
