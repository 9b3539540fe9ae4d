package domain

import (
	"sort"
	"time"
)

// Product is a sellable item used to parameterize generated videos.
type Product struct {
	ID        string
	Title     string
	Values    map[string]string
	OfferType string
	Group     string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Value returns the product value for field. "id" and "title" resolve to the
// product's own columns when no explicit value overrides them.
func (p Product) Value(field string) (string, bool) {
	if v, ok := p.Values[field]; ok {
		return v, true
	}
	switch field {
	case "id":
		return p.ID, p.ID != ""
	case "title":
		return p.Title, p.Title != ""
	}
	return "", false
}

// ProductGroups maps a group name to its members sorted by position.
type ProductGroups map[string][]Product

// Names returns the group names in lexical order.
func (g ProductGroups) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortByPosition orders products by their position inside a group. Ties keep
// id order so bulk submissions are reproducible.
func SortByPosition(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Position != products[j].Position {
			return products[i].Position < products[j].Position
		}
		return products[i].ID < products[j].ID
	})
}
