package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuCategory classifies catalog items.
type MenuCategory string

const (
	MenuCategoryDish  MenuCategory = "dish"
	MenuCategoryDrink MenuCategory = "drink"
)

// IsValid reports whether the category is known.
func (c MenuCategory) IsValid() bool {
	return c == MenuCategoryDish || c == MenuCategoryDrink
}

// MenuCatalogEntry is a fixed reference item used by the item breakdown.
type MenuCatalogEntry struct {
	ID       uuid.UUID
	Name     string
	Category MenuCategory
	Price    decimal.Decimal
	Position int // ordering inside the category, starting at 0
}
