package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemSale is a quantity of one catalog item sold within an interval.
type ItemSale struct {
	ItemID   uuid.UUID
	Name     string
	Category MenuCategory
	Price    decimal.Decimal
	Quantity int
}

// Revenue returns Price * Quantity.
func (s ItemSale) Revenue() decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// IntervalRecord is one fixed-size intraday slot of a single day.
type IntervalRecord struct {
	ID      uuid.UUID
	Date    time.Time
	Slot    string // HH:MM, start of the slot
	Orders  int
	Revenue decimal.Decimal
	Items   []ItemSale
}

// ItemCount returns the total quantity of items sold in the interval.
func (r IntervalRecord) ItemCount() int {
	total := 0
	for _, item := range r.Items {
		total += item.Quantity
	}
	return total
}
