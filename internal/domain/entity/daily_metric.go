// Package entity defines the core business entities for the domain layer.
package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/menuinzicht/backend/internal/domain/calendar"
)

// DailyMetric is one calendar day of restaurant performance.
// It is immutable once produced by the data source.
type DailyMetric struct {
	Date             time.Time
	Revenue          decimal.Decimal
	OrderCount       int
	AvgItemsPerOrder float64
	// AvgOrderValue is informational only. Aggregations recompute the ratio
	// from Revenue and OrderCount.
	AvgOrderValue decimal.Decimal
}

// ISODate returns the record date as YYYY-MM-DD.
func (m DailyMetric) ISODate() string {
	return calendar.FormatDate(m.Date)
}

// OrderRatio returns Revenue / OrderCount, or zero when there were no orders.
func (m DailyMetric) OrderRatio() decimal.Decimal {
	if m.OrderCount == 0 {
		return decimal.Zero
	}
	return m.Revenue.Div(decimal.NewFromInt(int64(m.OrderCount)))
}

// Validate checks the integrity invariant revenue == round(orders * avgOrderValue).
// The data source only maintains it approximately, so the result is advisory.
func (m DailyMetric) Validate() error {
	if m.Revenue.IsNegative() {
		return fmt.Errorf("%s: revenue %s is negative", m.ISODate(), m.Revenue)
	}
	if m.OrderCount < 0 {
		return fmt.Errorf("%s: order count %d is negative", m.ISODate(), m.OrderCount)
	}
	expected := decimal.NewFromInt(int64(m.OrderCount)).Mul(m.AvgOrderValue).Round(0)
	if !m.Revenue.Round(0).Equal(expected) {
		return fmt.Errorf("%s: revenue mismatch, expected %s, got %s", m.ISODate(), expected, m.Revenue)
	}
	return nil
}
