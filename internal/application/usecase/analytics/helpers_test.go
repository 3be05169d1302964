package analytics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/menuinzicht/backend/internal/domain/calendar"
	"github.com/menuinzicht/backend/internal/domain/entity"
	"github.com/menuinzicht/backend/internal/domain/valueobject"
)

var errSourceUnavailable = errors.New("source unavailable")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func record(iso, revenue string, orders int) entity.DailyMetric {
	r := dec(revenue)
	aov := decimal.Zero
	if orders > 0 {
		aov = r.Div(decimal.NewFromInt(int64(orders))).Round(2)
	}
	return entity.DailyMetric{
		Date:             calendar.MustParseLocalDate(iso),
		Revenue:          r,
		OrderCount:       orders,
		AvgItemsPerOrder: 2.5,
		AvgOrderValue:    aov,
	}
}

// recordsFor returns a 100 revenue / 10 orders record for each date.
func recordsFor(dates ...string) []entity.DailyMetric {
	out := make([]entity.DailyMetric, 0, len(dates))
	for _, d := range dates {
		out = append(out, record(d, "100", 10))
	}
	return out
}

// dailyRecords returns one record per day of [start, end], 100 revenue and 10 orders each.
func dailyRecords(start, end string) []entity.DailyMetric {
	r := mustRange(start, end)
	out := make([]entity.DailyMetric, 0, r.Days())
	for _, d := range r.Expand() {
		out = append(out, record(calendar.FormatDate(d), "100", 10))
	}
	return out
}

func mustRange(start, end string) valueobject.DateRange {
	r, err := valueobject.ParseDateRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

func rangePtr(start, end string) *valueobject.DateRange {
	r := mustRange(start, end)
	return &r
}

// fakeMetricSource serves records filtered by range.
type fakeMetricSource struct {
	records []entity.DailyMetric
	err     error
	calls   int
}

func (f *fakeMetricSource) GetRecordsForRange(_ context.Context, r valueobject.DateRange) ([]entity.DailyMetric, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.DailyMetric
	for _, rec := range f.records {
		if r.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeMetricSource) GetCoverage(_ context.Context) (*Coverage, error) {
	if f.err != nil {
		return nil, f.err
	}
	coverage := &Coverage{TotalRecords: len(f.records)}
	for i := range f.records {
		d := f.records[i].Date
		if coverage.OldestDate == nil || d.Before(*coverage.OldestDate) {
			coverage.OldestDate = &d
		}
		if coverage.NewestDate == nil || d.After(*coverage.NewestDate) {
			coverage.NewestDate = &d
		}
	}
	return coverage, nil
}

// fakeCatalog serves a fixed catalog.
type fakeCatalog struct {
	entries []entity.MenuCatalogEntry
	err     error
}

func (f *fakeCatalog) ListCatalog(_ context.Context, category entity.MenuCategory) ([]entity.MenuCatalogEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.MenuCatalogEntry
	for _, e := range f.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out, nil
}

func testCatalog() []entity.MenuCatalogEntry {
	dishes := []struct {
		name  string
		price string
	}{
		{"Margherita Pizza", "12.50"},
		{"Pasta Carbonara", "14.00"},
		{"Caesar Salad", "9.50"},
		{"Grilled Salmon", "18.00"},
		{"Beef Burger", "13.50"},
		{"Chicken Tikka", "15.00"},
		{"Vegetable Stir Fry", "11.00"},
		{"Fish & Chips", "14.50"},
	}
	drinks := []struct {
		name  string
		price string
	}{
		{"Coca Cola", "3.00"},
		{"Orange Juice", "4.00"},
		{"Coffee", "3.50"},
		{"Beer", "5.00"},
		{"Wine Glass", "7.00"},
		{"Water", "2.00"},
	}

	var out []entity.MenuCatalogEntry
	for i, d := range dishes {
		out = append(out, entity.MenuCatalogEntry{ID: uuid.New(), Name: d.name, Category: entity.MenuCategoryDish, Price: dec(d.price), Position: i})
	}
	for i, d := range drinks {
		out = append(out, entity.MenuCatalogEntry{ID: uuid.New(), Name: d.name, Category: entity.MenuCategoryDrink, Price: dec(d.price), Position: i})
	}
	return out
}

func interval(iso, slot string, orders int, revenue string, sales ...entity.ItemSale) entity.IntervalRecord {
	return entity.IntervalRecord{
		ID:      uuid.New(),
		Date:    calendar.MustParseLocalDate(iso),
		Slot:    slot,
		Orders:  orders,
		Revenue: dec(revenue),
		Items:   sales,
	}
}

func sale(name string, category entity.MenuCategory, price string, qty int) entity.ItemSale {
	return entity.ItemSale{ItemID: uuid.New(), Name: name, Category: category, Price: dec(price), Quantity: qty}
}

// fakeIntervalSource serves intervals by date.
type fakeIntervalSource struct {
	records []entity.IntervalRecord
	err     error
	calls   int
}

func (f *fakeIntervalSource) GetIntervalsForDate(_ context.Context, date time.Time) ([]entity.IntervalRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	day := calendar.FormatDate(date)
	var out []entity.IntervalRecord
	for _, r := range f.records {
		if calendar.FormatDate(r.Date) == day {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeIntervalSource) GetIntervalsForRange(_ context.Context, r valueobject.DateRange) ([]entity.IntervalRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.IntervalRecord
	for _, rec := range f.records {
		if r.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// mapCache is an IntervalCache backed by a map.
type mapCache struct {
	entries map[string][]SlotAggregate
	getErr  error
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]SlotAggregate)}
}

func cacheKey(date string, grid SlotGrid) string {
	return date + "|" + grid.Key()
}

func (c *mapCache) Get(_ context.Context, date string, grid SlotGrid) ([]SlotAggregate, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	slots, ok := c.entries[cacheKey(date, grid)]
	return slots, ok, nil
}

func (c *mapCache) Set(_ context.Context, date string, grid SlotGrid, slots []SlotAggregate) error {
	c.entries[cacheKey(date, grid)] = slots
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, date string) error {
	for key := range c.entries {
		if strings.HasPrefix(key, date+"|") {
			delete(c.entries, key)
		}
	}
	return nil
}
