// Package importer loads restaurant metric exports into the metric store.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/menuinzicht/backend/internal/application/usecase/analytics"
	"github.com/menuinzicht/backend/internal/domain/calendar"
	"github.com/menuinzicht/backend/internal/domain/entity"
)

// DayExport is one day of the dashboard export format.
type DayExport struct {
	Date           string           `json:"date"`
	Revenue        decimal.Decimal  `json:"revenue"`
	Orders         int              `json:"orders"`
	AvgOrderSize   float64          `json:"avgOrderSize"`
	AvgOrderAmount decimal.Decimal  `json:"avgOrderAmount"`
	TimeSeriesData []IntervalExport `json:"timeSeriesData,omitempty"`
}

// IntervalExport is one intraday slot of a DayExport.
type IntervalExport struct {
	Time           string          `json:"time"`
	Orders         int             `json:"orders"`
	Revenue        decimal.Decimal `json:"revenue"`
	AvgOrderAmount decimal.Decimal `json:"avgOrderAmount"`
	Items          []ItemExport    `json:"items"`
}

// ItemExport is an item line of an IntervalExport.
type ItemExport struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Qty      int             `json:"qty"`
}

// Dataset is a decoded export ready to be stored.
type Dataset struct {
	Days []entity.DailyMetric
	// Intervals holds the slots per YYYY-MM-DD date. Days without
	// intraday data have no entry.
	Intervals map[string][]entity.IntervalRecord
}

// Decode reads a JSON array of DayExport values.
// Days are returned in ascending date order.
func Decode(r io.Reader) (*Dataset, error) {
	var exports []DayExport
	if err := json.NewDecoder(r).Decode(&exports); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}

	ds := &Dataset{
		Days:      make([]entity.DailyMetric, 0, len(exports)),
		Intervals: make(map[string][]entity.IntervalRecord),
	}
	seen := make(map[string]bool, len(exports))

	for _, export := range exports {
		date, err := calendar.ParseLocalDate(export.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", export.Date, err)
		}
		iso := calendar.FormatDate(date)
		if seen[iso] {
			return nil, fmt.Errorf("duplicate date %s", iso)
		}
		seen[iso] = true

		metric := entity.DailyMetric{
			Date:             date,
			Revenue:          export.Revenue,
			OrderCount:       export.Orders,
			AvgItemsPerOrder: export.AvgOrderSize,
			AvgOrderValue:    export.AvgOrderAmount,
		}
		if metric.Revenue.IsNegative() || metric.OrderCount < 0 {
			return nil, fmt.Errorf("%s: negative revenue or orders", iso)
		}
		if err := metric.Validate(); err != nil {
			slog.Warn("Daily metric out of balance", "error", err)
		}
		ds.Days = append(ds.Days, metric)

		if len(export.TimeSeriesData) == 0 {
			continue
		}
		records, err := decodeIntervals(date, export.TimeSeriesData)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", iso, err)
		}
		ds.Intervals[iso] = records
	}

	sort.Slice(ds.Days, func(i, j int) bool {
		return ds.Days[i].Date.Before(ds.Days[j].Date)
	})
	return ds, nil
}

func decodeIntervals(date time.Time, exports []IntervalExport) ([]entity.IntervalRecord, error) {
	records := make([]entity.IntervalRecord, 0, len(exports))
	slots := make(map[string]bool, len(exports))

	for _, export := range exports {
		if _, err := analytics.ParseClock(export.Time); err != nil {
			return nil, err
		}
		if slots[export.Time] {
			return nil, fmt.Errorf("duplicate slot %s", export.Time)
		}
		slots[export.Time] = true

		items := make([]entity.ItemSale, 0, len(export.Items))
		for _, item := range export.Items {
			category := entity.MenuCategory(item.Category)
			if !category.IsValid() {
				return nil, fmt.Errorf("slot %s: item %q has unknown category %q", export.Time, item.Name, item.Category)
			}
			if item.Qty < 0 {
				return nil, fmt.Errorf("slot %s: item %q has negative quantity", export.Time, item.Name)
			}
			items = append(items, entity.ItemSale{
				Name:     item.Name,
				Category: category,
				Price:    item.Price,
				Quantity: item.Qty,
			})
		}

		records = append(records, entity.IntervalRecord{
			Date:    date,
			Slot:    export.Time,
			Orders:  export.Orders,
			Revenue: export.Revenue,
			Items:   items,
		})
	}
	return records, nil
}

// MetricWriter stores daily metrics.
type MetricWriter interface {
	Upsert(ctx context.Context, metrics []entity.DailyMetric) error
}

// IntervalWriter replaces the intraday slots of one day.
type IntervalWriter interface {
	ReplaceDay(ctx context.Context, date time.Time, records []entity.IntervalRecord) error
}

// Result summarizes an import run.
type Result struct {
	Days          int
	IntervalDays  int
	UnmatchedItem int
}

// Importer writes decoded datasets to the metric store.
type Importer struct {
	metrics   MetricWriter
	intervals IntervalWriter
	catalog   analytics.CatalogSource
}

// New creates a new Importer. Item lines are linked to catalog entries
// by name and category when catalog is non-nil.
func New(metrics MetricWriter, intervals IntervalWriter, catalog analytics.CatalogSource) *Importer {
	return &Importer{
		metrics:   metrics,
		intervals: intervals,
		catalog:   catalog,
	}
}

// Import upserts the days of ds and replaces the slots of every day with
// intraday data.
func (i *Importer) Import(ctx context.Context, ds *Dataset) (*Result, error) {
	ids, err := i.catalogIDs(ctx)
	if err != nil {
		return nil, err
	}

	if err := i.metrics.Upsert(ctx, ds.Days); err != nil {
		return nil, err
	}

	result := &Result{Days: len(ds.Days)}

	dates := make([]string, 0, len(ds.Intervals))
	for iso := range ds.Intervals {
		dates = append(dates, iso)
	}
	sort.Strings(dates)

	for _, iso := range dates {
		records := ds.Intervals[iso]
		for r := range records {
			for s := range records[r].Items {
				sale := &records[r].Items[s]
				id, ok := ids[catalogKey(sale.Category, sale.Name)]
				if !ok {
					result.UnmatchedItem++
					continue
				}
				sale.ItemID = id
			}
		}

		date, err := calendar.ParseLocalDate(iso)
		if err != nil {
			return nil, err
		}
		if err := i.intervals.ReplaceDay(ctx, date, records); err != nil {
			return nil, err
		}
		result.IntervalDays++
	}

	slog.Info("Import completed",
		"days", result.Days,
		"interval_days", result.IntervalDays,
		"unmatched_items", result.UnmatchedItem,
	)
	return result, nil
}

func (i *Importer) catalogIDs(ctx context.Context) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID)
	if i.catalog == nil {
		return ids, nil
	}
	for _, category := range []entity.MenuCategory{entity.MenuCategoryDish, entity.MenuCategoryDrink} {
		entries, err := i.catalog.ListCatalog(ctx, category)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			ids[catalogKey(e.Category, e.Name)] = e.ID
		}
	}
	return ids, nil
}

func catalogKey(category entity.MenuCategory, name string) string {
	return string(category) + "/" + name
}
