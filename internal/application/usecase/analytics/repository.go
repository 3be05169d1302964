package analytics

import (
	"context"
	"time"

	"github.com/menuinzicht/backend/internal/domain/entity"
	"github.com/menuinzicht/backend/internal/domain/valueobject"
)

// MetricSource provides the read-only daily metric dataset.
type MetricSource interface {
	// GetRecordsForRange returns the records of every day in r that has data,
	// ordered by date. A range outside the dataset yields an empty slice.
	GetRecordsForRange(ctx context.Context, r valueobject.DateRange) ([]entity.DailyMetric, error)

	// GetCoverage returns the date boundaries of the dataset.
	GetCoverage(ctx context.Context) (*Coverage, error)
}

// IntervalSource provides the intraday intervals of single days.
type IntervalSource interface {
	// GetIntervalsForDate returns the source intervals of date ordered by slot.
	GetIntervalsForDate(ctx context.Context, date time.Time) ([]entity.IntervalRecord, error)

	// GetIntervalsForRange returns the source intervals of every day in r.
	GetIntervalsForRange(ctx context.Context, r valueobject.DateRange) ([]entity.IntervalRecord, error)
}

// CatalogSource provides the fixed reference menu.
type CatalogSource interface {
	// ListCatalog returns the entries of category ordered by position.
	ListCatalog(ctx context.Context, category entity.MenuCategory) ([]entity.MenuCatalogEntry, error)
}

// IntervalCache memoizes rolled-up intraday series keyed by date and slot
// grid. The grid carries the opening time as well as the interval size.
type IntervalCache interface {
	// Get returns the cached series. found is false on a miss.
	Get(ctx context.Context, date string, grid SlotGrid) (slots []SlotAggregate, found bool, err error)

	// Set stores the series of date rolled up on grid.
	Set(ctx context.Context, date string, grid SlotGrid, slots []SlotAggregate) error

	// Invalidate drops every cached series of date, for all grids.
	Invalidate(ctx context.Context, date string) error
}

// Coverage represents the date boundaries of the daily metric dataset.
type Coverage struct {
	OldestDate   *time.Time
	NewestDate   *time.Time
	TotalRecords int
}
