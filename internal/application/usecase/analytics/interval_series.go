package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/menuinzicht/backend/internal/domain/calendar"
	"github.com/menuinzicht/backend/internal/domain/valueobject"
)

// IntervalSeries produces per-day rolled-up intraday series, memoized in an
// optional IntervalCache. Cache failures never fail a request.
type IntervalSeries struct {
	source  IntervalSource
	cache   IntervalCache
	opening string
}

// NewIntervalSeries creates a new IntervalSeries. cache may be nil.
func NewIntervalSeries(source IntervalSource, cache IntervalCache, opening string) *IntervalSeries {
	if opening == "" {
		opening = DefaultOpeningTime
	}
	return &IntervalSeries{
		source:  source,
		cache:   cache,
		opening: opening,
	}
}

// ForDate returns the series of date rolled up to minutes.
func (s *IntervalSeries) ForDate(ctx context.Context, date time.Time, minutes int) ([]SlotAggregate, error) {
	grid, err := NewSlotGrid(minutes, s.opening)
	if err != nil {
		return nil, err
	}
	key := calendar.FormatDate(date)

	if s.cache != nil {
		slots, found, err := s.cache.Get(ctx, key, grid)
		if err != nil {
			slog.Warn("interval cache read failed", "date", key, "minutes", minutes, "error", err)
		} else if found {
			return slots, nil
		}
	}

	records, err := s.source.GetIntervalsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get intervals for %s: %w", key, err)
	}
	slots, err := RollUp(records, grid)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, grid, slots); err != nil {
			slog.Warn("interval cache write failed", "date", key, "minutes", minutes, "error", err)
		}
	}
	return slots, nil
}

// ForRange returns the series of every day of r, concatenated in date order.
func (s *IntervalSeries) ForRange(ctx context.Context, r valueobject.DateRange, minutes int) ([]SlotAggregate, error) {
	var out []SlotAggregate
	for _, date := range r.Expand() {
		slots, err := s.ForDate(ctx, date, minutes)
		if err != nil {
			return nil, err
		}
		out = append(out, slots...)
	}
	return out, nil
}

// Invalidate drops cached series of date. It must be called whenever the
// intervals of date change.
func (s *IntervalSeries) Invalidate(ctx context.Context, date time.Time) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, calendar.FormatDate(date))
}
