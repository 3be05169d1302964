package cache

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/menuinzicht/backend/internal/domain/entity"
	"github.com/menuinzicht/backend/internal/domain/valueobject"
)

// countingSource serves one fixed interval per day and counts calls.
type countingSource struct {
	calls int
}

func (s *countingSource) GetIntervalsForDate(_ context.Context, date time.Time) ([]entity.IntervalRecord, error) {
	s.calls++
	return []entity.IntervalRecord{{
		Date:    date,
		Slot:    "12:00",
		Orders:  1,
		Revenue: decimal.RequireFromString("10"),
	}}, nil
}

func (s *countingSource) GetIntervalsForRange(ctx context.Context, r valueobject.DateRange) ([]entity.IntervalRecord, error) {
	var out []entity.IntervalRecord
	for _, d := range r.Expand() {
		records, _ := s.GetIntervalsForDate(ctx, d)
		out = append(out, records...)
	}
	return out, nil
}
