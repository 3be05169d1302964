package analytics

import (
	"context"
	"fmt"

	"github.com/menuinzicht/backend/internal/domain/entity"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
	"github.com/menuinzicht/backend/internal/domain/valueobject"
)

// Periods holds the two user-selected ranges. B is optional.
type Periods struct {
	A *valueobject.DateRange
	B *valueobject.DateRange
}

// HasB reports whether a comparison period was selected.
func (p Periods) HasB() bool {
	return p.B != nil
}

func (p Periods) validate() error {
	if p.A == nil {
		return domainerror.NewAnalyticsError(
			domainerror.ErrCodeMissingPeriodA,
			"period A is required",
			domainerror.ErrMissingPeriodA,
		)
	}
	return nil
}

// periodRecords holds the records fetched for each period.
type periodRecords struct {
	A []entity.DailyMetric
	B []entity.DailyMetric
}

func fetchPeriods(ctx context.Context, source MetricSource, periods Periods) (*periodRecords, error) {
	recordsA, err := source.GetRecordsForRange(ctx, *periods.A)
	if err != nil {
		return nil, fmt.Errorf("failed to get records for period A: %w", err)
	}

	out := &periodRecords{A: recordsA}
	if periods.B != nil {
		recordsB, err := source.GetRecordsForRange(ctx, *periods.B)
		if err != nil {
			return nil, fmt.Errorf("failed to get records for period B: %w", err)
		}
		out.B = recordsB
	}
	return out, nil
}
