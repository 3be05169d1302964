package analytics

import (
	"context"
	"fmt"

	domainerror "github.com/menuinzicht/backend/internal/domain/error"
	"github.com/menuinzicht/backend/internal/domain/valueobject"
)

// GetItemsSoldInput represents the input for a chart drill-down.
// Exactly one of the time window or Weekday must be set.
type GetItemsSoldInput struct {
	Range     valueobject.DateRange
	TimeStart string
	TimeEnd   string
	Weekday   *int
}

// GetItemsSoldOutput holds the items sold in the selection, most sold first.
type GetItemsSoldOutput struct {
	Items []ItemTotal
}

// GetItemsSoldUseCase lists the items behind a selected bar of the time-of-day
// or weekday chart.
type GetItemsSoldUseCase struct {
	intervalSource IntervalSource
}

// NewGetItemsSoldUseCase creates a new GetItemsSoldUseCase instance.
func NewGetItemsSoldUseCase(intervalSource IntervalSource) *GetItemsSoldUseCase {
	return &GetItemsSoldUseCase{
		intervalSource: intervalSource,
	}
}

// Execute aggregates item sales of the range by time window or weekday.
func (uc *GetItemsSoldUseCase) Execute(
	ctx context.Context,
	input GetItemsSoldInput,
) (*GetItemsSoldOutput, error) {
	if err := uc.validateInput(input); err != nil {
		return nil, err
	}

	records, err := uc.intervalSource.GetIntervalsForRange(ctx, input.Range)
	if err != nil {
		return nil, fmt.Errorf("failed to get intervals: %w", err)
	}

	if input.Weekday != nil {
		items, err := ItemsSoldOnWeekday(records, *input.Weekday)
		if err != nil {
			return nil, err
		}
		return &GetItemsSoldOutput{Items: items}, nil
	}

	items, err := ItemsSoldInWindow(records, input.TimeStart, input.TimeEnd)
	if err != nil {
		return nil, err
	}
	return &GetItemsSoldOutput{Items: items}, nil
}

// validateInput validates the input parameters.
func (uc *GetItemsSoldUseCase) validateInput(input GetItemsSoldInput) error {
	hasWindow := input.TimeStart != "" || input.TimeEnd != ""
	if input.Weekday != nil && hasWindow {
		return domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidTimeWindow,
			"select either a time window or a weekday, not both",
			domainerror.ErrInvalidTimeWindow,
		)
	}
	if input.Weekday == nil && (input.TimeStart == "" || input.TimeEnd == "") {
		return domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidTimeWindow,
			"time_start and time_end are required without a weekday",
			domainerror.ErrInvalidTimeWindow,
		)
	}
	return nil
}
