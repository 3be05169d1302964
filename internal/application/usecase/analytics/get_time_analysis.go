package analytics

import (
	"context"
)

// GetTimeAnalysisInput represents the input for the time-of-day chart.
type GetTimeAnalysisInput struct {
	Periods         Periods
	IntervalMinutes int
}

// GetTimeAnalysisOutput holds one row per slot, ordered by time.
type GetTimeAnalysisOutput struct {
	IntervalMinutes int
	Comparing       bool
	Rows            []TimeSlotRow
}

// GetTimeAnalysisUseCase aggregates intraday intervals of each period by slot.
type GetTimeAnalysisUseCase struct {
	series *IntervalSeries
}

// NewGetTimeAnalysisUseCase creates a new GetTimeAnalysisUseCase instance.
func NewGetTimeAnalysisUseCase(series *IntervalSeries) *GetTimeAnalysisUseCase {
	return &GetTimeAnalysisUseCase{
		series: series,
	}
}

// Execute groups every day's intervals of both periods into the same slots.
func (uc *GetTimeAnalysisUseCase) Execute(
	ctx context.Context,
	input GetTimeAnalysisInput,
) (*GetTimeAnalysisOutput, error) {
	if err := input.Periods.validate(); err != nil {
		return nil, err
	}
	if err := ValidateInterval(input.IntervalMinutes); err != nil {
		return nil, err
	}

	slotsA, err := uc.series.ForRange(ctx, *input.Periods.A, input.IntervalMinutes)
	if err != nil {
		return nil, err
	}
	pointsA := GroupByInterval(slotsA)

	var pointsB []TimeSlotPoint
	if input.Periods.HasB() {
		slotsB, err := uc.series.ForRange(ctx, *input.Periods.B, input.IntervalMinutes)
		if err != nil {
			return nil, err
		}
		pointsB = GroupByInterval(slotsB)
	}

	rows, err := AlignIntervals(pointsA, pointsB, PolicyForChart(ChartTimeOfDay))
	if err != nil {
		return nil, err
	}

	return &GetTimeAnalysisOutput{
		IntervalMinutes: input.IntervalMinutes,
		Comparing:       input.Periods.HasB(),
		Rows:            rows,
	}, nil
}
