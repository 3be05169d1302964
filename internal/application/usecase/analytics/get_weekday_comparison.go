package analytics

import (
	"context"
)

// GetWeekdayComparisonInput represents the input for the weekday chart.
type GetWeekdayComparisonInput struct {
	Periods Periods
	Metric  Metric
}

// GetWeekdayComparisonOutput holds exactly seven rows, Monday first.
type GetWeekdayComparisonOutput struct {
	Metric    Metric
	Strategy  Strategy
	Comparing bool
	Rows      []ComparisonRow
}

// GetWeekdayComparisonUseCase compares the typical day of each weekday across periods.
type GetWeekdayComparisonUseCase struct {
	metricSource MetricSource
}

// NewGetWeekdayComparisonUseCase creates a new GetWeekdayComparisonUseCase instance.
func NewGetWeekdayComparisonUseCase(metricSource MetricSource) *GetWeekdayComparisonUseCase {
	return &GetWeekdayComparisonUseCase{
		metricSource: metricSource,
	}
}

// Execute averages each weekday's occurrences of both periods.
func (uc *GetWeekdayComparisonUseCase) Execute(
	ctx context.Context,
	input GetWeekdayComparisonInput,
) (*GetWeekdayComparisonOutput, error) {
	if err := input.Periods.validate(); err != nil {
		return nil, err
	}
	if err := validateMetric(input.Metric); err != nil {
		return nil, err
	}

	records, err := fetchPeriods(ctx, uc.metricSource, input.Periods)
	if err != nil {
		return nil, err
	}

	setA, err := GroupBy(records.A, ModeWeekday)
	if err != nil {
		return nil, err
	}
	var setB *BucketSet
	if input.Periods.HasB() {
		setB, err = GroupBy(records.B, ModeWeekday)
		if err != nil {
			return nil, err
		}
	}

	strategy := StrategyForMode(ModeWeekday)
	aligned, err := Align(setA, setB, input.Metric, strategy, PolicyForChart(ChartWeekday))
	if err != nil {
		return nil, err
	}

	return &GetWeekdayComparisonOutput{
		Metric:    input.Metric,
		Strategy:  strategy,
		Comparing: input.Periods.HasB(),
		Rows:      aligned.Rows,
	}, nil
}
