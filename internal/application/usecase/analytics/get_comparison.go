package analytics

import (
	"context"
	"fmt"

	domainerror "github.com/menuinzicht/backend/internal/domain/error"
)

// GetComparisonInput represents the input for a bucketed period comparison.
type GetComparisonInput struct {
	Periods Periods
	Mode    Mode
	Metric  Metric
	Chart   Chart
}

// GetComparisonOutput represents the aligned comparison rows.
type GetComparisonOutput struct {
	Mode            Mode
	Metric          Metric
	Chart           Chart
	Strategy        Strategy
	Policy          Policy
	Comparing       bool
	Rows            []ComparisonRow
	TruncatedA      int
	TruncatedB      int
	TruncatedKeysB  []BucketKey
	TruncatedSpansB []Span
}

// GetComparisonUseCase handles the day/week/month/year comparison charts.
type GetComparisonUseCase struct {
	metricSource MetricSource
}

// NewGetComparisonUseCase creates a new GetComparisonUseCase instance.
func NewGetComparisonUseCase(metricSource MetricSource) *GetComparisonUseCase {
	return &GetComparisonUseCase{
		metricSource: metricSource,
	}
}

// Execute buckets both periods by mode and aligns them with the policy of the chart.
func (uc *GetComparisonUseCase) Execute(
	ctx context.Context,
	input GetComparisonInput,
) (*GetComparisonOutput, error) {
	if err := uc.validateInput(input); err != nil {
		return nil, err
	}

	records, err := fetchPeriods(ctx, uc.metricSource, input.Periods)
	if err != nil {
		return nil, err
	}

	policy := PolicyForChart(input.Chart)
	strategy := StrategyForMode(input.Mode)

	// Positional charts compare calendar spans, so every selected date shapes the buckets.
	group := func(p Periods, isA bool) (*BucketSet, error) {
		if policy == PolicyPositional {
			if isA {
				return GroupRange(*p.A, records.A, input.Mode)
			}
			return GroupRange(*p.B, records.B, input.Mode)
		}
		if isA {
			return GroupBy(records.A, input.Mode)
		}
		return GroupBy(records.B, input.Mode)
	}

	setA, err := group(input.Periods, true)
	if err != nil {
		return nil, err
	}
	var setB *BucketSet
	if input.Periods.HasB() {
		setB, err = group(input.Periods, false)
		if err != nil {
			return nil, err
		}
	}

	aligned, err := Align(setA, setB, input.Metric, strategy, policy)
	if err != nil {
		return nil, err
	}

	return &GetComparisonOutput{
		Mode:            input.Mode,
		Metric:          input.Metric,
		Chart:           input.Chart,
		Strategy:        strategy,
		Policy:          policy,
		Comparing:       input.Periods.HasB(),
		Rows:            aligned.Rows,
		TruncatedA:      aligned.TruncatedA,
		TruncatedB:      aligned.TruncatedB,
		TruncatedKeysB:  aligned.TruncatedKeysB,
		TruncatedSpansB: aligned.TruncatedSpansB,
	}, nil
}

// validateInput validates the input parameters.
func (uc *GetComparisonUseCase) validateInput(input GetComparisonInput) error {
	if err := input.Periods.validate(); err != nil {
		return err
	}

	switch input.Mode {
	case ModeDay, ModeWeek, ModeMonth, ModeYear:
	default:
		return domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidMode,
			fmt.Sprintf("mode %q is not supported by the comparison chart", input.Mode),
			domainerror.ErrInvalidMode,
		)
	}

	if err := validateMetric(input.Metric); err != nil {
		return err
	}

	switch input.Chart {
	case ChartAggregated, ChartRevenue:
	default:
		return domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidChart,
			fmt.Sprintf("chart %q is not a comparison chart", input.Chart),
			domainerror.ErrInvalidChart,
		)
	}
	return nil
}
