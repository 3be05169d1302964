package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/menuinzicht/backend/internal/domain/entity"
)

// Trend is the direction of period B relative to period A.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// PeriodTotals holds the headline figures of one period.
type PeriodTotals struct {
	Revenue          decimal.Decimal
	Orders           int
	AvgItemsPerOrder decimal.Decimal
	AvgOrderValue    decimal.Decimal
	Days             int
}

// Change is the relative difference of one headline figure.
type Change struct {
	Percentage decimal.Decimal
	Trend      Trend
}

// SummaryChanges holds the B-vs-A change of every headline figure.
type SummaryChanges struct {
	Revenue          Change
	Orders           Change
	AvgItemsPerOrder Change
	AvgOrderValue    Change
}

// GetPeriodSummaryInput represents the input for the stats cards.
type GetPeriodSummaryInput struct {
	Periods Periods
}

// GetPeriodSummaryOutput holds the totals of both periods and their changes.
type GetPeriodSummaryOutput struct {
	A       PeriodTotals
	B       *PeriodTotals
	Changes *SummaryChanges
}

// GetPeriodSummaryUseCase handles the headline stats of the dashboard.
type GetPeriodSummaryUseCase struct {
	metricSource MetricSource
}

// NewGetPeriodSummaryUseCase creates a new GetPeriodSummaryUseCase instance.
func NewGetPeriodSummaryUseCase(metricSource MetricSource) *GetPeriodSummaryUseCase {
	return &GetPeriodSummaryUseCase{
		metricSource: metricSource,
	}
}

// Execute totals both periods and compares B against A.
func (uc *GetPeriodSummaryUseCase) Execute(
	ctx context.Context,
	input GetPeriodSummaryInput,
) (*GetPeriodSummaryOutput, error) {
	if err := input.Periods.validate(); err != nil {
		return nil, err
	}

	records, err := fetchPeriods(ctx, uc.metricSource, input.Periods)
	if err != nil {
		return nil, err
	}

	output := &GetPeriodSummaryOutput{A: Summarize(records.A)}
	if input.Periods.HasB() {
		totalsB := Summarize(records.B)
		output.B = &totalsB
		output.Changes = &SummaryChanges{
			Revenue:          CalculateChange(output.A.Revenue, totalsB.Revenue),
			Orders:           CalculateChange(decimal.NewFromInt(int64(output.A.Orders)), decimal.NewFromInt(int64(totalsB.Orders))),
			AvgItemsPerOrder: CalculateChange(output.A.AvgItemsPerOrder, totalsB.AvgItemsPerOrder),
			AvgOrderValue:    CalculateChange(output.A.AvgOrderValue, totalsB.AvgOrderValue),
		}
	}
	return output, nil
}

// Summarize totals records. Averages are order-weighted.
func Summarize(records []entity.DailyMetric) PeriodTotals {
	totals := PeriodTotals{Revenue: decimal.Zero, AvgItemsPerOrder: decimal.Zero, AvgOrderValue: decimal.Zero, Days: len(records)}
	items := decimal.Zero
	for _, r := range records {
		totals.Revenue = totals.Revenue.Add(r.Revenue)
		totals.Orders += r.OrderCount
		items = items.Add(decimal.NewFromFloat(r.AvgItemsPerOrder).Mul(decimal.NewFromInt(int64(r.OrderCount))))
	}
	if totals.Orders > 0 {
		orders := decimal.NewFromInt(int64(totals.Orders))
		totals.AvgItemsPerOrder = items.Div(orders).Round(2)
		totals.AvgOrderValue = totals.Revenue.Div(orders).Round(2)
	}
	return totals
}

// CalculateChange returns |b - a| / a as a percentage with the direction of b.
// A zero baseline has no meaningful change and is neutral.
func CalculateChange(a, b decimal.Decimal) Change {
	if a.IsZero() {
		return Change{Percentage: decimal.Zero, Trend: TrendNeutral}
	}
	change := b.Sub(a).Div(a).Mul(decimal.NewFromInt(100))
	trend := TrendNeutral
	switch change.Sign() {
	case 1:
		trend = TrendUp
	case -1:
		trend = TrendDown
	}
	return Change{Percentage: change.Abs().Round(1), Trend: trend}
}
