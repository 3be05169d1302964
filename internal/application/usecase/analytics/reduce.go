package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/menuinzicht/backend/internal/domain/entity"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
)

// Metric is the daily figure being compared.
type Metric string

const (
	MetricRevenue       Metric = "revenue"
	MetricOrders        Metric = "orders"
	MetricAvgOrderValue Metric = "avgOrderValue"
)

// ParseMetric validates a metric string. "avgOrderAmount" is accepted as an alias
// of avgOrderValue.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case string(MetricRevenue):
		return MetricRevenue, nil
	case string(MetricOrders):
		return MetricOrders, nil
	case string(MetricAvgOrderValue), "avgOrderAmount":
		return MetricAvgOrderValue, nil
	default:
		return "", domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidMetric,
			fmt.Sprintf("unknown metric %q", s),
			domainerror.ErrInvalidMetric,
		)
	}
}

// Strategy selects how the records of one bucket are combined.
// There is no default: callers must pick one.
type Strategy string

const (
	// StrategyAdditive sums revenue and orders, AOV is sum(revenue)/sum(orders).
	StrategyAdditive Strategy = "additive"
	// StrategyMeanOfOccurrences averages across the bucket's days ("typical Monday").
	StrategyMeanOfOccurrences Strategy = "meanOfOccurrences"
)

// StrategyForMode returns the reduction strategy a chart in mode uses.
func StrategyForMode(mode Mode) Strategy {
	if mode == ModeWeekday {
		return StrategyMeanOfOccurrences
	}
	return StrategyAdditive
}

func validateStrategy(strategy Strategy) error {
	switch strategy {
	case StrategyAdditive, StrategyMeanOfOccurrences:
		return nil
	default:
		return domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidStrategy,
			fmt.Sprintf("unknown reduction strategy %q", strategy),
			domainerror.ErrInvalidStrategy,
		)
	}
}

func validateMetric(metric Metric) error {
	switch metric {
	case MetricRevenue, MetricOrders, MetricAvgOrderValue:
		return nil
	default:
		return domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidMetric,
			fmt.Sprintf("unknown metric %q", metric),
			domainerror.ErrInvalidMetric,
		)
	}
}

// Reduce collapses a bucket's records to a single number.
// An empty bucket reduces to zero under both strategies.
func Reduce(records []entity.DailyMetric, metric Metric, strategy Strategy) (decimal.Decimal, error) {
	if err := validateMetric(metric); err != nil {
		return decimal.Zero, err
	}
	if err := validateStrategy(strategy); err != nil {
		return decimal.Zero, err
	}
	if len(records) == 0 {
		return decimal.Zero, nil
	}

	if strategy == StrategyAdditive {
		return reduceAdditive(records, metric), nil
	}
	return reduceMean(records, metric), nil
}

func reduceAdditive(records []entity.DailyMetric, metric Metric) decimal.Decimal {
	revenue := decimal.Zero
	orders := int64(0)
	for _, r := range records {
		revenue = revenue.Add(r.Revenue)
		orders += int64(r.OrderCount)
	}

	switch metric {
	case MetricRevenue:
		return revenue
	case MetricOrders:
		return decimal.NewFromInt(orders)
	default:
		return ratio(revenue, orders)
	}
}

func reduceMean(records []entity.DailyMetric, metric Metric) decimal.Decimal {
	switch metric {
	case MetricRevenue:
		total := decimal.Zero
		for _, r := range records {
			total = total.Add(r.Revenue)
		}
		return total.Div(decimal.NewFromInt(int64(len(records))))
	case MetricOrders:
		total := int64(0)
		for _, r := range records {
			total += int64(r.OrderCount)
		}
		return decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(len(records))))
	default:
		// Mean of each day's recomputed ratio. Days without orders have no ratio.
		total := decimal.Zero
		days := int64(0)
		for _, r := range records {
			if r.OrderCount == 0 {
				continue
			}
			total = total.Add(r.OrderRatio())
			days++
		}
		if days == 0 {
			return decimal.Zero
		}
		return total.Div(decimal.NewFromInt(days))
	}
}

func ratio(revenue decimal.Decimal, orders int64) decimal.Decimal {
	if orders == 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(orders))
}
