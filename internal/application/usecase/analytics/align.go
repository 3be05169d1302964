package analytics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	domainerror "github.com/menuinzicht/backend/internal/domain/error"
)

// Policy decides how the buckets of two periods are paired into rows.
type Policy string

const (
	// PolicyUnion pairs buckets by calendar key. A side without the key is missing.
	PolicyUnion Policy = "union"
	// PolicyPositional pairs buckets by index and truncates to the shorter period.
	PolicyPositional Policy = "positional"
)

// ParsePolicy validates a policy string.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyUnion, PolicyPositional:
		return p, nil
	default:
		return "", domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidPolicy,
			fmt.Sprintf("unknown alignment policy %q", s),
			domainerror.ErrInvalidPolicy,
		)
	}
}

// Chart identifies a dashboard chart family.
type Chart string

const (
	ChartAggregated Chart = "aggregated"
	ChartRevenue    Chart = "revenue"
	ChartWeekday    Chart = "weekday"
	ChartTimeOfDay  Chart = "timeOfDay"
)

// ParseChart validates a chart string.
func ParseChart(s string) (Chart, error) {
	switch c := Chart(s); c {
	case ChartAggregated, ChartRevenue, ChartWeekday, ChartTimeOfDay:
		return c, nil
	default:
		return "", domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidChart,
			fmt.Sprintf("unknown chart %q", s),
			domainerror.ErrInvalidChart,
		)
	}
}

// PolicyForChart returns the alignment policy a chart family uses.
// Calendar-keyed charts compare the same calendar period, the revenue
// charts compare relative offsets of differently anchored periods.
func PolicyForChart(chart Chart) Policy {
	if chart == ChartRevenue {
		return PolicyPositional
	}
	return PolicyUnion
}

// ComparisonRow is one x-axis position of a comparison chart.
// A nil value means the period has no bucket at this position.
type ComparisonRow struct {
	Label   string
	SortKey int
	ValueA  *decimal.Decimal
	ValueB  *decimal.Decimal
	SpanA   *Span
	SpanB   *Span
}

// TooltipA returns the date label of period A's bucket, empty when missing.
func (r ComparisonRow) TooltipA() string {
	if r.SpanA == nil {
		return ""
	}
	return r.SpanA.Label()
}

// TooltipB returns the date label of period B's bucket, empty when missing.
func (r ComparisonRow) TooltipB() string {
	if r.SpanB == nil {
		return ""
	}
	return r.SpanB.Label()
}

// AlignmentResult holds the aligned rows plus the buckets dropped by truncation.
type AlignmentResult struct {
	Policy          Policy
	Rows            []ComparisonRow
	TruncatedA      int
	TruncatedB      int
	TruncatedKeysB  []BucketKey
	TruncatedSpansB []Span
}

// Truncated reports whether any bucket was excluded from the rows.
func (r *AlignmentResult) Truncated() bool {
	return r.TruncatedA > 0 || r.TruncatedB > 0
}

// Align pairs the buckets of period A with those of period B.
// b may be nil, in which case every bucket of A becomes a row with B missing.
// Rows are ordered chronologically by period A's anchor.
func Align(a, b *BucketSet, metric Metric, strategy Strategy, policy Policy) (*AlignmentResult, error) {
	if a == nil {
		return nil, domainerror.NewAnalyticsError(
			domainerror.ErrCodeMissingPeriodA,
			"period A is required",
			domainerror.ErrMissingPeriodA,
		)
	}
	if err := validateMetric(metric); err != nil {
		return nil, err
	}
	if err := validateStrategy(strategy); err != nil {
		return nil, err
	}

	switch policy {
	case PolicyUnion:
		return alignUnion(a, b, metric, strategy)
	case PolicyPositional:
		return alignPositional(a, b, metric, strategy)
	default:
		return nil, domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidPolicy,
			fmt.Sprintf("unknown alignment policy %q", policy),
			domainerror.ErrInvalidPolicy,
		)
	}
}

func alignUnion(a, b *BucketSet, metric Metric, strategy Strategy) (*AlignmentResult, error) {
	rowsByKey := make(map[BucketKey]*ComparisonRow)
	var order []BucketKey

	add := func(set *BucketSet, sideA bool) error {
		for _, bucket := range set.Buckets() {
			row, ok := rowsByKey[bucket.Key]
			if !ok {
				row = &ComparisonRow{Label: string(bucket.Key), SortKey: bucket.SortKey()}
				rowsByKey[bucket.Key] = row
				order = append(order, bucket.Key)
			}
			value, span, err := reduceBucket(bucket, metric, strategy)
			if err != nil {
				return err
			}
			if sideA {
				row.ValueA, row.SpanA = value, span
			} else {
				row.ValueB, row.SpanB = value, span
			}
		}
		return nil
	}

	if err := add(a, true); err != nil {
		return nil, err
	}
	if b != nil {
		if err := add(b, false); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return rowsByKey[order[i]].SortKey < rowsByKey[order[j]].SortKey
	})

	rows := make([]ComparisonRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *rowsByKey[key])
	}
	return &AlignmentResult{Policy: PolicyUnion, Rows: rows}, nil
}

func alignPositional(a, b *BucketSet, metric Metric, strategy Strategy) (*AlignmentResult, error) {
	bucketsA := a.Buckets()
	bucketsB := b.Buckets()

	n := len(bucketsA)
	if b != nil && len(bucketsB) < n {
		n = len(bucketsB)
	}

	result := &AlignmentResult{Policy: PolicyPositional, Rows: make([]ComparisonRow, 0, n)}
	for i := 0; i < n; i++ {
		bucketA := bucketsA[i]
		row := ComparisonRow{Label: string(bucketA.Key), SortKey: bucketA.SortKey()}

		value, span, err := reduceBucket(bucketA, metric, strategy)
		if err != nil {
			return nil, err
		}
		row.ValueA, row.SpanA = value, span

		if b != nil {
			value, span, err = reduceBucket(bucketsB[i], metric, strategy)
			if err != nil {
				return nil, err
			}
			row.ValueB, row.SpanB = value, span
		}
		result.Rows = append(result.Rows, row)
	}

	if b != nil {
		result.TruncatedA = len(bucketsA) - n
		result.TruncatedB = len(bucketsB) - n
		for _, dropped := range bucketsB[n:] {
			result.TruncatedKeysB = append(result.TruncatedKeysB, dropped.Key)
			if span, ok := dropped.Span(); ok {
				result.TruncatedSpansB = append(result.TruncatedSpansB, span)
			}
		}
	}
	return result, nil
}

func reduceBucket(bucket *Bucket, metric Metric, strategy Strategy) (*decimal.Decimal, *Span, error) {
	value, err := Reduce(bucket.Records, metric, strategy)
	if err != nil {
		return nil, nil, err
	}
	var span *Span
	if s, ok := bucket.Span(); ok {
		span = &s
	}
	return &value, span, nil
}
