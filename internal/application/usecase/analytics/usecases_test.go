package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/menuinzicht/backend/internal/domain/entity"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
)

func TestGetComparisonUseCase_RevenueChartIsPositional(t *testing.T) {
	source := &fakeMetricSource{records: append(
		dailyRecords("2025-09-02", "2025-09-03"),
		dailyRecords("2025-09-09", "2025-09-11")...,
	)}
	uc := NewGetComparisonUseCase(source)

	output, err := uc.Execute(context.Background(), GetComparisonInput{
		Periods: Periods{A: rangePtr("2025-09-02", "2025-09-03"), B: rangePtr("2025-09-09", "2025-09-11")},
		Mode:    ModeDay,
		Metric:  MetricRevenue,
		Chart:   ChartRevenue,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.Policy != PolicyPositional || output.Strategy != StrategyAdditive {
		t.Errorf("expected positional/additive, got %s/%s", output.Policy, output.Strategy)
	}
	if len(output.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(output.Rows))
	}
	if output.Rows[1].TooltipB() != "10 Sep 2025" {
		t.Errorf("expected row 2 to pair with 10 Sep 2025, got %q", output.Rows[1].TooltipB())
	}
	if output.TruncatedB != 1 || len(output.TruncatedSpansB) != 1 || output.TruncatedSpansB[0].Label() != "11 Sep 2025" {
		t.Errorf("expected 11 Sep 2025 to be reported as truncated, got %+v", output.TruncatedSpansB)
	}
	if !output.Comparing {
		t.Error("expected comparing to be true")
	}
}

func TestGetComparisonUseCase_AggregatedChartIsUnion(t *testing.T) {
	source := &fakeMetricSource{records: append(
		dailyRecords("2025-10-05", "2025-10-20"),
		dailyRecords("2025-11-01", "2025-11-30")...,
	)}
	uc := NewGetComparisonUseCase(source)

	output, err := uc.Execute(context.Background(), GetComparisonInput{
		Periods: Periods{A: rangePtr("2025-10-05", "2025-10-20"), B: rangePtr("2025-11-01", "2025-11-30")},
		Mode:    ModeMonth,
		Metric:  MetricOrders,
		Chart:   ChartAggregated,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Policy != PolicyUnion {
		t.Errorf("expected union, got %s", output.Policy)
	}
	if len(output.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(output.Rows))
	}
	if output.Rows[0].ValueB != nil || output.Rows[1].ValueA != nil {
		t.Error("expected each month to be populated by one period only")
	}
	if !output.Rows[0].ValueA.Equal(dec("160")) {
		t.Errorf("expected 160 orders in October, got %s", output.Rows[0].ValueA)
	}
}

func TestGetComparisonUseCase_SinglePeriod(t *testing.T) {
	source := &fakeMetricSource{records: dailyRecords("2025-09-01", "2025-09-14")}
	uc := NewGetComparisonUseCase(source)

	output, err := uc.Execute(context.Background(), GetComparisonInput{
		Periods: Periods{A: rangePtr("2025-09-01", "2025-09-14")},
		Mode:    ModeWeek,
		Metric:  MetricAvgOrderValue,
		Chart:   ChartRevenue,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Rows) != 2 || output.Comparing {
		t.Fatalf("expected 2 single-period rows, got %d (comparing %v)", len(output.Rows), output.Comparing)
	}
	if !output.Rows[0].ValueA.Equal(dec("10")) {
		t.Errorf("expected avg order value 10, got %s", output.Rows[0].ValueA)
	}
	if source.calls != 1 {
		t.Errorf("expected 1 source call, got %d", source.calls)
	}
}

func TestGetComparisonUseCase_Validation(t *testing.T) {
	uc := NewGetComparisonUseCase(&fakeMetricSource{})
	periods := Periods{A: rangePtr("2025-09-01", "2025-09-02")}

	tests := []struct {
		name     string
		input    GetComparisonInput
		expected error
	}{
		{"missing period A", GetComparisonInput{Mode: ModeDay, Metric: MetricRevenue, Chart: ChartRevenue}, domainerror.ErrMissingPeriodA},
		{"weekday mode", GetComparisonInput{Periods: periods, Mode: ModeWeekday, Metric: MetricRevenue, Chart: ChartRevenue}, domainerror.ErrInvalidMode},
		{"interval mode", GetComparisonInput{Periods: periods, Mode: ModeInterval, Metric: MetricRevenue, Chart: ChartRevenue}, domainerror.ErrInvalidMode},
		{"unknown metric", GetComparisonInput{Periods: periods, Mode: ModeDay, Metric: "profit", Chart: ChartRevenue}, domainerror.ErrInvalidMetric},
		{"time chart", GetComparisonInput{Periods: periods, Mode: ModeDay, Metric: MetricRevenue, Chart: ChartTimeOfDay}, domainerror.ErrInvalidChart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.input)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestGetComparisonUseCase_SourceError(t *testing.T) {
	uc := NewGetComparisonUseCase(&fakeMetricSource{err: errSourceUnavailable})
	_, err := uc.Execute(context.Background(), GetComparisonInput{
		Periods: Periods{A: rangePtr("2025-09-01", "2025-09-02")},
		Mode:    ModeDay,
		Metric:  MetricRevenue,
		Chart:   ChartAggregated,
	})
	if !errors.Is(err, errSourceUnavailable) {
		t.Errorf("expected wrapped source error, got %v", err)
	}
}

func TestGetWeekdayComparisonUseCase(t *testing.T) {
	source := &fakeMetricSource{records: []entity.DailyMetric{
		record("2025-09-01", "100", 10), // Monday
		record("2025-09-08", "300", 30), // Monday
		record("2025-09-02", "50", 5),   // Tuesday
	}}
	uc := NewGetWeekdayComparisonUseCase(source)

	output, err := uc.Execute(context.Background(), GetWeekdayComparisonInput{
		Periods: Periods{A: rangePtr("2025-09-01", "2025-09-14")},
		Metric:  MetricRevenue,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(output.Rows))
	}
	if output.Strategy != StrategyMeanOfOccurrences {
		t.Errorf("expected mean of occurrences, got %s", output.Strategy)
	}
	if !output.Rows[0].ValueA.Equal(dec("200")) {
		t.Errorf("expected typical Monday revenue 200, got %s", output.Rows[0].ValueA)
	}
	if !output.Rows[2].ValueA.IsZero() {
		t.Errorf("expected Wednesday 0, got %s", output.Rows[2].ValueA)
	}
}

func TestGetTimeAnalysisUseCase(t *testing.T) {
	source := &fakeIntervalSource{records: []entity.IntervalRecord{
		interval("2025-09-01", "12:00", 2, "20", dish(1)),
		interval("2025-09-01", "12:15", 2, "20", dish(1)),
		interval("2025-09-08", "12:00", 4, "40", dish(3)),
		interval("2025-09-08", "12:15", 4, "40", dish(3)),
		interval("2025-09-08", "18:00", 1, "15", dish(1)),
	}}
	series := NewIntervalSeries(source, newMapCache(), "09:00")
	uc := NewGetTimeAnalysisUseCase(series)

	output, err := uc.Execute(context.Background(), GetTimeAnalysisInput{
		Periods:         Periods{A: rangePtr("2025-09-01", "2025-09-01"), B: rangePtr("2025-09-08", "2025-09-08")},
		IntervalMinutes: 30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(output.Rows))
	}
	noon := output.Rows[0]
	if noon.Time != "12:00" || noon.A == nil || noon.B == nil {
		t.Fatalf("unexpected noon row %+v", noon)
	}
	if !noon.A.Revenue.Equal(dec("20")) || !noon.B.Revenue.Equal(dec("40")) {
		t.Errorf("unexpected mean revenue %s / %s", noon.A.Revenue, noon.B.Revenue)
	}
	if output.Rows[1].A != nil {
		t.Error("expected period A to be missing at 18:00")
	}

	if _, err := uc.Execute(context.Background(), GetTimeAnalysisInput{
		Periods:         Periods{A: rangePtr("2025-09-01", "2025-09-01")},
		IntervalMinutes: 45,
	}); !errors.Is(err, domainerror.ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestGetCategoryBreakdownUseCase(t *testing.T) {
	source := &fakeMetricSource{records: dailyRecords("2025-09-01", "2025-09-07")}
	uc := NewGetCategoryBreakdownUseCase(source, &fakeCatalog{entries: testCatalog()})

	output, err := uc.Execute(context.Background(), GetCategoryBreakdownInput{
		Periods:  Periods{A: rangePtr("2025-09-01", "2025-09-03"), B: rangePtr("2025-09-04", "2025-09-07")},
		Category: entity.MenuCategoryDrink,
		Metric:   "items",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Metric != BreakdownQuantity {
		t.Errorf("expected quantity metric, got %s", output.Metric)
	}
	if len(output.ItemsA) == 0 || len(output.ItemsB) == 0 {
		t.Fatal("expected items in both periods")
	}
	if output.ItemsA[0].Color != "#22c55e" || output.ItemsB[0].Color != "#3b82f6" {
		t.Errorf("unexpected palette %s / %s", output.ItemsA[0].Color, output.ItemsB[0].Color)
	}
	for _, item := range output.ItemsA {
		if item.Category != entity.MenuCategoryDrink {
			t.Errorf("unexpected category %s", item.Category)
		}
	}

	_, err = uc.Execute(context.Background(), GetCategoryBreakdownInput{
		Periods:  Periods{A: rangePtr("2025-09-01", "2025-09-03")},
		Category: "snack",
	})
	if !errors.Is(err, domainerror.ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestGetPeriodSummaryUseCase(t *testing.T) {
	source := &fakeMetricSource{records: []entity.DailyMetric{
		record("2025-09-01", "100", 10),
		record("2025-09-02", "300", 10),
		record("2025-09-08", "600", 40),
	}}
	uc := NewGetPeriodSummaryUseCase(source)

	output, err := uc.Execute(context.Background(), GetPeriodSummaryInput{
		Periods: Periods{A: rangePtr("2025-09-01", "2025-09-07"), B: rangePtr("2025-09-08", "2025-09-14")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !output.A.Revenue.Equal(dec("400")) || output.A.Orders != 20 || !output.A.AvgOrderValue.Equal(dec("20")) {
		t.Errorf("unexpected totals A %+v", output.A)
	}
	if output.B == nil || !output.B.AvgOrderValue.Equal(dec("15")) {
		t.Fatalf("unexpected totals B %+v", output.B)
	}
	if !output.A.AvgItemsPerOrder.Equal(dec("2.5")) {
		t.Errorf("expected 2.5 items per order, got %s", output.A.AvgItemsPerOrder)
	}
	if output.Changes.Revenue.Trend != TrendUp || !output.Changes.Revenue.Percentage.Equal(dec("50")) {
		t.Errorf("unexpected revenue change %+v", output.Changes.Revenue)
	}
	if output.Changes.AvgOrderValue.Trend != TrendDown || !output.Changes.AvgOrderValue.Percentage.Equal(dec("25")) {
		t.Errorf("unexpected avg order value change %+v", output.Changes.AvgOrderValue)
	}
	if output.Changes.AvgItemsPerOrder.Trend != TrendNeutral {
		t.Errorf("expected neutral items per order, got %s", output.Changes.AvgItemsPerOrder.Trend)
	}
}

func TestCalculateChange(t *testing.T) {
	tests := []struct {
		a, b     string
		pct      string
		expected Trend
	}{
		{"100", "150", "50", TrendUp},
		{"100", "80", "20", TrendDown},
		{"100", "100", "0", TrendNeutral},
		{"0", "50", "0", TrendNeutral},
		{"100", "0", "100", TrendDown},
	}
	for _, tt := range tests {
		got := CalculateChange(dec(tt.a), dec(tt.b))
		if got.Trend != tt.expected || !got.Percentage.Equal(dec(tt.pct)) {
			t.Errorf("%s -> %s: expected %s%% %s, got %s%% %s", tt.a, tt.b, tt.pct, tt.expected, got.Percentage, got.Trend)
		}
	}
}

func TestGetTopItemsUseCase(t *testing.T) {
	source := &fakeMetricSource{records: dailyRecords("2025-09-01", "2025-09-30")}
	uc := NewGetTopItemsUseCase(source, &fakeCatalog{entries: testCatalog()})

	output, err := uc.Execute(context.Background(), GetTopItemsInput{
		Periods:  Periods{A: rangePtr("2025-09-01", "2025-09-30")},
		Category: entity.MenuCategoryDish,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Rank != RankMost {
		t.Errorf("expected most, got %s", output.Rank)
	}
	if len(output.ItemsA) != DefaultTopItemsLimit {
		t.Errorf("expected %d items, got %d", DefaultTopItemsLimit, len(output.ItemsA))
	}
	if output.ItemsB != nil {
		t.Error("expected no period B items")
	}

	_, err = uc.Execute(context.Background(), GetTopItemsInput{
		Periods:  Periods{A: rangePtr("2025-09-01", "2025-09-30")},
		Category: entity.MenuCategoryDish,
		Rank:     "best",
	})
	if err == nil {
		t.Error("expected error for unknown rank")
	}
}

func TestGetItemsSoldUseCase(t *testing.T) {
	source := &fakeIntervalSource{records: []entity.IntervalRecord{
		interval("2025-09-01", "12:00", 1, "10", sale("Coffee", entity.MenuCategoryDrink, "3.50", 2)),
		interval("2025-09-02", "18:00", 1, "10", sale("Water", entity.MenuCategoryDrink, "2.00", 1)),
	}}
	uc := NewGetItemsSoldUseCase(source)
	r := mustRange("2025-09-01", "2025-09-07")

	byTime, err := uc.Execute(context.Background(), GetItemsSoldInput{Range: r, TimeStart: "12:00", TimeEnd: "12:15"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byTime.Items) != 1 || byTime.Items[0].Name != "Coffee" {
		t.Errorf("unexpected items %+v", byTime.Items)
	}

	tuesday := 1
	byWeekday, err := uc.Execute(context.Background(), GetItemsSoldInput{Range: r, Weekday: &tuesday})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byWeekday.Items) != 1 || byWeekday.Items[0].Name != "Water" {
		t.Errorf("unexpected items %+v", byWeekday.Items)
	}

	if _, err := uc.Execute(context.Background(), GetItemsSoldInput{Range: r}); !errors.Is(err, domainerror.ErrInvalidTimeWindow) {
		t.Errorf("expected ErrInvalidTimeWindow, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), GetItemsSoldInput{Range: r, TimeStart: "12:00", TimeEnd: "13:00", Weekday: &tuesday}); !errors.Is(err, domainerror.ErrInvalidTimeWindow) {
		t.Errorf("expected ErrInvalidTimeWindow, got %v", err)
	}
}

func TestGetCoverageUseCase(t *testing.T) {
	uc := NewGetCoverageUseCase(&fakeMetricSource{records: dailyRecords("2025-01-01", "2025-01-10")})
	output, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !output.HasData || output.TotalRecords != 10 {
		t.Errorf("unexpected coverage %+v", output)
	}
	if output.OldestDate.Format("2006-01-02") != "2025-01-01" || output.NewestDate.Format("2006-01-02") != "2025-01-10" {
		t.Errorf("unexpected bounds %s..%s", output.OldestDate, output.NewestDate)
	}

	empty, err := NewGetCoverageUseCase(&fakeMetricSource{}).Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.HasData {
		t.Error("expected no data")
	}
}
