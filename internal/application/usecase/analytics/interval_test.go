package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/menuinzicht/backend/internal/domain/entity"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
)

func TestValidateInterval(t *testing.T) {
	for _, minutes := range SupportedIntervals {
		if err := ValidateInterval(minutes); err != nil {
			t.Errorf("%d: unexpected error: %v", minutes, err)
		}
	}
	for _, minutes := range []int{0, 10, 45, 240, -15} {
		if err := ValidateInterval(minutes); !errors.Is(err, domainerror.ErrInvalidInterval) {
			t.Errorf("%d: expected ErrInvalidInterval, got %v", minutes, err)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"00:00", 0, false},
		{"09:15", 555, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:15", 0, true},
		{"09:60", 0, true},
		{"0915", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: expected error %v, got %v", tt.input, tt.wantErr, err)
			continue
		}
		if !tt.wantErr && got != tt.expected {
			t.Errorf("%q: expected %d, got %d", tt.input, tt.expected, got)
		}
	}
}

func TestSlotGrid_SlotStart(t *testing.T) {
	tests := []struct {
		name     string
		minutes  int
		time     string
		expected string
		ok       bool
	}{
		{"quarter keeps slot", 15, "12:45", "12:45", true},
		{"hour rounds down", 60, "12:45", "12:00", true},
		{"two hours anchored at opening", 120, "10:45", "09:00", true},
		{"two hours second slot", 120, "11:15", "11:00", true},
		{"five hours", 300, "19:30", "19:00", true},
		{"before opening", 15, "08:45", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := NewSlotGrid(tt.minutes, "09:00")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			clock, _ := ParseClock(tt.time)
			start, ok := grid.SlotStart(clock)
			if ok != tt.ok {
				t.Fatalf("expected ok %v, got %v", tt.ok, ok)
			}
			if ok && FormatClock(start) != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, FormatClock(start))
			}
		})
	}
}

func TestNewSlotGrid_DefaultsOpening(t *testing.T) {
	grid, err := NewSlotGrid(15, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grid.Opening != 9*60 {
		t.Errorf("expected opening at 09:00, got %s", FormatClock(grid.Opening))
	}
	if _, err := NewSlotGrid(15, "nine"); !errors.Is(err, domainerror.ErrInvalidTimeWindow) {
		t.Errorf("expected ErrInvalidTimeWindow, got %v", err)
	}
}

func dish(qty int) entity.ItemSale {
	return sale("Beef Burger", entity.MenuCategoryDish, "13.50", qty)
}

func TestRollUp_MergesQuarterHours(t *testing.T) {
	grid, _ := NewSlotGrid(60, "09:00")
	records := []entity.IntervalRecord{
		interval("2025-09-01", "08:45", 3, "30", dish(1)),
		interval("2025-09-01", "12:00", 1, "10", dish(2)),
		interval("2025-09-01", "12:15", 1, "10", dish(2)),
		interval("2025-09-01", "12:30", 1, "10", dish(2)),
		interval("2025-09-01", "12:45", 1, "10", dish(2)),
		interval("2025-09-01", "13:00", 2, "25", dish(1)),
	}

	slots, err := RollUp(records, grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	noon := slots[0]
	if noon.Slot != "12:00" || noon.Intervals != 4 || noon.Orders != 4 || noon.Items != 8 || !noon.Revenue.Equal(dec("40")) {
		t.Errorf("unexpected noon slot %+v", noon)
	}
	if slots[1].Slot != "13:00" || slots[1].Intervals != 1 {
		t.Errorf("unexpected 13:00 slot %+v", slots[1])
	}
}

func TestRollUp_RejectsMalformedSlot(t *testing.T) {
	grid, _ := NewSlotGrid(15, "09:00")
	_, err := RollUp([]entity.IntervalRecord{interval("2025-09-01", "noon", 1, "10")}, grid)
	if !errors.Is(err, domainerror.ErrInvalidTimeWindow) {
		t.Errorf("expected ErrInvalidTimeWindow, got %v", err)
	}
}

func TestGroupByInterval_MeansAndRatio(t *testing.T) {
	grid, _ := NewSlotGrid(60, "09:00")
	var slots []SlotAggregate
	for _, day := range []struct {
		date    string
		orders  int
		revenue string
	}{
		{"2025-09-01", 1, "10"},
		{"2025-09-02", 2, "20"},
	} {
		var records []entity.IntervalRecord
		for _, q := range []string{"12:00", "12:15", "12:30", "12:45"} {
			records = append(records, interval(day.date, q, day.orders, day.revenue, dish(2)))
		}
		daySlots, err := RollUp(records, grid)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		slots = append(slots, daySlots...)
	}

	points := GroupByInterval(slots)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	p := points[0]
	// Revenue 40 + 80 over 8 source intervals, orders 4 + 8.
	if p.Time != "12:00" {
		t.Errorf("expected 12:00, got %s", p.Time)
	}
	if !p.Revenue.Equal(dec("15")) {
		t.Errorf("expected mean revenue 15, got %s", p.Revenue)
	}
	if p.Items != 2 {
		t.Errorf("expected mean items 2, got %d", p.Items)
	}
	if !p.AvgOrderValue.Equal(dec("10")) {
		t.Errorf("expected avg order value 10, got %s", p.AvgOrderValue)
	}
	if p.Orders != 12 {
		t.Errorf("expected 12 orders, got %d", p.Orders)
	}
}

func TestGroupByInterval_OrderedByTime(t *testing.T) {
	slots := []SlotAggregate{
		{Slot: "18:00", Minute: 18 * 60, Intervals: 1, Revenue: dec("1")},
		{Slot: "09:00", Minute: 9 * 60, Intervals: 1, Revenue: dec("1")},
		{Slot: "12:30", Minute: 12*60 + 30, Intervals: 1, Revenue: dec("1")},
	}
	points := GroupByInterval(slots)
	if points[0].Time != "09:00" || points[1].Time != "12:30" || points[2].Time != "18:00" {
		t.Errorf("unexpected order %s, %s, %s", points[0].Time, points[1].Time, points[2].Time)
	}
	if !points[0].AvgOrderValue.IsZero() {
		t.Errorf("expected zero avg order value without orders, got %s", points[0].AvgOrderValue)
	}
}

func TestAlignIntervals(t *testing.T) {
	a := []TimeSlotPoint{{Time: "12:00", Minute: 720}, {Time: "13:00", Minute: 780}}
	b := []TimeSlotPoint{{Time: "11:00", Minute: 660}, {Time: "12:00", Minute: 720}}

	rows, err := AlignIntervals(a, b, PolicyUnion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Time != "11:00" || rows[0].A != nil || rows[0].B == nil {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[1].A == nil || rows[1].B == nil {
		t.Errorf("expected both sides at 12:00")
	}
	if rows[2].B != nil {
		t.Errorf("expected B missing at 13:00")
	}

	if _, err := AlignIntervals(a, b, PolicyPositional); !errors.Is(err, domainerror.ErrInvalidPolicy) {
		t.Errorf("expected ErrInvalidPolicy, got %v", err)
	}
}

func TestSlotEnd(t *testing.T) {
	if end, _ := SlotEnd("12:00", 15); end != "12:15" {
		t.Errorf("expected 12:15, got %s", end)
	}
	if end, _ := SlotEnd("23:00", 120); end != "23:59" {
		t.Errorf("expected 23:59, got %s", end)
	}
}

func TestIntervalSeries_CachesPerDateAndInterval(t *testing.T) {
	ctx := context.Background()
	source := &fakeIntervalSource{records: []entity.IntervalRecord{
		interval("2025-09-01", "12:00", 2, "20", dish(1)),
		interval("2025-09-01", "12:15", 2, "20", dish(1)),
	}}
	cache := newMapCache()
	series := NewIntervalSeries(source, cache, "09:00")
	date := mustRange("2025-09-01", "2025-09-01").Start

	first, err := series.ForDate(ctx, date, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := series.ForDate(ctx, date, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.calls != 1 {
		t.Errorf("expected 1 source call, got %d", source.calls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].Intervals != 2 {
		t.Errorf("unexpected cached series %+v", second)
	}

	if _, err := series.ForDate(ctx, date, 15); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.calls != 2 {
		t.Errorf("expected a miss for a different interval, got %d calls", source.calls)
	}

	if err := series.Invalidate(ctx, date); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := series.ForDate(ctx, date, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.calls != 3 {
		t.Errorf("expected a miss after invalidation, got %d calls", source.calls)
	}
}

func TestIntervalSeries_CacheKeyedByOpeningTime(t *testing.T) {
	ctx := context.Background()
	source := &fakeIntervalSource{records: []entity.IntervalRecord{
		interval("2025-09-01", "10:15", 1, "10"),
		interval("2025-09-01", "10:45", 1, "10"),
	}}
	cache := newMapCache()
	date := mustRange("2025-09-01", "2025-09-01").Start

	nine, err := NewIntervalSeries(source, cache, "09:00").ForDate(ctx, date, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	half, err := NewIntervalSeries(source, cache, "09:30").ForDate(ctx, date, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if source.calls != 2 {
		t.Errorf("expected a miss after the opening time changed, got %d calls", source.calls)
	}
	if len(nine) != 1 || nine[0].Slot != "10:00" {
		t.Errorf("unexpected 09:00 grid %+v", nine)
	}
	if len(half) != 2 || half[0].Slot != "09:30" || half[1].Slot != "10:30" {
		t.Errorf("unexpected 09:30 grid %+v", half)
	}
}

func TestIntervalSeries_CacheFailureFallsBackToSource(t *testing.T) {
	source := &fakeIntervalSource{records: []entity.IntervalRecord{interval("2025-09-01", "12:00", 1, "10")}}
	cache := newMapCache()
	cache.getErr = errors.New("cache down")
	series := NewIntervalSeries(source, cache, "")

	slots, err := series.ForDate(context.Background(), mustRange("2025-09-01", "2025-09-01").Start, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 1 {
		t.Errorf("expected 1 slot, got %d", len(slots))
	}
}

func TestIntervalSeries_WithoutCache(t *testing.T) {
	source := &fakeIntervalSource{err: errSourceUnavailable}
	series := NewIntervalSeries(source, nil, "09:00")

	_, err := series.ForDate(context.Background(), mustRange("2025-09-01", "2025-09-01").Start, 15)
	if !errors.Is(err, errSourceUnavailable) {
		t.Errorf("expected wrapped source error, got %v", err)
	}
	if err := series.Invalidate(context.Background(), mustRange("2025-09-01", "2025-09-01").Start); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
