package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/menuinzicht/backend/internal/domain/calendar"
	"github.com/menuinzicht/backend/internal/domain/entity"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
)

// SupportedIntervals lists the slot sizes in minutes offered by the time-of-day chart.
var SupportedIntervals = []int{15, 30, 60, 90, 120, 180, 300}

// DefaultOpeningTime is the start of the first slot when none is configured.
const DefaultOpeningTime = "09:00"

// ValidateInterval checks that minutes is one of SupportedIntervals.
func ValidateInterval(minutes int) error {
	for _, supported := range SupportedIntervals {
		if minutes == supported {
			return nil
		}
	}
	return domainerror.NewAnalyticsError(
		domainerror.ErrCodeInvalidInterval,
		fmt.Sprintf("unsupported interval of %d minutes", minutes),
		domainerror.ErrInvalidInterval,
	)
}

// ParseClock parses "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, invalidTimeWindow(s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, invalidTimeWindow(s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, invalidTimeWindow(s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func invalidTimeWindow(s string) error {
	return domainerror.NewAnalyticsError(
		domainerror.ErrCodeInvalidTimeWindow,
		fmt.Sprintf("invalid time %q, expected HH:MM", s),
		domainerror.ErrInvalidTimeWindow,
	)
}

// SlotGrid maps intraday times onto fixed-size slots starting at the opening time.
type SlotGrid struct {
	Minutes int
	Opening int
}

// NewSlotGrid validates minutes and opening ("HH:MM").
func NewSlotGrid(minutes int, opening string) (SlotGrid, error) {
	if err := ValidateInterval(minutes); err != nil {
		return SlotGrid{}, err
	}
	if opening == "" {
		opening = DefaultOpeningTime
	}
	openingMinutes, err := ParseClock(opening)
	if err != nil {
		return SlotGrid{}, err
	}
	return SlotGrid{Minutes: minutes, Opening: openingMinutes}, nil
}

// Key identifies the grid in cache entries, e.g. "09:00/15".
func (g SlotGrid) Key() string {
	return FormatClock(g.Opening) + "/" + strconv.Itoa(g.Minutes)
}

// SlotStart rounds t (minutes after midnight) down to the start of its slot.
// ok is false for times before opening.
func (g SlotGrid) SlotStart(t int) (start int, ok bool) {
	if t < g.Opening {
		return 0, false
	}
	return g.Opening + ((t-g.Opening)/g.Minutes)*g.Minutes, true
}

// SlotAggregate is the roll-up of one day's source intervals into one slot.
// Intervals counts the source intervals merged into it.
type SlotAggregate struct {
	Date      string          `json:"date"`
	Slot      string          `json:"slot"`
	Minute    int             `json:"minute"`
	Orders    int             `json:"orders"`
	Items     int             `json:"items"`
	Revenue   decimal.Decimal `json:"revenue"`
	Intervals int             `json:"intervals"`
}

// RollUp merges a single day's source intervals onto grid.
// Records that fall before opening are skipped.
func RollUp(records []entity.IntervalRecord, grid SlotGrid) ([]SlotAggregate, error) {
	bySlot := make(map[int]*SlotAggregate)
	for _, record := range records {
		t, err := ParseClock(record.Slot)
		if err != nil {
			return nil, err
		}
		start, ok := grid.SlotStart(t)
		if !ok {
			continue
		}
		agg, exists := bySlot[start]
		if !exists {
			agg = &SlotAggregate{
				Date:    calendar.FormatDate(record.Date),
				Slot:    FormatClock(start),
				Minute:  start,
				Revenue: decimal.Zero,
			}
			bySlot[start] = agg
		}
		agg.Orders += record.Orders
		agg.Items += record.ItemCount()
		agg.Revenue = agg.Revenue.Add(record.Revenue)
		agg.Intervals++
	}

	out := make([]SlotAggregate, 0, len(bySlot))
	for _, agg := range bySlot {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minute < out[j].Minute })
	return out, nil
}

// TimeSlotPoint is one slot of the time-of-day chart.
// Items and Revenue are means per source interval, AvgOrderValue is the ratio of sums.
type TimeSlotPoint struct {
	Time          string
	Minute        int
	Items         int
	Revenue       decimal.Decimal
	Orders        int
	AvgOrderValue decimal.Decimal
}

// GroupByInterval aggregates rolled-up slots across all days into one point per slot.
func GroupByInterval(slots []SlotAggregate) []TimeSlotPoint {
	type acc struct {
		items     int
		orders    int
		revenue   decimal.Decimal
		intervals int
	}
	bySlot := make(map[int]*acc)
	for _, s := range slots {
		a, ok := bySlot[s.Minute]
		if !ok {
			a = &acc{revenue: decimal.Zero}
			bySlot[s.Minute] = a
		}
		a.items += s.Items
		a.orders += s.Orders
		a.revenue = a.revenue.Add(s.Revenue)
		a.intervals += s.Intervals
	}

	points := make([]TimeSlotPoint, 0, len(bySlot))
	for minute, a := range bySlot {
		point := TimeSlotPoint{
			Time:          FormatClock(minute),
			Minute:        minute,
			Orders:        a.orders,
			Revenue:       decimal.Zero,
			AvgOrderValue: ratio(a.revenue, int64(a.orders)).Round(2),
		}
		if a.intervals > 0 {
			count := decimal.NewFromInt(int64(a.intervals))
			point.Items = int(decimal.NewFromInt(int64(a.items)).Div(count).Round(0).IntPart())
			point.Revenue = a.revenue.Div(count).Round(2)
		}
		points = append(points, point)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Minute < points[j].Minute })
	return points
}

// TimeSlotRow pairs the points of both periods for one slot. A nil point is missing.
type TimeSlotRow struct {
	Time   string
	Minute int
	A      *TimeSlotPoint
	B      *TimeSlotPoint
}

// AlignIntervals pairs time-of-day points of two periods by slot.
// Time slots share the same clock across periods, so only the union policy applies.
func AlignIntervals(a, b []TimeSlotPoint, policy Policy) ([]TimeSlotRow, error) {
	if policy != PolicyUnion {
		return nil, domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidPolicy,
			fmt.Sprintf("time-of-day rows require the %s policy, got %q", PolicyUnion, policy),
			domainerror.ErrInvalidPolicy,
		)
	}

	rows := make(map[int]*TimeSlotRow)
	row := func(p TimeSlotPoint) *TimeSlotRow {
		r, ok := rows[p.Minute]
		if !ok {
			r = &TimeSlotRow{Time: p.Time, Minute: p.Minute}
			rows[p.Minute] = r
		}
		return r
	}
	for i := range a {
		row(a[i]).A = &a[i]
	}
	for i := range b {
		row(b[i]).B = &b[i]
	}

	out := make([]TimeSlotRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minute < out[j].Minute })
	return out, nil
}

// SlotEnd returns the "HH:MM" end of a slot starting at start, capped at 23:59.
func SlotEnd(start string, minutes int) (string, error) {
	t, err := ParseClock(start)
	if err != nil {
		return "", err
	}
	end := t + minutes
	if end >= 24*60 {
		end = 24*60 - 1
	}
	return FormatClock(end), nil
}
