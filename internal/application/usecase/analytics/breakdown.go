package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/menuinzicht/backend/internal/domain/calendar"
	"github.com/menuinzicht/backend/internal/domain/entity"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
)

// BreakdownMetric selects the value the item breakdown is ranked and proportioned by.
type BreakdownMetric string

const (
	BreakdownQuantity BreakdownMetric = "quantity"
	BreakdownRevenue  BreakdownMetric = "revenue"
)

// ParseBreakdownMetric validates a breakdown metric. "items" and "orders" map to quantity.
func ParseBreakdownMetric(s string) (BreakdownMetric, error) {
	switch s {
	case "", string(BreakdownQuantity), "items", "orders":
		return BreakdownQuantity, nil
	case string(BreakdownRevenue):
		return BreakdownRevenue, nil
	default:
		return "", domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidMetric,
			fmt.Sprintf("unknown breakdown metric %q", s),
			domainerror.ErrInvalidMetric,
		)
	}
}

// ParseCategory validates a menu category string.
func ParseCategory(s string) (entity.MenuCategory, error) {
	c := entity.MenuCategory(s)
	if !c.IsValid() {
		return "", domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidCategory,
			fmt.Sprintf("unknown category %q", s),
			domainerror.ErrInvalidCategory,
		)
	}
	return c, nil
}

// Period identifies the side of a comparison an item total belongs to.
type Period string

const (
	PeriodA Period = "A"
	PeriodB Period = "B"
)

var (
	periodAColors = []string{
		"#22c55e", "#16a34a", "#15803d", "#10b981", "#059669",
		"#047857", "#065f46", "#064e3b", "#14b8a6", "#0d9488",
		"#0f766e", "#115e59", "#134e4a", "#166534", "#14532d",
	}
	periodBColors = []string{
		"#3b82f6", "#2563eb", "#1d4ed8", "#1e40af", "#1e3a8a",
		"#6366f1", "#4f46e5", "#4338ca", "#3730a3", "#312e81",
		"#8b5cf6", "#7c3aed", "#6d28d9", "#5b21b6", "#4c1d95",
	}
)

// itemsPerOrder is the average number of catalog items of a category in one order.
var itemsPerOrder = map[entity.MenuCategory]float64{
	entity.MenuCategoryDish:  2.2,
	entity.MenuCategoryDrink: 1.1,
}

// ItemTotal is the quantity and revenue of one catalog item over a range.
type ItemTotal struct {
	Name     string
	Category entity.MenuCategory
	Quantity int
	Revenue  decimal.Decimal
	Color    string
	Share    decimal.Decimal
}

// BreakdownByCategory distributes each day's orders across the catalog of one
// category and returns the per-item totals over all days. The distribution is
// deterministic in the day number and the item index. Items that were never
// sold are left out. The result is sorted by metric, descending.
func BreakdownByCategory(
	records []entity.DailyMetric,
	catalog []entity.MenuCatalogEntry,
	category entity.MenuCategory,
	metric BreakdownMetric,
) ([]ItemTotal, error) {
	if !category.IsValid() {
		return nil, domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidCategory,
			fmt.Sprintf("unknown category %q", category),
			domainerror.ErrInvalidCategory,
		)
	}

	entries := make([]entity.MenuCatalogEntry, 0, len(catalog))
	for _, entry := range catalog {
		if entry.Category == category {
			entries = append(entries, entry)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	if len(entries) == 0 {
		return []ItemTotal{}, nil
	}

	quantities := make([]int, len(entries))
	for _, record := range records {
		day := calendar.DayNumber(record.Date)
		items := int(roundHalfUp(float64(record.OrderCount) * itemsPerOrder[category]))
		for i := 0; i < items; i++ {
			x := float64(day + i)
			idx := positiveMod(int(math.Floor(x*7.3)), len(entries))
			quantities[idx] += max(1, int(roundHalfUp(0.95+math.Sin(x)*0.1)))
		}
	}

	totals := make([]ItemTotal, 0, len(entries))
	for i, entry := range entries {
		if quantities[i] == 0 {
			continue
		}
		totals = append(totals, ItemTotal{
			Name:     entry.Name,
			Category: category,
			Quantity: quantities[i],
			Revenue:  entry.Price.Mul(decimal.NewFromInt(int64(quantities[i]))),
		})
	}

	SortItems(totals, metric)
	return totals, nil
}

// SortItems orders items by metric descending, ties by name.
func SortItems(items []ItemTotal, metric BreakdownMetric) {
	sort.SliceStable(items, func(i, j int) bool {
		c := compareBy(items[i], items[j], metric)
		if c != 0 {
			return c > 0
		}
		return items[i].Name < items[j].Name
	})
}

func compareBy(a, b ItemTotal, metric BreakdownMetric) int {
	if metric == BreakdownRevenue {
		return a.Revenue.Cmp(b.Revenue)
	}
	switch {
	case a.Quantity > b.Quantity:
		return 1
	case a.Quantity < b.Quantity:
		return -1
	default:
		return 0
	}
}

// AssignPalette colors items with the palette of period, cycling when there
// are more items than colors.
func AssignPalette(items []ItemTotal, period Period) []ItemTotal {
	palette := periodAColors
	if period == PeriodB {
		palette = periodBColors
	}
	for i := range items {
		items[i].Color = palette[i%len(palette)]
	}
	return items
}

// Shares sets each item's percentage of the metric total, rounded to 1 decimal.
func Shares(items []ItemTotal, metric BreakdownMetric) []ItemTotal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(metricValue(item, metric))
	}
	for i := range items {
		if total.IsZero() {
			items[i].Share = decimal.Zero
			continue
		}
		items[i].Share = metricValue(items[i], metric).Mul(decimal.NewFromInt(100)).Div(total).Round(1)
	}
	return items
}

func metricValue(item ItemTotal, metric BreakdownMetric) decimal.Decimal {
	if metric == BreakdownRevenue {
		return item.Revenue
	}
	return decimal.NewFromInt(int64(item.Quantity))
}

// RankType selects the end of the ranking TopN returns.
type RankType string

const (
	RankMost  RankType = "most"
	RankLeast RankType = "least"
)

// ParseRankType validates a ranking type, defaulting to most.
func ParseRankType(s string) (RankType, error) {
	switch s {
	case "", string(RankMost):
		return RankMost, nil
	case string(RankLeast):
		return RankLeast, nil
	default:
		return "", domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidRankType,
			fmt.Sprintf("unknown ranking %q", s),
			domainerror.ErrInvalidRankType,
		)
	}
}

// TopN returns the limit most or least sold items by quantity.
func TopN(items []ItemTotal, rank RankType, limit int) []ItemTotal {
	ranked := make([]ItemTotal, len(items))
	copy(ranked, items)
	SortItems(ranked, BreakdownQuantity)
	if rank == RankLeast {
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].Quantity != ranked[j].Quantity {
				return ranked[i].Quantity < ranked[j].Quantity
			}
			return ranked[i].Name < ranked[j].Name
		})
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// ItemsSoldInWindow sums item sales of intervals whose slot lies within
// [from, to], both ends inclusive.
func ItemsSoldInWindow(records []entity.IntervalRecord, from, to string) ([]ItemTotal, error) {
	start, err := ParseClock(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(to)
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidTimeWindow,
			fmt.Sprintf("time window %s-%s ends before it starts", from, to),
			domainerror.ErrInvalidTimeWindow,
		)
	}

	selected := make([]entity.IntervalRecord, 0, len(records))
	for _, record := range records {
		t, err := ParseClock(record.Slot)
		if err != nil {
			return nil, err
		}
		if t >= start && t <= end {
			selected = append(selected, record)
		}
	}
	return sumItemSales(selected), nil
}

// ItemsSoldOnWeekday sums item sales of intervals of days falling on weekday (0 = Monday).
func ItemsSoldOnWeekday(records []entity.IntervalRecord, weekday int) ([]ItemTotal, error) {
	if weekday < 0 || weekday > 6 {
		return nil, domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidWeekday,
			fmt.Sprintf("weekday index %d is outside 0..6", weekday),
			domainerror.ErrInvalidWeekday,
		)
	}

	selected := make([]entity.IntervalRecord, 0, len(records))
	for _, record := range records {
		if calendar.WeekdayIndex(record.Date) == weekday {
			selected = append(selected, record)
		}
	}
	return sumItemSales(selected), nil
}

func sumItemSales(records []entity.IntervalRecord) []ItemTotal {
	type itemKey struct {
		name     string
		category entity.MenuCategory
	}
	byItem := make(map[itemKey]*ItemTotal)
	var order []itemKey
	for _, record := range records {
		for _, sale := range record.Items {
			key := itemKey{name: sale.Name, category: sale.Category}
			total, ok := byItem[key]
			if !ok {
				total = &ItemTotal{Name: sale.Name, Category: sale.Category, Revenue: decimal.Zero}
				byItem[key] = total
				order = append(order, key)
			}
			total.Quantity += sale.Quantity
			total.Revenue = total.Revenue.Add(sale.Revenue())
		}
	}

	out := make([]ItemTotal, 0, len(order))
	for _, key := range order {
		out = append(out, *byItem[key])
	}
	SortItems(out, BreakdownQuantity)
	return out
}

// roundHalfUp rounds like the dashboard does, .5 towards positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// positiveMod is n mod m in [0, m). Day numbers before 1970 are negative.
func positiveMod(n, m int) int {
	return ((n % m) + m) % m
}
