// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"github.com/shopspring/decimal"

	"github.com/menuinzicht/backend/internal/application/usecase/analytics"
	"github.com/menuinzicht/backend/internal/domain/calendar"
)

// CoverageResponse represents the response for the data coverage API.
type CoverageResponse struct {
	OldestDate   *string `json:"oldest_date"`
	NewestDate   *string `json:"newest_date"`
	TotalRecords int     `json:"total_records"`
	HasData      bool    `json:"has_data"`
}

// ToCoverageResponse converts a GetCoverageOutput to CoverageResponse DTO.
func ToCoverageResponse(output *analytics.GetCoverageOutput) CoverageResponse {
	response := CoverageResponse{
		TotalRecords: output.TotalRecords,
		HasData:      output.HasData,
	}
	if output.OldestDate != nil {
		oldest := calendar.FormatDate(*output.OldestDate)
		response.OldestDate = &oldest
	}
	if output.NewestDate != nil {
		newest := calendar.FormatDate(*output.NewestDate)
		response.NewestDate = &newest
	}
	return response
}

// ComparisonResponse represents the response for the comparison chart API.
type ComparisonResponse struct {
	Mode       string                  `json:"mode"`
	Metric     string                  `json:"metric"`
	Chart      string                  `json:"chart"`
	Strategy   string                  `json:"strategy"`
	Alignment  string                  `json:"alignment"`
	Comparing  bool                    `json:"comparing"`
	Rows       []ComparisonRowResponse `json:"rows"`
	Truncation *TruncationResponse     `json:"truncation,omitempty"`
}

// ComparisonRowResponse represents one x-axis position of a comparison chart.
// A null value means the period has no bucket at this position.
type ComparisonRowResponse struct {
	Label    string   `json:"label"`
	ValueA   *float64 `json:"value_a"`
	ValueB   *float64 `json:"value_b"`
	TooltipA string   `json:"tooltip_a,omitempty"`
	TooltipB string   `json:"tooltip_b,omitempty"`
}

// TruncationResponse reports the buckets left out of a positional comparison.
type TruncationResponse struct {
	ExcludedA    int      `json:"excluded_a"`
	ExcludedB    int      `json:"excluded_b"`
	ExcludedKeys []string `json:"excluded_keys_b,omitempty"`
	ExcludedDays []string `json:"excluded_days_b,omitempty"`
}

// ToComparisonResponse converts a GetComparisonOutput to ComparisonResponse DTO.
func ToComparisonResponse(output *analytics.GetComparisonOutput) ComparisonResponse {
	response := ComparisonResponse{
		Mode:      string(output.Mode),
		Metric:    string(output.Metric),
		Chart:     string(output.Chart),
		Strategy:  string(output.Strategy),
		Alignment: string(output.Policy),
		Comparing: output.Comparing,
		Rows:      toComparisonRows(output.Rows),
	}

	if output.TruncatedA > 0 || output.TruncatedB > 0 {
		truncation := &TruncationResponse{
			ExcludedA: output.TruncatedA,
			ExcludedB: output.TruncatedB,
		}
		for _, key := range output.TruncatedKeysB {
			truncation.ExcludedKeys = append(truncation.ExcludedKeys, string(key))
		}
		for _, span := range output.TruncatedSpansB {
			truncation.ExcludedDays = append(truncation.ExcludedDays, span.Label())
		}
		response.Truncation = truncation
	}
	return response
}

// WeekdayResponse represents the response for the weekday chart API.
type WeekdayResponse struct {
	Metric    string                  `json:"metric"`
	Strategy  string                  `json:"strategy"`
	Comparing bool                    `json:"comparing"`
	Rows      []ComparisonRowResponse `json:"rows"`
}

// ToWeekdayResponse converts a GetWeekdayComparisonOutput to WeekdayResponse DTO.
func ToWeekdayResponse(output *analytics.GetWeekdayComparisonOutput) WeekdayResponse {
	return WeekdayResponse{
		Metric:    string(output.Metric),
		Strategy:  string(output.Strategy),
		Comparing: output.Comparing,
		Rows:      toComparisonRows(output.Rows),
	}
}

func toComparisonRows(rows []analytics.ComparisonRow) []ComparisonRowResponse {
	out := make([]ComparisonRowResponse, len(rows))
	for i, row := range rows {
		out[i] = ComparisonRowResponse{
			Label:    row.Label,
			ValueA:   optionalFloat(row.ValueA),
			ValueB:   optionalFloat(row.ValueB),
			TooltipA: row.TooltipA(),
			TooltipB: row.TooltipB(),
		}
	}
	return out
}

// TimeOfDayResponse represents the response for the time-of-day chart API.
type TimeOfDayResponse struct {
	Interval  int                    `json:"interval"`
	Comparing bool                   `json:"comparing"`
	Rows      []TimeOfDayRowResponse `json:"rows"`
}

// TimeOfDayRowResponse pairs the slot points of both periods.
type TimeOfDayRowResponse struct {
	Time string            `json:"time"`
	A    *TimeSlotResponse `json:"a"`
	B    *TimeSlotResponse `json:"b"`
}

// TimeSlotResponse represents the aggregates of one slot.
type TimeSlotResponse struct {
	Items         int     `json:"items"`
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// ToTimeOfDayResponse converts a GetTimeAnalysisOutput to TimeOfDayResponse DTO.
func ToTimeOfDayResponse(output *analytics.GetTimeAnalysisOutput) TimeOfDayResponse {
	rows := make([]TimeOfDayRowResponse, len(output.Rows))
	for i, row := range output.Rows {
		rows[i] = TimeOfDayRowResponse{
			Time: row.Time,
			A:    toTimeSlot(row.A),
			B:    toTimeSlot(row.B),
		}
	}
	return TimeOfDayResponse{
		Interval:  output.IntervalMinutes,
		Comparing: output.Comparing,
		Rows:      rows,
	}
}

func toTimeSlot(point *analytics.TimeSlotPoint) *TimeSlotResponse {
	if point == nil {
		return nil
	}
	revenue, _ := point.Revenue.Float64()
	aov, _ := point.AvgOrderValue.Float64()
	return &TimeSlotResponse{
		Items:         point.Items,
		Revenue:       revenue,
		Orders:        point.Orders,
		AvgOrderValue: aov,
	}
}

// ItemTotalResponse represents the totals of one catalog item.
type ItemTotalResponse struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
	Color    string  `json:"color,omitempty"`
	Share    float64 `json:"share,omitempty"`
}

func toItemTotals(items []analytics.ItemTotal) []ItemTotalResponse {
	out := make([]ItemTotalResponse, len(items))
	for i, item := range items {
		revenue, _ := item.Revenue.Float64()
		share, _ := item.Share.Float64()
		out[i] = ItemTotalResponse{
			Name:     item.Name,
			Category: string(item.Category),
			Quantity: item.Quantity,
			Revenue:  revenue,
			Color:    item.Color,
			Share:    share,
		}
	}
	return out
}

// BreakdownResponse represents the response for the category pie charts API.
type BreakdownResponse struct {
	Category  string              `json:"category"`
	Metric    string              `json:"metric"`
	Comparing bool                `json:"comparing"`
	ItemsA    []ItemTotalResponse `json:"items_a"`
	ItemsB    []ItemTotalResponse `json:"items_b,omitempty"`
}

// ToBreakdownResponse converts a GetCategoryBreakdownOutput to BreakdownResponse DTO.
func ToBreakdownResponse(output *analytics.GetCategoryBreakdownOutput) BreakdownResponse {
	response := BreakdownResponse{
		Category:  string(output.Category),
		Metric:    string(output.Metric),
		Comparing: output.Comparing,
		ItemsA:    toItemTotals(output.ItemsA),
	}
	if output.Comparing {
		response.ItemsB = toItemTotals(output.ItemsB)
	}
	return response
}

// TopItemsResponse represents the response for the top items API.
type TopItemsResponse struct {
	Category  string              `json:"category"`
	Type      string              `json:"type"`
	Comparing bool                `json:"comparing"`
	ItemsA    []ItemTotalResponse `json:"items_a"`
	ItemsB    []ItemTotalResponse `json:"items_b,omitempty"`
}

// ToTopItemsResponse converts a GetTopItemsOutput to TopItemsResponse DTO.
func ToTopItemsResponse(output *analytics.GetTopItemsOutput) TopItemsResponse {
	response := TopItemsResponse{
		Category:  string(output.Category),
		Type:      string(output.Rank),
		Comparing: output.Comparing,
		ItemsA:    toItemTotals(output.ItemsA),
	}
	if output.Comparing {
		response.ItemsB = toItemTotals(output.ItemsB)
	}
	return response
}

// ItemsSoldResponse represents the response for the drill-down API.
type ItemsSoldResponse struct {
	Items []ItemTotalResponse `json:"items"`
}

// ToItemsSoldResponse converts a GetItemsSoldOutput to ItemsSoldResponse DTO.
func ToItemsSoldResponse(output *analytics.GetItemsSoldOutput) ItemsSoldResponse {
	return ItemsSoldResponse{Items: toItemTotals(output.Items)}
}

// SummaryResponse represents the response for the stats cards API.
type SummaryResponse struct {
	A       PeriodTotalsResponse    `json:"a"`
	B       *PeriodTotalsResponse   `json:"b,omitempty"`
	Changes *SummaryChangesResponse `json:"changes,omitempty"`
}

// PeriodTotalsResponse represents the headline figures of one period.
type PeriodTotalsResponse struct {
	Revenue          float64 `json:"revenue"`
	Orders           int     `json:"orders"`
	AvgItemsPerOrder float64 `json:"avg_items_per_order"`
	AvgOrderValue    float64 `json:"avg_order_value"`
	Days             int     `json:"days"`
}

// ChangeResponse represents the relative change of one figure.
type ChangeResponse struct {
	Percentage float64 `json:"percentage"`
	Trend      string  `json:"trend"`
}

// SummaryChangesResponse holds the change of every headline figure.
type SummaryChangesResponse struct {
	Revenue          ChangeResponse `json:"revenue"`
	Orders           ChangeResponse `json:"orders"`
	AvgItemsPerOrder ChangeResponse `json:"avg_items_per_order"`
	AvgOrderValue    ChangeResponse `json:"avg_order_value"`
}

// ToSummaryResponse converts a GetPeriodSummaryOutput to SummaryResponse DTO.
func ToSummaryResponse(output *analytics.GetPeriodSummaryOutput) SummaryResponse {
	response := SummaryResponse{A: toPeriodTotals(output.A)}
	if output.B != nil {
		b := toPeriodTotals(*output.B)
		response.B = &b
	}
	if output.Changes != nil {
		response.Changes = &SummaryChangesResponse{
			Revenue:          toChange(output.Changes.Revenue),
			Orders:           toChange(output.Changes.Orders),
			AvgItemsPerOrder: toChange(output.Changes.AvgItemsPerOrder),
			AvgOrderValue:    toChange(output.Changes.AvgOrderValue),
		}
	}
	return response
}

func toPeriodTotals(totals analytics.PeriodTotals) PeriodTotalsResponse {
	revenue, _ := totals.Revenue.Float64()
	items, _ := totals.AvgItemsPerOrder.Float64()
	aov, _ := totals.AvgOrderValue.Float64()
	return PeriodTotalsResponse{
		Revenue:          revenue,
		Orders:           totals.Orders,
		AvgItemsPerOrder: items,
		AvgOrderValue:    aov,
		Days:             totals.Days,
	}
}

func toChange(change analytics.Change) ChangeResponse {
	percentage, _ := change.Percentage.Float64()
	return ChangeResponse{
		Percentage: percentage,
		Trend:      string(change.Trend),
	}
}

func optionalFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}
