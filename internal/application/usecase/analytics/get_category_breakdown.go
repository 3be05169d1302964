package analytics

import (
	"context"
	"fmt"

	"github.com/menuinzicht/backend/internal/domain/entity"
)

// GetCategoryBreakdownInput represents the input for the category pie charts.
type GetCategoryBreakdownInput struct {
	Periods  Periods
	Category entity.MenuCategory
	Metric   BreakdownMetric
}

// GetCategoryBreakdownOutput holds the per-item totals of each period.
type GetCategoryBreakdownOutput struct {
	Category  entity.MenuCategory
	Metric    BreakdownMetric
	Comparing bool
	ItemsA    []ItemTotal
	ItemsB    []ItemTotal
}

// GetCategoryBreakdownUseCase distributes each period's orders across the catalog.
type GetCategoryBreakdownUseCase struct {
	metricSource  MetricSource
	catalogSource CatalogSource
}

// NewGetCategoryBreakdownUseCase creates a new GetCategoryBreakdownUseCase instance.
func NewGetCategoryBreakdownUseCase(metricSource MetricSource, catalogSource CatalogSource) *GetCategoryBreakdownUseCase {
	return &GetCategoryBreakdownUseCase{
		metricSource:  metricSource,
		catalogSource: catalogSource,
	}
}

// Execute computes colored item totals with their share of the metric.
func (uc *GetCategoryBreakdownUseCase) Execute(
	ctx context.Context,
	input GetCategoryBreakdownInput,
) (*GetCategoryBreakdownOutput, error) {
	if err := input.Periods.validate(); err != nil {
		return nil, err
	}
	if _, err := ParseCategory(string(input.Category)); err != nil {
		return nil, err
	}
	metric, err := ParseBreakdownMetric(string(input.Metric))
	if err != nil {
		return nil, err
	}
	input.Metric = metric

	records, err := fetchPeriods(ctx, uc.metricSource, input.Periods)
	if err != nil {
		return nil, err
	}

	catalog, err := uc.catalogSource.ListCatalog(ctx, input.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	itemsA, err := uc.breakdown(records.A, catalog, input, PeriodA)
	if err != nil {
		return nil, err
	}

	output := &GetCategoryBreakdownOutput{
		Category:  input.Category,
		Metric:    input.Metric,
		Comparing: input.Periods.HasB(),
		ItemsA:    itemsA,
	}
	if input.Periods.HasB() {
		output.ItemsB, err = uc.breakdown(records.B, catalog, input, PeriodB)
		if err != nil {
			return nil, err
		}
	}
	return output, nil
}

func (uc *GetCategoryBreakdownUseCase) breakdown(
	records []entity.DailyMetric,
	catalog []entity.MenuCatalogEntry,
	input GetCategoryBreakdownInput,
	period Period,
) ([]ItemTotal, error) {
	items, err := BreakdownByCategory(records, catalog, input.Category, input.Metric)
	if err != nil {
		return nil, err
	}
	return Shares(AssignPalette(items, period), input.Metric), nil
}
