package analytics

import (
	"context"
	"fmt"

	"github.com/menuinzicht/backend/internal/domain/entity"
)

// DefaultTopItemsLimit is the number of items returned when no limit is given.
const DefaultTopItemsLimit = 5

// GetTopItemsInput represents the input for the top items cards.
type GetTopItemsInput struct {
	Periods  Periods
	Category entity.MenuCategory
	Rank     RankType
	Limit    int
}

// GetTopItemsOutput holds the ranked items of each period.
type GetTopItemsOutput struct {
	Category  entity.MenuCategory
	Rank      RankType
	Comparing bool
	ItemsA    []ItemTotal
	ItemsB    []ItemTotal
}

// GetTopItemsUseCase ranks catalog items of a category by quantity sold.
type GetTopItemsUseCase struct {
	metricSource  MetricSource
	catalogSource CatalogSource
}

// NewGetTopItemsUseCase creates a new GetTopItemsUseCase instance.
func NewGetTopItemsUseCase(metricSource MetricSource, catalogSource CatalogSource) *GetTopItemsUseCase {
	return &GetTopItemsUseCase{
		metricSource:  metricSource,
		catalogSource: catalogSource,
	}
}

// Execute returns the most or least sold items of each period.
func (uc *GetTopItemsUseCase) Execute(
	ctx context.Context,
	input GetTopItemsInput,
) (*GetTopItemsOutput, error) {
	if err := input.Periods.validate(); err != nil {
		return nil, err
	}
	if _, err := ParseCategory(string(input.Category)); err != nil {
		return nil, err
	}
	rank, err := ParseRankType(string(input.Rank))
	if err != nil {
		return nil, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultTopItemsLimit
	}

	records, err := fetchPeriods(ctx, uc.metricSource, input.Periods)
	if err != nil {
		return nil, err
	}
	catalog, err := uc.catalogSource.ListCatalog(ctx, input.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	itemsA, err := BreakdownByCategory(records.A, catalog, input.Category, BreakdownQuantity)
	if err != nil {
		return nil, err
	}

	output := &GetTopItemsOutput{
		Category:  input.Category,
		Rank:      rank,
		Comparing: input.Periods.HasB(),
		ItemsA:    TopN(itemsA, rank, limit),
	}
	if input.Periods.HasB() {
		itemsB, err := BreakdownByCategory(records.B, catalog, input.Category, BreakdownQuantity)
		if err != nil {
			return nil, err
		}
		output.ItemsB = TopN(itemsB, rank, limit)
	}
	return output, nil
}
