package analytics

import (
	"context"
	"fmt"
	"time"
)

// GetCoverageOutput represents the date boundaries of the dataset.
type GetCoverageOutput struct {
	OldestDate   *time.Time
	NewestDate   *time.Time
	TotalRecords int
	HasData      bool
}

// GetCoverageUseCase handles getting the date range the dataset covers.
type GetCoverageUseCase struct {
	metricSource MetricSource
}

// NewGetCoverageUseCase creates a new GetCoverageUseCase instance.
func NewGetCoverageUseCase(metricSource MetricSource) *GetCoverageUseCase {
	return &GetCoverageUseCase{
		metricSource: metricSource,
	}
}

// Execute retrieves the dataset coverage.
func (uc *GetCoverageUseCase) Execute(ctx context.Context) (*GetCoverageOutput, error) {
	coverage, err := uc.metricSource.GetCoverage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get coverage: %w", err)
	}

	return &GetCoverageOutput{
		OldestDate:   coverage.OldestDate,
		NewestDate:   coverage.NewestDate,
		TotalRecords: coverage.TotalRecords,
		HasData:      coverage.OldestDate != nil && coverage.NewestDate != nil,
	}, nil
}
