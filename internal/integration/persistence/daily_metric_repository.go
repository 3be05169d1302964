// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/menuinzicht/backend/internal/application/usecase/analytics"
	"github.com/menuinzicht/backend/internal/domain/calendar"
	"github.com/menuinzicht/backend/internal/domain/entity"
	"github.com/menuinzicht/backend/internal/domain/valueobject"
	"github.com/menuinzicht/backend/internal/integration/persistence/model"
)

// DailyMetricRepository stores one row per calendar day and serves it as an
// analytics.MetricSource.
type DailyMetricRepository struct {
	db *gorm.DB
}

// NewDailyMetricRepository creates a new daily metric repository instance.
func NewDailyMetricRepository(db *gorm.DB) *DailyMetricRepository {
	return &DailyMetricRepository{
		db: db,
	}
}

// GetRecordsForRange returns the stored days of r ordered by date.
func (r *DailyMetricRepository) GetRecordsForRange(ctx context.Context, dr valueobject.DateRange) ([]entity.DailyMetric, error) {
	var models []model.DailyMetricModel

	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", dr.StartISO(), dr.EndISO()).
		Order("date ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily metrics for %s: %w", dr, err)
	}

	records := make([]entity.DailyMetric, 0, len(models))
	for i := range models {
		record, err := models[i].ToEntity()
		if err != nil {
			return nil, err
		}
		if err := record.Validate(); err != nil {
			slog.Debug("Daily metric integrity mismatch", "date", models[i].Date, "error", err)
		}
		records = append(records, record)
	}

	return records, nil
}

// GetCoverage returns the oldest and newest stored dates and the row count.
func (r *DailyMetricRepository) GetCoverage(ctx context.Context) (*analytics.Coverage, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.DailyMetricModel{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count daily metrics: %w", err)
	}

	coverage := &analytics.Coverage{TotalRecords: int(total)}
	if total == 0 {
		return coverage, nil
	}

	oldest, err := r.boundary(ctx, "date ASC")
	if err != nil {
		return nil, err
	}
	newest, err := r.boundary(ctx, "date DESC")
	if err != nil {
		return nil, err
	}
	coverage.OldestDate = oldest
	coverage.NewestDate = newest

	return coverage, nil
}

func (r *DailyMetricRepository) boundary(ctx context.Context, order string) (*time.Time, error) {
	var m model.DailyMetricModel
	err := r.db.WithContext(ctx).Order(order).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get coverage boundary: %w", err)
	}
	date, err := calendar.ParseLocalDate(m.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", m.Date, err)
	}
	return &date, nil
}

// Upsert inserts or replaces the given days.
func (r *DailyMetricRepository) Upsert(ctx context.Context, metrics []entity.DailyMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	models := make([]*model.DailyMetricModel, len(metrics))
	for i, m := range metrics {
		models[i] = model.DailyMetricFromEntity(m)
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"revenue", "order_count", "avg_items_per_order", "avg_order_value", "updated_at"}),
		}).
		CreateInBatches(models, 500).Error
	if err != nil {
		return fmt.Errorf("failed to upsert daily metrics: %w", err)
	}

	slog.Info("Daily metrics upserted", "count", len(models))
	return nil
}

// Ensure DailyMetricRepository implements analytics.MetricSource.
var _ analytics.MetricSource = (*DailyMetricRepository)(nil)
