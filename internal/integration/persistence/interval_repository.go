package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/menuinzicht/backend/internal/application/usecase/analytics"
	"github.com/menuinzicht/backend/internal/domain/calendar"
	"github.com/menuinzicht/backend/internal/domain/entity"
	"github.com/menuinzicht/backend/internal/domain/valueobject"
	"github.com/menuinzicht/backend/internal/integration/persistence/model"
)

// DateInvalidator is notified after the intervals of a date are replaced.
type DateInvalidator interface {
	Invalidate(ctx context.Context, date time.Time) error
}

// IntervalRepository stores intraday slots with their item sales and serves
// them as an analytics.IntervalSource.
type IntervalRepository struct {
	db          *gorm.DB
	invalidator DateInvalidator
}

// NewIntervalRepository creates a new interval repository instance.
func NewIntervalRepository(db *gorm.DB) *IntervalRepository {
	return &IntervalRepository{
		db: db,
	}
}

// SetInvalidator registers the cache to notify when a day is replaced.
func (r *IntervalRepository) SetInvalidator(invalidator DateInvalidator) {
	r.invalidator = invalidator
}

// GetIntervalsForDate returns the slots of date ordered by slot.
func (r *IntervalRepository) GetIntervalsForDate(ctx context.Context, date time.Time) ([]entity.IntervalRecord, error) {
	day := calendar.FormatDate(date)
	return r.find(r.db.WithContext(ctx).Where("date = ?", day))
}

// GetIntervalsForRange returns the slots of every day of dr ordered by date and slot.
func (r *IntervalRepository) GetIntervalsForRange(ctx context.Context, dr valueobject.DateRange) ([]entity.IntervalRecord, error) {
	return r.find(r.db.WithContext(ctx).Where("date >= ? AND date <= ?", dr.StartISO(), dr.EndISO()))
}

func (r *IntervalRepository) find(query *gorm.DB) ([]entity.IntervalRecord, error) {
	var models []model.IntervalMetricModel

	err := query.
		Preload("Items").
		Order("date ASC").
		Order("slot ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get interval metrics: %w", err)
	}

	records := make([]entity.IntervalRecord, 0, len(models))
	for i := range models {
		record, err := models[i].ToEntity()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// ReplaceDay atomically replaces every slot of date with records and drops
// the cached series of that date.
func (r *IntervalRepository) ReplaceDay(ctx context.Context, date time.Time, records []entity.IntervalRecord) error {
	day := calendar.FormatDate(date)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&model.IntervalMetricModel{}).Where("date = ?", day).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := tx.Where("interval_id IN ?", ids).Delete(&model.IntervalItemModel{}).Error; err != nil {
				return err
			}
			if err := tx.Where("date = ?", day).Delete(&model.IntervalMetricModel{}).Error; err != nil {
				return err
			}
		}

		for _, record := range records {
			if calendar.FormatDate(record.Date) != day {
				return fmt.Errorf("interval %s belongs to %s, not %s", record.Slot, calendar.FormatDate(record.Date), day)
			}
			if err := tx.Create(model.IntervalMetricFromEntity(record)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace intervals of %s: %w", day, err)
	}

	if r.invalidator != nil {
		if err := r.invalidator.Invalidate(ctx, date); err != nil {
			slog.Warn("Failed to invalidate interval cache", "date", day, "error", err)
		}
	}

	slog.Info("Intervals replaced", "date", day, "count", len(records))
	return nil
}

// Ensure IntervalRepository implements analytics.IntervalSource.
var _ analytics.IntervalSource = (*IntervalRepository)(nil)
