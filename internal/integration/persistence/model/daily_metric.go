// Package model defines database models for persistence layer.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/menuinzicht/backend/internal/domain/calendar"
	"github.com/menuinzicht/backend/internal/domain/entity"
)

// DailyMetricModel represents the daily_metrics table in the database.
// Date holds the civil date as YYYY-MM-DD.
type DailyMetricModel struct {
	Date             string          `gorm:"type:date;primaryKey"`
	Revenue          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OrderCount       int             `gorm:"not null;default:0"`
	AvgItemsPerOrder float64         `gorm:"not null;default:0"`
	AvgOrderValue    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for the DailyMetricModel.
func (DailyMetricModel) TableName() string {
	return "daily_metrics"
}

// ToEntity converts a DailyMetricModel to a domain DailyMetric entity.
func (m *DailyMetricModel) ToEntity() (entity.DailyMetric, error) {
	date, err := calendar.ParseLocalDate(m.Date)
	if err != nil {
		return entity.DailyMetric{}, fmt.Errorf("invalid stored date %q: %w", m.Date, err)
	}

	return entity.DailyMetric{
		Date:             date,
		Revenue:          m.Revenue,
		OrderCount:       m.OrderCount,
		AvgItemsPerOrder: m.AvgItemsPerOrder,
		AvgOrderValue:    m.AvgOrderValue,
	}, nil
}

// DailyMetricFromEntity creates a DailyMetricModel from a domain DailyMetric entity.
func DailyMetricFromEntity(metric entity.DailyMetric) *DailyMetricModel {
	return &DailyMetricModel{
		Date:             calendar.FormatDate(metric.Date),
		Revenue:          metric.Revenue,
		OrderCount:       metric.OrderCount,
		AvgItemsPerOrder: metric.AvgItemsPerOrder,
		AvgOrderValue:    metric.AvgOrderValue,
	}
}

// All returns every model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&DailyMetricModel{},
		&IntervalMetricModel{},
		&IntervalItemModel{},
		&MenuItemModel{},
		&OutboundEmailModel{},
	}
}
