package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/menuinzicht/backend/internal/domain/calendar"
	"github.com/menuinzicht/backend/internal/domain/entity"
)

// IntervalMetricModel represents the interval_metrics table in the database.
type IntervalMetricModel struct {
	ID        uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Date      string              `gorm:"type:date;not null;uniqueIndex:idx_interval_metrics_date_slot"`
	Slot      string              `gorm:"type:varchar(5);not null;uniqueIndex:idx_interval_metrics_date_slot"`
	Orders    int                 `gorm:"not null;default:0"`
	Revenue   decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Items     []IntervalItemModel `gorm:"foreignKey:IntervalID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time           `gorm:"not null"`
}

// TableName returns the table name for the IntervalMetricModel.
func (IntervalMetricModel) TableName() string {
	return "interval_metrics"
}

// IntervalItemModel represents the interval_items table in the database.
type IntervalItemModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	IntervalID uuid.UUID       `gorm:"type:uuid;not null;index"`
	MenuItemID uuid.UUID       `gorm:"type:uuid"`
	Name       string          `gorm:"type:varchar(100);not null"`
	Category   string          `gorm:"type:varchar(10);not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity   int             `gorm:"not null"`
}

// TableName returns the table name for the IntervalItemModel.
func (IntervalItemModel) TableName() string {
	return "interval_items"
}

// ToEntity converts an IntervalMetricModel and its items to a domain IntervalRecord.
func (m *IntervalMetricModel) ToEntity() (entity.IntervalRecord, error) {
	date, err := calendar.ParseLocalDate(m.Date)
	if err != nil {
		return entity.IntervalRecord{}, fmt.Errorf("invalid stored date %q: %w", m.Date, err)
	}

	items := make([]entity.ItemSale, len(m.Items))
	for i, item := range m.Items {
		items[i] = entity.ItemSale{
			ItemID:   item.MenuItemID,
			Name:     item.Name,
			Category: entity.MenuCategory(item.Category),
			Price:    item.Price,
			Quantity: item.Quantity,
		}
	}

	return entity.IntervalRecord{
		ID:      m.ID,
		Date:    date,
		Slot:    m.Slot,
		Orders:  m.Orders,
		Revenue: m.Revenue,
		Items:   items,
	}, nil
}

// IntervalMetricFromEntity creates an IntervalMetricModel from a domain IntervalRecord.
// A zero ID is replaced with a new one.
func IntervalMetricFromEntity(record entity.IntervalRecord) *IntervalMetricModel {
	id := record.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	items := make([]IntervalItemModel, len(record.Items))
	for i, sale := range record.Items {
		items[i] = IntervalItemModel{
			ID:         uuid.New(),
			IntervalID: id,
			MenuItemID: sale.ItemID,
			Name:       sale.Name,
			Category:   string(sale.Category),
			Price:      sale.Price,
			Quantity:   sale.Quantity,
		}
	}

	return &IntervalMetricModel{
		ID:      id,
		Date:    calendar.FormatDate(record.Date),
		Slot:    record.Slot,
		Orders:  record.Orders,
		Revenue: record.Revenue,
		Items:   items,
	}
}
