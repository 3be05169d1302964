package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/menuinzicht/backend/internal/domain/entity"
)

// MenuItemModel represents the menu_items table in the database.
type MenuItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name      string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_menu_items_name_category"`
	Category  string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_menu_items_name_category;index"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Position  int             `gorm:"not null;default:0"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for the MenuItemModel.
func (MenuItemModel) TableName() string {
	return "menu_items"
}

// ToEntity converts a MenuItemModel to a domain MenuCatalogEntry.
func (m *MenuItemModel) ToEntity() entity.MenuCatalogEntry {
	return entity.MenuCatalogEntry{
		ID:       m.ID,
		Name:     m.Name,
		Category: entity.MenuCategory(m.Category),
		Price:    m.Price,
		Position: m.Position,
	}
}

// MenuItemFromEntity creates a MenuItemModel from a domain MenuCatalogEntry.
func MenuItemFromEntity(e entity.MenuCatalogEntry) *MenuItemModel {
	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &MenuItemModel{
		ID:       id,
		Name:     e.Name,
		Category: string(e.Category),
		Price:    e.Price,
		Position: e.Position,
	}
}
