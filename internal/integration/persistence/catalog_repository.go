package persistence

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/menuinzicht/backend/internal/application/usecase/analytics"
	"github.com/menuinzicht/backend/internal/domain/entity"
	"github.com/menuinzicht/backend/internal/integration/persistence/model"
)

// CatalogRepository serves the fixed reference menu.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository instance.
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{
		db: db,
	}
}

// ListCatalog returns the entries of category ordered by position.
func (r *CatalogRepository) ListCatalog(ctx context.Context, category entity.MenuCategory) ([]entity.MenuCatalogEntry, error) {
	var models []model.MenuItemModel

	err := r.db.WithContext(ctx).
		Where("category = ?", string(category)).
		Order("position ASC").
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s catalog: %w", category, err)
	}

	entries := make([]entity.MenuCatalogEntry, len(models))
	for i := range models {
		entries[i] = models[i].ToEntity()
	}
	return entries, nil
}

// Seed inserts the entries, updating price and position of existing names.
func (r *CatalogRepository) Seed(ctx context.Context, entries []entity.MenuCatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	models := make([]*model.MenuItemModel, len(entries))
	for i, e := range entries {
		models[i] = model.MenuItemFromEntity(e)
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "category"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "position", "updated_at"}),
		}).
		Create(models).Error
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	return nil
}

// DefaultCatalog returns the reference menu the item breakdown distributes over.
func DefaultCatalog() []entity.MenuCatalogEntry {
	dishes := []struct {
		name  string
		price string
	}{
		{"Margherita Pizza", "12.50"},
		{"Pasta Carbonara", "14.00"},
		{"Caesar Salad", "9.50"},
		{"Grilled Salmon", "18.00"},
		{"Beef Burger", "13.50"},
		{"Chicken Tikka", "15.00"},
		{"Vegetable Stir Fry", "11.00"},
		{"Fish & Chips", "14.50"},
	}
	drinks := []struct {
		name  string
		price string
	}{
		{"Coca Cola", "3.00"},
		{"Orange Juice", "4.00"},
		{"Coffee", "3.50"},
		{"Beer", "5.00"},
		{"Wine Glass", "7.00"},
		{"Water", "2.00"},
	}

	entries := make([]entity.MenuCatalogEntry, 0, len(dishes)+len(drinks))
	for i, d := range dishes {
		entries = append(entries, entity.MenuCatalogEntry{
			Name:     d.name,
			Category: entity.MenuCategoryDish,
			Price:    decimal.RequireFromString(d.price),
			Position: i,
		})
	}
	for i, d := range drinks {
		entries = append(entries, entity.MenuCatalogEntry{
			Name:     d.name,
			Category: entity.MenuCategoryDrink,
			Price:    decimal.RequireFromString(d.price),
			Position: i,
		})
	}
	return entries
}

// Ensure CatalogRepository implements analytics.CatalogSource.
var _ analytics.CatalogSource = (*CatalogRepository)(nil)
