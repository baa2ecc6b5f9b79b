package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/localdrop-backend/pkg/db/types"
)

// Repository handles food item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to catalog operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new food item.
func (r *Repository) Create(ctx context.Context, item *models.FoodItem) error {
	if item == nil {
		return fmt.Errorf("food item is required")
	}
	item.AreaIndex = item.LocalAreas.Index()
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID loads a food item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FoodItem, error) {
	var item models.FoodItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByShop returns a shop's items, optionally only the available ones.
func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID, availableOnly bool) ([]models.FoodItem, error) {
	q := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if availableOnly {
		q = q.Where("is_available = ?", true)
	}
	var rows []models.FoodItem
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAvailable returns every available item across shops.
func (r *Repository) ListAvailable(ctx context.Context) ([]models.FoodItem, error) {
	var rows []models.FoodItem
	if err := r.db.WithContext(ctx).
		Where("is_available = ?", true).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByExactArea returns items serving area, compared case-insensitively.
func (r *Repository) ListByExactArea(ctx context.Context, area string) ([]models.FoodItem, error) {
	var rows []models.FoodItem
	if err := r.db.WithContext(ctx).
		Where(`area_index LIKE ? ESCAPE '\'`, dbtypes.ExactAreaPattern(area)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateColumns applies updates to one item.
func (r *Repository) UpdateColumns(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if areas, ok := updates["local_areas"].(dbtypes.AreaList); ok {
		updates["area_index"] = areas.Index()
	}
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.FoodItem{}).Where("id = ?", id).UpdateColumns(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes one item.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FoodItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
