package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/angelmondragon/localdrop-backend/pkg/db/types"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// FoodItem is a catalog entry offered by a shop.
type FoodItem struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string             `gorm:"column:name;not null"`
	Description     *string            `gorm:"column:description"`
	Price           decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	Category        enums.FoodCategory `gorm:"column:category;not null"`
	Image           *string            `gorm:"column:image"`
	ShopID          uuid.UUID          `gorm:"column:shop_id;type:uuid;not null"`
	LocalAreas      dbtypes.AreaList   `gorm:"column:local_areas;type:text[];not null"`
	AreaIndex       string             `gorm:"column:area_index;not null"`
	IsAvailable     bool               `gorm:"column:is_available;not null"`
	PreparationTime *int               `gorm:"column:preparation_time"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
