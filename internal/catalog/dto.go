package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/localdrop-backend/internal/shops"
	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// ShopSummary is the shop projection embedded in public item listings.
type ShopSummary struct {
	ID            uuid.UUID `json:"id"`
	ShopName      string    `json:"shopName"`
	ShopPin       int       `json:"shopPin"`
	IsOpen        bool      `json:"isOpen"`
	LocalAreas    []string  `json:"localAreas"`
	ContactNumber string    `json:"contactNumber"`
}

// FoodItemDTO is the transport shape of a catalog item.
type FoodItemDTO struct {
	ID              uuid.UUID          `json:"id"`
	Name            string             `json:"name"`
	Description     *string            `json:"description,omitempty"`
	Price           decimal.Decimal    `json:"price"`
	Category        enums.FoodCategory `json:"category"`
	Image           *string            `json:"image,omitempty"`
	Shop            uuid.UUID          `json:"shop"`
	ShopInfo        *ShopSummary       `json:"shopInfo,omitempty"`
	LocalAreas      []string           `json:"localAreas"`
	IsAvailable     bool               `json:"isAvailable"`
	PreparationTime *int               `json:"preparationTime,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// OwnerCatalogDTO is the owner dashboard view of their shop's menu.
type OwnerCatalogDTO struct {
	Shop      *shops.ShopDTO `json:"shop"`
	FoodItems []FoodItemDTO  `json:"foodItems"`
}

// CreateFoodItemInput is the payload for a new catalog item. Image is a URL
// produced by the upload service.
type CreateFoodItemInput struct {
	Name            string             `json:"name" validate:"required"`
	Description     *string            `json:"description"`
	Price           decimal.Decimal    `json:"price"`
	Category        enums.FoodCategory `json:"category" validate:"required"`
	Image           *string            `json:"image"`
	LocalAreas      []string           `json:"localAreas"`
	PreparationTime *int               `json:"preparationTime" validate:"omitempty,min=0"`
}

// UpdateFoodItemInput carries the fields an owner may change.
type UpdateFoodItemInput struct {
	Name            *string             `json:"name"`
	Description     *string             `json:"description"`
	Price           *decimal.Decimal    `json:"price"`
	Category        *enums.FoodCategory `json:"category"`
	Image           *string             `json:"image"`
	IsAvailable     *bool               `json:"isAvailable"`
	PreparationTime *int                `json:"preparationTime" validate:"omitempty,min=0"`
	LocalAreas      []string            `json:"localAreas"`
}

func FromModel(item *models.FoodItem) FoodItemDTO {
	areas := make([]string, len(item.LocalAreas))
	copy(areas, item.LocalAreas)
	return FoodItemDTO{
		ID:              item.ID,
		Name:            item.Name,
		Description:     item.Description,
		Price:           item.Price,
		Category:        item.Category,
		Image:           item.Image,
		Shop:            item.ShopID,
		LocalAreas:      areas,
		IsAvailable:     item.IsAvailable,
		PreparationTime: item.PreparationTime,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

func summaryFromShop(s models.Shop) *ShopSummary {
	areas := make([]string, len(s.LocalAreas))
	copy(areas, s.LocalAreas)
	return &ShopSummary{
		ID:            s.ID,
		ShopName:      s.ShopName,
		ShopPin:       s.ShopPin,
		IsOpen:        s.IsOpen,
		LocalAreas:    areas,
		ContactNumber: s.ContactNumber,
	}
}
