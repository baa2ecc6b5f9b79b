package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/internal/shops"
	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/localdrop-backend/pkg/db/types"
	pkgerrors "github.com/angelmondragon/localdrop-backend/pkg/errors"
)

type shopRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Shop, error)
}

// Service exposes catalog operations for owners and shoppers.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateFoodItemInput) (*FoodItemDTO, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) (*OwnerCatalogDTO, error)
	Update(ctx context.Context, ownerID, itemID uuid.UUID, input UpdateFoodItemInput) (*FoodItemDTO, error)
	SetAvailability(ctx context.Context, ownerID, itemID uuid.UUID, available bool) (*FoodItemDTO, error)
	Delete(ctx context.Context, ownerID, itemID uuid.UUID) error
	ListAvailable(ctx context.Context) ([]FoodItemDTO, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]FoodItemDTO, error)
	SearchByArea(ctx context.Context, area string) ([]FoodItemDTO, error)
}

type service struct {
	repo  *Repository
	shops shopRepository
}

// NewService builds a catalog service.
func NewService(repo *Repository, shopRepo shopRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if shopRepo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	return &service{repo: repo, shops: shopRepo}, nil
}

func (s *service) ownerShop(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	shop, err := s.shops.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner shop")
	}
	return shop, nil
}

// ownedItem loads an item and checks it belongs to the caller's shop.
func (s *service) ownedItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.FoodItem, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Food item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load food item")
	}
	shop, err := s.ownerShop(ctx, ownerID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized")
		}
		return nil, err
	}
	if item.ShopID != shop.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized")
	}
	return item, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateFoodItemInput) (*FoodItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid food category")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	shop, err := s.ownerShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	areas := dbtypes.NewAreaList(input.LocalAreas)
	if len(areas) == 0 {
		areas = dbtypes.NewAreaList(shop.LocalAreas)
	}
	item := &models.FoodItem{
		ID:              uuid.New(),
		Name:            name,
		Description:     input.Description,
		Price:           input.Price,
		Category:        input.Category,
		Image:           input.Image,
		ShopID:          shop.ID,
		LocalAreas:      areas,
		IsAvailable:     true,
		PreparationTime: input.PreparationTime,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create food item")
	}
	dto := FromModel(item)
	return &dto, nil
}

func (s *service) ListForOwner(ctx context.Context, ownerID uuid.UUID) (*OwnerCatalogDTO, error) {
	shop, err := s.ownerShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByShop(ctx, shop.ID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list food items")
	}
	items := make([]FoodItemDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	return &OwnerCatalogDTO{Shop: shops.FromModel(shop), FoodItems: items}, nil
}

func (s *service) Update(ctx context.Context, ownerID, itemID uuid.UUID, input UpdateFoodItemInput) (*FoodItemDTO, error) {
	item, err := s.ownedItem(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		item.Name = strings.TrimSpace(*input.Name)
		updates["name"] = item.Name
	}
	if input.Description != nil && *input.Description != "" {
		item.Description = input.Description
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		item.Price = *input.Price
		updates["price"] = *input.Price
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid food category")
		}
		item.Category = *input.Category
		updates["category"] = *input.Category
	}
	if input.Image != nil && *input.Image != "" {
		item.Image = input.Image
		updates["image"] = *input.Image
	}
	if input.IsAvailable != nil {
		item.IsAvailable = *input.IsAvailable
		updates["is_available"] = *input.IsAvailable
	}
	if input.PreparationTime != nil {
		item.PreparationTime = input.PreparationTime
		updates["preparation_time"] = *input.PreparationTime
	}
	if areas := dbtypes.NewAreaList(input.LocalAreas); len(areas) > 0 {
		item.LocalAreas = areas
		updates["local_areas"] = areas
	}

	if err := s.repo.UpdateColumns(ctx, item.ID, updates); err != nil {
		return nil, mapItemErr(err, "update food item")
	}
	dto := FromModel(item)
	return &dto, nil
}

func (s *service) SetAvailability(ctx context.Context, ownerID, itemID uuid.UUID, available bool) (*FoodItemDTO, error) {
	item, err := s.ownedItem(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateColumns(ctx, item.ID, map[string]any{"is_available": available}); err != nil {
		return nil, mapItemErr(err, "update availability")
	}
	item.IsAvailable = available
	dto := FromModel(item)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, ownerID, itemID uuid.UUID) error {
	item, err := s.ownedItem(ctx, ownerID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return mapItemErr(err, "delete food item")
	}
	return nil
}

func (s *service) ListAvailable(ctx context.Context) ([]FoodItemDTO, error) {
	rows, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list food items")
	}
	return s.withShops(ctx, rows)
}

func (s *service) ListByShop(ctx context.Context, shopID uuid.UUID) ([]FoodItemDTO, error) {
	if _, err := s.shops.FindByID(ctx, shopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	rows, err := s.repo.ListByShop(ctx, shopID, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list food items")
	}
	out := make([]FoodItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) SearchByArea(ctx context.Context, area string) ([]FoodItemDTO, error) {
	area = strings.TrimSpace(area)
	if area == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Area parameter is required")
	}
	rows, err := s.repo.ListByExactArea(ctx, area)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search food items")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "No food items found in this area")
	}
	return s.withShops(ctx, rows)
}

func (s *service) withShops(ctx context.Context, rows []models.FoodItem) ([]FoodItemDTO, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ShopID]; ok {
			continue
		}
		seen[row.ShopID] = struct{}{}
		ids = append(ids, row.ShopID)
	}
	byID, err := s.shops.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shops")
	}
	out := make([]FoodItemDTO, 0, len(rows))
	for i := range rows {
		dto := FromModel(&rows[i])
		if shop, ok := byID[rows[i].ShopID]; ok {
			dto.ShopInfo = summaryFromShop(shop)
		}
		out = append(out, dto)
	}
	return out, nil
}

func mapItemErr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Food item not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
