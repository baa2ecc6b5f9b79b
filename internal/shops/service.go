package shops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/internal/users"
	"github.com/angelmondragon/localdrop-backend/pkg/db"
	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/localdrop-backend/pkg/db/types"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/localdrop-backend/pkg/errors"
	"github.com/angelmondragon/localdrop-backend/pkg/outbox"
	"github.com/angelmondragon/localdrop-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/localdrop-backend/pkg/types"
)

// FirstShopPin seeds shop PIN allocation when no shop exists yet.
const FirstShopPin = 56200

const pinAllocationAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Actor is the authenticated caller as seen by the shop directory.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
	ShopID *uuid.UUID
}

func (a Actor) isAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

func (a Actor) owns(shopID uuid.UUID) bool {
	return a.ShopID != nil && *a.ShopID == shopID
}

// Service exposes shop directory operations.
type Service interface {
	RequestOwnership(ctx context.Context, actor Actor, input OwnershipRequestInput) (*ShopDTO, error)
	ListOwnershipRequests(ctx context.Context) ([]OwnershipRequestDTO, error)
	ApproveOwnership(ctx context.Context, actor Actor, shopID uuid.UUID) (*ShopDTO, error)
	RejectOwnership(ctx context.Context, shopID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ShopDTO, error)
	GetStorefront(ctx context.Context, id uuid.UUID) (*StorefrontDTO, error)
	GetByPin(ctx context.Context, pin int) (*ShopDTO, error)
	ListByLocalArea(ctx context.Context, area string) ([]AreaShopDTO, error)
	UpdateDeliveryCharge(ctx context.Context, actor Actor, shopID uuid.UUID, charges []decimal.Decimal) (*ShopDTO, error)
	ToggleStatus(ctx context.Context, actor Actor, shopID uuid.UUID) (*ToggleResult, error)
	Update(ctx context.Context, shopID uuid.UUID, input UpdateShopInput) (*ShopDTO, error)
	ResetDeliveryCount(ctx context.Context, shopID uuid.UUID) (*ShopDTO, error)
}

type service struct {
	repo   *Repository
	users  *users.Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds a shop directory service.
func NewService(repo *Repository, usersRepo *users.Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		users:  usersRepo,
		tx:     tx,
		outbox: outbox,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) RequestOwnership(ctx context.Context, actor Actor, input OwnershipRequestInput) (*ShopDTO, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	areas := dbtypes.NewAreaList(input.LocalAreas)
	if len(areas) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "At least one local area is required")
	}
	if !input.ShopCategory.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shop category")
	}
	name := strings.TrimSpace(input.ShopName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name is required")
	}

	selfDelivery := true
	if input.SelfDelivery != nil {
		selfDelivery = *input.SelfDelivery
	}
	info := ""
	if input.AdditionalInfo != nil {
		info = strings.TrimSpace(*input.AdditionalInfo)
	}

	var created *models.Shop
	var lastErr error
	for attempt := 0; attempt < pinAllocationAttempts; attempt++ {
		lastErr = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			existing, err := repo.FindByOwner(ctx, actor.UserID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing shop")
			}
			if existing != nil {
				if existing.Status == enums.ShopStatusPending {
					return pkgerrors.New(pkgerrors.CodeConflict, "You already have a pending request")
				}
				return pkgerrors.New(pkgerrors.CodeConflict, "You are already a shop owner")
			}

			pin, err := nextShopPin(ctx, repo)
			if err != nil {
				return err
			}

			shop := &models.Shop{
				ID:               uuid.New(),
				ShopName:         name,
				LocalAreas:       areas,
				PermanentAddress: strings.TrimSpace(input.PermanentAddress),
				ShopCategory:     input.ShopCategory,
				AdditionalInfo:   &info,
				OwnerID:          actor.UserID,
				Status:           enums.ShopStatusPending,
				ContactNumber:    strings.TrimSpace(input.ContactNumber),
				BkashNumber:      input.BkashNumber,
				NagadNumber:      input.NagadNumber,
				ShopPin:          pin,
				TotalSellPrice:   decimal.Zero,
				SellDays:         1,
				IsOpen:           true,
				IsBlock:          false,
				DeliveryCharge:   types.DecimalList{},
				SelfDelivery:     selfDelivery,
			}
			if err := repo.Create(ctx, shop); err != nil {
				return err
			}
			created = shop
			return nil
		})
		if lastErr == nil {
			return FromModel(created), nil
		}
		if !isShopPinCollision(lastErr) {
			break
		}
	}

	if typed := pkgerrors.As(lastErr); typed != nil {
		return nil, typed
	}
	if db.IsUniqueViolation(lastErr, "") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "shop request already exists")
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "create shop request")
}

func nextShopPin(ctx context.Context, repo *Repository) (int, error) {
	max, ok, err := repo.MaxShopPin(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate shop pin")
	}
	if !ok {
		return FirstShopPin, nil
	}
	return max + 1, nil
}

func isShopPinCollision(err error) bool {
	return db.IsUniqueViolation(err, "shops_shop_pin_key") || db.IsUniqueViolation(err, "shops.shop_pin")
}

func (s *service) ListOwnershipRequests(ctx context.Context) ([]OwnershipRequestDTO, error) {
	rows, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop requests")
	}
	ownerIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ownerIDs = append(ownerIDs, row.OwnerID)
	}
	owners, err := s.users.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop owners")
	}

	out := make([]OwnershipRequestDTO, 0, len(rows))
	for i := range rows {
		item := OwnershipRequestDTO{ShopDTO: *FromModel(&rows[i])}
		if owner, ok := owners[rows[i].OwnerID]; ok {
			item.OwnerInfo = &OwnerSummary{ID: owner.ID, FullName: owner.FullName, Email: owner.Email}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *service) ApproveOwnership(ctx context.Context, actor Actor, shopID uuid.UUID) (*ShopDTO, error) {
	var approved *models.Shop
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateColumns(ctx, shopID, map[string]any{"status": enums.ShopStatusApproved}); err != nil {
			return mapShopErr(err, "Shop request not found", "approve shop")
		}
		shop, err := repo.FindByID(ctx, shopID)
		if err != nil {
			return mapShopErr(err, "Shop request not found", "reload shop")
		}
		if err := s.users.WithTx(tx).AssignShop(ctx, shop.OwnerID, shop.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote shop owner")
		}
		approved = shop
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShopApproved,
			AggregateType: enums.AggregateShop,
			AggregateID:   shop.ID,
			Actor:         &outbox.ActorRef{UserID: &actor.UserID, Role: string(actor.Role)},
			Data: payloads.ShopApprovedEvent{
				ShopID:  shop.ID,
				OwnerID: shop.OwnerID,
				ShopPin: shop.ShopPin,
			},
		})
	})
	if err != nil {
		return nil, asServiceError(err, "approve shop")
	}
	return FromModel(approved), nil
}

func (s *service) RejectOwnership(ctx context.Context, shopID uuid.UUID) error {
	if err := s.repo.Delete(ctx, shopID); err != nil {
		return mapShopErr(err, "Shop request not found", "reject shop")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ShopDTO, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapShopErr(err, "Shop not found", "load shop")
	}
	return FromModel(shop), nil
}

func (s *service) GetStorefront(ctx context.Context, id uuid.UUID) (*StorefrontDTO, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapShopErr(err, "Shop not found", "load shop")
	}
	return storefrontFromModel(shop), nil
}

func (s *service) GetByPin(ctx context.Context, pin int) (*ShopDTO, error) {
	shop, err := s.repo.FindByPin(ctx, pin)
	if err != nil {
		return nil, mapShopErr(err, "Shop not found", "load shop by pin")
	}
	return FromModel(shop), nil
}

func (s *service) ListByLocalArea(ctx context.Context, area string) ([]AreaShopDTO, error) {
	area = strings.TrimSpace(area)
	if area == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Local area is required")
	}
	rows, err := s.repo.ListApprovedByArea(ctx, area)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search shops")
	}
	out := make([]AreaShopDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, areaShopFromModel(row))
	}
	return out, nil
}

func (s *service) UpdateDeliveryCharge(ctx context.Context, actor Actor, shopID uuid.UUID, charges []decimal.Decimal) (*ShopDTO, error) {
	if charges == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Delivery charge must be an array")
	}
	for _, charge := range charges {
		if charge.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery charges must not be negative")
		}
	}
	if !actor.isAdmin() && !actor.owns(shopID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Shop not found")
	}
	shop, err := s.repo.FindByID(ctx, shopID)
	if err != nil {
		return nil, mapShopErr(err, "Shop not found", "load shop")
	}
	if len(charges) != len(shop.LocalAreas) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "one delivery charge is required per local area").
			WithDetails(map[string]int{"localAreas": len(shop.LocalAreas), "deliveryCharge": len(charges)})
	}
	if err := s.repo.UpdateColumns(ctx, shopID, map[string]any{"delivery_charge": types.DecimalList(charges)}); err != nil {
		return nil, mapShopErr(err, "Shop not found", "update delivery charge")
	}
	shop.DeliveryCharge = types.DecimalList(charges)
	return FromModel(shop), nil
}

func (s *service) ToggleStatus(ctx context.Context, actor Actor, shopID uuid.UUID) (*ToggleResult, error) {
	if !actor.isAdmin() && !actor.owns(shopID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Shop not found")
	}
	shop, err := s.repo.FindByID(ctx, shopID)
	if err != nil {
		return nil, mapShopErr(err, "Shop not found", "load shop")
	}
	isOpen := !shop.IsOpen
	if shop.IsBlock {
		isOpen = false
	}
	if err := s.repo.UpdateColumns(ctx, shopID, map[string]any{"is_open": isOpen}); err != nil {
		return nil, mapShopErr(err, "Shop not found", "toggle shop")
	}
	state := "closed"
	if isOpen {
		state = "open"
	}
	return &ToggleResult{IsOpen: isOpen, Message: "Shop is now " + state}, nil
}

func (s *service) Update(ctx context.Context, shopID uuid.UUID, input UpdateShopInput) (*ShopDTO, error) {
	updates := map[string]any{}
	if input.ShopName != nil {
		name := strings.TrimSpace(*input.ShopName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name is required")
		}
		updates["shop_name"] = name
	}
	if input.LocalAreas != nil {
		areas := dbtypes.NewAreaList(*input.LocalAreas)
		if len(areas) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "At least one local area is required")
		}
		updates["local_areas"] = areas
	}
	if input.PermanentAddress != nil {
		updates["permanent_address"] = strings.TrimSpace(*input.PermanentAddress)
	}
	if input.ShopCategory != nil {
		if !input.ShopCategory.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shop category")
		}
		updates["shop_category"] = *input.ShopCategory
	}
	if input.AdditionalInfo != nil {
		updates["additional_info"] = strings.TrimSpace(*input.AdditionalInfo)
	}
	if input.ContactNumber != nil && *input.ContactNumber != "" {
		updates["contact_number"] = EnsureLeadingZero(string(*input.ContactNumber))
	}
	if input.BkashNumber != nil && *input.BkashNumber != "" {
		updates["bkash_number"] = EnsureLeadingZero(string(*input.BkashNumber))
	}
	if input.NagadNumber != nil && *input.NagadNumber != "" {
		updates["nagad_number"] = EnsureLeadingZero(string(*input.NagadNumber))
	}
	if input.DeliveryCharge != nil {
		updates["delivery_charge"] = types.DecimalList(*input.DeliveryCharge)
	}
	if input.SelfDelivery != nil {
		updates["self_delivery"] = *input.SelfDelivery
	}
	if input.IsOpen != nil {
		updates["is_open"] = *input.IsOpen
	}
	if input.IsBlock != nil {
		updates["is_block"] = *input.IsBlock
		if *input.IsBlock {
			updates["is_open"] = false
		}
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no shop fields to update")
	}

	var shop *models.Shop
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, shopID)
		if err != nil {
			return mapShopErr(err, "Shop not found", "load shop")
		}
		if err := checkUpdate(current, input, updates); err != nil {
			return err
		}
		if err := repo.UpdateColumns(ctx, shopID, updates); err != nil {
			return mapShopErr(err, "Shop not found", "update shop")
		}
		loaded, err := repo.FindByID(ctx, shopID)
		if err != nil {
			return mapShopErr(err, "Shop not found", "reload shop")
		}
		shop = loaded
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "update shop")
	}
	return FromModel(shop), nil
}

// checkUpdate validates an admin edit against the stored shop: a blocked shop
// stays closed, and configured charges stay one per local area.
func checkUpdate(current *models.Shop, input UpdateShopInput, updates map[string]any) error {
	blocked := current.IsBlock
	if input.IsBlock != nil {
		blocked = *input.IsBlock
	}
	if blocked && input.IsOpen != nil && *input.IsOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "a blocked shop cannot be opened")
	}

	if input.LocalAreas == nil && input.DeliveryCharge == nil {
		return nil
	}
	areas := len(current.LocalAreas)
	if list, ok := updates["local_areas"].(dbtypes.AreaList); ok {
		areas = len(list)
	}
	charges := len(current.DeliveryCharge)
	if input.DeliveryCharge != nil {
		charges = len(*input.DeliveryCharge)
	}
	if charges > 0 && charges != areas {
		return pkgerrors.New(pkgerrors.CodeValidation, "one delivery charge is required per local area").
			WithDetails(map[string]int{"localAreas": areas, "deliveryCharge": charges})
	}
	return nil
}

func (s *service) ResetDeliveryCount(ctx context.Context, shopID uuid.UUID) (*ShopDTO, error) {
	now := s.now()
	var shop *models.Shop
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateColumns(ctx, shopID, map[string]any{
			"delivery_count":  0,
			"last_reset_date": now,
		}); err != nil {
			return mapShopErr(err, "Shop not found", "reset delivery count")
		}
		loaded, err := repo.FindByID(ctx, shopID)
		if err != nil {
			return mapShopErr(err, "Shop not found", "reload shop")
		}
		shop = loaded
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "reset delivery count")
	}
	return FromModel(shop), nil
}

func mapShopErr(err error, notFound, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func asServiceError(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
