package deliveries

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/internal/shops"
	"github.com/angelmondragon/localdrop-backend/internal/users"
	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/localdrop-backend/pkg/errors"
	"github.com/angelmondragon/localdrop-backend/pkg/outbox"
	"github.com/angelmondragon/localdrop-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/localdrop-backend/pkg/pagination"
	"github.com/angelmondragon/localdrop-backend/pkg/types"
)

const guestKeyLength = 21

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type lifecycleMetrics interface {
	IncTransition(status string)
	IncPinFailure()
	AddSold(amount float64)
}

// Scope is who is acting on a delivery and which shop they act for. Owners
// always carry their shop; staff may narrow to a shop they name.
type Scope struct {
	ActorID uuid.UUID
	Role    enums.UserRole
	ShopID  *uuid.UUID
}

// OwnerScope acts for the shop the owner holds.
func OwnerScope(ownerID uuid.UUID, shopID *uuid.UUID) Scope {
	return Scope{ActorID: ownerID, Role: enums.UserRoleShopOwner, ShopID: shopID}
}

// StaffScope acts as an admin or courier, optionally narrowed to shopID.
func StaffScope(actorID uuid.UUID, role enums.UserRole, shopID *uuid.UUID) Scope {
	return Scope{ActorID: actorID, Role: role, ShopID: shopID}
}

func (s Scope) staff() bool {
	return s.Role.IsStaff()
}

func (s Scope) check() error {
	if s.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !s.staff() && s.ShopID == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Shop not found")
	}
	return nil
}

func (s Scope) actorRef() *outbox.ActorRef {
	ref := &outbox.ActorRef{Role: string(s.Role), ShopID: s.ShopID}
	if s.ActorID != uuid.Nil {
		id := s.ActorID
		ref.UserID = &id
	}
	return ref
}

// Customer identifies who is placing or listing orders.
type Customer struct {
	UserID   *uuid.UUID
	GuestKey string
}

// Service exposes order intake and the delivery lifecycle.
type Service interface {
	Create(ctx context.Context, customer Customer, input CreateDeliveryInput) (*DeliveryDTO, error)
	Approve(ctx context.Context, scope Scope, id uuid.UUID) (*DeliveryDTO, error)
	Reject(ctx context.Context, scope Scope, id uuid.UUID) error
	Verify(ctx context.Context, scope Scope, id uuid.UUID, pin string) (*DeliveryDTO, error)
	ListPendingForShop(ctx context.Context, shopID uuid.UUID) ([]DeliveryDTO, error)
	ListActiveForShop(ctx context.Context, shopID uuid.UUID) ([]DeliveryDTO, error)
	ListForCustomer(ctx context.Context, customer Customer) ([]DeliveryDTO, error)
	ListQueue(ctx context.Context, filter QueueFilter) (pagination.Page[DeliveryDTO], error)
	GetByPin(ctx context.Context, pin string) (*PinLookupDTO, error)
	ResetShopStats(ctx context.Context, scope Scope, shopID uuid.UUID) (*shops.ShopDTO, error)
}

type service struct {
	repo     *Repository
	shops    *shops.Repository
	users    *users.Repository
	tx       txRunner
	outbox   outboxPublisher
	metrics  lifecycleMetrics
	guestKey func() string
	pin      func() (int, error)
	now      func() time.Time
}

// NewService builds the delivery service. metrics may be nil.
func NewService(repo *Repository, shopRepo *shops.Repository, usersRepo *users.Repository, tx txRunner, outbox outboxPublisher, metrics lifecycleMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if shopRepo == nil {
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
	guestKey, err := nanoid.Standard(guestKeyLength)
	if err != nil {
		return nil, fmt.Errorf("guest key generator: %w", err)
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &service{
		repo:     repo,
		shops:    shopRepo,
		users:    usersRepo,
		tx:       tx,
		outbox:   outbox,
		metrics:  metrics,
		guestKey: guestKey,
		pin:      GeneratePin,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, customer Customer, input CreateDeliveryInput) (*DeliveryDTO, error) {
	if err := validateOrder(input); err != nil {
		return nil, err
	}

	delivery := &models.Delivery{
		ID:     uuid.New(),
		Status: enums.DeliveryStatusPending,
		ShopID: input.Shop,
		Items:  types.LineItems(input.Items),
		Details: models.DeliveryDetails{
			UniversityOrVillage: strings.TrimSpace(input.DeliveryDetails.UniversityOrVillage),
			HallOrMoholla:       strings.TrimSpace(input.DeliveryDetails.HallOrMoholla),
			RoomOrIdentity:      strings.TrimSpace(input.DeliveryDetails.RoomOrIdentity),
			ContactNumber:       int64(input.DeliveryDetails.ContactNumber),
			DeliveryDate:        input.DeliveryDetails.DeliveryDate.UTC(),
			DeliveryTime:        strings.TrimSpace(input.DeliveryDetails.DeliveryTime),
		},
		Payment: models.DeliveryPayment{
			Method:        input.Payment.Method,
			Amount:        input.Payment.Amount,
			PaymentNumber: int64(input.Payment.PaymentNumber),
			TransactionID: strings.TrimSpace(input.Payment.TransactionID),
		},
	}
	if customer.UserID != nil {
		id := *customer.UserID
		delivery.UserID = &id
	} else {
		key := strings.TrimSpace(customer.GuestKey)
		if key == "" && input.GuestKey != nil {
			key = strings.TrimSpace(*input.GuestKey)
		}
		if key == "" {
			key = s.guestKey()
		}
		delivery.GuestKey = &key
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shopRepo := s.shops.WithTx(tx)
		shop, err := shopRepo.FindByID(ctx, input.Shop)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Shop not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
		}
		delivery.SelfDelivery = shop.SelfDelivery
		if err := s.repo.WithTx(tx).Create(ctx, delivery); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery")
		}
		if err := shopRepo.IncrementDeliveryCount(ctx, input.Shop); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment delivery count")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryCreated,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   delivery.ID,
			Actor:         &outbox.ActorRef{UserID: delivery.UserID, ShopID: &delivery.ShopID},
			Data: payloads.DeliveryCreatedEvent{
				DeliveryID: delivery.ID,
				ShopID:     delivery.ShopID,
				UserID:     delivery.UserID,
				GuestKey:   delivery.GuestKey,
				Amount:     delivery.Payment.Amount,
				ItemCount:  len(delivery.Items),
			},
		})
	})
	if err != nil {
		return nil, asServiceError(err, "create delivery")
	}
	s.metrics.IncTransition(string(enums.DeliveryStatusPending))
	dto := FromModel(delivery)
	return &dto, nil
}

func (s *service) Approve(ctx context.Context, scope Scope, id uuid.UUID) (*DeliveryDTO, error) {
	if err := scope.check(); err != nil {
		return nil, err
	}
	pin, err := s.pin()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate delivery pin")
	}

	var approved *models.Delivery
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		draft := &models.Delivery{DeliveryPin: &pin}
		updates, err := ApplyStatus(draft, enums.DeliveryStatusApproved, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply status")
		}
		transition := repo.Transition
		if scope.staff() {
			updates["delivery_man_id"] = scope.ActorID
			transition = repo.TransitionPlatform
		}
		if err := transition(ctx, id, enums.DeliveryStatusPending, scope.ShopID, updates); err != nil {
			return mapDeliveryErr(err, "delivery request not found", "approve delivery")
		}
		approved, err = repo.FindByID(ctx, id, nil)
		if err != nil {
			return mapDeliveryErr(err, "delivery request not found", "reload delivery")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryApproved,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   approved.ID,
			Actor:         scope.actorRef(),
			Data: payloads.DeliveryApprovedEvent{
				DeliveryID:    approved.ID,
				ShopID:        approved.ShopID,
				DeliveryManID: approved.DeliveryManID,
			},
		})
	})
	if err != nil {
		return nil, asServiceError(err, "approve delivery")
	}
	s.metrics.IncTransition(string(enums.DeliveryStatusApproved))
	dto := FromModel(approved)
	return &dto, nil
}

func (s *service) Reject(ctx context.Context, scope Scope, id uuid.UUID) error {
	if err := scope.check(); err != nil {
		return err
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		removed, err := s.repo.WithTx(tx).DeletePending(ctx, id, scope.ShopID)
		if err != nil {
			return mapDeliveryErr(err, "delivery request not found", "reject delivery")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryRejected,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   removed.ID,
			Actor:         scope.actorRef(),
			Data: payloads.DeliveryRejectedEvent{
				DeliveryID: removed.ID,
				ShopID:     removed.ShopID,
			},
		})
	})
	if err != nil {
		return asServiceError(err, "reject delivery")
	}
	s.metrics.IncTransition(string(enums.DeliveryStatusRejected))
	return nil
}

func (s *service) Verify(ctx context.Context, scope Scope, id uuid.UUID, pin string) (*DeliveryDTO, error) {
	if err := scope.check(); err != nil {
		return nil, err
	}
	// Staff name the shop the handoff is for.
	if scope.ShopID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shopId is required").WithDetails(map[string]any{"field": "shopId"})
	}
	if strings.TrimSpace(pin) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "PIN is required")
	}

	var verified *models.Delivery
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		shopRepo := s.shops.WithTx(tx)

		delivery, err := repo.FindByID(ctx, id, scope.ShopID)
		if err != nil {
			return mapDeliveryErr(err, "delivery not found", "load delivery")
		}
		if _, err := shopRepo.FindByID(ctx, delivery.ShopID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found!")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
		}
		if delivery.Status == enums.DeliveryStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery already verified")
		}
		if delivery.Status != enums.DeliveryStatusApproved || !PinMatches(delivery.DeliveryPin, pin) {
			return pkgerrors.New(pkgerrors.CodeInvalidPIN, "Invalid PIN")
		}

		now := s.now()
		updates, err := ApplyStatus(delivery, enums.DeliveryStatusDelivered, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply status")
		}
		if err := repo.Transition(ctx, delivery.ID, enums.DeliveryStatusApproved, nil, updates); err != nil {
			return mapDeliveryErr(err, "delivery not found", "mark delivered")
		}
		if err := shopRepo.AddSellPrice(ctx, delivery.ShopID, delivery.Payment.Amount); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found!")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accrue shop sales")
		}

		var verifiedBy *uuid.UUID
		if scope.staff() {
			if err := s.users.WithTx(tx).IncrementDeliveredCoin(ctx, scope.ActorID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit delivered coin")
			}
			actor := scope.ActorID
			verifiedBy = &actor
		}

		verified = delivery
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryDelivered,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   delivery.ID,
			Actor:         scope.actorRef(),
			Data: payloads.DeliveryDeliveredEvent{
				DeliveryID: delivery.ID,
				ShopID:     delivery.ShopID,
				Amount:     delivery.Payment.Amount,
				Status:     delivery.Status,
				VerifiedAt: now,
				VerifiedBy: verifiedBy,
			},
		})
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeInvalidPIN) {
			s.metrics.IncPinFailure()
		}
		return nil, asServiceError(err, "verify delivery")
	}

	s.metrics.IncTransition(string(enums.DeliveryStatusDelivered))
	s.metrics.AddSold(verified.Payment.Amount.InexactFloat64())
	dto := FromModel(verified)
	return &dto, nil
}

func (s *service) ListPendingForShop(ctx context.Context, shopID uuid.UUID) ([]DeliveryDTO, error) {
	rows, err := s.repo.ListByShop(ctx, shopID, enums.DeliveryStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending deliveries")
	}
	return fromRows(rows), nil
}

func (s *service) ListActiveForShop(ctx context.Context, shopID uuid.UUID) ([]DeliveryDTO, error) {
	rows, err := s.repo.ListByShop(ctx, shopID, enums.DeliveryStatusApproved, enums.DeliveryStatusDelivered)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop deliveries")
	}
	return fromRows(rows), nil
}

func (s *service) ListForCustomer(ctx context.Context, customer Customer) ([]DeliveryDTO, error) {
	key := strings.TrimSpace(customer.GuestKey)
	if customer.UserID == nil && key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Either user authentication or guest key is required")
	}
	rows, err := s.repo.ListForCustomer(ctx, customer.UserID, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer deliveries")
	}
	return fromRows(rows), nil
}

func (s *service) ListQueue(ctx context.Context, filter QueueFilter) (pagination.Page[DeliveryDTO], error) {
	filter.Page = filter.Page.Normalize()
	for _, status := range filter.Statuses {
		if !status.IsValid() {
			return pagination.Page[DeliveryDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery status")
		}
	}
	rows, err := s.repo.ListQueue(ctx, filter)
	if err != nil {
		return pagination.Page[DeliveryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery queue")
	}
	return pagination.BuildPage(fromRows(rows), filter.Page), nil
}

func (s *service) GetByPin(ctx context.Context, pin string) (*PinLookupDTO, error) {
	value, err := strconv.Atoi(strings.TrimSpace(pin))
	if err != nil || value < MinPin || value > MaxPin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "PIN must be a 4-digit number")
	}
	row, err := s.repo.FindByPin(ctx, value)
	if err != nil {
		return nil, mapDeliveryErr(err, "Delivery not found", "find delivery by pin")
	}
	dto := fromRow(*row)
	out := &PinLookupDTO{Delivery: dto, User: dto.UserInfo}
	return out, nil
}

func (s *service) ResetShopStats(ctx context.Context, scope Scope, shopID uuid.UUID) (*shops.ShopDTO, error) {
	if scope.Role != enums.UserRoleAdmin && (scope.ShopID == nil || *scope.ShopID != shopID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Shop not found")
	}
	if err := s.shops.ResetStats(ctx, shopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset shop stats")
	}
	shop, err := s.shops.FindByID(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload shop")
	}
	return shops.FromModel(shop), nil
}

func validateOrder(input CreateDeliveryInput) error {
	if input.Shop == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop is required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "item name is required").
				WithDetails(map[string]any{"index": i})
		}
		if strings.TrimSpace(item.Category) == "" || strings.TrimSpace(item.Image) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "item category and image are required").
				WithDetails(map[string]any{"index": i})
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1").
				WithDetails(map[string]any{"index": i})
		}
		if item.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "item price must not be negative").
				WithDetails(map[string]any{"index": i})
		}
	}
	details := input.DeliveryDetails
	if strings.TrimSpace(details.UniversityOrVillage) == "" ||
		strings.TrimSpace(details.HallOrMoholla) == "" ||
		strings.TrimSpace(details.RoomOrIdentity) == "" ||
		strings.TrimSpace(details.DeliveryTime) == "" ||
		details.ContactNumber == 0 ||
		details.DeliveryDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery details are incomplete")
	}
	payment := input.Payment
	if !payment.Method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if payment.Amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment amount must not be negative")
	}
	if payment.PaymentNumber == 0 || strings.TrimSpace(payment.TransactionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment number and transaction id are required")
	}
	return nil
}

func mapDeliveryErr(err error, notFound, action string) error {
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

type noopMetrics struct{}

func (noopMetrics) IncTransition(string) {}
func (noopMetrics) IncPinFailure()       {}
func (noopMetrics) AddSold(float64)      {}
