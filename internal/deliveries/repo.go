package deliveries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/localdrop-backend/pkg/db/types"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	"github.com/angelmondragon/localdrop-backend/pkg/pagination"
)

const joinedColumns = "deliveries.*, shops.shop_name AS shop_name, users.full_name AS user_name, users.phone AS user_phone, users.email AS user_email"

// deliveryRow is a delivery joined with its shop name and customer contact.
type deliveryRow struct {
	models.Delivery
	ShopName  *string `gorm:"column:shop_name"`
	UserName  *string `gorm:"column:user_name"`
	UserPhone *string `gorm:"column:user_phone"`
	UserEmail *string `gorm:"column:user_email"`
}

// QueueFilter narrows the staff and courier delivery queues.
type QueueFilter struct {
	Statuses      []enums.DeliveryStatus
	Search        string
	ShopID        *uuid.UUID
	DeliveryManID *uuid.UUID
	// PlatformOnly keeps orders from shops that hand delivery to couriers.
	PlatformOnly bool
	Sort         enums.DeliverySort
	Page         pagination.Params
}

// Repository handles delivery persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to delivery operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create persists a new delivery row.
func (r *Repository) Create(ctx context.Context, delivery *models.Delivery) error {
	if delivery == nil {
		return fmt.Errorf("delivery is required")
	}
	return r.db.WithContext(ctx).Create(delivery).Error
}

// FindByID loads a delivery, optionally constrained to one shop.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID, shopID *uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	q := r.db.WithContext(ctx).Where("id = ?", id)
	if shopID != nil {
		q = q.Where("shop_id = ?", *shopID)
	}
	if err := q.First(&delivery).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

// Transition applies updates only while the delivery is still in status from.
// A row that moved on, or belongs to another shop, reports gorm.ErrRecordNotFound.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, from enums.DeliveryStatus, shopID *uuid.UUID, updates map[string]any) error {
	return r.transition(r.match(ctx, id, from, shopID), updates)
}

// TransitionPlatform is Transition restricted to orders the shop does not
// deliver itself.
func (r *Repository) TransitionPlatform(ctx context.Context, id uuid.UUID, from enums.DeliveryStatus, shopID *uuid.UUID, updates map[string]any) error {
	return r.transition(r.match(ctx, id, from, shopID).Where("self_delivery = ?", false), updates)
}

func (r *Repository) match(ctx context.Context, id uuid.UUID, from enums.DeliveryStatus, shopID *uuid.UUID) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ? AND status = ?", id, from)
	if shopID != nil {
		q = q.Where("shop_id = ?", *shopID)
	}
	return q
}

func (r *Repository) transition(q *gorm.DB, updates map[string]any) error {
	res := q.UpdateColumns(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePending removes a delivery that has not been approved yet.
func (r *Repository) DeletePending(ctx context.Context, id uuid.UUID, shopID *uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	q := r.db.WithContext(ctx).Where("id = ? AND status = ?", id, enums.DeliveryStatusPending)
	if shopID != nil {
		q = q.Where("shop_id = ?", *shopID)
	}
	if err := q.First(&delivery).Error; err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, enums.DeliveryStatusPending).
		Delete(&models.Delivery{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &delivery, nil
}

// ListByShop returns a shop's deliveries in the given statuses, newest first.
func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID, statuses ...enums.DeliveryStatus) ([]deliveryRow, error) {
	var rows []deliveryRow
	q := r.joined(ctx).Where("deliveries.shop_id = ?", shopID)
	if len(statuses) > 0 {
		q = q.Where("deliveries.status IN ?", statuses)
	}
	if err := q.Order("deliveries.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListForCustomer returns the orders placed by a user or under a guest key.
func (r *Repository) ListForCustomer(ctx context.Context, userID *uuid.UUID, guestKey string) ([]deliveryRow, error) {
	var rows []deliveryRow
	q := r.joined(ctx)
	switch {
	case userID != nil:
		q = q.Where("deliveries.user_id = ?", *userID)
	case guestKey != "":
		q = q.Where("deliveries.guest_key = ?", guestKey)
	default:
		return nil, fmt.Errorf("user id or guest key required")
	}
	if err := q.Order("deliveries.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListQueue returns one page of deliveries matching filter. It fetches one row
// beyond the limit so the caller can tell whether another page exists.
func (r *Repository) ListQueue(ctx context.Context, filter QueueFilter) ([]deliveryRow, error) {
	page := filter.Page.Normalize()
	q := r.joined(ctx)
	if len(filter.Statuses) > 0 {
		q = q.Where("deliveries.status IN ?", filter.Statuses)
	}
	if filter.ShopID != nil {
		q = q.Where("deliveries.shop_id = ?", *filter.ShopID)
	}
	if filter.DeliveryManID != nil {
		q = q.Where("deliveries.delivery_man_id = ?", *filter.DeliveryManID)
	}
	if filter.PlatformOnly {
		q = q.Where("deliveries.self_delivery = ?", false)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := dbtypes.ContainsPattern(term)
		clauses := []string{
			`CAST(deliveries.contact_number AS TEXT) LIKE ? ESCAPE '\'`,
			`LOWER(deliveries.transaction_id) LIKE ? ESCAPE '\'`,
			`LOWER(shops.shop_name) LIKE ? ESCAPE '\'`,
		}
		if filter.DeliveryManID != nil {
			clauses = append(clauses,
				`LOWER(users.full_name) LIKE ? ESCAPE '\'`,
				`CAST(deliveries.delivery_pin AS TEXT) LIKE ? ESCAPE '\'`,
			)
		}
		args := make([]any, len(clauses))
		for i := range args {
			args[i] = pattern
		}
		q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	var rows []deliveryRow
	err := q.Order(queueOrder(filter.Sort)).
		Limit(pagination.LimitWithBuffer(page.Limit)).
		Offset(page.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByPin returns the oldest delivery carrying pin.
func (r *Repository) FindByPin(ctx context.Context, pin int) (*deliveryRow, error) {
	var row deliveryRow
	res := r.joined(ctx).
		Where("deliveries.delivery_pin = ?", pin).
		Order("deliveries.created_at ASC").
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

// DeleteDeliveredBefore purges delivered rows verified at or before cutoff.
func (r *Repository) DeleteDeliveredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND verified_at <= ?", enums.DeliveryStatusDelivered, cutoff.UTC()).
		Delete(&models.Delivery{})
	return res.RowsAffected, res.Error
}

func (r *Repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Select(joinedColumns).
		Joins("LEFT JOIN shops ON shops.id = deliveries.shop_id").
		Joins("LEFT JOIN users ON users.id = deliveries.user_id")
}

func queueOrder(sort enums.DeliverySort) string {
	switch sort {
	case enums.DeliverySortOldest:
		return "deliveries.created_at ASC"
	case enums.DeliverySortAmountHigh:
		return "deliveries.payment_amount DESC, deliveries.created_at DESC"
	case enums.DeliverySortAmountLow:
		return "deliveries.payment_amount ASC, deliveries.created_at DESC"
	default:
		return "deliveries.created_at DESC"
	}
}
