package shops

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/localdrop-backend/pkg/db/types"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// Repository handles shop persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to shop operations.
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

// Create persists a new shop row.
func (r *Repository) Create(ctx context.Context, shop *models.Shop) error {
	if shop == nil {
		return fmt.Errorf("shop is required")
	}
	shop.AreaIndex = shop.LocalAreas.Index()
	return r.db.WithContext(ctx).Create(shop).Error
}

// FindByID loads a shop by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindByOwner returns the shop requested or owned by ownerID.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindByPin loads a shop by its public shop PIN.
func (r *Repository) FindByPin(ctx context.Context, pin int) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("shop_pin = ?", pin).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindNames maps shop ids to display names.
func (r *Repository) FindNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Shop
	if err := r.db.WithContext(ctx).Select("id", "shop_name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.ShopName
	}
	return out, nil
}

// FindByIDs loads shops keyed by id. Missing ids are skipped.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Shop, error) {
	out := make(map[uuid.UUID]models.Shop, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Shop
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// MaxShopPin returns the highest allocated shop PIN, or ok=false when no shop exists.
func (r *Repository) MaxShopPin(ctx context.Context) (int, bool, error) {
	var max sql.NullInt64
	row := r.db.WithContext(ctx).Model(&models.Shop{}).Select("MAX(shop_pin)").Row()
	if err := row.Scan(&max); err != nil {
		return 0, false, err
	}
	if !max.Valid {
		return 0, false, nil
	}
	return int(max.Int64), true, nil
}

// List returns shops newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status *enums.ShopStatus) ([]models.Shop, error) {
	var rows []models.Shop
	q := r.db.WithContext(ctx).Model(&models.Shop{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListApprovedByArea returns approved shops whose area list contains term.
func (r *Repository) ListApprovedByArea(ctx context.Context, term string) ([]models.Shop, error) {
	var rows []models.Shop
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ShopStatusApproved).
		Where(`area_index LIKE ? ESCAPE '\'`, dbtypes.ContainsPattern(term)).
		Order("shop_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateColumns applies updates to one shop. Area lists keep their index in sync.
func (r *Repository) UpdateColumns(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if areas, ok := updates["local_areas"].(dbtypes.AreaList); ok {
		updates["area_index"] = areas.Index()
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", id).
		UpdateColumns(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes one shop, reporting gorm.ErrRecordNotFound when absent.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Shop{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementDeliveryCount records one new order for the shop.
func (r *Repository) IncrementDeliveryCount(ctx context.Context, id uuid.UUID) error {
	return r.UpdateColumns(ctx, id, map[string]any{
		"delivery_count": gorm.Expr("delivery_count + 1"),
	})
}

// AddSellPrice accrues a verified payment onto the shop's running total.
func (r *Repository) AddSellPrice(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.UpdateColumns(ctx, id, map[string]any{
		"total_sell_price": gorm.Expr("total_sell_price + ?", amount),
	})
}

// ResetStats zeroes the sales accumulators.
func (r *Repository) ResetStats(ctx context.Context, id uuid.UUID) error {
	return r.UpdateColumns(ctx, id, map[string]any{
		"total_sell_price": decimal.Zero,
		"sell_days":        0,
		"last_reset_date":  nil,
	})
}

// AccrueSellDays bumps sell_days on every open shop not yet credited since
// dayStart and returns the count touched.
func (r *Repository) AccrueSellDays(ctx context.Context, now, dayStart time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("is_open = ?", true).
		Where("last_reset_date IS NULL OR last_reset_date < ?", dayStart).
		UpdateColumns(map[string]any{
			"sell_days":       gorm.Expr("sell_days + 1"),
			"last_reset_date": now,
			"updated_at":      now,
		})
	return res.RowsAffected, res.Error
}
