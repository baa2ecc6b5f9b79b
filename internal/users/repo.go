package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// Repository reads and patches rows of the users table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to tx; a nil tx keeps the current handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.one(ctx, "id = ?", id)
}

// FindByEmail expects email already lowercased.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.one(ctx, "email = ?", email)
}

// FindByIDs loads users keyed by id. Unknown ids are absent from the map.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	byID := map[uuid.UUID]models.User{}
	if len(ids) == 0 {
		return byID, nil
	}
	var found []models.User
	if err := r.db.WithContext(ctx).Find(&found, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	for i := range found {
		byID[found[i].ID] = found[i]
	}
	return byID, nil
}

func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) error {
	return r.patch(ctx, id, map[string]any{"role": role})
}

// AssignShop links the user to shopID and makes them its owner.
func (r *Repository) AssignShop(ctx context.Context, id, shopID uuid.UUID) error {
	return r.patch(ctx, id, map[string]any{"shop_id": shopID, "role": enums.UserRoleShopOwner})
}

// IncrementDeliveredCoin credits one verified handoff.
func (r *Repository) IncrementDeliveredCoin(ctx context.Context, id uuid.UUID) error {
	return r.patch(ctx, id, map[string]any{"delivered_coin": gorm.Expr("delivered_coin + ?", 1)})
}

func (r *Repository) one(ctx context.Context, cond string, arg any) (*models.User, error) {
	user := new(models.User)
	if err := r.db.WithContext(ctx).Where(cond, arg).Take(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// patch reports gorm.ErrRecordNotFound when no row has id.
func (r *Repository) patch(ctx context.Context, id uuid.UUID, cols map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumns(cols)
	switch {
	case tx.Error != nil:
		return tx.Error
	case tx.RowsAffected == 0:
		return gorm.ErrRecordNotFound
	}
	return nil
}
