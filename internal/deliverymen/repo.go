package deliverymen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// requestRow is an application joined with the applicant's account.
type requestRow struct {
	models.DeliveryManRequest
	FullName *string `gorm:"column:full_name"`
	Email    *string `gorm:"column:email"`
}

// Repository handles courier application persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to courier applications.
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

// Create persists a new application.
func (r *Repository) Create(ctx context.Context, request *models.DeliveryManRequest) error {
	if request == nil {
		return fmt.Errorf("request is required")
	}
	return r.db.WithContext(ctx).Create(request).Error
}

// FindByID loads one application.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryManRequest, error) {
	var request models.DeliveryManRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// HasPending reports whether userID already has an application under review.
func (r *Repository) HasPending(ctx context.Context, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.DeliveryManRequest{}).
		Where("user_id = ? AND status = ?", userID, enums.RequestStatusPending).
		Count(&n).Error
	return n > 0, err
}

// ListByStatus returns applications in status with applicant details, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status enums.RequestStatus) ([]requestRow, error) {
	var rows []requestRow
	err := r.db.WithContext(ctx).
		Model(&models.DeliveryManRequest{}).
		Select("delivery_man_requests.*, users.full_name, users.email").
		Joins("LEFT JOIN users ON users.id = delivery_man_requests.user_id").
		Where("delivery_man_requests.status = ?", status).
		Order("delivery_man_requests.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Decide moves a pending application to status. Decided applications report
// gorm.ErrRecordNotFound.
func (r *Repository) Decide(ctx context.Context, id uuid.UUID, status enums.RequestStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.DeliveryManRequest{}).
		Where("id = ? AND status = ?", id, enums.RequestStatusPending).
		UpdateColumns(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
