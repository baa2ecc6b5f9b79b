package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// DeliveryManRequest is a courier application awaiting admin review.
type DeliveryManRequest struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	Phone       string              `gorm:"column:phone;not null"`
	Address     string              `gorm:"column:address;not null"`
	WorkArea    string              `gorm:"column:work_area;not null"`
	Age         int                 `gorm:"column:age;not null"`
	Profession  string              `gorm:"column:profession;not null"`
	VehicleType enums.VehicleType   `gorm:"column:vehicle_type;not null"`
	Experience  int                 `gorm:"column:experience;not null"`
	Status      enums.RequestStatus `gorm:"column:status;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
