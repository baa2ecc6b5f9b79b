package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// User is the marketplace view of an account. Credentials live with the
// identity provider that issues access tokens.
type User struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FullName      string         `gorm:"column:full_name;not null"`
	Email         string         `gorm:"column:email;not null;uniqueIndex"`
	Role          enums.UserRole `gorm:"column:role;type:user_role;not null"`
	Phone         *string        `gorm:"column:phone"`
	Address       *string        `gorm:"column:address"`
	DeliveredCoin int            `gorm:"column:delivered_coin;not null"`
	ShopID        *uuid.UUID     `gorm:"column:shop_id;type:uuid"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
