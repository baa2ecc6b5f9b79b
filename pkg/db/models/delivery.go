package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	"github.com/angelmondragon/localdrop-backend/pkg/types"
)

// Delivery is a customer order placed against one shop.
type Delivery struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Status        enums.DeliveryStatus `gorm:"column:status;type:delivery_status;not null"`
	ShopID        uuid.UUID            `gorm:"column:shop_id;type:uuid;not null"`
	UserID        *uuid.UUID           `gorm:"column:user_id;type:uuid"`
	GuestKey      *string              `gorm:"column:guest_key"`
	Items         types.LineItems      `gorm:"column:items;type:jsonb;not null"`
	Details       DeliveryDetails      `gorm:"embedded"`
	Payment       DeliveryPayment      `gorm:"embedded"`
	DeliveryPin   *int                 `gorm:"column:delivery_pin"`
	DeliveryManID *uuid.UUID           `gorm:"column:delivery_man_id;type:uuid"`
	SelfDelivery  bool                 `gorm:"column:self_delivery;not null"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
	DeliveredAt   *time.Time           `gorm:"column:delivered_at"`
	VerifiedAt    *time.Time           `gorm:"column:verified_at"`
}

// DeliveryDetails is where and when the order should arrive.
type DeliveryDetails struct {
	UniversityOrVillage string    `gorm:"column:university_or_village;not null"`
	HallOrMoholla       string    `gorm:"column:hall_or_moholla;not null"`
	RoomOrIdentity      string    `gorm:"column:room_or_identity;not null"`
	ContactNumber       int64     `gorm:"column:contact_number;not null"`
	DeliveryDate        time.Time `gorm:"column:delivery_date;not null"`
	DeliveryTime        string    `gorm:"column:delivery_time;not null"`
}

// DeliveryPayment records the wallet prepayment for an order.
type DeliveryPayment struct {
	Method        enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	Amount        decimal.Decimal     `gorm:"column:payment_amount;type:numeric(12,2);not null"`
	PaymentNumber int64               `gorm:"column:payment_number;not null"`
	TransactionID string              `gorm:"column:transaction_id;not null"`
}
