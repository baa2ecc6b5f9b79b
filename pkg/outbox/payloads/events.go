package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// DeliveryCreatedEvent announces a new pending order for a shop.
type DeliveryCreatedEvent struct {
	DeliveryID uuid.UUID       `json:"delivery_id"`
	ShopID     uuid.UUID       `json:"shop_id"`
	UserID     *uuid.UUID      `json:"user_id,omitempty"`
	GuestKey   *string         `json:"guest_key,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	ItemCount  int             `json:"item_count"`
}

// DeliveryApprovedEvent is emitted once a PIN has been issued.
type DeliveryApprovedEvent struct {
	DeliveryID    uuid.UUID  `json:"delivery_id"`
	ShopID        uuid.UUID  `json:"shop_id"`
	DeliveryManID *uuid.UUID `json:"delivery_man_id,omitempty"`
}

// DeliveryRejectedEvent is emitted when a pending order is discarded.
type DeliveryRejectedEvent struct {
	DeliveryID uuid.UUID `json:"delivery_id"`
	ShopID     uuid.UUID `json:"shop_id"`
}

// DeliveryDeliveredEvent reports a successful PIN handoff.
type DeliveryDeliveredEvent struct {
	DeliveryID uuid.UUID            `json:"delivery_id"`
	ShopID     uuid.UUID            `json:"shop_id"`
	Amount     decimal.Decimal      `json:"amount"`
	Status     enums.DeliveryStatus `json:"status"`
	VerifiedAt time.Time            `json:"verified_at"`
	VerifiedBy *uuid.UUID           `json:"verified_by,omitempty"`
}

// ShopApprovedEvent is emitted when an ownership request is accepted.
type ShopApprovedEvent struct {
	ShopID  uuid.UUID `json:"shop_id"`
	OwnerID uuid.UUID `json:"owner_id"`
	ShopPin int       `json:"shop_pin"`
}

// DeliveryManApprovedEvent is emitted when a courier application is accepted.
type DeliveryManApprovedEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	UserID    uuid.UUID `json:"user_id"`
}
