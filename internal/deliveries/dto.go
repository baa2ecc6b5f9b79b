package deliveries

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	"github.com/angelmondragon/localdrop-backend/pkg/types"
)

// DeliveryDetailsDTO is the destination block of an order.
type DeliveryDetailsDTO struct {
	UniversityOrVillage string    `json:"universityOrVillage" validate:"required"`
	HallOrMoholla       string    `json:"hallOrMoholla" validate:"required"`
	RoomOrIdentity      string    `json:"roomOrIdentity" validate:"required"`
	ContactNumber       Number    `json:"contactNumber" validate:"required"`
	DeliveryDate        time.Time `json:"deliveryDate" validate:"required"`
	DeliveryTime        string    `json:"deliveryTime" validate:"required"`
}

// PaymentDTO is the self-reported wallet payment of an order.
type PaymentDTO struct {
	Method        enums.PaymentMethod `json:"method" validate:"required"`
	Amount        decimal.Decimal     `json:"amount"`
	PaymentNumber Number              `json:"paymentNumber" validate:"required"`
	TransactionID string              `json:"transactionId" validate:"required"`
}

// PartySummary is the shop or user projection joined onto a delivery.
type PartySummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Phone *string   `json:"phone,omitempty"`
	Email string    `json:"email,omitempty"`
}

// DeliveryDTO is the wire shape of a delivery.
type DeliveryDTO struct {
	ID              uuid.UUID            `json:"id"`
	Status          enums.DeliveryStatus `json:"status"`
	Shop            uuid.UUID            `json:"shop"`
	User            *uuid.UUID           `json:"user,omitempty"`
	GuestKey        *string              `json:"guestKey,omitempty"`
	Items           []types.LineItem     `json:"items"`
	DeliveryDetails DeliveryDetailsDTO   `json:"deliveryDetails"`
	Payment         PaymentDTO           `json:"payment"`
	DeliveryPin     *int                 `json:"deliveryPin,omitempty"`
	DeliveryManID   *uuid.UUID           `json:"deliveryManId,omitempty"`
	SelfDelivery    bool                 `json:"selfDelivery"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
	DeliveredAt     *time.Time           `json:"deliveredAt,omitempty"`
	VerifiedAt      *time.Time           `json:"verifiedAt,omitempty"`
	ShopInfo        *PartySummary        `json:"shopInfo,omitempty"`
	UserInfo        *PartySummary        `json:"userInfo,omitempty"`
}

// PinLookupDTO is the result of a lookup by handoff PIN.
type PinLookupDTO struct {
	Delivery DeliveryDTO   `json:"delivery"`
	User     *PartySummary `json:"user"`
}

// CreateDeliveryInput is the order submitted by a customer or guest.
type CreateDeliveryInput struct {
	Shop            uuid.UUID          `json:"shop" validate:"required"`
	Items           []types.LineItem   `json:"items" validate:"required,min=1,dive"`
	DeliveryDetails DeliveryDetailsDTO `json:"deliveryDetails" validate:"required"`
	Payment         PaymentDTO         `json:"payment" validate:"required"`
	GuestKey        *string            `json:"guestKey"`
}

// Number accepts an integer sent either as a JSON number or a digit string.
type Number int64

func (n *Number) UnmarshalJSON(data []byte) error {
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		v, err := num.Int64()
		if err != nil {
			return fmt.Errorf("expected an integer, got %s", num)
		}
		*n = Number(v)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expected a number")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*n = 0
		return nil
	}
	v, err := json.Number(raw).Int64()
	if err != nil {
		return fmt.Errorf("expected a numeric string, got %q", raw)
	}
	*n = Number(v)
	return nil
}

func FromModel(d *models.Delivery) DeliveryDTO {
	items := make([]types.LineItem, len(d.Items))
	copy(items, d.Items)
	return DeliveryDTO{
		ID:       d.ID,
		Status:   d.Status,
		Shop:     d.ShopID,
		User:     d.UserID,
		GuestKey: d.GuestKey,
		Items:    items,
		DeliveryDetails: DeliveryDetailsDTO{
			UniversityOrVillage: d.Details.UniversityOrVillage,
			HallOrMoholla:       d.Details.HallOrMoholla,
			RoomOrIdentity:      d.Details.RoomOrIdentity,
			ContactNumber:       Number(d.Details.ContactNumber),
			DeliveryDate:        d.Details.DeliveryDate,
			DeliveryTime:        d.Details.DeliveryTime,
		},
		Payment: PaymentDTO{
			Method:        d.Payment.Method,
			Amount:        d.Payment.Amount,
			PaymentNumber: Number(d.Payment.PaymentNumber),
			TransactionID: d.Payment.TransactionID,
		},
		DeliveryPin:   d.DeliveryPin,
		DeliveryManID: d.DeliveryManID,
		SelfDelivery:  d.SelfDelivery,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		DeliveredAt:   d.DeliveredAt,
		VerifiedAt:    d.VerifiedAt,
	}
}

func fromRow(row deliveryRow) DeliveryDTO {
	dto := FromModel(&row.Delivery)
	if row.ShopName != nil {
		dto.ShopInfo = &PartySummary{ID: row.ShopID, Name: *row.ShopName}
	}
	if row.UserID != nil && row.UserName != nil {
		info := &PartySummary{ID: *row.UserID, Name: *row.UserName, Phone: row.UserPhone}
		if row.UserEmail != nil {
			info.Email = *row.UserEmail
		}
		dto.UserInfo = info
	}
	return dto
}

func fromRows(rows []deliveryRow) []DeliveryDTO {
	out := make([]DeliveryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out
}
