package shops

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// ShopDTO is the full shop record returned to owners and admins.
type ShopDTO struct {
	ID               uuid.UUID          `json:"id"`
	ShopName         string             `json:"shopName"`
	LocalAreas       []string           `json:"localAreas"`
	PermanentAddress string             `json:"permanentAddress"`
	ShopCategory     enums.ShopCategory `json:"shopCategory"`
	AdditionalInfo   string             `json:"additionalInfo"`
	Owner            uuid.UUID          `json:"owner"`
	Status           enums.ShopStatus   `json:"status"`
	ContactNumber    string             `json:"contactNumber"`
	BkashNumber      *string            `json:"BkashNumber,omitempty"`
	NagadNumber      *string            `json:"NagadNumber,omitempty"`
	ShopPin          int                `json:"shopPin"`
	DeliveryCount    int                `json:"deliveryCount"`
	TotalSellPrice   decimal.Decimal    `json:"totalSellPrice"`
	SellDays         int                `json:"sellDays"`
	IsOpen           bool               `json:"isOpen"`
	IsBlock          bool               `json:"isBlock"`
	LastResetDate    *time.Time         `json:"lastResetDate"`
	DeliveryCharge   []decimal.Decimal  `json:"deliveryCharge"`
	SelfDelivery     bool               `json:"selfDelivery"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// StorefrontDTO is the public subset shown next to a catalog item.
type StorefrontDTO struct {
	ID             uuid.UUID          `json:"id"`
	ShopName       string             `json:"shopName"`
	BkashNumber    *string            `json:"BkashNumber,omitempty"`
	NagadNumber    *string            `json:"NagadNumber,omitempty"`
	LocalAreas     []string           `json:"localAreas"`
	ShopCategory   enums.ShopCategory `json:"shopCategory"`
	ContactNumber  string             `json:"contactNumber"`
	DeliveryCharge []decimal.Decimal  `json:"deliveryCharge"`
}

// AreaShopDTO is the card returned by the area search.
type AreaShopDTO struct {
	ID           uuid.UUID          `json:"id"`
	ShopName     string             `json:"shopName"`
	LocalAreas   []string           `json:"localAreas"`
	ShopCategory enums.ShopCategory `json:"shopCategory"`
	ShopPin      int                `json:"shopPin"`
	IsOpen       bool               `json:"isOpen"`
}

// OwnerSummary is the owner projection attached to ownership requests.
type OwnerSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
}

// OwnershipRequestDTO pairs a shop with its requesting owner.
type OwnershipRequestDTO struct {
	ShopDTO
	OwnerInfo *OwnerSummary `json:"ownerInfo,omitempty"`
}

// ToggleResult reports the open flag after a toggle.
type ToggleResult struct {
	IsOpen  bool   `json:"isOpen"`
	Message string `json:"message"`
}

// OwnershipRequestInput is the payload of a new shop request.
type OwnershipRequestInput struct {
	ShopName         string             `json:"shopName" validate:"required"`
	LocalAreas       []string           `json:"localAreas"`
	PermanentAddress string             `json:"permanentAddress" validate:"required"`
	ShopCategory     enums.ShopCategory `json:"shopCategory" validate:"required"`
	ContactNumber    string             `json:"contactNumber" validate:"required"`
	BkashNumber      *string            `json:"BkashNumber"`
	NagadNumber      *string            `json:"NagadNumber"`
	SelfDelivery     *bool              `json:"selfDelivery"`
	AdditionalInfo   *string            `json:"additionalInfo"`
}

// UpdateShopInput captures the admin-editable shop fields.
type UpdateShopInput struct {
	ShopName         *string             `json:"shopName"`
	LocalAreas       *AreaInput          `json:"localAreas"`
	PermanentAddress *string             `json:"permanentAddress"`
	ShopCategory     *enums.ShopCategory `json:"shopCategory"`
	AdditionalInfo   *string             `json:"additionalInfo"`
	ContactNumber    *PhoneInput         `json:"contactNumber"`
	BkashNumber      *PhoneInput         `json:"BkashNumber"`
	NagadNumber      *PhoneInput         `json:"NagadNumber"`
	DeliveryCharge   *ChargeInput        `json:"deliveryCharge"`
	SelfDelivery     *bool               `json:"selfDelivery"`
	IsOpen           *bool               `json:"isOpen"`
	IsBlock          *bool               `json:"isBlock"`
}

// AreaInput accepts a JSON array or a comma-separated string.
type AreaInput []string

func (a *AreaInput) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = AreaInput(list)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("localAreas must be a list or comma-separated string")
	}
	*a = AreaInput(strings.Split(raw, ","))
	return nil
}

// ChargeInput accepts a JSON array of numbers or a comma-separated string.
type ChargeInput []decimal.Decimal

func (c *ChargeInput) UnmarshalJSON(data []byte) error {
	var list []decimal.Decimal
	if err := json.Unmarshal(data, &list); err == nil {
		*c = ChargeInput(list)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("deliveryCharge must be a list or comma-separated string")
	}
	out := make(ChargeInput, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := decimal.NewFromString(part)
		if err != nil {
			return fmt.Errorf("invalid delivery charge %q", part)
		}
		out = append(out, value)
	}
	*c = out
	return nil
}

// PhoneInput accepts a phone number sent as a JSON string or number.
type PhoneInput string

func (p *PhoneInput) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*p = PhoneInput(strings.TrimSpace(raw))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("phone number must be a string or number")
	}
	*p = PhoneInput(num.String())
	return nil
}

// EnsureLeadingZero prefixes local numbers that lost their leading zero.
func EnsureLeadingZero(num string) string {
	num = strings.TrimSpace(num)
	if num == "" || strings.HasPrefix(num, "0") {
		return num
	}
	return "0" + num
}

func FromModel(s *models.Shop) *ShopDTO {
	if s == nil {
		return nil
	}
	info := ""
	if s.AdditionalInfo != nil {
		info = *s.AdditionalInfo
	}
	return &ShopDTO{
		ID:               s.ID,
		ShopName:         s.ShopName,
		LocalAreas:       cloneAreas(s.LocalAreas),
		PermanentAddress: s.PermanentAddress,
		ShopCategory:     s.ShopCategory,
		AdditionalInfo:   info,
		Owner:            s.OwnerID,
		Status:           s.Status,
		ContactNumber:    s.ContactNumber,
		BkashNumber:      s.BkashNumber,
		NagadNumber:      s.NagadNumber,
		ShopPin:          s.ShopPin,
		DeliveryCount:    s.DeliveryCount,
		TotalSellPrice:   s.TotalSellPrice,
		SellDays:         s.SellDays,
		IsOpen:           s.IsOpen,
		IsBlock:          s.IsBlock,
		LastResetDate:    s.LastResetDate,
		DeliveryCharge:   cloneCharges(s.DeliveryCharge),
		SelfDelivery:     s.SelfDelivery,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func storefrontFromModel(s *models.Shop) *StorefrontDTO {
	return &StorefrontDTO{
		ID:             s.ID,
		ShopName:       s.ShopName,
		BkashNumber:    s.BkashNumber,
		NagadNumber:    s.NagadNumber,
		LocalAreas:     cloneAreas(s.LocalAreas),
		ShopCategory:   s.ShopCategory,
		ContactNumber:  s.ContactNumber,
		DeliveryCharge: cloneCharges(s.DeliveryCharge),
	}
}

func areaShopFromModel(s models.Shop) AreaShopDTO {
	return AreaShopDTO{
		ID:           s.ID,
		ShopName:     s.ShopName,
		LocalAreas:   cloneAreas(s.LocalAreas),
		ShopCategory: s.ShopCategory,
		ShopPin:      s.ShopPin,
		IsOpen:       s.IsOpen,
	}
}

func cloneAreas[T ~[]string](in T) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneCharges[T ~[]decimal.Decimal](in T) []decimal.Decimal {
	out := make([]decimal.Decimal, len(in))
	copy(out, in)
	return out
}
