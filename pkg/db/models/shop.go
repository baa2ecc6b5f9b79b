package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/angelmondragon/localdrop-backend/pkg/db/types"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	"github.com/angelmondragon/localdrop-backend/pkg/types"
)

// Shop is a storefront run by one owner and serving a set of local areas.
type Shop struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopName         string             `gorm:"column:shop_name;not null"`
	LocalAreas       dbtypes.AreaList   `gorm:"column:local_areas;type:text[];not null"`
	AreaIndex        string             `gorm:"column:area_index;not null"`
	PermanentAddress string             `gorm:"column:permanent_address;not null"`
	ShopCategory     enums.ShopCategory `gorm:"column:shop_category;not null"`
	AdditionalInfo   *string            `gorm:"column:additional_info"`
	OwnerID          uuid.UUID          `gorm:"column:owner_id;type:uuid;not null"`
	Status           enums.ShopStatus   `gorm:"column:status;type:shop_status;not null"`
	ContactNumber    string             `gorm:"column:contact_number;not null"`
	BkashNumber      *string            `gorm:"column:bkash_number"`
	NagadNumber      *string            `gorm:"column:nagad_number"`
	ShopPin          int                `gorm:"column:shop_pin;not null;uniqueIndex"`
	DeliveryCount    int                `gorm:"column:delivery_count;not null"`
	TotalSellPrice   decimal.Decimal    `gorm:"column:total_sell_price;type:numeric(14,2);not null"`
	SellDays         int                `gorm:"column:sell_days;not null"`
	IsOpen           bool               `gorm:"column:is_open;not null"`
	IsBlock          bool               `gorm:"column:is_block;not null"`
	LastResetDate    *time.Time         `gorm:"column:last_reset_date"`
	DeliveryCharge   types.DecimalList  `gorm:"column:delivery_charge;type:jsonb;not null"`
	SelfDelivery     bool               `gorm:"column:self_delivery;not null"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
