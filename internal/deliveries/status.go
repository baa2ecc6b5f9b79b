package deliveries

import (
	"fmt"
	"time"

	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// ApplyStatus is the only place a delivery's status is written. It sets
// status on d, derives the columns that depend on it and returns them for
// persistence:
//   - delivered stamps deliveredAt and verifiedAt with now
//   - any other status clears verifiedAt
//   - pending and rejected clear the PIN; approved and delivered require one
func ApplyStatus(d *models.Delivery, status enums.DeliveryStatus, now time.Time) (map[string]any, error) {
	if d == nil {
		return nil, fmt.Errorf("delivery is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid delivery status %q", status)
	}
	if status.HasPin() && d.DeliveryPin == nil {
		return nil, fmt.Errorf("status %s requires a delivery pin", status)
	}

	now = now.UTC()
	d.Status = status
	d.UpdatedAt = now
	if !status.HasPin() {
		d.DeliveryPin = nil
	}
	if status == enums.DeliveryStatusDelivered {
		d.DeliveredAt = &now
		d.VerifiedAt = &now
	} else {
		d.VerifiedAt = nil
	}

	return map[string]any{
		"status":       d.Status,
		"delivery_pin": d.DeliveryPin,
		"delivered_at": d.DeliveredAt,
		"verified_at":  d.VerifiedAt,
		"updated_at":   d.UpdatedAt,
	}, nil
}
