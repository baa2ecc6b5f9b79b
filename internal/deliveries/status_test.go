package deliveries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

func TestApplyStatusDeliveredStampsTimestamps(t *testing.T) {
	pin := 1234
	d := &models.Delivery{Status: enums.DeliveryStatusApproved, DeliveryPin: &pin}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	updates, err := ApplyStatus(d, enums.DeliveryStatusDelivered, now)
	require.NoError(t, err)
	require.Equal(t, enums.DeliveryStatusDelivered, d.Status)
	require.NotNil(t, d.DeliveredAt)
	require.NotNil(t, d.VerifiedAt)
	require.True(t, d.VerifiedAt.Equal(now))
	require.Equal(t, &pin, updates["delivery_pin"])
	require.Equal(t, enums.DeliveryStatusDelivered, updates["status"])
}

func TestApplyStatusClearsVerificationOutsideDelivered(t *testing.T) {
	pin := 1234
	verified := time.Now().UTC()
	d := &models.Delivery{Status: enums.DeliveryStatusDelivered, DeliveryPin: &pin, VerifiedAt: &verified}

	_, err := ApplyStatus(d, enums.DeliveryStatusApproved, time.Now())
	require.NoError(t, err)
	require.Nil(t, d.VerifiedAt)
	require.NotNil(t, d.DeliveryPin)

	_, err = ApplyStatus(d, enums.DeliveryStatusPending, time.Now())
	require.NoError(t, err)
	require.Nil(t, d.DeliveryPin)
}

func TestApplyStatusRejectsInvalidInput(t *testing.T) {
	_, err := ApplyStatus(nil, enums.DeliveryStatusPending, time.Now())
	require.Error(t, err)

	d := &models.Delivery{Status: enums.DeliveryStatusPending}
	_, err = ApplyStatus(d, enums.DeliveryStatus("shipped"), time.Now())
	require.Error(t, err)

	_, err = ApplyStatus(d, enums.DeliveryStatusApproved, time.Now())
	require.Error(t, err)
	require.Equal(t, enums.DeliveryStatusPending, d.Status)
}
