package enums

import "fmt"

// DeliveryStatus is the lifecycle state of a delivery order.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusApproved  DeliveryStatus = "approved"
	DeliveryStatusRejected  DeliveryStatus = "rejected"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusApproved,
	DeliveryStatusRejected,
	DeliveryStatusDelivered,
}

// String implements fmt.Stringer.
func (s DeliveryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (s DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// HasPin reports whether deliveries in this status carry a handoff PIN.
func (s DeliveryStatus) HasPin() bool {
	return s == DeliveryStatusApproved || s == DeliveryStatusDelivered
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}

// PaymentMethod is the mobile wallet used to prepay an order.
type PaymentMethod string

const (
	PaymentMethodBkash PaymentMethod = "bkash"
	PaymentMethodNagad PaymentMethod = "nagad"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodBkash,
	PaymentMethodNagad,
}

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

// DeliverySort orders admin and courier queues.
type DeliverySort string

const (
	DeliverySortNewest     DeliverySort = "newest"
	DeliverySortOldest     DeliverySort = "oldest"
	DeliverySortAmountHigh DeliverySort = "amount-high"
	DeliverySortAmountLow  DeliverySort = "amount-low"
)

// ParseDeliverySort falls back to newest for empty or unknown input.
func ParseDeliverySort(value string) DeliverySort {
	switch DeliverySort(value) {
	case DeliverySortOldest, DeliverySortAmountHigh, DeliverySortAmountLow:
		return DeliverySort(value)
	default:
		return DeliverySortNewest
	}
}
