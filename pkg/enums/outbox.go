package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column on outbox_events.
type OutboxAggregateType string

const (
	AggregateDelivery           OutboxAggregateType = "delivery"
	AggregateShop               OutboxAggregateType = "shop"
	AggregateDeliveryManRequest OutboxAggregateType = "delivery_man_request"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateDelivery,
	AggregateShop,
	AggregateDeliveryManRequest,
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column on outbox_events.
type OutboxEventType string

const (
	EventDeliveryCreated     OutboxEventType = "delivery_created"
	EventDeliveryApproved    OutboxEventType = "delivery_approved"
	EventDeliveryRejected    OutboxEventType = "delivery_rejected"
	EventDeliveryDelivered   OutboxEventType = "delivery_delivered"
	EventShopApproved        OutboxEventType = "shop_approved"
	EventDeliveryManApproved OutboxEventType = "delivery_man_approved"
)

var validOutboxEventTypes = []OutboxEventType{
	EventDeliveryCreated,
	EventDeliveryApproved,
	EventDeliveryRejected,
	EventDeliveryDelivered,
	EventShopApproved,
	EventDeliveryManApproved,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
