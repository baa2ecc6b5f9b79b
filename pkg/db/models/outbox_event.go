package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// OutboxEvent is one queued domain event. Rows are inserted with the change
// they describe and later marked published, or parked once AttemptCount hits
// the publisher's ceiling.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventType     enums.OutboxEventType     `gorm:"not null"`
	AggregateType enums.OutboxAggregateType `gorm:"not null"`
	AggregateID   uuid.UUID                 `gorm:"type:uuid;not null"`
	Payload       json.RawMessage           `gorm:"type:jsonb;not null"`
	AttemptCount  int                       `gorm:"not null;default:0"`
	LastError     *string
	PublishedAt   *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }
