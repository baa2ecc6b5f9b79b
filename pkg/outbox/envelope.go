package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const envelopeVersion = 1

// ActorRef records who caused the event, when known.
type ActorRef struct {
	UserID *uuid.UUID `json:"userId,omitempty"`
	ShopID *uuid.UUID `json:"shopId,omitempty"`
	Role   string     `json:"role,omitempty"`
}

// PayloadEnvelope wraps the event data stored in outbox_events.payload and
// published as the message body.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

var errNoEventID = errors.New("envelope has no eventId")

// DecodeEnvelope reads a stored payload back.
func DecodeEnvelope(raw json.RawMessage) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventID == "" {
		return env, errNoEventID
	}
	if env.Version > envelopeVersion {
		return env, fmt.Errorf("envelope version %d is newer than %d", env.Version, envelopeVersion)
	}
	return env, nil
}
