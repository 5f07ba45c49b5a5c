package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// PeriodClosedMessage is the wire form of a period.closed event.
type PeriodClosedMessage struct {
	OwnerID  uuid.UUID `json:"owner_id"`
	Year     int       `json:"year"`
	Month    int       `json:"month"`
	ClosedBy uuid.UUID `json:"closed_by"`
	ClosedAt time.Time `json:"closed_at"`
}

// NewPeriodClosedMessage converts a domain event into its message.
func NewPeriodClosedMessage(event entity.PeriodClosedEvent) *PeriodClosedMessage {
	return &PeriodClosedMessage{
		OwnerID:  event.OwnerID,
		Year:     event.Key.Year,
		Month:    int(event.Key.Month),
		ClosedBy: event.ClosedBy,
		ClosedAt: event.ClosedAt.UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *PeriodClosedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Event converts the message back into a domain event.
func (m *PeriodClosedMessage) Event() (entity.PeriodClosedEvent, error) {
	key := valueobject.NewPeriodKey(m.Year, m.Month)
	if !key.IsValid() {
		return entity.PeriodClosedEvent{}, fmt.Errorf("invalid period %04d-%02d", m.Year, m.Month)
	}
	if m.OwnerID == uuid.Nil {
		return entity.PeriodClosedEvent{}, fmt.Errorf("owner_id is required")
	}
	return entity.PeriodClosedEvent{
		OwnerID:  m.OwnerID,
		Key:      key,
		ClosedBy: m.ClosedBy,
		ClosedAt: m.ClosedAt,
	}, nil
}

// PeriodClosedMessageFromJSON parses a message body.
func PeriodClosedMessageFromJSON(data []byte) (*PeriodClosedMessage, error) {
	var msg PeriodClosedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
