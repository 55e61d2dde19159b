package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage announces that the persisted ledger changed.
// Consumers reload the ledger; the message only says what triggered it.
type LedgerChangedMessage struct {
	Operation string    `json:"operation"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entityId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(operation, entity string, entityID int64) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Operation: operation,
		Entity:    entity,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
