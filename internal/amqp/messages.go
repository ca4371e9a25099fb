package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Change kinds carried on the wire.
const (
	KindBudget      = "budget"
	KindTransaction = "transaction"
)

// ChangeMessage signals that a user's stored data changed and any
// cached summaries for that user are stale. It carries no amounts,
// consumers re-read the store.
type ChangeMessage struct {
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change message stamped with the current time
func NewChangeMessage(userID, kind, category string) *ChangeMessage {
	return &ChangeMessage{
		UserID:    userID,
		Kind:      kind,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// Validate checks the message fields after decoding
func (m *ChangeMessage) Validate() error {
	if m.UserID == "" {
		return fmt.Errorf("change message missing user_id")
	}
	if m.Kind != KindBudget && m.Kind != KindTransaction {
		return fmt.Errorf("unknown change kind %q", m.Kind)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
