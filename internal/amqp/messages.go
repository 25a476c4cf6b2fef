package amqp

import (
	"encoding/json"
	"time"
)

// Event names published to the transaction stream.
const (
	EventTransactionRecorded = "transaction.recorded"
	EventTransactionDeleted  = "transaction.deleted"
)

// TransactionEvent is a lightweight notification about a ledger change.
// It carries ids only; consumers fetch whatever detail they need themselves.
type TransactionEvent struct {
	Event     string    `json:"event"`
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordedEvent creates an event for a freshly inserted transaction.
func NewRecordedEvent(id, userID int64) *TransactionEvent {
	return &TransactionEvent{
		Event:     EventTransactionRecorded,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// NewDeletedEvent creates an event for a deleted transaction. The deleting
// route knows nothing about ownership, so no user id is attached.
func NewDeletedEvent(id int64) *TransactionEvent {
	return &TransactionEvent{
		Event:     EventTransactionDeleted,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON creates an event from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
