package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionUpdated EventKind = "transaction.updated"
	TransactionDeleted EventKind = "transaction.deleted"
	UserDeleted        EventKind = "user.deleted"
)

func (k EventKind) Valid() bool {
	switch k {
	case TransactionCreated, TransactionUpdated, TransactionDeleted, UserDeleted:
		return true
	}
	return false
}

// TransactionEvent is a lightweight change notification. It carries ids
// only; consumers re-read the current row from storage.
type TransactionEvent struct {
	Kind          EventKind `json:"kind"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	UserID        int64     `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(kind EventKind, userID, transactionID int64) *TransactionEvent {
	return &TransactionEvent{
		Kind:          kind,
		TransactionID: transactionID,
		UserID:        userID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes and checks a message body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Kind.Valid() {
		return nil, fmt.Errorf("unknown event kind %q", msg.Kind)
	}
	if msg.UserID == 0 {
		return nil, fmt.Errorf("event %s without user id", msg.Kind)
	}
	return &msg, nil
}
