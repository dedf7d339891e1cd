package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryCreatedMessage notifies the sheet-mirror worker that a ledger
// entry was inserted. It carries the full row: the worker appends it
// without a read-back against the primary store.
type EntryCreatedMessage struct {
	MessageID  string          `json:"messageId"`
	ChatID     int64           `json:"chatId"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category"`
	Username   string          `json:"username"`
	OccurredAt time.Time       `json:"occurredAt"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewEntryCreatedMessage builds a message with a fresh correlation ID.
func NewEntryCreatedMessage(chatID int64, amount decimal.Decimal, category, username string, occurredAt time.Time) *EntryCreatedMessage {
	return &EntryCreatedMessage{
		MessageID:  uuid.NewString(),
		ChatID:     chatID,
		Amount:     amount,
		Category:   category,
		Username:   username,
		OccurredAt: occurredAt,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *EntryCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryCreatedMessageFromJSON creates a message from JSON bytes.
func EntryCreatedMessageFromJSON(data []byte) (*EntryCreatedMessage, error) {
	var msg EntryCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
