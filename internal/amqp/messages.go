package amqp

import (
	"encoding/json"
	"time"
)

// EntrySyncMessage announces that a stored entry changed. It carries only
// keys; the worker loads the current row from the database.
type EntrySyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	UserID    string    `json:"user_id"`
	Day       string    `json:"day"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntrySyncMessage(id, version int64, userID, day string) *EntrySyncMessage {
	return &EntrySyncMessage{
		ID:        id,
		Version:   version,
		UserID:    userID,
		Day:       day,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
