package messaging

import (
	"encoding/json"
	"time"
)

// Message types published for external delivery (email, push)
const (
	TypeBudgetWarning = "budget.warning"
	TypeBroadcast     = "notification.broadcast"
)

// Message is the JSON envelope put on the notification queue
type Message struct {
	Type        string          `json:"type"`
	WorkspaceID int32           `json:"workspaceId,omitempty"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// NewMessage wraps payload in an envelope
func NewMessage(msgType string, workspaceID int32, payload any) (*Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:        msgType,
		WorkspaceID: workspaceID,
		Payload:     body,
		OccurredAt:  time.Now().UTC(),
	}, nil
}

func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MessageFromJSON(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
