package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType is what happened to an entity
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeUpdated   EventType = "updated"
	EventTypeDeleted   EventType = "deleted"
	EventTypeWarning   EventType = "warning"
	EventTypeBroadcast EventType = "broadcast"
)

// EntityType is the kind of entity an event is about
type EntityType string

const (
	EntityTypeExpense      EntityType = "expense"
	EntityTypeBudget       EntityType = "budget"
	EntityTypeNotification EntityType = "notification"
)

// Event is the frame pushed to subscribers. Type is "<entity>.<action>",
// e.g. "budget.warning". ID lets clients drop duplicates after a reconnect.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Entity    EntityType  `json:"entity"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent stamps a new event with an ID and the current UTC time
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      string(entityType) + "." + string(eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON encodes the event as a text frame
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ExpenseCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeExpense, payload)
}

func ExpenseUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeExpense, payload)
}

func ExpenseDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeExpense, payload)
}

// BudgetWarning announces a budget crossing its warn threshold or going over
func BudgetWarning(payload interface{}) Event {
	return NewEvent(EventTypeWarning, EntityTypeBudget, payload)
}

// NotificationBroadcast carries an admin announcement
func NotificationBroadcast(payload interface{}) Event {
	return NewEvent(EventTypeBroadcast, EntityTypeNotification, payload)
}
