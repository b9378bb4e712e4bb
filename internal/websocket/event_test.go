package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventConstructors(t *testing.T) {
	payload := map[string]string{"id": "1"}

	tests := []struct {
		evt    Event
		typ    string
		entity EntityType
	}{
		{ExpenseCreated(payload), "expense.created", EntityTypeExpense},
		{ExpenseUpdated(payload), "expense.updated", EntityTypeExpense},
		{ExpenseDeleted(payload), "expense.deleted", EntityTypeExpense},
		{BudgetWarning(payload), "budget.warning", EntityTypeBudget},
		{NotificationBroadcast(payload), "notification.broadcast", EntityTypeNotification},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.evt.Type)
			assert.Equal(t, tt.entity, tt.evt.Entity)
			assert.Equal(t, payload, tt.evt.Payload)
		})
	}
}

func TestNewEvent_StampsIDAndTime(t *testing.T) {
	before := time.Now().UTC()
	a := NewEvent(EventTypeWarning, EntityTypeBudget, nil)
	b := NewEvent(EventTypeWarning, EntityTypeBudget, nil)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, time.UTC, a.Timestamp.Location())
	assert.False(t, a.Timestamp.Before(before))
}

func TestEvent_FrameShape(t *testing.T) {
	evt := BudgetWarning(map[string]string{"level": "over", "month": "2026-03"})

	frame, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(frame, &decoded))
	assert.ElementsMatch(t, []string{"id", "type", "entity", "payload", "timestamp"}, keys(decoded))
	assert.Equal(t, "budget.warning", decoded["type"])
	assert.Equal(t, "over", decoded["payload"].(map[string]interface{})["level"])
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
