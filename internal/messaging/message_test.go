package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage_RoundTripsEnvelope(t *testing.T) {
	msg, err := NewMessage(TypeBudgetWarning, 7, map[string]string{"kind": "budget_warning"})
	require.NoError(t, err)

	data, err := msg.ToJSON()
	require.NoError(t, err)

	decoded, err := MessageFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, TypeBudgetWarning, decoded.Type)
	assert.Equal(t, int32(7), decoded.WorkspaceID)
	assert.JSONEq(t, `{"kind":"budget_warning"}`, string(decoded.Payload))
	assert.False(t, decoded.OccurredAt.IsZero())
}

func TestMessageFromJSON_Invalid(t *testing.T) {
	_, err := MessageFromJSON([]byte("not json"))
	assert.Error(t, err)
}
