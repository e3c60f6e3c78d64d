package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageFromJSON(t *testing.T) {
	data, err := NewEventMessage("notification-updated").ToJSON()
	require.NoError(t, err)

	msg, err := MessageFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, TypeEvent, msg.Type)
	assert.Equal(t, "notification-updated", msg.Event)
	assert.Empty(t, msg.Content)

	_, err = MessageFromJSON([]byte("not json"))
	assert.Error(t, err)
}
