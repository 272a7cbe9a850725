package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	raw := Envelope("req-1", "analysis_created", map[string]any{"id": 7})

	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, "analysis_created", e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "req-1", e.RequestID)
	assert.JSONEq(t, `{"id":7}`, string(e.Data))
	assert.False(t, e.At.IsZero())
}

func TestHub_PublishReachesSubscribers(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	h.Publish("", "ping", nil)

	select {
	case msg := <-ch:
		assert.Contains(t, msg, `"type":"ping"`)
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestHub_DropsWhenSubscriberFull(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	for i := 0; i < 20; i++ {
		h.Publish("", "ping", nil)
	}

	// buffer holds 10; the rest were dropped, not blocked on
	assert.Len(t, ch, 10)
}

func TestHub_UnsubscribedChannelGetsNothing(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	h.Publish("", "ping", nil)

	_, open := <-ch
	assert.False(t, open)
}
