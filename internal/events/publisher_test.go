package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	t.Run("Message Keyed By Organization", func(t *testing.T) {
		w := &fakeWriter{}
		p := newKafkaPublisher(w, "compliance", time.Second, zap.NewNop())

		event := NewEvent(IncidentLogged, "org-1", map[string]string{"incident_id": "i-1"})
		require.NoError(t, p.Publish(context.Background(), event))

		require.Len(t, w.messages, 1)
		msg := w.messages[0]
		assert.Equal(t, "org-1", string(msg.Key))

		var decoded Event
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, event.ID, decoded.ID)
		assert.Equal(t, IncidentLogged, decoded.Type)

		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, IncidentLogged, headers["event-type"])
		assert.Equal(t, "application/json", headers["content-type"])
	})

	t.Run("Write Failure", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("broker unavailable")}
		p := newKafkaPublisher(w, "compliance", 0, zap.NewNop())

		err := p.Publish(context.Background(), NewEvent(ReadinessComputed, "org-1", nil))
		assert.ErrorContains(t, err, "broker unavailable")
	})

	t.Run("Close", func(t *testing.T) {
		w := &fakeWriter{}
		require.NoError(t, newKafkaPublisher(w, "compliance", 0, zap.NewNop()).Close())
		assert.True(t, w.closed)
	})
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(AnimalStatusChanged, "org-1", nil)
	b := NewEvent(AnimalStatusChanged, "org-1", nil)

	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.OccurredAt.IsZero())
	assert.NoError(t, NewLogPublisher(zap.NewNop()).Publish(context.Background(), a))
}
