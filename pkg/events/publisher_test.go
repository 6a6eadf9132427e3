package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/booking-api/pkg/middleware/requestid"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaPublisherKeysByAggregate(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	evt, err := New("appointment.confirmed.v1", "appt-1", map[string]string{"slot_time": "09:00"})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), evt))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "appt-1", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[1].Key)
	assert.Equal(t, "appointment.confirmed.v1", string(msg.Headers[1].Value))
	assert.Len(t, msg.Headers, 2)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, evt.ID, decoded.ID)
	assert.JSONEq(t, `{"slot_time":"09:00"}`, string(decoded.Payload))
}

func TestKafkaPublisherForwardsRequestID(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	evt, err := New("appointment.cancelled.v1", "appt-2", nil)
	require.NoError(t, err)

	require.NoError(t, p.Publish(requestid.WithID(context.Background(), "req-7"), evt))
	require.Len(t, w.msgs, 1)
	last := w.msgs[0].Headers[len(w.msgs[0].Headers)-1]
	assert.Equal(t, "request_id", last.Key)
	assert.Equal(t, "req-7", string(last.Value))
}

func TestKafkaPublisherWrapsErrors(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("leader not available")}}
	evt, err := New("appointment.cancelled.v1", "appt-1", nil)
	require.NoError(t, err)
	assert.ErrorContains(t, p.Publish(context.Background(), evt), "leader not available")
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(nil)
	assert.NoError(t, p.Publish(context.Background(), Event{Type: "x"}))
	assert.NoError(t, p.Close())
}
