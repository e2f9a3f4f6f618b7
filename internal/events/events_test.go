package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerDeliversToSessionSubscribers(t *testing.T) {
	b := NewBroker()
	mine := b.Subscribe("s1")
	other := b.Subscribe("s2")
	defer b.Unsubscribe("s1", mine)
	defer b.Unsubscribe("s2", other)

	require.NoError(t, b.Notify(context.Background(), Event{Type: TypePaymentConfirmed, SessionID: "s1"}))

	select {
	case data := <-mine:
		var e Event
		require.NoError(t, json.Unmarshal(data, &e))
		assert.Equal(t, TypePaymentConfirmed, e.Type)
		assert.Equal(t, "s1", e.SessionID)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}

	select {
	case <-other:
		t.Fatal("event leaked to another session")
	default:
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("s1")
	assert.Equal(t, 1, b.Subscribers("s1"))

	b.Unsubscribe("s1", ch)
	assert.Equal(t, 0, b.Subscribers("s1"))
	assert.NoError(t, b.Notify(context.Background(), Event{SessionID: "s1"}))
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("s1")
	defer b.Unsubscribe("s1", ch)

	for i := 0; i < cap(ch)+3; i++ {
		require.NoError(t, b.Notify(context.Background(), Event{SessionID: "s1"}))
	}
	assert.Len(t, ch, cap(ch))
}

type recordingNotifier struct {
	events []Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestFanoutJoinsErrors(t *testing.T) {
	ok := &recordingNotifier{}
	bad := &recordingNotifier{err: errors.New("down")}

	err := Fanout{bad, ok}.Notify(context.Background(), Event{SessionID: "s1"})

	assert.ErrorContains(t, err, "down")
	assert.Len(t, ok.events, 1, "later notifiers still run after a failure")
	assert.Len(t, bad.events, 1)
}

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error { return nil }

func TestPublisherRoutesByType(t *testing.T) {
	fc := &fakeChannel{}
	p := &Publisher{ch: fc, logger: slog.Default()}
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	err := p.Notify(context.Background(), Event{Type: TypePaymentConfirmed, SessionID: "s1", OccurredAt: at})
	require.NoError(t, err)

	assert.Equal(t, exchangeName, fc.exchange)
	assert.Equal(t, TypePaymentConfirmed, fc.key)
	assert.Equal(t, amqp.Persistent, fc.msg.DeliveryMode)
	assert.Equal(t, "s1:"+TypePaymentConfirmed, fc.msg.MessageId)
	assert.Equal(t, at, fc.msg.Timestamp)

	var e Event
	require.NoError(t, json.Unmarshal(fc.msg.Body, &e))
	assert.Equal(t, "s1", e.SessionID)
}

func TestPublisherError(t *testing.T) {
	p := &Publisher{ch: &fakeChannel{err: errors.New("channel closed")}, logger: slog.Default()}
	assert.Error(t, p.Notify(context.Background(), Event{Type: TypePaymentConfirmed}))
}
