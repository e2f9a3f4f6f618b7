// Package events delivers session lifecycle events to browsers waiting on a
// paywall (in-process SSE fan-out) and to downstream services (RabbitMQ).
package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

const TypePaymentConfirmed = "payment.confirmed"

// Event is published once per session state change.
type Event struct {
	Type           string    `json:"type"`
	SessionID      string    `json:"sessionId"`
	ProviderStatus string    `json:"providerStatus,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Notifier accepts events for delivery. Implementations must not block on
// slow consumers.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Fanout delivers to every notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Broker is an in-process pub/sub keyed by session ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the session.
func (b *Broker) Subscribe(sessionID string) chan []byte {
	ch := make(chan []byte, 4)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan []byte]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(sessionID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[sessionID], ch)
	if len(b.subs[sessionID]) == 0 {
		delete(b.subs, sessionID)
	}
	b.mu.Unlock()
}

// Subscribers reports how many channels listen on a session.
func (b *Broker) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[sessionID])
}

func (b *Broker) Notify(_ context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	b.mu.RLock()
	for ch := range b.subs[e.SessionID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
	return nil
}
