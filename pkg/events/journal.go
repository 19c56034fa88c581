// Package events implements the append-only audit journal from spec §4.6:
// every state transition is recorded as an Event and, best-effort, pushed to
// live subscribers. The in-process fan-out below is warren's broker
// (pkg/events/events.go) adapted to the coordinator's types.Event instead of
// warren's cluster EventType.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/cuemby/coordinator/pkg/log"
	"github.com/cuemby/coordinator/pkg/storage"
	"github.com/cuemby/coordinator/pkg/types"
)

// Subscriber is a channel that receives journaled events as they are
// appended, for a live activity feed.
type Subscriber chan *types.Event

// Broker fans a published event out to all current subscribers, dropping
// the event for any subscriber whose buffer is full rather than blocking
// the journal.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[Subscriber]bool
}

// NewBroker builds an empty Broker.
func NewBroker() *Broker {
	return &Broker{subscribers: make(map[Subscriber]bool)}
}

// Subscribe registers a new channel and returns it.
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := make(Subscriber, 50)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe deregisters and closes sub.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribers[sub] {
		delete(b.subscribers, sub)
		close(sub)
	}
}

func (b *Broker) broadcast(ev *types.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subscribers {
		select {
		case sub <- ev:
		default:
		}
	}
}

// Publisher ships a persisted Event to something outside the process — a
// webhook, a message bus topic. Emission failures must never roll back the
// already-persisted Event, so Publish only ever gets logged, never returned
// to the journal's caller.
type Publisher interface {
	Publish(ctx context.Context, ev *types.Event) error
}

// NopPublisher discards every event. It is the default when no external
// sink is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, *types.Event) error { return nil }

// Journal persists Events through Store and best-effort fans them out to
// in-process subscribers and an external Publisher.
type Journal struct {
	store     storage.Store
	broker    *Broker
	publisher Publisher
}

// NewJournal builds a Journal. publisher may be NopPublisher{}.
func NewJournal(store storage.Store, broker *Broker, publisher Publisher) *Journal {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Journal{store: store, broker: broker, publisher: publisher}
}

// Append persists ev, then best-effort broadcasts it to subscribers and the
// configured Publisher. A Publish failure is logged and swallowed: the
// event is already durable by the time Append returns nil. An Event with a
// zero CreatedAt is stamped with the current time before it is stored.
func (j *Journal) Append(ctx context.Context, ev *types.Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	if err := j.store.CreateEvent(ctx, ev); err != nil {
		return err
	}

	j.broker.broadcast(ev)

	if err := j.publisher.Publish(ctx, ev); err != nil {
		log.Logger.Error().Err(err).Str("event_id", ev.ID).Msg("events: publish failed")
	}

	return nil
}

// Subscribe registers for a live feed of appended events.
func (j *Journal) Subscribe() Subscriber {
	return j.broker.Subscribe()
}

// Unsubscribe removes a previously registered subscription.
func (j *Journal) Unsubscribe(sub Subscriber) {
	j.broker.Unsubscribe(sub)
}
