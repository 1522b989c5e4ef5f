// Package realtime delivers document change notifications to live
// subscribers such as the address book and admin order streams.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Collections that publish changes.
const (
	CollectionAddresses = "addresses"
	CollectionOrders    = "orders"
	CollectionCarts     = "carts"
)

// ChangeKind says what happened to a document.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Change describes one committed mutation.
type Change struct {
	Collection string     `json:"collection"`
	Scope      string     `json:"scope,omitempty"` // owning user id
	DocumentID string     `json:"documentId"`
	Kind       ChangeKind `json:"kind"`
	Origin     string     `json:"origin,omitempty"`
	At         time.Time  `json:"at"`
}

// Query selects changes. An empty Scope matches every owner.
type Query struct {
	Collection string
	Scope      string
}

// Matches reports whether c falls inside the query.
func (q Query) Matches(c Change) bool {
	if q.Collection != "" && q.Collection != c.Collection {
		return false
	}
	return q.Scope == "" || q.Scope == c.Scope
}

// Publisher announces committed changes.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

// Subscriber registers a callback and returns a function that removes it.
type Subscriber interface {
	Subscribe(q Query, onChange func(Change)) (unsubscribe func())
}

// Broker is both ends of the change feed.
type Broker interface {
	Publisher
	Subscriber
}

type subscription struct {
	query    Query
	onChange func(Change)
}

// Hub fans changes out to in-process subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]subscription
	next   uint64
	origin string
}

// NewHub creates a hub with a random origin id.
func NewHub() *Hub {
	return &Hub{
		subs:   make(map[uint64]subscription),
		origin: uuid.New().String(),
	}
}

// Origin identifies this process on a shared bus.
func (h *Hub) Origin() string {
	return h.origin
}

// Subscribe registers onChange for changes matching q.
func (h *Hub) Subscribe(q Query, onChange func(Change)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = subscription{query: q, onChange: onChange}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Publish stamps the change and delivers it locally.
func (h *Hub) Publish(_ context.Context, c Change) error {
	if c.Origin == "" {
		c.Origin = h.origin
	}
	if c.At.IsZero() {
		c.At = time.Now()
	}
	h.deliver(c)
	return nil
}

// deliver runs matching callbacks outside the lock.
func (h *Hub) deliver(c Change) {
	h.mu.RLock()
	targets := make([]func(Change), 0, len(h.subs))
	for _, s := range h.subs {
		if s.query.Matches(c) {
			targets = append(targets, s.onChange)
		}
	}
	h.mu.RUnlock()

	for _, fn := range targets {
		fn(c)
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
