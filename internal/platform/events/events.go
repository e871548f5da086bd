// Package events carries cache-invalidation hints from writes to live clients.
package events

import (
	"context"
	"sync"
	"time"
)

// Event types broadcast to clients.
const (
	OrderUpdate         = "order_update"
	InventoryUpdate     = "inventory_update"
	CatalogUpdate       = "catalog_update"
	ShiftUpdate         = "shift_update"
	AchievementUnlocked = "achievement_unlocked"
)

// Event is the JSON message pushed over the live channel.
type Event struct {
	Type        string    `json:"type"`
	Entity      string    `json:"entity,omitempty"`
	ID          string    `json:"id,omitempty"`
	OrderID     string    `json:"order_id,omitempty"`
	OrderNumber string    `json:"order_number,omitempty"`
	Status      string    `json:"status,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher accepts events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Bus fans events out to in-process subscribers without blocking publishers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
}

func NewBus() *Bus { return &Bus{subs: make(map[int]chan Event)} }

// Publish delivers ev to every subscriber with room in its buffer.
// Subscribers that are full miss the event.
func (b *Bus) Publish(_ context.Context, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of events and a function that unsubscribes and
// closes it.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
