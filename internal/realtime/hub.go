// Package realtime fans committed bids out to subscribers of an auction. The
// local Hub never blocks a publisher; RedisBroadcaster relays events between
// server instances.
package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const defaultBuffer = 16

// Publisher delivers an event to every subscriber of its auction.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Hub struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]map[*Subscription]struct{}
	buffer  int
	dropped uint64
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[uuid.UUID]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscription receives the events of one auction until Close.
type Subscription struct {
	hub       *Hub
	auctionID uuid.UUID
	ch        chan Event
	once      sync.Once
}

func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close detaches the subscription and closes its channel. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		if set, ok := s.hub.subs[s.auctionID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(s.hub.subs, s.auctionID)
			}
		}
		close(s.ch)
	})
}

func (h *Hub) Subscribe(auctionID uuid.UUID) *Subscription {
	sub := &Subscription{
		hub:       h,
		auctionID: auctionID,
		ch:        make(chan Event, h.buffer),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[auctionID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[auctionID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Publish hands ev to every local subscriber of its auction. A subscriber
// whose buffer is full misses the event; the drop is counted.
func (h *Hub) Publish(ctx context.Context, ev Event) error {
	h.fanout(ev)
	return nil
}

func (h *Hub) fanout(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[ev.AuctionID] {
		select {
		case sub.ch <- ev:
		default:
			atomic.AddUint64(&h.dropped, 1)
		}
	}
}

// Dropped is the number of events discarded for slow subscribers.
func (h *Hub) Dropped() uint64 {
	return atomic.LoadUint64(&h.dropped)
}

func (h *Hub) SubscriberCount(auctionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[auctionID])
}
