package fanout

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Hub is the registry of live subscribers. Delivery never waits on a slow
// reader: a subscriber whose buffer is full is dropped.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[string]*Subscriber
	subs   map[string]*Subscriber
	buffer int
	closed bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		groups: make(map[string]map[string]*Subscriber),
		subs:   make(map[string]*Subscriber),
		buffer: buffer,
	}
}

type Subscriber struct {
	ID     string
	events chan Event
	once   sync.Once
	hub    *Hub
}

// Events is closed when the subscriber is dropped or closed.
func (s *Subscriber) Events() <-chan Event { return s.events }

func (s *Subscriber) Join(group string) { s.hub.join(s, group) }

func (s *Subscriber) Leave(group string) { s.hub.leave(s, group) }

// Close removes the subscriber from every group.
func (s *Subscriber) Close() { s.hub.remove(s) }

// Subscribe registers a subscriber in groups. On a closed hub the
// subscriber's Events channel is already closed.
func (h *Hub) Subscribe(groups ...string) *Subscriber {
	s := &Subscriber{
		ID:     uuid.New().String(),
		events: make(chan Event, h.buffer),
		hub:    h,
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		s.once.Do(func() { close(s.events) })
		return s
	}
	h.subs[s.ID] = s
	h.mu.Unlock()
	for _, g := range groups {
		h.join(s, g)
	}
	return s
}

func (h *Hub) join(s *Subscriber, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, live := h.subs[s.ID]; !live {
		return
	}
	set, ok := h.groups[group]
	if !ok {
		set = make(map[string]*Subscriber)
		h.groups[group] = set
	}
	set[s.ID] = s
}

func (h *Hub) leave(s *Subscriber, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(s, group)
}

func (h *Hub) leaveLocked(s *Subscriber, group string) {
	set, ok := h.groups[group]
	if !ok {
		return
	}
	delete(set, s.ID)
	if len(set) == 0 {
		delete(h.groups, group)
	}
}

func (h *Hub) remove(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s)
}

func (h *Hub) removeLocked(s *Subscriber) {
	if _, ok := h.subs[s.ID]; !ok {
		return
	}
	delete(h.subs, s.ID)
	for g := range h.groups {
		h.leaveLocked(s, g)
	}
	s.once.Do(func() { close(s.events) })
}

// Close ends every subscription and refuses new ones. Streams reading
// Events see their channel close and return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, s := range h.subs {
		h.removeLocked(s)
	}
}

// Closed reports whether Close has run.
func (h *Hub) Closed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

// Deliver hands ev to every subscriber of its group.
func (h *Hub) Deliver(_ context.Context, ev Event) error {
	h.deliver(ev)
	return nil
}

func (h *Hub) deliver(ev Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	var slow []*Subscriber
	for _, s := range h.groups[ev.Group] {
		select {
		case s.events <- ev:
			sent++
		default:
			slow = append(slow, s)
		}
	}
	for _, s := range slow {
		h.removeLocked(s)
	}
	return sent
}

// Groups returns how many subscribers each live group has.
func (h *Hub) Groups() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(h.groups))
	for g, set := range h.groups {
		out[g] = len(set)
	}
	return out
}
