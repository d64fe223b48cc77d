package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func quietLog() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

func recv(t *testing.T, s *Subscriber) Event {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		if !ok {
			t.Fatal("subscriber closed")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHubDeliversToGroupOnly(t *testing.T) {
	h := NewHub(4)
	a := h.Subscribe(UserGroup("a"))
	b := h.Subscribe(UserGroup("b"), CalendarGroup("a"))

	h.deliver(Event{Group: UserGroup("a"), Name: "x"})
	h.deliver(Event{Group: CalendarGroup("a"), Name: "y"})

	if ev := recv(t, a); ev.Name != "x" {
		t.Fatalf("a got %q", ev.Name)
	}
	if ev := recv(t, b); ev.Name != "y" {
		t.Fatalf("b got %q", ev.Name)
	}
	select {
	case ev := <-a.Events():
		t.Fatalf("a got unexpected %q", ev.Name)
	default:
	}
}

func TestHubDropsFullSubscriber(t *testing.T) {
	h := NewHub(1)
	slow := h.Subscribe("g")
	fast := h.Subscribe("g")

	h.deliver(Event{Group: "g", Name: "1"})
	recv(t, fast)
	if n := h.deliver(Event{Group: "g", Name: "2"}); n != 1 {
		t.Fatalf("want 1 delivery, got %d", n)
	}

	// slow still holds event 1, then its channel is closed
	recv(t, slow)
	if _, ok := <-slow.Events(); ok {
		t.Fatal("slow subscriber should be closed")
	}
	if got := h.Groups()["g"]; got != 1 {
		t.Fatalf("group size %d, want 1", got)
	}
}

func TestSubscriberLeaveAndClose(t *testing.T) {
	h := NewHub(4)
	s := h.Subscribe("g1", "g2")
	s.Leave("g1")
	h.deliver(Event{Group: "g1"})
	h.deliver(Event{Group: "g2", Name: "kept"})
	if ev := recv(t, s); ev.Name != "kept" {
		t.Fatalf("got %q", ev.Name)
	}

	s.Close()
	s.Close()
	s.Join("g1")
	if len(h.Groups()) != 0 {
		t.Fatalf("closed subscriber still registered: %v", h.Groups())
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingSink) Deliver(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingSink) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

func TestDispatcherKeepsOrderAndSwallowsSinkErrors(t *testing.T) {
	failing := &recordingSink{err: errors.New("down")}
	rec := &recordingSink{}
	d := NewDispatcher(16, quietLog(), failing, rec)

	for _, n := range []string{"a", "b", "c"} {
		d.Publish(context.Background(), "g", n, map[string]string{"n": n})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { d.Run(ctx); close(done) }()
	cancel()
	<-done

	got := rec.names()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("order: %v", got)
	}
	if len(failing.names()) != 3 {
		t.Fatal("failing sink should still see every event")
	}

	var p map[string]string
	if err := json.Unmarshal(rec.events[1].Payload, &p); err != nil || p["n"] != "b" {
		t.Fatalf("payload: %s %v", rec.events[1].Payload, err)
	}
}

func TestDispatcherPublishNeverBlocks(t *testing.T) {
	d := NewDispatcher(1, quietLog())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			d.Publish(context.Background(), "g", "e", i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}

func TestRelayIgnoresOwnOrigin(t *testing.T) {
	h := NewHub(4)
	s := h.Subscribe("g")
	r := NewRedisRelay(nil, "chan", h, quietLog())

	own, _ := json.Marshal(relayEnvelope{Origin: r.origin, Event: Event{Group: "g", Name: "echo"}})
	remote, _ := json.Marshal(relayEnvelope{Origin: "other", Event: Event{Group: "g", Name: "remote"}})
	r.handle(string(own))
	r.handle("not json")
	r.handle(string(remote))

	if ev := recv(t, s); ev.Name != "remote" {
		t.Fatalf("got %q", ev.Name)
	}
}

func TestRoutingKey(t *testing.T) {
	if got := RoutingKey(Event{Group: UserGroup("42"), Name: "TaskAdded"}); got != "User_42.TaskAdded" {
		t.Fatalf("got %q", got)
	}
}

func TestHubCloseEndsSubscribers(t *testing.T) {
	h := NewHub(4)
	a := h.Subscribe(UserGroup("a"))
	b := h.Subscribe(CalendarGroup("a"))

	h.Close()
	for _, s := range []*Subscriber{a, b} {
		if _, ok := <-s.Events(); ok {
			t.Fatal("events channel still open after Close")
		}
	}
	if !h.Closed() || len(h.Groups()) != 0 {
		t.Fatalf("closed=%v groups=%v", h.Closed(), h.Groups())
	}

	late := h.Subscribe(UserGroup("c"))
	if _, ok := <-late.Events(); ok {
		t.Fatal("subscriber on a closed hub should start closed")
	}
	late.Close()
	if n := h.deliver(Event{Group: UserGroup("c")}); n != 0 {
		t.Fatalf("delivered to %d after Close", n)
	}
}
