package fanout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Sink receives every published event in publish order.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// Dispatcher is the publisher handed to the scheduling core. Publish only
// enqueues; a single worker started by Run feeds the sinks, which keeps
// per-group order equal to publish order.
type Dispatcher struct {
	queue chan Event
	sinks []Sink
	log   *logrus.Entry
	now   func() time.Time
}

func NewDispatcher(buffer int, log *logrus.Entry, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 1024
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Dispatcher{
		queue: make(chan Event, buffer),
		sinks: sinks,
		log:   log.WithField("component", "fanout"),
		now:   time.Now,
	}
}

// Publish never blocks. When the queue is full the event is dropped.
func (d *Dispatcher) Publish(_ context.Context, group, event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		d.log.WithError(err).WithField("event", event).Error("encode payload")
		return
	}
	ev := Event{Group: group, Name: event, Payload: raw, At: d.now().UTC()}
	select {
	case d.queue <- ev:
	default:
		d.log.WithFields(logrus.Fields{"group": group, "event": event}).Warn("queue full, event dropped")
	}
}

// Run delivers queued events until ctx is done, then drains what is left.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case ev := <-d.queue:
			d.dispatch(ctx, ev)
		case <-ctx.Done():
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case ev := <-d.queue:
			d.dispatch(ctx, ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, ev Event) {
	for _, s := range d.sinks {
		if err := s.Deliver(ctx, ev); err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{"group": ev.Group, "event": ev.Name}).Warn("sink failed")
		}
	}
}
