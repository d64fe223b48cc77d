package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Service implements the calendar operations. Every mutation runs its
// conflict check and write inside Store.Atomic keyed by the calendar owner,
// and publishes only after that unit has committed.
type Service struct {
	store  Store
	pub    Publisher
	log    *logrus.Entry
	tracer trace.Tracer
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func New(st Store, pub Publisher, log *logrus.Entry, opts ...Option) *Service {
	if pub == nil {
		pub = nopPublisher{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Service{
		store:  st,
		pub:    pub,
		log:    log.WithField("component", "schedule"),
		tracer: otel.Tracer("calendar-booking-api/schedule"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "schedule."+op)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}

// logRejected records why an admission failed.
func (s *Service) logRejected(op string, err error, fields logrus.Fields) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		ids := make([]string, 0, len(ce.Items))
		for _, it := range ce.Items {
			ids = append(ids, string(it.Kind)+":"+it.ID)
		}
		fields["conflicts"] = ids
	}
	s.log.WithField("op", op).WithFields(fields).WithError(err).Info("rejected")
}

// report logs a failed operation and returns err unchanged.
func (s *Service) report(op string, err error, fields logrus.Fields) error {
	if err == nil {
		return nil
	}
	if fields == nil {
		fields = logrus.Fields{}
	}
	if isDomain(err) {
		s.logRejected(op, err, fields)
		return err
	}
	s.log.WithField("op", op).WithFields(fields).WithError(err).Error("failed")
	return err
}
