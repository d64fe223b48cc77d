package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
)

const (
	busyLabel    = "Busy"
	maxDayWindow = 366 * 24 * time.Hour
)

// Assembler builds the visibility-filtered calendar of one user.
type Assembler struct {
	st Store
}

func NewAssembler(st Store) *Assembler {
	return &Assembler{st: st}
}

// BusinessForInterval returns everything occupying target's calendar in iv.
// An external viewer sees confirmed bookings only, and bookings target made
// on other calendars appear as Busy with no detail. Order is unspecified.
func (a *Assembler) BusinessForInterval(ctx context.Context, target string, iv interval.Interval, isOwner bool) ([]Item, error) {
	iv = iv.UTC()

	tasks, err := a.st.ListTasks(ctx, target, &iv, "")
	if err != nil {
		return nil, err
	}
	incomingStatuses := []model.BookingStatus{model.StatusConfirmed}
	if isOwner {
		incomingStatuses = append(incomingStatuses, model.StatusPending)
	}
	incoming, err := a.st.ListBookings(ctx, model.BookingFilter{
		BookedID: target,
		Statuses: incomingStatuses,
		Window:   &iv,
	})
	if err != nil {
		return nil, err
	}
	outgoing, err := a.st.ListBookings(ctx, model.BookingFilter{
		BookerID: target,
		Statuses: []model.BookingStatus{model.StatusConfirmed},
		Window:   &iv,
	})
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(tasks)+len(incoming)+len(outgoing))
	for _, t := range tasks {
		if interval.Overlaps(t.Interval, iv) {
			items = append(items, taskItem(t))
		}
	}

	seen := make(map[string]bool, len(incoming))
	for _, b := range incoming {
		if !interval.Overlaps(b.Interval, iv) {
			continue
		}
		if b.Status != model.StatusConfirmed && !(isOwner && b.Status == model.StatusPending) {
			continue
		}
		seen[b.ID] = true
		items = append(items, bookingItem(b))
	}
	for _, b := range outgoing {
		if seen[b.ID] || b.Status != model.StatusConfirmed || !interval.Overlaps(b.Interval, iv) {
			continue
		}
		it := bookingItem(b)
		if isOwner {
			it.MadeBy = "You → " + b.BookedName
		} else {
			it.Title = busyLabel
			it.Location = ""
			it.MadeBy = busyLabel
		}
		items = append(items, it)
	}
	return items, nil
}

// Segment is the part of an item that falls on one day. Continued is set
// when the item started on an earlier day.
type Segment struct {
	Item      Item
	Interval  interval.Interval
	Continued bool
}

type DayBucket struct {
	Day      time.Time
	Segments []Segment
}

// BucketByDay splits items into one bucket per UTC day of window, each
// sorted by segment start. Days with nothing on them are kept.
func BucketByDay(items []Item, window interval.Interval) []DayBucket {
	window = window.UTC()
	if !window.Valid() {
		return nil
	}
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Interval.Start.Before(sorted[j].Interval.Start)
	})

	var out []DayBucket
	for day := interval.Day(window.Start).Start; day.Before(window.End); day = day.AddDate(0, 0, 1) {
		bucket := DayBucket{Day: day}
		for _, it := range sorted {
			seg, ok := interval.ClampToDay(it.Interval, day)
			if !ok {
				continue
			}
			bucket.Segments = append(bucket.Segments, Segment{
				Item:      it,
				Interval:  seg,
				Continued: !interval.Contains(it.Interval.Start, interval.Day(day)),
			})
		}
		out = append(out, bucket)
	}
	return out
}

// DefaultWindow is the range used when a caller gives none.
func DefaultWindow(now time.Time) interval.Interval {
	now = now.UTC()
	return interval.Interval{Start: now.AddDate(0, 0, -30), End: now.AddDate(0, 2, 0)}
}

// GetScheduleForInterval is the calendar of targetID as viewerID may see it.
// A zero iv selects DefaultWindow.
func (s *Service) GetScheduleForInterval(ctx context.Context, targetID, viewerID string, iv interval.Interval) (items []Item, err error) {
	ctx, span := s.start(ctx, "GetScheduleForInterval")
	defer func() { endSpan(span, err) }()
	fields := logrus.Fields{"target": targetID, "viewer": viewerID}

	if iv.Start.IsZero() && iv.End.IsZero() {
		iv = DefaultWindow(s.now())
	}
	iv = iv.UTC()
	if !iv.Valid() {
		return nil, s.report("schedule", ErrInvalidRange, fields)
	}
	items, err = NewAssembler(s.store).BusinessForInterval(ctx, targetID, iv, viewerID == targetID)
	if err != nil {
		return nil, s.report("schedule", storeErr("assemble schedule", err), fields)
	}
	return items, nil
}

// GetScheduleByDay is GetScheduleForInterval bucketed per UTC day.
func (s *Service) GetScheduleByDay(ctx context.Context, targetID, viewerID string, iv interval.Interval) ([]DayBucket, error) {
	if iv.Start.IsZero() && iv.End.IsZero() {
		iv = DefaultWindow(s.now())
	}
	iv = iv.UTC()
	if iv.Valid() && iv.Duration() > maxDayWindow {
		err := fmt.Errorf("%w: window longer than %d days", ErrInvalidRange, int(maxDayWindow.Hours()/24))
		return nil, s.report("schedule by day", err, logrus.Fields{"target": targetID})
	}
	items, err := s.GetScheduleForInterval(ctx, targetID, viewerID, iv)
	if err != nil {
		return nil, err
	}
	return BucketByDay(items, iv), nil
}
