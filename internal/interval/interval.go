package interval

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("start must be before end")

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// New normalizes both ends to UTC and rejects empty or inverted ranges.
func New(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start.UTC(), End: end.UTC()}
	if !iv.Valid() {
		return iv, ErrInvalidRange
	}
	return iv, nil
}

func (i Interval) Valid() bool { return i.Start.Before(i.End) }

func (i Interval) UTC() Interval {
	return Interval{Start: i.Start.UTC(), End: i.End.UTC()}
}

func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

// Overlaps reports whether a and b share any instant. Touching intervals
// (a.End == b.Start) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// Contains reports whether t falls in [i.Start, i.End).
func Contains(t time.Time, i Interval) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Day returns the UTC calendar day containing t.
func Day(t time.Time) Interval {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

// ClampToDay cuts i down to the UTC day containing day. ok is false when
// nothing of i falls on that day.
func ClampToDay(i Interval, day time.Time) (Interval, bool) {
	d := Day(day)
	if !Overlaps(i, d) {
		return Interval{}, false
	}
	out := i.UTC()
	if out.Start.Before(d.Start) {
		out.Start = d.Start
	}
	if out.End.After(d.End) {
		out.End = d.End
	}
	return out, true
}
