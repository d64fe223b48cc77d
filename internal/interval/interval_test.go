package interval

import (
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	base := Interval{at(9, 0), at(10, 0)}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", Interval{at(9, 0), at(10, 0)}, true},
		{"partial after", Interval{at(9, 30), at(10, 30)}, true},
		{"partial before", Interval{at(8, 30), at(9, 30)}, true},
		{"contained", Interval{at(9, 15), at(9, 45)}, true},
		{"containing", Interval{at(8, 0), at(11, 0)}, true},
		{"touching end", Interval{at(10, 0), at(11, 0)}, false},
		{"touching start", Interval{at(8, 0), at(9, 0)}, false},
		{"disjoint", Interval{at(12, 0), at(13, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(base, tt.other); got != tt.want {
				t.Errorf("Overlaps(base, other) = %v, want %v", got, tt.want)
			}
			// symmetric
			if got := Overlaps(tt.other, base); got != tt.want {
				t.Errorf("Overlaps(other, base) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlapsTouchingNumeric(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	a := Interval{epoch, epoch.Add(10 * time.Second)}
	b := Interval{epoch.Add(10 * time.Second), epoch.Add(20 * time.Second)}
	if Overlaps(a, b) {
		t.Fatal("touching intervals must not overlap")
	}
}

func TestNew(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2024, 1, 1, 11, 0, 0, 0, loc)

	iv, err := New(start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if iv.Start.Location() != time.UTC {
		t.Errorf("start not normalized to UTC: %v", iv.Start.Location())
	}
	if !iv.Start.Equal(at(9, 0)) {
		t.Errorf("start: got %v", iv.Start)
	}

	if _, err := New(start, start); err != ErrInvalidRange {
		t.Errorf("empty range: got %v", err)
	}
	if _, err := New(start, start.Add(-time.Minute)); err != ErrInvalidRange {
		t.Errorf("inverted range: got %v", err)
	}
}

func TestContains(t *testing.T) {
	iv := Interval{at(9, 0), at(10, 0)}
	if !Contains(at(9, 0), iv) {
		t.Error("start should be contained")
	}
	if Contains(at(10, 0), iv) {
		t.Error("end is exclusive")
	}
	if Contains(at(8, 59), iv) {
		t.Error("before start")
	}
}

func TestClampToDay(t *testing.T) {
	overnight := Interval{
		time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC),
	}

	first, ok := ClampToDay(overnight, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("expected segment on first day")
	}
	if !first.End.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first day end: %v", first.End)
	}

	second, ok := ClampToDay(overnight, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("expected segment on second day")
	}
	if !second.Start.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) || !second.End.Equal(overnight.End) {
		t.Errorf("second day: %v - %v", second.Start, second.End)
	}

	if _, ok := ClampToDay(overnight, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)); ok {
		t.Error("no segment expected on third day")
	}
}
