package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
	"calendar-booking-api/internal/schedule"
)

func at(h int) time.Time {
	return time.Date(2025, 3, 10, h, 0, 0, 0, time.UTC)
}

func TestDeleteBookingCascadesNotifications(t *testing.T) {
	ctx := context.Background()
	s := New()

	b := &model.Booking{ID: "b1", BookerID: "a", BookedID: "b", Interval: interval.Interval{Start: at(9), End: at(10)}, Status: model.StatusPending}
	if err := s.CreateBooking(ctx, b); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateNotification(ctx, &model.Notification{ID: "n1", BookingID: "b1", BookerID: "a", BookedID: "b", CreatedAt: at(8)}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteBooking(ctx, "b1"); err != nil {
		t.Fatal(err)
	}

	ns, _ := s.ListNotifications(ctx, "b", 10)
	if len(ns) != 0 {
		t.Fatalf("expected cascade, got %d notifications", len(ns))
	}
	if err := s.DeleteBooking(ctx, "b1"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestListNotificationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.CreateBooking(ctx, &model.Booking{ID: "b1", BookedID: "u"})

	for i, id := range []string{"old", "mid", "new"} {
		_ = s.CreateNotification(ctx, &model.Notification{ID: id, BookingID: "b1", BookedID: "u", CreatedAt: at(i)})
	}
	ns, err := s.ListNotifications(ctx, "u", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(ns) != 2 || ns[0].ID != "new" || ns[1].ID != "mid" {
		t.Fatalf("unexpected order: %+v", ns)
	}

	ok, _ := s.MarkNotificationRead(ctx, "new", "someone-else")
	if ok {
		t.Fatal("non-recipient marked notification read")
	}
	ok, _ = s.MarkNotificationRead(ctx, "new", "u")
	if !ok {
		t.Fatal("recipient could not mark read")
	}
}

func TestListBookingsFilter(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.CreateBooking(ctx, &model.Booking{ID: "late", BookedID: "u", Status: model.StatusConfirmed, Interval: interval.Interval{Start: at(14), End: at(15)}})
	_ = s.CreateBooking(ctx, &model.Booking{ID: "early", BookedID: "u", Status: model.StatusPending, Interval: interval.Interval{Start: at(9), End: at(10)}})
	_ = s.CreateBooking(ctx, &model.Booking{ID: "other", BookedID: "v", Status: model.StatusConfirmed, Interval: interval.Interval{Start: at(9), End: at(10)}})

	all, _ := s.ListBookings(ctx, model.BookingFilter{BookedID: "u"})
	if len(all) != 2 || all[0].ID != "early" {
		t.Fatalf("want start-ordered [early late], got %+v", all)
	}

	w := interval.Interval{Start: at(10), End: at(14)}
	none, _ := s.ListBookings(ctx, model.BookingFilter{BookedID: "u", Window: &w})
	if len(none) != 0 {
		t.Fatalf("touching bookings must not match window, got %d", len(none))
	}

	confirmed, _ := s.ListBookings(ctx, model.BookingFilter{BookedID: "u", Statuses: []model.BookingStatus{model.StatusConfirmed}})
	if len(confirmed) != 1 || confirmed[0].ID != "late" {
		t.Fatalf("status filter: got %+v", confirmed)
	}
}

func TestAtomicSerializesSameKey(t *testing.T) {
	ctx := context.Background()
	s := New()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Atomic(ctx, []string{"user:x", "user:x"}, func(schedule.Store) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("expected serialized units, saw %d concurrent", maxSeen)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreateUser(ctx, &model.User{ID: "1", Username: "ana"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(ctx, &model.User{ID: "2", Username: "ana"}); !errors.Is(err, model.ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
	u, err := s.UserByUsername(ctx, "ana")
	if err != nil || u.ID != "1" {
		t.Fatalf("lookup: %v %+v", err, u)
	}
}
