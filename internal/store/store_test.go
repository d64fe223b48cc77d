package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
	"calendar-booking-api/internal/schedule"
)

// These tests need a disposable Postgres; they are skipped without one.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	ddl, err := os.ReadFile("../../db/migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(ddl)); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(pool)
}

func mkUser(t *testing.T, s *Store) *model.User {
	t.Helper()
	u := &model.User{ID: uuid.New().String(), Username: "u-" + uuid.New().String()[:8], PasswordHash: "x"}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func slot(h int) interval.Interval {
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return interval.Interval{Start: base.Add(time.Duration(h) * time.Hour), End: base.Add(time.Duration(h+1) * time.Hour)}
}

func TestTaskExclusionConstraint(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := mkUser(t, s)

	a := &model.Task{ID: uuid.New().String(), OwnerID: u.ID, Title: "a", Interval: slot(9), CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := s.CreateTask(ctx, a); err != nil {
		t.Fatal(err)
	}
	b := *a
	b.ID = uuid.New().String()
	if err := s.CreateTask(ctx, &b); !errors.Is(err, model.ErrOverlap) {
		t.Fatalf("want ErrOverlap, got %v", err)
	}
	b.Interval = slot(10)
	if err := s.CreateTask(ctx, &b); err != nil {
		t.Fatalf("touching task rejected: %v", err)
	}

	got, err := s.GetTask(ctx, a.ID)
	if err != nil || got.OwnerName != u.Username {
		t.Fatalf("get: %+v %v", got, err)
	}
	w := slot(9)
	list, err := s.ListTasks(ctx, u.ID, &w, "")
	if err != nil || len(list) != 1 || list[0].ID != a.ID {
		t.Fatalf("window list: %+v %v", list, err)
	}
	if _, err := s.GetTask(ctx, uuid.New().String()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestBookingCascadeAndFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	booker, booked := mkUser(t, s), mkUser(t, s)

	b := &model.Booking{
		ID: uuid.New().String(), BookerID: booker.ID, BookedID: booked.ID,
		Title: "meet", Interval: slot(9), Status: model.StatusPending, CreatedAt: time.Now(),
	}
	if err := s.CreateBooking(ctx, b); err != nil {
		t.Fatal(err)
	}
	n := &model.Notification{ID: uuid.New().String(), Message: "m", CreatedAt: time.Now(), BookingID: b.ID, BookerID: booker.ID, BookedID: booked.ID}
	if err := s.CreateNotification(ctx, n); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListBookings(ctx, model.BookingFilter{BookedID: booked.ID, Statuses: []model.BookingStatus{model.StatusPending}})
	if err != nil || len(list) != 1 || list[0].BookerName != booker.Username {
		t.Fatalf("list: %+v %v", list, err)
	}
	if ok, _ := s.MarkNotificationRead(ctx, n.ID, booker.ID); ok {
		t.Fatal("non-recipient marked read")
	}
	if ok, _ := s.MarkNotificationRead(ctx, n.ID, booked.ID); !ok {
		t.Fatal("recipient could not mark read")
	}

	if err := s.DeleteBooking(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	ns, _ := s.ListNotifications(ctx, booked.ID, 10)
	if len(ns) != 0 {
		t.Fatalf("notifications survived: %+v", ns)
	}
	if err := s.SetBookingStatus(ctx, b.ID, model.StatusConfirmed); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestAtomicRollsBack(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := mkUser(t, s)
	task := &model.Task{ID: uuid.New().String(), OwnerID: u.ID, Title: "t", Interval: slot(3), CreatedAt: time.Now(), UpdatedAt: time.Now()}

	boom := errors.New("boom")
	err := s.Atomic(ctx, []string{"user:" + u.ID}, func(tx schedule.Store) error {
		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
	if _, err := s.GetTask(ctx, task.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("write survived rollback: %v", err)
	}
}
