package schedule

import (
	"context"

	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
)

// Store is the persistence the scheduling core needs. Implementations return
// model.ErrNotFound for missing rows.
type Store interface {
	// Atomic runs fn as one unit. Callers passing any common key are
	// serialized; fn receives a Store bound to the unit.
	Atomic(ctx context.Context, keys []string, fn func(tx Store) error) error

	UserByID(ctx context.Context, id string) (*model.User, error)

	CreateTask(ctx context.Context, t *model.Task) error
	UpdateTask(ctx context.Context, t *model.Task) error
	DeleteTask(ctx context.Context, id string) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	// ListTasks returns the owner's tasks ordered by start. A nil window
	// returns all of them; otherwise only tasks overlapping it.
	ListTasks(ctx context.Context, ownerID string, window *interval.Interval, excludeID string) ([]model.Task, error)

	CreateBooking(ctx context.Context, b *model.Booking) error
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	SetBookingStatus(ctx context.Context, id string, st model.BookingStatus) error
	// DeleteBooking removes the booking and its notifications.
	DeleteBooking(ctx context.Context, id string) error
	// ListBookings returns matching bookings ordered by start.
	ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error)

	CreateNotification(ctx context.Context, n *model.Notification) error
	// ListNotifications returns the recipient's notifications newest first.
	ListNotifications(ctx context.Context, recipientID string, limit int) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipientID string) (bool, error)
}

// Publisher hands events to the fanout. It must not block.
type Publisher interface {
	Publish(ctx context.Context, group, event string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, string, any) {}

func userLock(id string) string { return "user:" + id }
