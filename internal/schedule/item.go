package schedule

import (
	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
)

type ItemKind string

const (
	KindTask    ItemKind = "task"
	KindBooking ItemKind = "booking"
)

// Item is the shared projection of tasks and bookings on a calendar.
// Status is empty for tasks.
type Item struct {
	Kind     ItemKind
	ID       string
	Interval interval.Interval
	Title    string
	Location string
	MadeBy   string
	Status   model.BookingStatus
}

func taskItem(t model.Task) Item {
	return Item{
		Kind:     KindTask,
		ID:       t.ID,
		Interval: t.Interval,
		Title:    t.Title,
		MadeBy:   t.OwnerName,
	}
}

func bookingItem(b model.Booking) Item {
	return Item{
		Kind:     KindBooking,
		ID:       b.ID,
		Interval: b.Interval,
		Title:    b.Title,
		Location: b.Location,
		MadeBy:   b.BookerName,
		Status:   b.Status,
	}
}

// BookingView is a booking as shown to one of its parties.
type BookingView struct {
	model.Booking
	HasConflict bool
}
