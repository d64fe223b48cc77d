package model

import (
	"errors"
	"time"

	"calendar-booking-api/internal/interval"
)

var (
	// ErrNotFound is returned by stores when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrOverlap is returned by stores when a storage-level overlap guard fires.
	ErrOverlap = errors.New("overlapping row")
	// ErrDuplicate is returned when a unique key (username) is taken.
	ErrDuplicate = errors.New("duplicate row")
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Task struct {
	ID        string
	OwnerID   string
	OwnerName string
	Title     string
	Interval  interval.Interval
	CreatedAt time.Time
	UpdatedAt time.Time
}

type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusConfirmed BookingStatus = "Confirmed"
	StatusDeclined  BookingStatus = "Declined"
)

func (s BookingStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusDeclined
}

type Booking struct {
	ID         string
	BookerID   string
	BookerName string
	BookedID   string
	BookedName string
	Title      string
	Location   string
	Interval   interval.Interval
	Status     BookingStatus
	CreatedAt  time.Time
}

// HasParty reports whether userID is the booker or the booked user.
func (b *Booking) HasParty(userID string) bool {
	return b.BookerID == userID || b.BookedID == userID
}

// Notification is addressed to BookedID and records BookerID as the actor,
// whichever side of the booking they are on.
type Notification struct {
	ID        string
	Message   string
	CreatedAt time.Time
	IsRead    bool
	BookingID string
	BookerID  string
	BookedID  string
}

// BookingFilter narrows booking queries. Zero fields are ignored.
type BookingFilter struct {
	BookerID  string
	BookedID  string
	Statuses  []BookingStatus
	Window    *interval.Interval
	ExcludeID string
}
