package schedule

import "time"

// Event names pushed to fanout groups.
const (
	EventTaskAdded               = "TaskAdded"
	EventTaskUpdated             = "TaskUpdated"
	EventTaskRemoved             = "TaskRemoved"
	EventNewBookingRequest       = "NewBookingRequest"
	EventBookingResponseReceived = "BookingResponseReceived"
	EventBookingCancelled        = "BookingCancelled"
	EventCalendarUpdated         = "CalendarUpdated"
)

// CalendarUpdated types. Calendar_ groups only ever see these generic
// updates, never private booking detail.
const (
	UpdateTaskAdded        = "TaskAdded"
	UpdateTaskUpdated      = "TaskUpdated"
	UpdateTaskRemoved      = "TaskRemoved"
	UpdateBookingConfirmed = "BookingConfirmed"
	UpdateBookingCancelled = "BookingCancelled"
)

type TaskPayload struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Start  time.Time `json:"startTime"`
	End    time.Time `json:"endTime"`
	MadeBy string    `json:"madeBy,omitempty"`
}

type BookingPayload struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"startTime"`
	End         time.Time `json:"endTime"`
	Status      string    `json:"status"`
	MadeBy      string    `json:"madeBy,omitempty"`
	HasConflict bool      `json:"hasConflict"`
}

type BookingResponsePayload struct {
	BookingID      string `json:"bookingId"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	BookedUserName string `json:"bookedUserName"`
}

type BookingCancelledPayload struct {
	BookingID string `json:"bookingId"`
	Title     string `json:"title"`
}

type CalendarUpdate struct {
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	BookingID string `json:"bookingId,omitempty"`
}

func bookingPayload(v *BookingView) BookingPayload {
	return BookingPayload{
		ID:          v.ID,
		Title:       v.Title,
		Location:    v.Location,
		Start:       v.Interval.Start,
		End:         v.Interval.End,
		Status:      string(v.Status),
		MadeBy:      v.BookerName,
		HasConflict: v.HasConflict,
	}
}
