package schedule

import (
	"fmt"
	"strings"

	"calendar-booking-api/internal/model"
)

// Booking state machine:
//
//	Pending -> Confirmed (accept)
//	Pending -> Declined  (decline)
//
// Confirmed and Declined are terminal. Deletion by either party is allowed
// from every state and is not a status.
func respondTransition(b *model.Booking, accept bool) (model.BookingStatus, error) {
	if b.Status.Terminal() {
		return "", fmt.Errorf("%w: booking is already %s", ErrInvalidState, strings.ToLower(string(b.Status)))
	}
	if accept {
		return model.StatusConfirmed, nil
	}
	return model.StatusDeclined, nil
}

func requestMessage(bookerName, title string) string {
	return fmt.Sprintf("%s wants to book you: %s", bookerName, title)
}

func responseMessage(bookedName string, st model.BookingStatus, title string) string {
	return fmt.Sprintf("%s %s your booking: %s", bookedName, strings.ToLower(string(st)), title)
}
