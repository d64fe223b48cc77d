package schedule

import (
	"context"

	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
)

// Validator applies the admission rules against one store view, normally
// the unit handed out by Store.Atomic.
type Validator struct {
	st Store
}

func NewValidator(st Store) *Validator {
	return &Validator{st: st}
}

// FindConflicts returns every task of target and every confirmed booking
// addressed to target that overlaps iv. Pending bookings never conflict.
func (v *Validator) FindConflicts(ctx context.Context, target string, iv interval.Interval, excludeTaskID, excludeBookingID string) ([]Item, error) {
	iv = iv.UTC()

	tasks, err := v.st.ListTasks(ctx, target, &iv, excludeTaskID)
	if err != nil {
		return nil, err
	}
	bookings, err := v.st.ListBookings(ctx, model.BookingFilter{
		BookedID:  target,
		Statuses:  []model.BookingStatus{model.StatusConfirmed},
		Window:    &iv,
		ExcludeID: excludeBookingID,
	})
	if err != nil {
		return nil, err
	}

	var out []Item
	for _, t := range tasks {
		if t.ID != excludeTaskID && interval.Overlaps(t.Interval, iv) {
			out = append(out, taskItem(t))
		}
	}
	for _, b := range bookings {
		if b.ID != excludeBookingID && b.Status == model.StatusConfirmed && interval.Overlaps(b.Interval, iv) {
			out = append(out, bookingItem(b))
		}
	}
	return out, nil
}

// FindConflictingPending returns the pending bookings addressed to target
// that overlap iv. It never blocks anything; it only feeds hasConflict.
func (v *Validator) FindConflictingPending(ctx context.Context, target string, iv interval.Interval, excludeBookingID string) ([]model.Booking, error) {
	iv = iv.UTC()
	pending, err := v.st.ListBookings(ctx, model.BookingFilter{
		BookedID:  target,
		Statuses:  []model.BookingStatus{model.StatusPending},
		Window:    &iv,
		ExcludeID: excludeBookingID,
	})
	if err != nil {
		return nil, err
	}
	out := pending[:0]
	for _, b := range pending {
		if b.ID != excludeBookingID && interval.Overlaps(b.Interval, iv) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (v *Validator) ValidateNewTask(ctx context.Context, ownerID, title string, iv interval.Interval) error {
	return v.validateTask(ctx, ownerID, title, iv, "")
}

// ValidateTaskUpdate checks the task's new state, ignoring the task itself.
func (v *Validator) ValidateTaskUpdate(ctx context.Context, t *model.Task) error {
	return v.validateTask(ctx, t.OwnerID, t.Title, t.Interval, t.ID)
}

func (v *Validator) validateTask(ctx context.Context, ownerID, title string, iv interval.Interval, excludeID string) error {
	if !iv.Valid() {
		return ErrInvalidRange
	}
	conflicts, err := v.FindConflicts(ctx, ownerID, iv, excludeID, "")
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}
	for _, c := range conflicts {
		if c.Kind == KindTask && c.Title == title &&
			c.Interval.Start.Equal(iv.Start) && c.Interval.End.Equal(iv.End) {
			return &ConflictError{Msg: "task already exists", Items: conflicts}
		}
	}
	return &ConflictError{Msg: "time conflicts with existing item", Items: conflicts}
}

// ValidateNewBooking checks iv against the booked user's calendar only.
// hasConflict reports overlapping pending requests, which do not block.
func (v *Validator) ValidateNewBooking(ctx context.Context, bookedID string, iv interval.Interval) (hasConflict bool, err error) {
	if !iv.Valid() {
		return false, ErrInvalidRange
	}
	conflicts, err := v.FindConflicts(ctx, bookedID, iv, "", "")
	if err != nil {
		return false, err
	}
	if len(conflicts) > 0 {
		return false, &ConflictError{Msg: "time slot conflicts with an existing confirmed event", Items: conflicts}
	}
	pending, err := v.FindConflictingPending(ctx, bookedID, iv, "")
	if err != nil {
		return false, err
	}
	return len(pending) > 0, nil
}
