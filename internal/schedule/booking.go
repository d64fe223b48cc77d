package schedule

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"calendar-booking-api/internal/fanout"
	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
)

// CreateBooking asks bookedID for the slot iv. Only the booked user's
// calendar is checked; overlapping pending requests are reported through
// HasConflict and do not block.
func (s *Service) CreateBooking(ctx context.Context, bookerID, bookedID, title, location string, iv interval.Interval) (view *BookingView, err error) {
	ctx, span := s.start(ctx, "CreateBooking")
	defer func() { endSpan(span, err) }()
	fields := logrus.Fields{"booker": bookerID, "booked": bookedID}

	iv = iv.UTC()
	if !iv.Valid() {
		return nil, s.report("create booking", ErrInvalidRange, fields)
	}
	booker, err := s.store.UserByID(ctx, bookerID)
	if err != nil {
		return nil, s.report("create booking", storeErr("load booker", err), fields)
	}
	booked, err := s.store.UserByID(ctx, bookedID)
	if err != nil {
		return nil, s.report("create booking", storeErr("load booked user", err), fields)
	}

	now := s.now().UTC()
	b := model.Booking{
		ID:         uuid.New().String(),
		BookerID:   bookerID,
		BookerName: booker.Username,
		BookedID:   bookedID,
		BookedName: booked.Username,
		Title:      title,
		Location:   location,
		Interval:   iv,
		Status:     model.StatusPending,
		CreatedAt:  now,
	}

	var hasConflict bool
	err = s.store.Atomic(ctx, []string{userLock(bookedID)}, func(tx Store) error {
		var err error
		hasConflict, err = NewValidator(tx).ValidateNewBooking(ctx, bookedID, iv)
		if err != nil {
			return err
		}
		if err := tx.CreateBooking(ctx, &b); err != nil {
			return err
		}
		return tx.CreateNotification(ctx, &model.Notification{
			ID:        uuid.New().String(),
			Message:   requestMessage(booker.Username, title),
			CreatedAt: now,
			BookingID: b.ID,
			BookerID:  bookerID,
			BookedID:  bookedID,
		})
	})
	if err != nil {
		return nil, s.report("create booking", storeErr("create booking", err), fields)
	}

	view = &BookingView{Booking: b, HasConflict: hasConflict}
	s.pub.Publish(ctx, fanout.UserGroup(bookedID), EventNewBookingRequest, bookingPayload(view))
	s.log.WithField("op", "create booking").WithFields(fields).
		WithField("booking", b.ID).WithField("hasConflict", hasConflict).Debug("created")
	return view, nil
}

// RespondToBooking lets the booked user accept or decline a pending request.
// Accepting re-checks the slot, since a task or another confirmation may
// have landed after the request was made.
func (s *Service) RespondToBooking(ctx context.Context, bookingID, actorID string, accept bool) (ok bool, err error) {
	ctx, span := s.start(ctx, "RespondToBooking")
	defer func() { endSpan(span, err) }()
	fields := logrus.Fields{"booking": bookingID, "actor": actorID, "accept": accept}

	pre, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return false, s.report("respond", storeErr("load booking", err), fields)
	}
	if pre.BookedID != actorID {
		return false, s.report("respond", ErrUnauthorized, fields)
	}

	var b *model.Booking
	err = s.store.Atomic(ctx, []string{userLock(pre.BookedID)}, func(tx Store) error {
		cur, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		next, err := respondTransition(cur, accept)
		if err != nil {
			return err
		}
		if next == model.StatusConfirmed {
			conflicts, err := NewValidator(tx).FindConflicts(ctx, cur.BookedID, cur.Interval, "", cur.ID)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return &ConflictError{Msg: "time slot conflicts with an existing confirmed event", Items: conflicts}
			}
		}
		if err := tx.SetBookingStatus(ctx, cur.ID, next); err != nil {
			return err
		}
		cur.Status = next
		b = cur
		return tx.CreateNotification(ctx, &model.Notification{
			ID:        uuid.New().String(),
			Message:   responseMessage(cur.BookedName, next, cur.Title),
			CreatedAt: s.now().UTC(),
			BookingID: cur.ID,
			BookerID:  cur.BookedID,
			BookedID:  cur.BookerID,
		})
	})
	if err != nil {
		return false, s.report("respond", storeErr("respond to booking", err), fields)
	}

	s.pub.Publish(ctx, fanout.UserGroup(b.BookerID), EventBookingResponseReceived, BookingResponsePayload{
		BookingID:      b.ID,
		Title:          b.Title,
		Status:         string(b.Status),
		BookedUserName: b.BookedName,
	})
	if b.Status == model.StatusConfirmed {
		s.pub.Publish(ctx, fanout.CalendarGroup(b.BookedID), EventCalendarUpdated, CalendarUpdate{
			Type:      UpdateBookingConfirmed,
			Title:     b.Title,
			BookingID: b.ID,
		})
	}
	return true, nil
}

// CancelBooking deletes the booking for either party, whatever its status.
func (s *Service) CancelBooking(ctx context.Context, bookingID, actorID string) (b *model.Booking, err error) {
	ctx, span := s.start(ctx, "CancelBooking")
	defer func() { endSpan(span, err) }()
	fields := logrus.Fields{"booking": bookingID, "actor": actorID}

	pre, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, s.report("cancel booking", storeErr("load booking", err), fields)
	}
	if !pre.HasParty(actorID) {
		return nil, s.report("cancel booking", ErrUnauthorized, fields)
	}

	err = s.store.Atomic(ctx, []string{userLock(pre.BookedID)}, func(tx Store) error {
		cur, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := tx.DeleteBooking(ctx, bookingID); err != nil {
			return err
		}
		b = cur
		return nil
	})
	if err != nil {
		return nil, s.report("cancel booking", storeErr("delete booking", err), fields)
	}

	payload := BookingCancelledPayload{BookingID: b.ID, Title: b.Title}
	s.pub.Publish(ctx, fanout.UserGroup(b.BookerID), EventBookingCancelled, payload)
	if b.BookedID != b.BookerID {
		s.pub.Publish(ctx, fanout.UserGroup(b.BookedID), EventBookingCancelled, payload)
	}
	if b.Status == model.StatusConfirmed {
		s.pub.Publish(ctx, fanout.CalendarGroup(b.BookedID), EventCalendarUpdated, CalendarUpdate{
			Type:      UpdateBookingCancelled,
			Title:     b.Title,
			BookingID: b.ID,
		})
	}
	return b, nil
}

// GetPendingForUser returns the requests waiting on userID ordered by start.
// HasConflict is derived here so it is never stale.
func (s *Service) GetPendingForUser(ctx context.Context, userID string) ([]BookingView, error) {
	pending, err := s.store.ListBookings(ctx, model.BookingFilter{
		BookedID: userID,
		Statuses: []model.BookingStatus{model.StatusPending},
	})
	if err != nil {
		return nil, s.report("pending", storeErr("list pending", err), logrus.Fields{"user": userID})
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Interval.Start.Before(pending[j].Interval.Start)
	})

	out := make([]BookingView, len(pending))
	for i := range pending {
		out[i].Booking = pending[i]
	}
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if interval.Overlaps(out[i].Interval, out[j].Interval) {
				out[i].HasConflict = true
				out[j].HasConflict = true
			}
		}
	}
	return out, nil
}

// ListSentBookings returns every booking bookerID made, latest start first.
func (s *Service) ListSentBookings(ctx context.Context, bookerID string) ([]model.Booking, error) {
	sent, err := s.store.ListBookings(ctx, model.BookingFilter{BookerID: bookerID})
	if err != nil {
		return nil, s.report("sent bookings", storeErr("list sent", err), logrus.Fields{"user": bookerID})
	}
	sort.SliceStable(sent, func(i, j int) bool {
		return sent[i].Interval.Start.After(sent[j].Interval.Start)
	})
	return sent, nil
}
