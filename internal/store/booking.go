package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"calendar-booking-api/internal/model"
)

const bookingSelect = `SELECT b.id, b.booker_id, br.username, b.booked_id, bd.username,
	       b.title, b.location, b.start_time, b.end_time, b.status, b.created_at
	FROM bookings b
	JOIN users br ON br.id = b.booker_id
	JOIN users bd ON bd.id = b.booked_id`

func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO bookings (id, booker_id, booked_id, title, location, start_time, end_time, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		b.ID, b.BookerID, b.BookedID, b.Title, b.Location,
		b.Interval.Start, b.Interval.End, string(b.Status), b.CreatedAt,
	)
	return mapErr(err)
}

func (s *Store) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	rows, err := s.q.Query(ctx, bookingSelect+` WHERE b.id = $1`, id)
	if err != nil {
		return nil, mapErr(err)
	}
	b, err := pgx.CollectExactlyOneRow(rows, scanBooking)
	if err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (s *Store) SetBookingStatus(ctx context.Context, id string, st model.BookingStatus) error {
	return execOne(s.q.Exec(ctx, `UPDATE bookings SET status=$1 WHERE id=$2`, string(st), id))
}

// DeleteBooking relies on ON DELETE CASCADE for the notifications.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	return execOne(s.q.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id))
}

func (s *Store) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.BookerID != "" {
		where = append(where, "b.booker_id = "+arg(f.BookerID))
	}
	if f.BookedID != "" {
		where = append(where, "b.booked_id = "+arg(f.BookedID))
	}
	if f.ExcludeID != "" {
		where = append(where, "b.id <> "+arg(f.ExcludeID))
	}
	if f.Window != nil {
		where = append(where, "b.start_time < "+arg(f.Window.End))
		where = append(where, "b.end_time > "+arg(f.Window.Start))
	}
	if len(f.Statuses) > 0 {
		sts := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			sts[i] = string(st)
		}
		where = append(where, "b.status = ANY("+arg(sts)+")")
	}

	q := bookingSelect
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY b.start_time`

	rows, err := s.q.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := pgx.CollectRows(rows, scanBooking)
	return out, mapErr(err)
}

func scanBooking(row pgx.CollectableRow) (model.Booking, error) {
	var (
		b  model.Booking
		st string
	)
	err := row.Scan(&b.ID, &b.BookerID, &b.BookerName, &b.BookedID, &b.BookedName,
		&b.Title, &b.Location, &b.Interval.Start, &b.Interval.End, &st, &b.CreatedAt)
	b.Status = model.BookingStatus(st)
	b.Interval = b.Interval.UTC()
	return b, err
}
