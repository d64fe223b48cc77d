package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"calendar-booking-api/internal/model"
)

func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO notifications (id, message, created_at, is_read, booking_id, booker_id, booked_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		n.ID, n.Message, n.CreatedAt, n.IsRead, n.BookingID, n.BookerID, n.BookedID,
	)
	return mapErr(err)
}

func (s *Store) ListNotifications(ctx context.Context, recipientID string, limit int) ([]model.Notification, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id, message, created_at, is_read, booking_id, booker_id, booked_id
		 FROM notifications
		 WHERE booked_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, recipientID, limit,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Notification, error) {
		var n model.Notification
		err := row.Scan(&n.ID, &n.Message, &n.CreatedAt, &n.IsRead, &n.BookingID, &n.BookerID, &n.BookedID)
		return n, err
	})
	return out, mapErr(err)
}

// MarkNotificationRead only touches rows addressed to recipientID.
func (s *Store) MarkNotificationRead(ctx context.Context, id, recipientID string) (bool, error) {
	tag, err := s.q.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND booked_id = $2`,
		id, recipientID,
	)
	if err != nil {
		if mapErr(err) == model.ErrNotFound {
			return false, nil
		}
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}
