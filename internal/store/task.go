package store

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"

	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
)

const taskColumns = `t.id, t.owner_id, u.username, t.title, t.start_time, t.end_time, t.created_at, t.updated_at`

func (s *Store) CreateTask(ctx context.Context, t *model.Task) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO tasks (id, owner_id, title, start_time, end_time, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.OwnerID, t.Title, t.Interval.Start, t.Interval.End, t.CreatedAt, t.UpdatedAt,
	)
	return mapErr(err)
}

func (s *Store) UpdateTask(ctx context.Context, t *model.Task) error {
	return execOne(s.q.Exec(ctx,
		`UPDATE tasks SET title=$1, start_time=$2, end_time=$3, updated_at=$4
		 WHERE id=$5`,
		t.Title, t.Interval.Start, t.Interval.End, t.UpdatedAt, t.ID,
	))
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return execOne(s.q.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, id))
}

func (s *Store) GetTask(ctx context.Context, id string) (*model.Task, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t JOIN users u ON u.id = t.owner_id
		 WHERE t.id = $1`, id,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, scanTask)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (s *Store) ListTasks(ctx context.Context, ownerID string, window *interval.Interval, excludeID string) ([]model.Task, error) {
	q := `SELECT ` + taskColumns + `
		FROM tasks t JOIN users u ON u.id = t.owner_id
		WHERE t.owner_id = $1`
	args := []any{ownerID}

	if window != nil {
		args = append(args, window.Start, window.End)
		q += ` AND t.start_time < $3 AND t.end_time > $2`
	}
	if excludeID != "" {
		args = append(args, excludeID)
		q += ` AND t.id <> $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY t.start_time`

	rows, err := s.q.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := pgx.CollectRows(rows, scanTask)
	return out, mapErr(err)
}

func scanTask(row pgx.CollectableRow) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.OwnerID, &t.OwnerName, &t.Title,
		&t.Interval.Start, &t.Interval.End, &t.CreatedAt, &t.UpdatedAt)
	t.Interval = t.Interval.UTC()
	return t, err
}
