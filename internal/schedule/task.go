package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"calendar-booking-api/internal/fanout"
	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
)

// TaskPatch carries the fields of an update. Nil fields keep their value.
type TaskPatch struct {
	Title *string
	Start *time.Time
	End   *time.Time
}

func (s *Service) CreateTask(ctx context.Context, ownerID, title string, iv interval.Interval) (task *model.Task, err error) {
	ctx, span := s.start(ctx, "CreateTask")
	defer func() { endSpan(span, err) }()
	fields := logrus.Fields{"owner": ownerID}

	iv = iv.UTC()
	if !iv.Valid() {
		return nil, s.report("create task", ErrInvalidRange, fields)
	}
	owner, err := s.store.UserByID(ctx, ownerID)
	if err != nil {
		return nil, s.report("create task", storeErr("load owner", err), fields)
	}

	now := s.now().UTC()
	task = &model.Task{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		OwnerName: owner.Username,
		Title:     title,
		Interval:  iv,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.store.Atomic(ctx, []string{userLock(ownerID)}, func(tx Store) error {
		if err := NewValidator(tx).ValidateNewTask(ctx, ownerID, title, iv); err != nil {
			return err
		}
		return tx.CreateTask(ctx, task)
	})
	if err != nil {
		return nil, s.report("create task", storeErr("create task", err), fields)
	}

	s.publishTask(ctx, EventTaskAdded, UpdateTaskAdded, task)
	return task, nil
}

func (s *Service) UpdateTask(ctx context.Context, taskID, actorID string, p TaskPatch) (task *model.Task, err error) {
	ctx, span := s.start(ctx, "UpdateTask")
	defer func() { endSpan(span, err) }()
	fields := logrus.Fields{"task": taskID, "actor": actorID}

	// owner never changes, so the lock key can come from an unlocked read
	pre, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, s.report("update task", storeErr("load task", err), fields)
	}
	if pre.OwnerID != actorID {
		return nil, s.report("update task", ErrUnauthorized, fields)
	}

	err = s.store.Atomic(ctx, []string{userLock(pre.OwnerID)}, func(tx Store) error {
		cur, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if p.Title != nil {
			cur.Title = *p.Title
		}
		if p.Start != nil {
			cur.Interval.Start = p.Start.UTC()
		}
		if p.End != nil {
			cur.Interval.End = p.End.UTC()
		}
		cur.Interval = cur.Interval.UTC()
		cur.UpdatedAt = s.now().UTC()

		if err := NewValidator(tx).ValidateTaskUpdate(ctx, cur); err != nil {
			return err
		}
		if err := tx.UpdateTask(ctx, cur); err != nil {
			return err
		}
		task = cur
		return nil
	})
	if err != nil {
		return nil, s.report("update task", storeErr("update task", err), fields)
	}

	s.publishTask(ctx, EventTaskUpdated, UpdateTaskUpdated, task)
	return task, nil
}

func (s *Service) CancelTask(ctx context.Context, taskID, actorID string) (task *model.Task, err error) {
	ctx, span := s.start(ctx, "CancelTask")
	defer func() { endSpan(span, err) }()
	fields := logrus.Fields{"task": taskID, "actor": actorID}

	pre, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, s.report("cancel task", storeErr("load task", err), fields)
	}
	if pre.OwnerID != actorID {
		return nil, s.report("cancel task", ErrUnauthorized, fields)
	}

	err = s.store.Atomic(ctx, []string{userLock(pre.OwnerID)}, func(tx Store) error {
		cur, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if err := tx.DeleteTask(ctx, taskID); err != nil {
			return err
		}
		task = cur
		return nil
	})
	if err != nil {
		return nil, s.report("cancel task", storeErr("delete task", err), fields)
	}

	s.publishTask(ctx, EventTaskRemoved, UpdateTaskRemoved, task)
	return task, nil
}

// ListTasks returns every task the owner has, ordered by start.
func (s *Service) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	tasks, err := s.store.ListTasks(ctx, ownerID, nil, "")
	if err != nil {
		return nil, s.report("list tasks", storeErr("list tasks", err), logrus.Fields{"owner": ownerID})
	}
	return tasks, nil
}

func (s *Service) publishTask(ctx context.Context, event, update string, t *model.Task) {
	s.pub.Publish(ctx, fanout.UserGroup(t.OwnerID), event, TaskPayload{
		ID:     t.ID,
		Title:  t.Title,
		Start:  t.Interval.Start,
		End:    t.Interval.End,
		MadeBy: t.OwnerName,
	})
	s.pub.Publish(ctx, fanout.CalendarGroup(t.OwnerID), EventCalendarUpdated, CalendarUpdate{
		Type:  update,
		Title: t.Title,
	})
}
