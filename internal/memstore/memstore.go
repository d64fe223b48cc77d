// Package memstore keeps the whole calendar in process memory. It backs
// MEMORY_STORE=true runs and the service tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
	"calendar-booking-api/internal/schedule"
)

type Store struct {
	mu            sync.RWMutex
	users         map[string]model.User
	tasks         map[string]model.Task
	bookings      map[string]model.Booking
	notifications map[string]notificationRow
	seq           int64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

type notificationRow struct {
	model.Notification
	seq int64
}

func New() *Store {
	return &Store{
		users:         make(map[string]model.User),
		tasks:         make(map[string]model.Task),
		bookings:      make(map[string]model.Booking),
		notifications: make(map[string]notificationRow),
		locks:         make(map[string]*sync.Mutex),
	}
}

var _ schedule.Store = (*Store)(nil)

// Atomic holds one mutex per key, taken in sorted order, while fn runs.
// Writes made by fn are not rolled back if it fails, so callers validate
// before writing.
func (s *Store) Atomic(ctx context.Context, keys []string, fn func(tx schedule.Store) error) error {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	var held []*sync.Mutex
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}()
	for i, k := range sorted {
		if i > 0 && sorted[i-1] == k {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		m := s.lock(k)
		m.Lock()
		held = append(held, m)
	}
	return fn(s)
}

func (s *Store) lock(key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return model.ErrDuplicate
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &u, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *Store) CreateTask(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = *t
	return nil
}

func (s *Store) UpdateTask(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return model.ErrNotFound
	}
	s.tasks[t.ID] = *t
	return nil
}

func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *Store) GetTask(_ context.Context, id string) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &t, nil
}

func (s *Store) ListTasks(_ context.Context, ownerID string, window *interval.Interval, excludeID string) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Task
	for _, t := range s.tasks {
		if t.OwnerID != ownerID || t.ID == excludeID {
			continue
		}
		if window != nil && !interval.Overlaps(t.Interval, *window) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Interval.Start.Before(out[j].Interval.Start) })
	return out, nil
}

func (s *Store) CreateBooking(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = *b
	return nil
}

func (s *Store) GetBooking(_ context.Context, id string) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &b, nil
}

func (s *Store) SetBookingStatus(_ context.Context, id string, st model.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.ErrNotFound
	}
	b.Status = st
	s.bookings[id] = b
	return nil
}

func (s *Store) DeleteBooking(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.bookings, id)
	for nid, n := range s.notifications {
		if n.BookingID == id {
			delete(s.notifications, nid)
		}
	}
	return nil
}

func (s *Store) ListBookings(_ context.Context, f model.BookingFilter) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if matches(b, f) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Interval.Start.Before(out[j].Interval.Start) })
	return out, nil
}

func matches(b model.Booking, f model.BookingFilter) bool {
	if f.BookerID != "" && b.BookerID != f.BookerID {
		return false
	}
	if f.BookedID != "" && b.BookedID != f.BookedID {
		return false
	}
	if f.ExcludeID != "" && b.ID == f.ExcludeID {
		return false
	}
	if f.Window != nil && !interval.Overlaps(b.Interval, *f.Window) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, st := range f.Statuses {
		if b.Status == st {
			return true
		}
	}
	return false
}

func (s *Store) CreateNotification(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[n.BookingID]; !ok {
		return model.ErrNotFound
	}
	s.seq++
	s.notifications[n.ID] = notificationRow{Notification: *n, seq: s.seq}
	return nil
}

func (s *Store) ListNotifications(_ context.Context, recipientID string, limit int) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []notificationRow
	for _, n := range s.notifications {
		if n.BookedID == recipientID {
			rows = append(rows, n)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]model.Notification, len(rows))
	for i, r := range rows {
		out[i] = r.Notification
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id, recipientID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.BookedID != recipientID {
		return false, nil
	}
	n.IsRead = true
	s.notifications[id] = n
	return true, nil
}
