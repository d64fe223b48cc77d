package schedule

import (
	"context"

	"github.com/sirupsen/logrus"

	"calendar-booking-api/internal/model"
)

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

// GetNotifications returns userID's notifications newest first. A limit
// of zero or less selects the default; larger ones are capped.
func (s *Service) GetNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	switch {
	case limit <= 0:
		limit = DefaultNotificationLimit
	case limit > MaxNotificationLimit:
		limit = MaxNotificationLimit
	}
	ns, err := s.store.ListNotifications(ctx, userID, limit)
	if err != nil {
		return nil, s.report("notifications", storeErr("list notifications", err), logrus.Fields{"user": userID})
	}
	return ns, nil
}

// MarkNotificationRead reports false when the notification does not exist
// or is addressed to someone other than actorID.
func (s *Service) MarkNotificationRead(ctx context.Context, notificationID, actorID string) (bool, error) {
	ok, err := s.store.MarkNotificationRead(ctx, notificationID, actorID)
	if err != nil {
		return false, s.report("mark read", storeErr("mark read", err),
			logrus.Fields{"notification": notificationID, "actor": actorID})
	}
	return ok, nil
}
