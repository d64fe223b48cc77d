package handler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"calendar-booking-api/internal/fanout"
	"calendar-booking-api/internal/middleware"
	"calendar-booking-api/internal/model"
	"calendar-booking-api/internal/rpc"
	"calendar-booking-api/internal/schedule"
)

// Users is the account storage behind Register and Login.
type Users interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByUsername(ctx context.Context, username string) (*model.User, error)
}

// Handler implements rpc.CalendarServer on top of schedule.Service.
type Handler struct {
	svc      *schedule.Service
	users    Users
	hub      *fanout.Hub
	secret   string
	tokenTTL time.Duration
	log      *logrus.Entry
}

var _ rpc.CalendarServer = (*Handler)(nil)

func New(svc *schedule.Service, users Users, hub *fanout.Hub, secret string, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{
		svc:    svc,
		users:  users,
		hub:    hub,
		secret: secret,
		log:    log.WithField("component", "handler"),
	}
}

// WithTokenTTL overrides how long issued tokens last.
func (h *Handler) WithTokenTTL(ttl time.Duration) *Handler {
	h.tokenTTL = ttl
	return h
}

func uid(ctx context.Context) (string, error) {
	id := middleware.UserID(ctx)
	if id == "" {
		return "", status.Error(codes.Unauthenticated, "not signed in")
	}
	return id, nil
}
