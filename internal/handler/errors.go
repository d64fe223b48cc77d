package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"calendar-booking-api/internal/schedule"
)

// toStatus maps service errors to gRPC codes. Anything unrecognised is
// logged and reported as a bare internal error.
func (h *Handler) toStatus(op string, err error) error {
	var ce *schedule.ConflictError
	switch {
	case errors.As(err, &ce):
		return status.Error(codes.AlreadyExists, ce.Error())
	case errors.Is(err, schedule.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, schedule.ErrInvalidRange):
		return status.Error(codes.InvalidArgument, "end must be after start")
	case errors.Is(err, schedule.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, "not allowed")
	case errors.Is(err, schedule.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, schedule.ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	h.log.WithField("op", op).WithError(err).Error("unexpected error")
	return status.Error(codes.Internal, "internal error")
}
