package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/rpc"
)

// GetSchedule returns the calendar of req.UserId (the caller when empty)
// filtered for the caller. Missing bounds select the default window.
func (h *Handler) GetSchedule(ctx context.Context, req *rpc.GetScheduleRequest) (*rpc.GetScheduleResponse, error) {
	me, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	target := req.UserId
	if target == "" {
		target = me
	}

	var iv interval.Interval
	switch {
	case req.RangeStart == nil && req.RangeEnd == nil:
	case req.RangeStart == nil || req.RangeEnd == nil:
		return nil, status.Error(codes.InvalidArgument, "both range bounds required")
	default:
		iv = interval.Interval{Start: req.RangeStart.AsTime(), End: req.RangeEnd.AsTime()}
	}

	items, err := h.svc.GetScheduleForInterval(ctx, target, me, iv)
	if err != nil {
		return nil, h.toStatus("get schedule", err)
	}
	out := make([]*rpc.ScheduleItem, len(items))
	for i := range items {
		out[i] = toItem(items[i])
	}
	return &rpc.GetScheduleResponse{Items: out}, nil
}

func (h *Handler) ListNotifications(ctx context.Context, req *rpc.ListNotificationsRequest) (*rpc.ListNotificationsResponse, error) {
	me, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	ns, err := h.svc.GetNotifications(ctx, me, int(req.Limit))
	if err != nil {
		return nil, h.toStatus("list notifications", err)
	}
	out := make([]*rpc.Notification, len(ns))
	for i := range ns {
		out[i] = toNotification(&ns[i])
	}
	return &rpc.ListNotificationsResponse{Notifications: out}, nil
}

func (h *Handler) MarkNotificationRead(ctx context.Context, req *rpc.IDRequest) (*rpc.SuccessResponse, error) {
	me, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	ok, err := h.svc.MarkNotificationRead(ctx, req.Id, me)
	if err != nil {
		return nil, h.toStatus("mark read", err)
	}
	return &rpc.SuccessResponse{Success: ok}, nil
}
