package handler

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"calendar-booking-api/internal/model"
	"calendar-booking-api/internal/rpc"
)

func (h *Handler) CreateBooking(ctx context.Context, req *rpc.CreateBookingRequest) (*rpc.BookingResponse, error) {
	me, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if req.BookedUserId == "" || title == "" {
		return nil, status.Error(codes.InvalidArgument, "booked user and title required")
	}
	iv, err := requiredRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	v, err := h.svc.CreateBooking(ctx, me, req.BookedUserId, title, strings.TrimSpace(req.Location), iv)
	if err != nil {
		return nil, h.toStatus("create booking", err)
	}
	return &rpc.BookingResponse{Booking: toBooking(&v.Booking, v.HasConflict)}, nil
}

func (h *Handler) RespondToBooking(ctx context.Context, req *rpc.RespondToBookingRequest) (*rpc.SuccessResponse, error) {
	me, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	if req.BookingId == "" {
		return nil, status.Error(codes.InvalidArgument, "booking id required")
	}
	ok, err := h.svc.RespondToBooking(ctx, req.BookingId, me, req.Accept)
	if err != nil {
		return nil, h.toStatus("respond to booking", err)
	}
	return &rpc.SuccessResponse{Success: ok}, nil
}

func (h *Handler) CancelBooking(ctx context.Context, req *rpc.IDRequest) (*rpc.BookingResponse, error) {
	me, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	b, err := h.svc.CancelBooking(ctx, req.Id, me)
	if err != nil {
		return nil, h.toStatus("cancel booking", err)
	}
	return &rpc.BookingResponse{Booking: toBooking(b, false)}, nil
}

func (h *Handler) ListPendingBookings(ctx context.Context, _ *rpc.Empty) (*rpc.ListBookingsResponse, error) {
	me, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := h.svc.GetPendingForUser(ctx, me)
	if err != nil {
		return nil, h.toStatus("pending bookings", err)
	}
	out := make([]*rpc.Booking, len(pending))
	for i := range pending {
		out[i] = toBooking(&pending[i].Booking, pending[i].HasConflict)
	}
	return &rpc.ListBookingsResponse{Bookings: out}, nil
}

func (h *Handler) ListSentBookings(ctx context.Context, _ *rpc.Empty) (*rpc.ListBookingsResponse, error) {
	me, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	sent, err := h.svc.ListSentBookings(ctx, me)
	if err != nil {
		return nil, h.toStatus("sent bookings", err)
	}
	return &rpc.ListBookingsResponse{Bookings: bookings(sent)}, nil
}

func bookings(bs []model.Booking) []*rpc.Booking {
	out := make([]*rpc.Booking, len(bs))
	for i := range bs {
		out[i] = toBooking(&bs[i], false)
	}
	return out
}
