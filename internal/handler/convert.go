package handler

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
	"calendar-booking-api/internal/rpc"
	"calendar-booking-api/internal/schedule"
)

func toTask(t *model.Task) *rpc.Task {
	return &rpc.Task{
		Id:        t.ID,
		OwnerId:   t.OwnerID,
		Title:     t.Title,
		StartTime: rpc.Timestamp(t.Interval.Start),
		EndTime:   rpc.Timestamp(t.Interval.End),
		MadeBy:    t.OwnerName,
	}
}

func toBooking(b *model.Booking, hasConflict bool) *rpc.Booking {
	return &rpc.Booking{
		Id:          b.ID,
		BookerId:    b.BookerID,
		BookerName:  b.BookerName,
		BookedId:    b.BookedID,
		BookedName:  b.BookedName,
		Title:       b.Title,
		Location:    b.Location,
		StartTime:   rpc.Timestamp(b.Interval.Start),
		EndTime:     rpc.Timestamp(b.Interval.End),
		Status:      string(b.Status),
		HasConflict: hasConflict,
		CreatedAt:   rpc.Timestamp(b.CreatedAt),
	}
}

func toItem(it schedule.Item) *rpc.ScheduleItem {
	return &rpc.ScheduleItem{
		Kind:      string(it.Kind),
		Id:        it.ID,
		Title:     it.Title,
		Location:  it.Location,
		MadeBy:    it.MadeBy,
		Status:    string(it.Status),
		StartTime: rpc.Timestamp(it.Interval.Start),
		EndTime:   rpc.Timestamp(it.Interval.End),
	}
}

func toNotification(n *model.Notification) *rpc.Notification {
	return &rpc.Notification{
		Id:        n.ID,
		Message:   n.Message,
		CreatedAt: rpc.Timestamp(n.CreatedAt),
		IsRead:    n.IsRead,
		BookingId: n.BookingID,
		ActorId:   n.BookerID,
	}
}

// requiredRange reads a start/end pair that must both be present.
func requiredRange(start, end *timestamppb.Timestamp) (interval.Interval, error) {
	if start == nil || end == nil {
		return interval.Interval{}, status.Error(codes.InvalidArgument, "times required")
	}
	iv, err := interval.New(start.AsTime(), end.AsTime())
	if err != nil {
		return interval.Interval{}, status.Error(codes.InvalidArgument, "end must be after start")
	}
	return iv, nil
}
