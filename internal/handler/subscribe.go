package handler

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"calendar-booking-api/internal/fanout"
	"calendar-booking-api/internal/rpc"
)

// Subscribe streams the caller's own events plus generic updates for every
// calendar named in the request, until the client leaves or falls behind.
func (h *Handler) Subscribe(req *rpc.SubscribeRequest, stream rpc.EventStream) error {
	ctx := stream.Context()
	me, err := uid(ctx)
	if err != nil {
		return err
	}
	if h.hub == nil {
		return status.Error(codes.Unavailable, "live updates disabled")
	}

	groups := []string{fanout.UserGroup(me)}
	for _, id := range req.CalendarOwnerIds {
		if id != "" {
			groups = append(groups, fanout.CalendarGroup(id))
		}
	}
	sub := h.hub.Subscribe(groups...)
	defer sub.Close()

	log := h.log.WithField("user", me).WithField("subscriber", sub.ID)
	log.Debug("subscribed")

	for {
		select {
		case <-ctx.Done():
			log.Debug("subscriber left")
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				if h.hub.Closed() {
					log.Debug("hub closed")
					return status.Error(codes.Unavailable, "server shutting down")
				}
				return status.Error(codes.ResourceExhausted, "subscriber fell behind")
			}
			err := stream.Send(&rpc.EventMessage{
				Group:       ev.Group,
				Name:        ev.Name,
				PayloadJson: string(ev.Payload),
				At:          rpc.Timestamp(ev.At),
			})
			if err != nil {
				return err
			}
		}
	}
}
