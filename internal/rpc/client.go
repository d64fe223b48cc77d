package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls CalendarService over any connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any, PResp interface {
	*Resp
	Message
}](ctx context.Context, c *Client, method string, in Message, opts ...grpc.CallOption) (PResp, error) {
	out := PResp(new(Resp))
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c, MethodRegister, in, opts...)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c, MethodLogin, in, opts...)
}

func (c *Client) CreateTask(ctx context.Context, in *CreateTaskRequest, opts ...grpc.CallOption) (*TaskResponse, error) {
	return invoke[TaskResponse](ctx, c, MethodCreateTask, in, opts...)
}

func (c *Client) UpdateTask(ctx context.Context, in *UpdateTaskRequest, opts ...grpc.CallOption) (*TaskResponse, error) {
	return invoke[TaskResponse](ctx, c, MethodUpdateTask, in, opts...)
}

func (c *Client) CancelTask(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*TaskResponse, error) {
	return invoke[TaskResponse](ctx, c, MethodCancelTask, in, opts...)
}

func (c *Client) ListTasks(ctx context.Context, opts ...grpc.CallOption) (*ListTasksResponse, error) {
	return invoke[ListTasksResponse](ctx, c, MethodListTasks, &Empty{}, opts...)
}

func (c *Client) CreateBooking(ctx context.Context, in *CreateBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, MethodCreateBooking, in, opts...)
}

func (c *Client) RespondToBooking(ctx context.Context, in *RespondToBookingRequest, opts ...grpc.CallOption) (*SuccessResponse, error) {
	return invoke[SuccessResponse](ctx, c, MethodRespondToBooking, in, opts...)
}

func (c *Client) CancelBooking(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c, MethodCancelBooking, in, opts...)
}

func (c *Client) ListPendingBookings(ctx context.Context, opts ...grpc.CallOption) (*ListBookingsResponse, error) {
	return invoke[ListBookingsResponse](ctx, c, MethodListPendingBookings, &Empty{}, opts...)
}

func (c *Client) ListSentBookings(ctx context.Context, opts ...grpc.CallOption) (*ListBookingsResponse, error) {
	return invoke[ListBookingsResponse](ctx, c, MethodListSentBookings, &Empty{}, opts...)
}

func (c *Client) GetSchedule(ctx context.Context, in *GetScheduleRequest, opts ...grpc.CallOption) (*GetScheduleResponse, error) {
	return invoke[GetScheduleResponse](ctx, c, MethodGetSchedule, in, opts...)
}

func (c *Client) ListNotifications(ctx context.Context, in *ListNotificationsRequest, opts ...grpc.CallOption) (*ListNotificationsResponse, error) {
	return invoke[ListNotificationsResponse](ctx, c, MethodListNotifications, in, opts...)
}

func (c *Client) MarkNotificationRead(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*SuccessResponse, error) {
	return invoke[SuccessResponse](ctx, c, MethodMarkNotificationRead, in, opts...)
}

// EventReceiver is the client side of Subscribe.
type EventReceiver struct {
	grpc.ClientStream
}

func (r *EventReceiver) Recv() (*EventMessage, error) {
	m := &EventMessage{}
	if err := r.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Client) Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (*EventReceiver, error) {
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], MethodSubscribe, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &EventReceiver{ClientStream: stream}, nil
}
