package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

const ServiceName = "calendar.v1.CalendarService"

// Full method names, as seen by interceptors.
const (
	MethodRegister             = "/" + ServiceName + "/Register"
	MethodLogin                = "/" + ServiceName + "/Login"
	MethodCreateTask           = "/" + ServiceName + "/CreateTask"
	MethodUpdateTask           = "/" + ServiceName + "/UpdateTask"
	MethodCancelTask           = "/" + ServiceName + "/CancelTask"
	MethodListTasks            = "/" + ServiceName + "/ListTasks"
	MethodCreateBooking        = "/" + ServiceName + "/CreateBooking"
	MethodRespondToBooking     = "/" + ServiceName + "/RespondToBooking"
	MethodCancelBooking        = "/" + ServiceName + "/CancelBooking"
	MethodListPendingBookings  = "/" + ServiceName + "/ListPendingBookings"
	MethodListSentBookings     = "/" + ServiceName + "/ListSentBookings"
	MethodGetSchedule          = "/" + ServiceName + "/GetSchedule"
	MethodListNotifications    = "/" + ServiceName + "/ListNotifications"
	MethodMarkNotificationRead = "/" + ServiceName + "/MarkNotificationRead"
	MethodSubscribe            = "/" + ServiceName + "/Subscribe"
)

// Codec marshals Message values. Servers install it with
// grpc.ForceServerCodec and clients with grpc.ForceCodec.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("rpc: cannot marshal %T", v)
	}
	return m.MarshalProto(), nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("rpc: cannot unmarshal into %T", v)
	}
	return m.UnmarshalProto(data)
}

func (Codec) Name() string { return "proto" }

type CalendarServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	CreateTask(context.Context, *CreateTaskRequest) (*TaskResponse, error)
	UpdateTask(context.Context, *UpdateTaskRequest) (*TaskResponse, error)
	CancelTask(context.Context, *IDRequest) (*TaskResponse, error)
	ListTasks(context.Context, *Empty) (*ListTasksResponse, error)
	CreateBooking(context.Context, *CreateBookingRequest) (*BookingResponse, error)
	RespondToBooking(context.Context, *RespondToBookingRequest) (*SuccessResponse, error)
	CancelBooking(context.Context, *IDRequest) (*BookingResponse, error)
	ListPendingBookings(context.Context, *Empty) (*ListBookingsResponse, error)
	ListSentBookings(context.Context, *Empty) (*ListBookingsResponse, error)
	GetSchedule(context.Context, *GetScheduleRequest) (*GetScheduleResponse, error)
	ListNotifications(context.Context, *ListNotificationsRequest) (*ListNotificationsResponse, error)
	MarkNotificationRead(context.Context, *IDRequest) (*SuccessResponse, error)
	Subscribe(*SubscribeRequest, EventStream) error
}

// EventStream is the server side of Subscribe.
type EventStream interface {
	Send(*EventMessage) error
	grpc.ServerStream
}

type eventStream struct {
	grpc.ServerStream
}

func (s eventStream) Send(m *EventMessage) error { return s.SendMsg(m) }

func RegisterCalendarServer(s grpc.ServiceRegistrar, srv CalendarServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds a method descriptor that decodes into a fresh Req and runs
// the interceptor chain around call.
func unary[Req any, PReq interface {
	*Req
	Message
}, Resp Message](name string, call func(CalendarServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CalendarServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CalendarServer), ctx, req.(PReq))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalendarServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", CalendarServer.Register),
		unary("Login", CalendarServer.Login),
		unary("CreateTask", CalendarServer.CreateTask),
		unary("UpdateTask", CalendarServer.UpdateTask),
		unary("CancelTask", CalendarServer.CancelTask),
		unary("ListTasks", CalendarServer.ListTasks),
		unary("CreateBooking", CalendarServer.CreateBooking),
		unary("RespondToBooking", CalendarServer.RespondToBooking),
		unary("CancelBooking", CalendarServer.CancelBooking),
		unary("ListPendingBookings", CalendarServer.ListPendingBookings),
		unary("ListSentBookings", CalendarServer.ListSentBookings),
		unary("GetSchedule", CalendarServer.GetSchedule),
		unary("ListNotifications", CalendarServer.ListNotifications),
		unary("MarkNotificationRead", CalendarServer.MarkNotificationRead),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := &SubscribeRequest{}
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(CalendarServer).Subscribe(in, eventStream{stream})
			},
		},
	},
	Metadata: "calendar/v1/calendar.proto",
}
