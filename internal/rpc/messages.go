package rpc

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Empty struct{}

func (*Empty) MarshalProto() []byte { return nil }

func (*Empty) UnmarshalProto(b []byte) error {
	return walk(b, func(field) error { return nil })
}

// auth

type RegisterRequest struct {
	Username string
	Password string
}

func (m *RegisterRequest) MarshalProto() []byte {
	var out []byte
	out = appendString(out, 1, m.Username)
	out = appendString(out, 2, m.Password)
	return out
}

func (m *RegisterRequest) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Username = f.str()
		case 2:
			m.Password = f.str()
		}
		return nil
	})
}

type LoginRequest = RegisterRequest

type AuthResponse struct {
	UserId   string
	Token    string
	Username string
}

func (m *AuthResponse) MarshalProto() []byte {
	var out []byte
	out = appendString(out, 1, m.UserId)
	out = appendString(out, 2, m.Token)
	out = appendString(out, 3, m.Username)
	return out
}

func (m *AuthResponse) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.UserId = f.str()
		case 2:
			m.Token = f.str()
		case 3:
			m.Username = f.str()
		}
		return nil
	})
}

// tasks

type Task struct {
	Id        string
	OwnerId   string
	Title     string
	StartTime *timestamppb.Timestamp
	EndTime   *timestamppb.Timestamp
	MadeBy    string
}

func (m *Task) MarshalProto() []byte {
	var out []byte
	out = appendString(out, 1, m.Id)
	out = appendString(out, 2, m.OwnerId)
	out = appendString(out, 3, m.Title)
	out = appendTimestamp(out, 4, m.StartTime)
	out = appendTimestamp(out, 5, m.EndTime)
	out = appendString(out, 6, m.MadeBy)
	return out
}

func (m *Task) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Id = f.str()
		case 2:
			m.OwnerId = f.str()
		case 3:
			m.Title = f.str()
		case 4:
			m.StartTime, err = parseTimestamp(f.bytes)
		case 5:
			m.EndTime, err = parseTimestamp(f.bytes)
		case 6:
			m.MadeBy = f.str()
		}
		return err
	})
}

type CreateTaskRequest struct {
	Title     string
	StartTime *timestamppb.Timestamp
	EndTime   *timestamppb.Timestamp
}

func (m *CreateTaskRequest) MarshalProto() []byte {
	var out []byte
	out = appendString(out, 1, m.Title)
	out = appendTimestamp(out, 2, m.StartTime)
	out = appendTimestamp(out, 3, m.EndTime)
	return out
}

func (m *CreateTaskRequest) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Title = f.str()
		case 2:
			m.StartTime, err = parseTimestamp(f.bytes)
		case 3:
			m.EndTime, err = parseTimestamp(f.bytes)
		}
		return err
	})
}

// UpdateTaskRequest leaves a field unchanged when it is absent.
type UpdateTaskRequest struct {
	Id        string
	Title     *string
	StartTime *timestamppb.Timestamp
	EndTime   *timestamppb.Timestamp
}

func (m *UpdateTaskRequest) MarshalProto() []byte {
	var out []byte
	out = appendString(out, 1, m.Id)
	out = appendStringPresent(out, 2, m.Title)
	out = appendTimestamp(out, 3, m.StartTime)
	out = appendTimestamp(out, 4, m.EndTime)
	return out
}

func (m *UpdateTaskRequest) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Id = f.str()
		case 2:
			s := f.str()
			m.Title = &s
		case 3:
			m.StartTime, err = parseTimestamp(f.bytes)
		case 4:
			m.EndTime, err = parseTimestamp(f.bytes)
		}
		return err
	})
}

type IDRequest struct {
	Id string
}

func (m *IDRequest) MarshalProto() []byte { return appendString(nil, 1, m.Id) }

func (m *IDRequest) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.Id = f.str()
		}
		return nil
	})
}

type TaskResponse struct {
	Task *Task
}

func (m *TaskResponse) MarshalProto() []byte {
	if m.Task == nil {
		return nil
	}
	return appendMessage(nil, 1, m.Task)
}

func (m *TaskResponse) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.Task = &Task{}
			return m.Task.UnmarshalProto(f.bytes)
		}
		return nil
	})
}

type ListTasksResponse struct {
	Tasks []*Task
}

func (m *ListTasksResponse) MarshalProto() []byte {
	var out []byte
	for _, t := range m.Tasks {
		out = appendMessage(out, 1, t)
	}
	return out
}

func (m *ListTasksResponse) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		t := &Task{}
		if err := t.UnmarshalProto(f.bytes); err != nil {
			return err
		}
		m.Tasks = append(m.Tasks, t)
		return nil
	})
}

// bookings

type Booking struct {
	Id          string
	BookerId    string
	BookerName  string
	BookedId    string
	BookedName  string
	Title       string
	Location    string
	StartTime   *timestamppb.Timestamp
	EndTime     *timestamppb.Timestamp
	Status      string
	HasConflict bool
	CreatedAt   *timestamppb.Timestamp
}

func (m *Booking) MarshalProto() []byte {
	var out []byte
	out = appendString(out, 1, m.Id)
	out = appendString(out, 2, m.BookerId)
	out = appendString(out, 3, m.BookerName)
	out = appendString(out, 4, m.BookedId)
	out = appendString(out, 5, m.BookedName)
	out = appendString(out, 6, m.Title)
	out = appendString(out, 7, m.Location)
	out = appendTimestamp(out, 8, m.StartTime)
	out = appendTimestamp(out, 9, m.EndTime)
	out = appendString(out, 10, m.Status)
	out = appendBool(out, 11, m.HasConflict)
	out = appendTimestamp(out, 12, m.CreatedAt)
	return out
}

func (m *Booking) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Id = f.str()
		case 2:
			m.BookerId = f.str()
		case 3:
			m.BookerName = f.str()
		case 4:
			m.BookedId = f.str()
		case 5:
			m.BookedName = f.str()
		case 6:
			m.Title = f.str()
		case 7:
			m.Location = f.str()
		case 8:
			m.StartTime, err = parseTimestamp(f.bytes)
		case 9:
			m.EndTime, err = parseTimestamp(f.bytes)
		case 10:
			m.Status = f.str()
		case 11:
			m.HasConflict = f.boolean()
		case 12:
			m.CreatedAt, err = parseTimestamp(f.bytes)
		}
		return err
	})
}

type CreateBookingRequest struct {
	BookedUserId string
	Title        string
	Location     string
	StartTime    *timestamppb.Timestamp
	EndTime      *timestamppb.Timestamp
}

func (m *CreateBookingRequest) MarshalProto() []byte {
	var out []byte
	out = appendString(out, 1, m.BookedUserId)
	out = appendString(out, 2, m.Title)
	out = appendString(out, 3, m.Location)
	out = appendTimestamp(out, 4, m.StartTime)
	out = appendTimestamp(out, 5, m.EndTime)
	return out
}

func (m *CreateBookingRequest) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.BookedUserId = f.str()
		case 2:
			m.Title = f.str()
		case 3:
			m.Location = f.str()
		case 4:
			m.StartTime, err = parseTimestamp(f.bytes)
		case 5:
			m.EndTime, err = parseTimestamp(f.bytes)
		}
		return err
	})
}

type BookingResponse struct {
	Booking *Booking
}

func (m *BookingResponse) MarshalProto() []byte {
	if m.Booking == nil {
		return nil
	}
	return appendMessage(nil, 1, m.Booking)
}

func (m *BookingResponse) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.Booking = &Booking{}
			return m.Booking.UnmarshalProto(f.bytes)
		}
		return nil
	})
}

type RespondToBookingRequest struct {
	BookingId string
	Accept    bool
}

func (m *RespondToBookingRequest) MarshalProto() []byte {
	var out []byte
	out = appendString(out, 1, m.BookingId)
	out = appendBool(out, 2, m.Accept)
	return out
}

func (m *RespondToBookingRequest) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.BookingId = f.str()
		case 2:
			m.Accept = f.boolean()
		}
		return nil
	})
}

type SuccessResponse struct {
	Success bool
}

func (m *SuccessResponse) MarshalProto() []byte { return appendBool(nil, 1, m.Success) }

func (m *SuccessResponse) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.Success = f.boolean()
		}
		return nil
	})
}

type ListBookingsResponse struct {
	Bookings []*Booking
}

func (m *ListBookingsResponse) MarshalProto() []byte {
	var out []byte
	for _, b := range m.Bookings {
		out = appendMessage(out, 1, b)
	}
	return out
}

func (m *ListBookingsResponse) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		bk := &Booking{}
		if err := bk.UnmarshalProto(f.bytes); err != nil {
			return err
		}
		m.Bookings = append(m.Bookings, bk)
		return nil
	})
}

// schedule

type GetScheduleRequest struct {
	UserId     string
	RangeStart *timestamppb.Timestamp
	RangeEnd   *timestamppb.Timestamp
}

func (m *GetScheduleRequest) MarshalProto() []byte {
	var out []byte
	out = appendString(out, 1, m.UserId)
	out = appendTimestamp(out, 2, m.RangeStart)
	out = appendTimestamp(out, 3, m.RangeEnd)
	return out
}

func (m *GetScheduleRequest) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.UserId = f.str()
		case 2:
			m.RangeStart, err = parseTimestamp(f.bytes)
		case 3:
			m.RangeEnd, err = parseTimestamp(f.bytes)
		}
		return err
	})
}

type ScheduleItem struct {
	Kind      string
	Id        string
	Title     string
	Location  string
	MadeBy    string
	Status    string
	StartTime *timestamppb.Timestamp
	EndTime   *timestamppb.Timestamp
}

func (m *ScheduleItem) MarshalProto() []byte {
	var out []byte
	out = appendString(out, 1, m.Kind)
	out = appendString(out, 2, m.Id)
	out = appendString(out, 3, m.Title)
	out = appendString(out, 4, m.Location)
	out = appendString(out, 5, m.MadeBy)
	out = appendString(out, 6, m.Status)
	out = appendTimestamp(out, 7, m.StartTime)
	out = appendTimestamp(out, 8, m.EndTime)
	return out
}

func (m *ScheduleItem) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Kind = f.str()
		case 2:
			m.Id = f.str()
		case 3:
			m.Title = f.str()
		case 4:
			m.Location = f.str()
		case 5:
			m.MadeBy = f.str()
		case 6:
			m.Status = f.str()
		case 7:
			m.StartTime, err = parseTimestamp(f.bytes)
		case 8:
			m.EndTime, err = parseTimestamp(f.bytes)
		}
		return err
	})
}

type GetScheduleResponse struct {
	Items []*ScheduleItem
}

func (m *GetScheduleResponse) MarshalProto() []byte {
	var out []byte
	for _, it := range m.Items {
		out = appendMessage(out, 1, it)
	}
	return out
}

func (m *GetScheduleResponse) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		it := &ScheduleItem{}
		if err := it.UnmarshalProto(f.bytes); err != nil {
			return err
		}
		m.Items = append(m.Items, it)
		return nil
	})
}

// notifications

type ListNotificationsRequest struct {
	Limit int32
}

func (m *ListNotificationsRequest) MarshalProto() []byte { return appendVarint(nil, 1, int64(m.Limit)) }

func (m *ListNotificationsRequest) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.Limit = int32(f.varint)
		}
		return nil
	})
}

type Notification struct {
	Id        string
	Message   string
	CreatedAt *timestamppb.Timestamp
	IsRead    bool
	BookingId string
	ActorId   string
}

func (m *Notification) MarshalProto() []byte {
	var out []byte
	out = appendString(out, 1, m.Id)
	out = appendString(out, 2, m.Message)
	out = appendTimestamp(out, 3, m.CreatedAt)
	out = appendBool(out, 4, m.IsRead)
	out = appendString(out, 5, m.BookingId)
	out = appendString(out, 6, m.ActorId)
	return out
}

func (m *Notification) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Id = f.str()
		case 2:
			m.Message = f.str()
		case 3:
			m.CreatedAt, err = parseTimestamp(f.bytes)
		case 4:
			m.IsRead = f.boolean()
		case 5:
			m.BookingId = f.str()
		case 6:
			m.ActorId = f.str()
		}
		return err
	})
}

type ListNotificationsResponse struct {
	Notifications []*Notification
}

func (m *ListNotificationsResponse) MarshalProto() []byte {
	var out []byte
	for _, n := range m.Notifications {
		out = appendMessage(out, 1, n)
	}
	return out
}

func (m *ListNotificationsResponse) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		n := &Notification{}
		if err := n.UnmarshalProto(f.bytes); err != nil {
			return err
		}
		m.Notifications = append(m.Notifications, n)
		return nil
	})
}

// live events

type SubscribeRequest struct {
	CalendarOwnerIds []string
}

func (m *SubscribeRequest) MarshalProto() []byte {
	var out []byte
	for _, id := range m.CalendarOwnerIds {
		out = appendString(out, 1, id)
	}
	return out
}

func (m *SubscribeRequest) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.CalendarOwnerIds = append(m.CalendarOwnerIds, f.str())
		}
		return nil
	})
}

type EventMessage struct {
	Group       string
	Name        string
	PayloadJson string
	At          *timestamppb.Timestamp
}

func (m *EventMessage) MarshalProto() []byte {
	var out []byte
	out = appendString(out, 1, m.Group)
	out = appendString(out, 2, m.Name)
	out = appendString(out, 3, m.PayloadJson)
	out = appendTimestamp(out, 4, m.At)
	return out
}

func (m *EventMessage) UnmarshalProto(b []byte) error {
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Group = f.str()
		case 2:
			m.Name = f.str()
		case 3:
			m.PayloadJson = f.str()
		case 4:
			m.At, err = parseTimestamp(f.bytes)
		}
		return err
	})
}
