package handler

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"calendar-booking-api/internal/rpc"
	"calendar-booking-api/internal/schedule"
)

func (h *Handler) CreateTask(ctx context.Context, req *rpc.CreateTaskRequest) (*rpc.TaskResponse, error) {
	me, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, status.Error(codes.InvalidArgument, "title required")
	}
	iv, err := requiredRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	t, err := h.svc.CreateTask(ctx, me, title, iv)
	if err != nil {
		return nil, h.toStatus("create task", err)
	}
	return &rpc.TaskResponse{Task: toTask(t)}, nil
}

func (h *Handler) UpdateTask(ctx context.Context, req *rpc.UpdateTaskRequest) (*rpc.TaskResponse, error) {
	me, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}

	var p schedule.TaskPatch
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, status.Error(codes.InvalidArgument, "title required")
		}
		p.Title = &title
	}
	if req.StartTime != nil {
		start := req.StartTime.AsTime()
		p.Start = &start
	}
	if req.EndTime != nil {
		end := req.EndTime.AsTime()
		p.End = &end
	}

	t, err := h.svc.UpdateTask(ctx, req.Id, me, p)
	if err != nil {
		return nil, h.toStatus("update task", err)
	}
	return &rpc.TaskResponse{Task: toTask(t)}, nil
}

func (h *Handler) CancelTask(ctx context.Context, req *rpc.IDRequest) (*rpc.TaskResponse, error) {
	me, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	t, err := h.svc.CancelTask(ctx, req.Id, me)
	if err != nil {
		return nil, h.toStatus("cancel task", err)
	}
	return &rpc.TaskResponse{Task: toTask(t)}, nil
}

func (h *Handler) ListTasks(ctx context.Context, _ *rpc.Empty) (*rpc.ListTasksResponse, error) {
	me, err := uid(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := h.svc.ListTasks(ctx, me)
	if err != nil {
		return nil, h.toStatus("list tasks", err)
	}
	out := make([]*rpc.Task, len(tasks))
	for i := range tasks {
		out[i] = toTask(&tasks[i])
	}
	return &rpc.ListTasksResponse{Tasks: out}, nil
}
