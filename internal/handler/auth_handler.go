package handler

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"calendar-booking-api/internal/auth"
	"calendar-booking-api/internal/model"
	"calendar-booking-api/internal/rpc"
)

func (h *Handler) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "all fields required")
	}
	if len(req.Password) < 8 {
		return nil, status.Error(codes.InvalidArgument, "password too short")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := h.users.CreateUser(ctx, u); err != nil {
		// unique violation = taken username, but don't reveal that
		h.log.WithError(err).Debug("register failed")
		return nil, status.Error(codes.AlreadyExists, "registration failed")
	}

	tok, err := auth.MakeToken(u.ID, u.Username, h.secret, h.tokenTTL)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &rpc.AuthResponse{UserId: u.ID, Token: tok, Username: u.Username}, nil
}

func (h *Handler) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password required")
	}

	u, err := h.users.UserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}

	tok, err := auth.MakeToken(u.ID, u.Username, h.secret, h.tokenTTL)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &rpc.AuthResponse{UserId: u.ID, Token: tok, Username: u.Username}, nil
}
