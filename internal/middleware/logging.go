package middleware

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func logCall(log *logrus.Entry, method string, start time.Time, err error) {
	code := status.Code(err)
	e := log.WithFields(logrus.Fields{
		"method":   method,
		"code":     code.String(),
		"duration": time.Since(start).String(),
	})
	switch code {
	case codes.OK:
		e.Debug("rpc")
	case codes.Internal, codes.Unknown:
		e.WithError(err).Error("rpc")
	default:
		e.Info("rpc")
	}
}

func UnaryLogger(log *logrus.Entry) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		logCall(log, info.FullMethod, start, err)
		return resp, err
	}
}

func StreamLogger(log *logrus.Entry) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, next grpc.StreamHandler) error {
		start := time.Now()
		err := next(srv, ss)
		logCall(log, info.FullMethod, start, err)
		return err
	}
}
