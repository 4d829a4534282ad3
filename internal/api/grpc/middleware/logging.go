package middleware

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/dailyphrase/internal/logger"
)

// Logging logs every unary call with its duration and status code.
type Logging struct {
	logger *logger.Logger
}

func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) HandleGRPC(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	if err != nil {
		if _, ok := status.FromError(err); !ok {
			code = codes.Internal
		}
	}

	args := []any{
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"status", code.String(),
	}
	if err != nil {
		l.logger.Warn("gRPC request failed", append(args, "error", err.Error())...)
		return resp, err
	}
	l.logger.Debug("gRPC request completed", args...)
	return resp, nil
}
