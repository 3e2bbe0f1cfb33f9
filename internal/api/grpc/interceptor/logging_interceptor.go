package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"btevta-wasl-backend/internal/logger"
)

const actorKey = "x-actor"

// LoggingInterceptor logs every unary RPC and turns handler panics into codes.Internal.
type LoggingInterceptor struct {
	now func() time.Time
}

func NewLoggingInterceptor() *LoggingInterceptor {
	return &LoggingInterceptor{now: time.Now}
}

// Unary returns the server interceptor.
func (i *LoggingInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := i.now()
		actor := actorFrom(ctx)

		defer func() {
			if p := recover(); p != nil {
				logger.Error("gRPC handler panicked", "method", info.FullMethod, "panic", p)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
			code := status.Code(err)
			args := []any{
				"method", info.FullMethod,
				"actor", actor,
				"code", code.String(),
				"duration_ms", i.now().Sub(start).Milliseconds(),
			}
			if code == codes.Internal || code == codes.Unknown {
				logger.Error("gRPC request failed", append(args, "error", err)...)
				return
			}
			logger.Info("gRPC request", args...)
		}()

		return handler(ctx, req)
	}
}

func actorFrom(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(actorKey); len(v) > 0 {
		return v[0]
	}
	return ""
}
