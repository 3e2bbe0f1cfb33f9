package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"btevta-wasl-backend/internal/api/grpc/interceptor"
)

// NewServer builds a gRPC server with the lifecycle service, the standard health service
// and reflection for grpcurl. The returned health server starts SERVING.
func NewServer(handler LifecycleServer, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	logging := interceptor.NewLoggingInterceptor()
	opts = append([]grpc.ServerOption{grpc.UnaryInterceptor(logging.Unary())}, opts...)

	s := grpc.NewServer(opts...)
	RegisterLifecycleServer(s, handler)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	reflection.Register(s)
	return s, hs
}
