package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "wasl.lifecycle.v1.LifecycleService"

// LifecycleServer is the server API for the lifecycle service. Requests and responses are
// google.protobuf.Struct documents so clients need no generated stubs.
type LifecycleServer interface {
	AttemptTransition(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reactivate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EvaluateGate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EvaluateComplaintSLA(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EscalateComplaint(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EvaluateCompliance(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type lifecycleMethod func(LifecycleServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call lifecycleMethod) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LifecycleServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(LifecycleServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// LifecycleServiceDesc describes the lifecycle service for grpc.Server.RegisterService.
var LifecycleServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LifecycleServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("AttemptTransition", LifecycleServer.AttemptTransition),
		unaryMethod("Reactivate", LifecycleServer.Reactivate),
		unaryMethod("EvaluateGate", LifecycleServer.EvaluateGate),
		unaryMethod("EvaluateComplaintSLA", LifecycleServer.EvaluateComplaintSLA),
		unaryMethod("EscalateComplaint", LifecycleServer.EscalateComplaint),
		unaryMethod("EvaluateCompliance", LifecycleServer.EvaluateCompliance),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wasl/lifecycle/v1/lifecycle.proto",
}

func RegisterLifecycleServer(s grpc.ServiceRegistrar, srv LifecycleServer) {
	s.RegisterService(&LifecycleServiceDesc, srv)
}
