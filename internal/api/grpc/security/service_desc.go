package security

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "catpoint.v1.SecurityService"

// Full method names.
const (
	GetStatusFullMethodName              = "/" + ServiceName + "/GetStatus"
	SetArmingStatusFullMethodName        = "/" + ServiceName + "/SetArmingStatus"
	AddSensorFullMethodName              = "/" + ServiceName + "/AddSensor"
	RemoveSensorFullMethodName           = "/" + ServiceName + "/RemoveSensor"
	ChangeSensorActivationFullMethodName = "/" + ServiceName + "/ChangeSensorActivation"
	ProcessImageFullMethodName           = "/" + ServiceName + "/ProcessImage"
	WatchStatusFullMethodName            = "/" + ServiceName + "/WatchStatus"
)

// SecurityServiceServer is the server API of the security service.
type SecurityServiceServer interface {
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	SetArmingStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AddSensor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RemoveSensor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ChangeSensorActivation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ProcessImage(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error)
	WatchStatus(req *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

// RegisterSecurityServiceServer registers srv on the gRPC server.
func RegisterSecurityServiceServer(s grpc.ServiceRegistrar, srv SecurityServiceServer) {
	s.RegisterService(&securityServiceDesc, srv)
}

// unaryHandler adapts a typed unary method to the grpc.MethodDesc handler shape.
func unaryHandler[Req any](
	fullMethod string,
	call func(srv SecurityServiceServer, ctx context.Context, req *Req) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(SecurityServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SecurityServiceServer), ctx, req.(*Req))
		}

		return interceptor(ctx, in, info, handler)
	}
}

func watchStatusHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	return srv.(SecurityServiceServer).WatchStatus(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{
		ServerStream: stream,
	})
}

//nolint:gochecknoglobals // Service descriptor, as generated code would declare it.
var securityServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SecurityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler: unaryHandler(GetStatusFullMethodName,
				func(srv SecurityServiceServer, ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
					return srv.GetStatus(ctx, req)
				}),
		},
		{
			MethodName: "SetArmingStatus",
			Handler: unaryHandler(SetArmingStatusFullMethodName,
				func(srv SecurityServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
					return srv.SetArmingStatus(ctx, req)
				}),
		},
		{
			MethodName: "AddSensor",
			Handler: unaryHandler(AddSensorFullMethodName,
				func(srv SecurityServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
					return srv.AddSensor(ctx, req)
				}),
		},
		{
			MethodName: "RemoveSensor",
			Handler: unaryHandler(RemoveSensorFullMethodName,
				func(srv SecurityServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
					return srv.RemoveSensor(ctx, req)
				}),
		},
		{
			MethodName: "ChangeSensorActivation",
			Handler: unaryHandler(ChangeSensorActivationFullMethodName,
				func(srv SecurityServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
					return srv.ChangeSensorActivation(ctx, req)
				}),
		},
		{
			MethodName: "ProcessImage",
			Handler: unaryHandler(ProcessImageFullMethodName,
				func(srv SecurityServiceServer, ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
					return srv.ProcessImage(ctx, req)
				}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchStatus",
			Handler:       watchStatusHandler,
			ServerStreams: true,
		},
	},
	Metadata: "catpoint/v1/security.proto",
}

// SecurityServiceClient is the client API of the security service.
type SecurityServiceClient interface {
	GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	SetArmingStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AddSensor(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RemoveSensor(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ChangeSensorActivation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ProcessImage(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	WatchStatus(
		ctx context.Context,
		in *emptypb.Empty,
		opts ...grpc.CallOption,
	) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type securityServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSecurityServiceClient creates a client over the connection.
func NewSecurityServiceClient(cc grpc.ClientConnInterface) SecurityServiceClient {
	return &securityServiceClient{cc: cc}
}

func (c *securityServiceClient) invoke(
	ctx context.Context,
	method string,
	in any,
	opts []grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *securityServiceClient) GetStatus(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, GetStatusFullMethodName, in, opts)
}

func (c *securityServiceClient) SetArmingStatus(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, SetArmingStatusFullMethodName, in, opts)
}

func (c *securityServiceClient) AddSensor(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, AddSensorFullMethodName, in, opts)
}

func (c *securityServiceClient) RemoveSensor(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, RemoveSensorFullMethodName, in, opts)
}

func (c *securityServiceClient) ChangeSensorActivation(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, ChangeSensorActivationFullMethodName, in, opts)
}

func (c *securityServiceClient) ProcessImage(
	ctx context.Context,
	in *wrapperspb.BytesValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, ProcessImageFullMethodName, in, opts)
}

func (c *securityServiceClient) WatchStatus(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &securityServiceDesc.Streams[0], WatchStatusFullMethodName, opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err = x.SendMsg(in); err != nil {
		return nil, err
	}

	if err = x.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}
