package daemon

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ControlServiceName is the fully qualified gRPC service name of the daemon.
const ControlServiceName = "refremote.v1.Control"

const (
	methodPing          = "/" + ControlServiceName + "/Ping"
	methodGetSettings   = "/" + ControlServiceName + "/GetSettings"
	methodStoreSettings = "/" + ControlServiceName + "/StoreSettings"
	methodStatus        = "/" + ControlServiceName + "/Status"
	methodInbox         = "/" + ControlServiceName + "/Inbox"
)

// ControlClient is the client side of the daemon control service.
// Payloads are protobuf well-known types; codec.go maps them to Go values.
type ControlClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GetSettings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	StoreSettings(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Status(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Inbox(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type controlClient struct {
	cc grpc.ClientConnInterface
}

// NewControlClient wraps a connection to the daemon.
func NewControlClient(cc grpc.ClientConnInterface) ControlClient {
	return &controlClient{cc: cc}
}

func (c *controlClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, methodPing, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlClient) GetSettings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetSettings, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlClient) StoreSettings(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodStoreSettings, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlClient) Status(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodStatus, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlClient) Inbox(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodInbox, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ControlServer is implemented by the daemon.
type ControlServer interface {
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	GetSettings(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	StoreSettings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Inbox(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterControlServer attaches srv to a gRPC server.
func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&controlServiceDesc, srv)
}

var controlServiceDesc = grpc.ServiceDesc{
	ServiceName: ControlServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ping",
			Handler: unary(methodPing, func() any { return new(emptypb.Empty) }, func(s ControlServer, ctx context.Context, req any) (any, error) {
				return s.Ping(ctx, req.(*emptypb.Empty))
			}),
		},
		{
			MethodName: "GetSettings",
			Handler: unary(methodGetSettings, func() any { return new(emptypb.Empty) }, func(s ControlServer, ctx context.Context, req any) (any, error) {
				return s.GetSettings(ctx, req.(*emptypb.Empty))
			}),
		},
		{
			MethodName: "StoreSettings",
			Handler: unary(methodStoreSettings, func() any { return new(structpb.Struct) }, func(s ControlServer, ctx context.Context, req any) (any, error) {
				return s.StoreSettings(ctx, req.(*structpb.Struct))
			}),
		},
		{
			MethodName: "Status",
			Handler: unary(methodStatus, func() any { return new(emptypb.Empty) }, func(s ControlServer, ctx context.Context, req any) (any, error) {
				return s.Status(ctx, req.(*emptypb.Empty))
			}),
		},
		{
			MethodName: "Inbox",
			Handler: unary(methodInbox, func() any { return new(emptypb.Empty) }, func(s ControlServer, ctx context.Context, req any) (any, error) {
				return s.Inbox(ctx, req.(*emptypb.Empty))
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "refremote/v1/control",
}

func unary(fullMethod string, newReq func() any, call func(ControlServer, context.Context, any) (any, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ControlServer), ctx, req)
		}
		return interceptor(ctx, in, info, handler)
	}
}
