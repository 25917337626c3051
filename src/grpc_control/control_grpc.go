package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Messages are protobuf well-known types so the service needs no generated
// code of its own.

const ServiceName = "dashboard.PollingControl"

const (
	PollingControl_GetStatus_FullMethodName      = "/" + ServiceName + "/GetStatus"
	PollingControl_StartPolling_FullMethodName   = "/" + ServiceName + "/StartPolling"
	PollingControl_StopPolling_FullMethodName    = "/" + ServiceName + "/StopPolling"
	PollingControl_UpdateInterval_FullMethodName = "/" + ServiceName + "/UpdateInterval"
	PollingControl_RefreshNow_FullMethodName     = "/" + ServiceName + "/RefreshNow"
	PollingControl_ChangeCurrency_FullMethodName = "/" + ServiceName + "/ChangeCurrency"
)

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

type PollingControlClient interface {
	GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	StartPolling(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	StopPolling(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateInterval(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	RefreshNow(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	ChangeCurrency(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type pollingControlClient struct {
	cc grpc.ClientConnInterface
}

func NewPollingControlClient(cc grpc.ClientConnInterface) PollingControlClient {
	return &pollingControlClient{cc}
}

func (c *pollingControlClient) GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PollingControl_GetStatus_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pollingControlClient) StartPolling(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PollingControl_StartPolling_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pollingControlClient) StopPolling(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PollingControl_StopPolling_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pollingControlClient) UpdateInterval(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PollingControl_UpdateInterval_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pollingControlClient) RefreshNow(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, PollingControl_RefreshNow_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pollingControlClient) ChangeCurrency(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, PollingControl_ChangeCurrency_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

type PollingControlServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	StartPolling(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	StopPolling(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	UpdateInterval(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	RefreshNow(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error)
	ChangeCurrency(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// UnimplementedPollingControlServer answers codes.Unimplemented for every RPC
type UnimplementedPollingControlServer struct{}

func (UnimplementedPollingControlServer) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStatus not implemented")
}
func (UnimplementedPollingControlServer) StartPolling(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method StartPolling not implemented")
}
func (UnimplementedPollingControlServer) StopPolling(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method StopPolling not implemented")
}
func (UnimplementedPollingControlServer) UpdateInterval(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateInterval not implemented")
}
func (UnimplementedPollingControlServer) RefreshNow(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshNow not implemented")
}
func (UnimplementedPollingControlServer) ChangeCurrency(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method ChangeCurrency not implemented")
}

func RegisterPollingControlServer(s grpc.ServiceRegistrar, srv PollingControlServer) {
	s.RegisterService(&PollingControl_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler
func unaryHandler[Req any, Resp any](fullMethod string, call func(PollingControlServer, context.Context, *Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PollingControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PollingControlServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var PollingControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PollingControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler:    unaryHandler(PollingControl_GetStatus_FullMethodName, PollingControlServer.GetStatus),
		},
		{
			MethodName: "StartPolling",
			Handler:    unaryHandler(PollingControl_StartPolling_FullMethodName, PollingControlServer.StartPolling),
		},
		{
			MethodName: "StopPolling",
			Handler:    unaryHandler(PollingControl_StopPolling_FullMethodName, PollingControlServer.StopPolling),
		},
		{
			MethodName: "UpdateInterval",
			Handler:    unaryHandler(PollingControl_UpdateInterval_FullMethodName, PollingControlServer.UpdateInterval),
		},
		{
			MethodName: "RefreshNow",
			Handler:    unaryHandler(PollingControl_RefreshNow_FullMethodName, PollingControlServer.RefreshNow),
		},
		{
			MethodName: "ChangeCurrency",
			Handler:    unaryHandler(PollingControl_ChangeCurrency_FullMethodName, PollingControlServer.ChangeCurrency),
		},
	},
	Streams: []grpc.StreamDesc{},
}
