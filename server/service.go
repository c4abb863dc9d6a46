package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "dualscreen.v1.Workspace"

	methodSendPointer   = "/" + ServiceName + "/SendPointer"
	methodStreamPointer = "/" + ServiceName + "/StreamPointer"
	methodSetKeys       = "/" + ServiceName + "/SetKeys"
	methodGetFrame      = "/" + ServiceName + "/GetFrame"
	methodGetState      = "/" + ServiceName + "/GetState"
)

// WorkspaceServer is the server API for the Workspace service. Messages are
// protobuf well-known types so no generated code is needed.
type WorkspaceServer interface {
	// SendPointer replaces the remote pointer with one {x, y, contact} sample
	// in workspace pixels.
	SendPointer(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	// StreamPointer applies every sample of a client stream in order.
	StreamPointer(grpc.ClientStreamingServer[structpb.Struct, emptypb.Empty]) error
	// SetKeys replaces the remote keypad word.
	SetKeys(context.Context, *wrapperspb.UInt32Value) (*emptypb.Empty, error)
	// GetFrame returns the last composed image as PNG.
	GetFrame(context.Context, *emptypb.Empty) (*wrapperspb.BytesValue, error)
	GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func unaryHandler[Req any, Res any](method string, call func(WorkspaceServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(WorkspaceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(WorkspaceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func streamPointerHandler(srv any, stream grpc.ServerStream) error {
	return srv.(WorkspaceServer).StreamPointer(&grpc.GenericServerStream[structpb.Struct, emptypb.Empty]{ServerStream: stream})
}

// WorkspaceServiceDesc describes the Workspace service for grpc.Server.
var WorkspaceServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WorkspaceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SendPointer",
			Handler:    unaryHandler(methodSendPointer, WorkspaceServer.SendPointer),
		},
		{
			MethodName: "SetKeys",
			Handler:    unaryHandler(methodSetKeys, WorkspaceServer.SetKeys),
		},
		{
			MethodName: "GetFrame",
			Handler:    unaryHandler(methodGetFrame, WorkspaceServer.GetFrame),
		},
		{
			MethodName: "GetState",
			Handler:    unaryHandler(methodGetState, WorkspaceServer.GetState),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamPointer",
			Handler:       streamPointerHandler,
			ClientStreams: true,
		},
	},
	Metadata: "dualscreen/v1/workspace.proto",
}
