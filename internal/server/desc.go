package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service. Requests and responses
// are google.protobuf.Struct so clients need no generated stubs.
const ServiceName = "proteobench.params.v1.ParamsService"

const (
	ExtractMethod         = "/" + ServiceName + "/Extract"
	IngestMethod          = "/" + ServiceName + "/Ingest"
	IngestDirectoryMethod = "/" + ServiceName + "/IngestDirectory"
	GetRunMethod          = "/" + ServiceName + "/GetRun"
	ListRunsMethod        = "/" + ServiceName + "/ListRuns"
)

// ParamsServiceServer is the server API of ParamsService.
type ParamsServiceServer interface {
	// Extract reads {path, engine?} and returns {engine, parameters} without storing anything.
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Ingest reads {path, engine?}, stores the run and returns it.
	Ingest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// IngestDirectory reads {root, pattern?, skip_hidden?, workers?, engine?}.
	IngestDirectory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetRun reads {id}.
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListRuns reads {limit?} and returns {runs, total}.
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type call func(ParamsServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(fullMethod string, fn call) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(srv.(ParamsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return fn(srv.(ParamsServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ParamsServiceDesc describes ParamsService for grpc.Server.RegisterService.
var ParamsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ParamsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Extract", Handler: unary(ExtractMethod, ParamsServiceServer.Extract)},
		{MethodName: "Ingest", Handler: unary(IngestMethod, ParamsServiceServer.Ingest)},
		{MethodName: "IngestDirectory", Handler: unary(IngestDirectoryMethod, ParamsServiceServer.IngestDirectory)},
		{MethodName: "GetRun", Handler: unary(GetRunMethod, ParamsServiceServer.GetRun)},
		{MethodName: "ListRuns", Handler: unary(ListRunsMethod, ParamsServiceServer.ListRuns)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proteobench/params/v1/params.proto",
}

func RegisterParamsServiceServer(s grpc.ServiceRegistrar, srv ParamsServiceServer) {
	s.RegisterService(&ParamsServiceDesc, srv)
}

// ParamsClient calls ParamsService over any client connection.
type ParamsClient struct {
	cc grpc.ClientConnInterface
}

func NewParamsClient(cc grpc.ClientConnInterface) *ParamsClient {
	return &ParamsClient{cc: cc}
}

func (c *ParamsClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ParamsClient) Extract(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ExtractMethod, in, opts...)
}

func (c *ParamsClient) Ingest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, IngestMethod, in, opts...)
}

func (c *ParamsClient) IngestDirectory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, IngestDirectoryMethod, in, opts...)
}

func (c *ParamsClient) GetRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetRunMethod, in, opts...)
}

func (c *ParamsClient) ListRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ListRunsMethod, in, opts...)
}
