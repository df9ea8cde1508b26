package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the metrics service.
// Requests and responses are google.protobuf.Struct messages.
const ServiceName = "pemetrics.v1.MetricsService"

const (
	methodImportSheets       = "ImportSheets"
	methodAddManualRecord    = "AddManualRecord"
	methodClearManualRecords = "ClearManualRecords"
	methodComputeMetrics     = "ComputeMetrics"
	methodListFunds          = "ListFunds"
)

// MetricsServiceServer is the server API for the metrics service
type MetricsServiceServer interface {
	ImportSheets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddManualRecord(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearManualRecords(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeMetrics(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFunds(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(MetricsServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a service method to grpc.MethodHandler
func unaryHandler(name string, call unaryMethod) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MetricsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MetricsServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// MetricsServiceDesc describes the metrics service for grpc.Server registration
var MetricsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MetricsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodImportSheets, Handler: unaryHandler(methodImportSheets, MetricsServiceServer.ImportSheets)},
		{MethodName: methodAddManualRecord, Handler: unaryHandler(methodAddManualRecord, MetricsServiceServer.AddManualRecord)},
		{MethodName: methodClearManualRecords, Handler: unaryHandler(methodClearManualRecords, MetricsServiceServer.ClearManualRecords)},
		{MethodName: methodComputeMetrics, Handler: unaryHandler(methodComputeMetrics, MetricsServiceServer.ComputeMetrics)},
		{MethodName: methodListFunds, Handler: unaryHandler(methodListFunds, MetricsServiceServer.ListFunds)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pemetrics/v1/metrics.proto",
}

// RegisterMetricsServiceServer registers srv on the given registrar
func RegisterMetricsServiceServer(s grpc.ServiceRegistrar, srv MetricsServiceServer) {
	s.RegisterService(&MetricsServiceDesc, srv)
}

// MetricsServiceClient is the client API for the metrics service
type MetricsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMetricsServiceClient creates a client over an established connection
func NewMetricsServiceClient(cc grpc.ClientConnInterface) *MetricsServiceClient {
	return &MetricsServiceClient{cc: cc}
}

func (c *MetricsServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ImportSheets replaces the session import batch
func (c *MetricsServiceClient) ImportSheets(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodImportSheets, in, opts)
}

// AddManualRecord appends one manually entered record
func (c *MetricsServiceClient) AddManualRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodAddManualRecord, in, opts)
}

// ClearManualRecords empties the manual entry log
func (c *MetricsServiceClient) ClearManualRecords(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodClearManualRecords, in, opts)
}

// ComputeMetrics computes the report for a filter query
func (c *MetricsServiceClient) ComputeMetrics(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodComputeMetrics, in, opts)
}

// ListFunds lists the distinct funds of the session records
func (c *MetricsServiceClient) ListFunds(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodListFunds, in, opts)
}
