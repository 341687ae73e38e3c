package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	InstructorAnalytics_ServiceName                        = "evalytics.v1.InstructorAnalytics"
	InstructorAnalytics_GetInstructorReport_FullMethodName = "/evalytics.v1.InstructorAnalytics/GetInstructorReport"
)

// InstructorAnalyticsClient is the client API for the InstructorAnalytics service.
type InstructorAnalyticsClient interface {
	GetInstructorReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type instructorAnalyticsClient struct {
	cc grpc.ClientConnInterface
}

func NewInstructorAnalyticsClient(cc grpc.ClientConnInterface) InstructorAnalyticsClient {
	return &instructorAnalyticsClient{cc}
}

func (c *instructorAnalyticsClient) GetInstructorReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, InstructorAnalytics_GetInstructorReport_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// InstructorAnalyticsServer is the server API for the InstructorAnalytics service.
type InstructorAnalyticsServer interface {
	GetInstructorReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedInstructorAnalyticsServer can be embedded to have forward
// compatible implementations.
type UnimplementedInstructorAnalyticsServer struct{}

func (UnimplementedInstructorAnalyticsServer) GetInstructorReport(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetInstructorReport not implemented")
}

func RegisterInstructorAnalyticsServer(s grpc.ServiceRegistrar, srv InstructorAnalyticsServer) {
	s.RegisterService(&InstructorAnalytics_ServiceDesc, srv)
}

func _InstructorAnalytics_GetInstructorReport_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InstructorAnalyticsServer).GetInstructorReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: InstructorAnalytics_GetInstructorReport_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InstructorAnalyticsServer).GetInstructorReport(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// InstructorAnalytics_ServiceDesc is the grpc.ServiceDesc for the
// InstructorAnalytics service.
var InstructorAnalytics_ServiceDesc = grpc.ServiceDesc{
	ServiceName: InstructorAnalytics_ServiceName,
	HandlerType: (*InstructorAnalyticsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetInstructorReport",
			Handler:    _InstructorAnalytics_GetInstructorReport_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/v1/analytics.proto",
}
