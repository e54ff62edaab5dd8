package v1

import (
	"context"

	_ "github.com/godilite/caseops/pkg/grpc/codec"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	CaseDashboard_ServiceName                         = "caseops.v1.CaseDashboard"
	CaseDashboard_GetFilterOptions_FullMethodName     = "/caseops.v1.CaseDashboard/GetFilterOptions"
	CaseDashboard_GetDashboard_FullMethodName         = "/caseops.v1.CaseDashboard/GetDashboard"
	CaseDashboard_GetMonthlyAggregates_FullMethodName = "/caseops.v1.CaseDashboard/GetMonthlyAggregates"
	CaseDashboard_ExportCases_FullMethodName          = "/caseops.v1.CaseDashboard/ExportCases"
)

// contentSubtype must match the codec registered by pkg/grpc/codec.
const contentSubtype = "json"

// CaseDashboardClient is the client API for the CaseDashboard service.
type CaseDashboardClient interface {
	GetFilterOptions(ctx context.Context, in *FilterOptionsRequest, opts ...grpc.CallOption) (*FilterOptionsResponse, error)
	GetDashboard(ctx context.Context, in *DashboardRequest, opts ...grpc.CallOption) (*DashboardResponse, error)
	GetMonthlyAggregates(ctx context.Context, in *DashboardRequest, opts ...grpc.CallOption) (*MonthlyAggregatesResponse, error)
	ExportCases(ctx context.Context, in *ExportRequest, opts ...grpc.CallOption) (*ExportResponse, error)
}

type caseDashboardClient struct {
	cc grpc.ClientConnInterface
}

func NewCaseDashboardClient(cc grpc.ClientConnInterface) CaseDashboardClient {
	return &caseDashboardClient{cc}
}

func (c *caseDashboardClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(contentSubtype)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *caseDashboardClient) GetFilterOptions(ctx context.Context, in *FilterOptionsRequest, opts ...grpc.CallOption) (*FilterOptionsResponse, error) {
	out := new(FilterOptionsResponse)
	if err := c.invoke(ctx, CaseDashboard_GetFilterOptions_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *caseDashboardClient) GetDashboard(ctx context.Context, in *DashboardRequest, opts ...grpc.CallOption) (*DashboardResponse, error) {
	out := new(DashboardResponse)
	if err := c.invoke(ctx, CaseDashboard_GetDashboard_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *caseDashboardClient) GetMonthlyAggregates(ctx context.Context, in *DashboardRequest, opts ...grpc.CallOption) (*MonthlyAggregatesResponse, error) {
	out := new(MonthlyAggregatesResponse)
	if err := c.invoke(ctx, CaseDashboard_GetMonthlyAggregates_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *caseDashboardClient) ExportCases(ctx context.Context, in *ExportRequest, opts ...grpc.CallOption) (*ExportResponse, error) {
	out := new(ExportResponse)
	if err := c.invoke(ctx, CaseDashboard_ExportCases_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// CaseDashboardServer is the server API for the CaseDashboard service.
// Implementations must embed UnimplementedCaseDashboardServer.
type CaseDashboardServer interface {
	GetFilterOptions(context.Context, *FilterOptionsRequest) (*FilterOptionsResponse, error)
	GetDashboard(context.Context, *DashboardRequest) (*DashboardResponse, error)
	GetMonthlyAggregates(context.Context, *DashboardRequest) (*MonthlyAggregatesResponse, error)
	ExportCases(context.Context, *ExportRequest) (*ExportResponse, error)
	mustEmbedUnimplementedCaseDashboardServer()
}

type UnimplementedCaseDashboardServer struct{}

func (UnimplementedCaseDashboardServer) GetFilterOptions(context.Context, *FilterOptionsRequest) (*FilterOptionsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetFilterOptions not implemented")
}
func (UnimplementedCaseDashboardServer) GetDashboard(context.Context, *DashboardRequest) (*DashboardResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetDashboard not implemented")
}
func (UnimplementedCaseDashboardServer) GetMonthlyAggregates(context.Context, *DashboardRequest) (*MonthlyAggregatesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetMonthlyAggregates not implemented")
}
func (UnimplementedCaseDashboardServer) ExportCases(context.Context, *ExportRequest) (*ExportResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ExportCases not implemented")
}
func (UnimplementedCaseDashboardServer) mustEmbedUnimplementedCaseDashboardServer() {}

func RegisterCaseDashboardServer(s grpc.ServiceRegistrar, srv CaseDashboardServer) {
	s.RegisterService(&CaseDashboard_ServiceDesc, srv)
}

func _CaseDashboard_GetFilterOptions_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FilterOptionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CaseDashboardServer).GetFilterOptions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CaseDashboard_GetFilterOptions_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CaseDashboardServer).GetFilterOptions(ctx, req.(*FilterOptionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _CaseDashboard_GetDashboard_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DashboardRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CaseDashboardServer).GetDashboard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CaseDashboard_GetDashboard_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CaseDashboardServer).GetDashboard(ctx, req.(*DashboardRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _CaseDashboard_GetMonthlyAggregates_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DashboardRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CaseDashboardServer).GetMonthlyAggregates(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CaseDashboard_GetMonthlyAggregates_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CaseDashboardServer).GetMonthlyAggregates(ctx, req.(*DashboardRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _CaseDashboard_ExportCases_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ExportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CaseDashboardServer).ExportCases(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CaseDashboard_ExportCases_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CaseDashboardServer).ExportCases(ctx, req.(*ExportRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// CaseDashboard_ServiceDesc is the grpc.ServiceDesc for the CaseDashboard service.
var CaseDashboard_ServiceDesc = grpc.ServiceDesc{
	ServiceName: CaseDashboard_ServiceName,
	HandlerType: (*CaseDashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetFilterOptions", Handler: _CaseDashboard_GetFilterOptions_Handler},
		{MethodName: "GetDashboard", Handler: _CaseDashboard_GetDashboard_Handler},
		{MethodName: "GetMonthlyAggregates", Handler: _CaseDashboard_GetMonthlyAggregates_Handler},
		{MethodName: "ExportCases", Handler: _CaseDashboard_ExportCases_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "caseops/v1/dashboard.json",
}
