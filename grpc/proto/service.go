package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ClamAVScanner_HealthCheck_FullMethodName  = "/clamav.ClamAVScanner/HealthCheck"
	ClamAVScanner_ScanFile_FullMethodName     = "/clamav.ClamAVScanner/ScanFile"
	ClamAVScanner_ScanStream_FullMethodName   = "/clamav.ClamAVScanner/ScanStream"
	ClamAVScanner_ScanMultiple_FullMethodName = "/clamav.ClamAVScanner/ScanMultiple"
)

// ClamAVScannerClient is the client API for the ClamAVScanner service.
type ClamAVScannerClient interface {
	HealthCheck(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error)
	ScanFile(ctx context.Context, in *ScanFileRequest, opts ...grpc.CallOption) (*ScanResponse, error)
	ScanStream(ctx context.Context, opts ...grpc.CallOption) (ClamAVScanner_ScanStreamClient, error)
	ScanMultiple(ctx context.Context, opts ...grpc.CallOption) (ClamAVScanner_ScanMultipleClient, error)
}

type (
	ClamAVScanner_ScanStreamClient   = grpc.ClientStreamingClient[ScanStreamRequest, ScanResponse]
	ClamAVScanner_ScanMultipleClient = grpc.BidiStreamingClient[ScanStreamRequest, ScanResponse]
	ClamAVScanner_ScanStreamServer   = grpc.ClientStreamingServer[ScanStreamRequest, ScanResponse]
	ClamAVScanner_ScanMultipleServer = grpc.BidiStreamingServer[ScanStreamRequest, ScanResponse]
)

type clamAVScannerClient struct {
	cc grpc.ClientConnInterface
}

// NewClamAVScannerClient returns a client stub bound to cc.
func NewClamAVScannerClient(cc grpc.ClientConnInterface) ClamAVScannerClient {
	return &clamAVScannerClient{cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.StaticMethod(), grpc.ForceCodec(Codec{})}, opts...)
}

func (c *clamAVScannerClient) HealthCheck(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error) {
	out := new(HealthCheckResponse)
	if err := c.cc.Invoke(ctx, ClamAVScanner_HealthCheck_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clamAVScannerClient) ScanFile(ctx context.Context, in *ScanFileRequest, opts ...grpc.CallOption) (*ScanResponse, error) {
	out := new(ScanResponse)
	if err := c.cc.Invoke(ctx, ClamAVScanner_ScanFile_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clamAVScannerClient) ScanStream(ctx context.Context, opts ...grpc.CallOption) (ClamAVScanner_ScanStreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &ClamAVScanner_ServiceDesc.Streams[0], ClamAVScanner_ScanStream_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[ScanStreamRequest, ScanResponse]{ClientStream: stream}, nil
}

func (c *clamAVScannerClient) ScanMultiple(ctx context.Context, opts ...grpc.CallOption) (ClamAVScanner_ScanMultipleClient, error) {
	stream, err := c.cc.NewStream(ctx, &ClamAVScanner_ServiceDesc.Streams[1], ClamAVScanner_ScanMultiple_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[ScanStreamRequest, ScanResponse]{ClientStream: stream}, nil
}

// ClamAVScannerServer is the server API for the ClamAVScanner service.
// Implementations must embed UnimplementedClamAVScannerServer.
type ClamAVScannerServer interface {
	HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error)
	ScanFile(context.Context, *ScanFileRequest) (*ScanResponse, error)
	ScanStream(ClamAVScanner_ScanStreamServer) error
	ScanMultiple(ClamAVScanner_ScanMultipleServer) error
	mustEmbedUnimplementedClamAVScannerServer()
}

// UnimplementedClamAVScannerServer answers every method with codes.Unimplemented.
type UnimplementedClamAVScannerServer struct{}

func (UnimplementedClamAVScannerServer) HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method HealthCheck not implemented")
}

func (UnimplementedClamAVScannerServer) ScanFile(context.Context, *ScanFileRequest) (*ScanResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ScanFile not implemented")
}

func (UnimplementedClamAVScannerServer) ScanStream(ClamAVScanner_ScanStreamServer) error {
	return status.Error(codes.Unimplemented, "method ScanStream not implemented")
}

func (UnimplementedClamAVScannerServer) ScanMultiple(ClamAVScanner_ScanMultipleServer) error {
	return status.Error(codes.Unimplemented, "method ScanMultiple not implemented")
}

func (UnimplementedClamAVScannerServer) mustEmbedUnimplementedClamAVScannerServer() {}

// RegisterClamAVScannerServer registers srv on s. s must be created with ServerCodec.
func RegisterClamAVScannerServer(s grpc.ServiceRegistrar, srv ClamAVScannerServer) {
	s.RegisterService(&ClamAVScanner_ServiceDesc, srv)
}

func _ClamAVScanner_HealthCheck_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(HealthCheckRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClamAVScannerServer).HealthCheck(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ClamAVScanner_HealthCheck_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClamAVScannerServer).HealthCheck(ctx, req.(*HealthCheckRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ClamAVScanner_ScanFile_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ScanFileRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClamAVScannerServer).ScanFile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ClamAVScanner_ScanFile_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClamAVScannerServer).ScanFile(ctx, req.(*ScanFileRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ClamAVScanner_ScanStream_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(ClamAVScannerServer).ScanStream(&grpc.GenericServerStream[ScanStreamRequest, ScanResponse]{ServerStream: stream})
}

func _ClamAVScanner_ScanMultiple_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(ClamAVScannerServer).ScanMultiple(&grpc.GenericServerStream[ScanStreamRequest, ScanResponse]{ServerStream: stream})
}

// ClamAVScanner_ServiceDesc is the grpc.ServiceDesc for the ClamAVScanner service.
var ClamAVScanner_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "clamav.ClamAVScanner",
	HandlerType: (*ClamAVScannerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "HealthCheck",
			Handler:    _ClamAVScanner_HealthCheck_Handler,
		},
		{
			MethodName: "ScanFile",
			Handler:    _ClamAVScanner_ScanFile_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "ScanStream",
			Handler:       _ClamAVScanner_ScanStream_Handler,
			ClientStreams: true,
		},
		{
			StreamName:    "ScanMultiple",
			Handler:       _ClamAVScanner_ScanMultiple_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "clamav.proto",
}
