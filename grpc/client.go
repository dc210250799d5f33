package grpc

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	clamav "github.com/DevHatRo/clamav-sdk-go"
	pb "github.com/DevHatRo/clamav-sdk-go/grpc/proto"
	"github.com/DevHatRo/clamav-sdk-go/internal/telemetry"
)

// Client is the gRPC client for the ClamAV API.
// It is safe for concurrent use from multiple goroutines.
type Client struct {
	conn              *grpclib.ClientConn
	scanner           pb.ClamAVScannerClient
	timeout           time.Duration
	chunkSize         int
	maxMessageSize    int
	interleave        Interleave
	dialOpts          []grpclib.DialOption
	hasTransportCreds bool
	logger            *zap.Logger

	registerer     prometheus.Registerer
	tracerProvider trace.TracerProvider
	telemetry      *telemetry.Recorder
}

var _ clamav.Scanner = (*Client)(nil)

// NewClient creates a gRPC client for the ClamAV API.
// target is the gRPC server address, e.g. "localhost:9000".
// By default, the connection uses insecure credentials. Use WithTransportCredentials
// or WithDialOptions to provide custom transport credentials.
func NewClient(target string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		timeout:        defaultTimeout,
		chunkSize:      defaultChunkSize,
		maxMessageSize: defaultMaxMessageSize,
		logger:         zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize <= 0 {
		return nil, clamav.NewInvalidChunkSizeError(c.chunkSize)
	}

	// Default to insecure only when caller did not set transport credentials.
	if !c.hasTransportCreds {
		c.dialOpts = append(c.dialOpts, grpclib.WithTransportCredentials(insecure.NewCredentials()))
	}

	c.dialOpts = append(c.dialOpts,
		grpclib.WithDefaultCallOptions(
			grpclib.MaxCallRecvMsgSize(c.maxMessageSize),
			grpclib.MaxCallSendMsgSize(c.maxMessageSize),
		),
	)

	var err error
	c.telemetry, err = telemetry.New("grpc", c.registerer, c.tracerProvider)
	if err != nil {
		return nil, clamav.NewValidationError("failed to register metrics", err)
	}

	conn, err := grpclib.NewClient(target, c.dialOpts...)
	if err != nil {
		return nil, clamav.NewConnectionError("failed to create gRPC connection", err)
	}

	c.conn = conn
	c.scanner = pb.NewClamAVScannerClient(conn)

	return c, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// HealthCheck checks if the ClamAV service is healthy.
func (c *Client) HealthCheck(ctx context.Context) (*clamav.HealthCheckResult, error) {
	ctx, cancel := c.contextWithTimeout(ctx)
	defer cancel()

	resp, err := c.scanner.HealthCheck(ctx, &pb.HealthCheckRequest{})
	if err != nil {
		return nil, mapGRPCError(err)
	}

	return &clamav.HealthCheckResult{
		Healthy: resp.Status == "healthy",
		Message: resp.Message,
	}, nil
}

// ScanFile scans file data with a unary RPC call.
func (c *Client) ScanFile(ctx context.Context, data []byte, filename string) (*clamav.ScanResult, error) {
	if len(data) == 0 {
		return nil, mapGRPCError(status.Error(codes.InvalidArgument, "file data is required"))
	}

	return c.instrument(ctx, "scan_file", filename, func(ctx context.Context) (*clamav.ScanResult, error) {
		resp, err := c.scanner.ScanFile(ctx, &pb.ScanFileRequest{
			Data:     data,
			Filename: filename,
		})
		if err != nil {
			return nil, mapGRPCError(err)
		}
		return mapScanResponse(resp, filename)
	})
}

// ScanFilePath reads a file from disk and scans with a unary RPC.
func (c *Client) ScanFilePath(ctx context.Context, filePath string) (*clamav.ScanResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, clamav.NewValidationError("failed to read file: "+filePath, err)
	}
	return c.ScanFile(ctx, data, filepath.Base(filePath))
}

// instrument runs fn under the default timeout inside an operation span.
func (c *Client) instrument(ctx context.Context, operation, filename string, fn func(context.Context) (*clamav.ScanResult, error)) (*clamav.ScanResult, error) {
	ctx, cancel := c.contextWithTimeout(ctx)
	defer cancel()

	ctx, op := c.telemetry.Start(ctx, operation, attribute.String("clamav.filename", filename))
	res, err := fn(ctx)
	var outcome string
	if res != nil {
		outcome = res.Verdict().String()
	}
	op.End(outcome, err)
	if err != nil {
		c.logger.Debug("scan failed", zap.String("operation", operation), zap.String("filename", filename), zap.Error(err))
	}
	return res, err
}

// contextWithTimeout applies the default timeout if the context has no deadline.
func (c *Client) contextWithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// mapScanResponse converts a proto ScanResponse to a clamav.ScanResult and
// classifies it. filename fills in a name the server did not echo.
func mapScanResponse(resp *pb.ScanResponse, filename string) (*clamav.ScanResult, error) {
	res := &clamav.ScanResult{
		Status:   resp.Status,
		Message:  resp.Message,
		ScanTime: resp.ScanTime,
		Filename: resp.Filename,
	}
	if res.Filename == "" {
		res.Filename = filename
	}
	return clamav.MapScanResult(res)
}
