package grpc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	clamav "github.com/DevHatRo/clamav-sdk-go"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultChunkSize      = clamav.DefaultChunkSize
	defaultMaxMessageSize = 200 * 1024 * 1024 // 200MB
)

// Interleave is the order in which a multi-file session writes frames.
type Interleave int

const (
	// Sequential sends every frame of a file before the next file starts.
	// Servers that assemble one file at a time require it.
	Sequential Interleave = iota
	// RoundRobin sends one frame of each unfinished file per turn.
	RoundRobin
)

func (i Interleave) String() string {
	switch i {
	case Sequential:
		return "sequential"
	case RoundRobin:
		return "round-robin"
	default:
		return "unknown"
	}
}

// ParseInterleave parses "sequential" or "round-robin".
func ParseInterleave(s string) (Interleave, error) {
	switch s {
	case "", "sequential":
		return Sequential, nil
	case "round-robin", "roundrobin":
		return RoundRobin, nil
	default:
		return Sequential, clamav.NewValidationError("unknown interleave policy: "+s, nil)
	}
}

// ClientOption configures the gRPC client.
type ClientOption func(*Client)

// WithDialOptions appends gRPC dial options to the connection.
func WithDialOptions(opts ...grpclib.DialOption) ClientOption {
	return func(c *Client) {
		c.dialOpts = append(c.dialOpts, opts...)
	}
}

// WithTransportCredentials sets the transport credentials, e.g. TLS.
// Without it the connection is insecure.
func WithTransportCredentials(creds credentials.TransportCredentials) ClientOption {
	return func(c *Client) {
		c.dialOpts = append(c.dialOpts, grpclib.WithTransportCredentials(creds))
		c.hasTransportCreds = true
	}
}

// WithTimeout sets the default RPC timeout.
// If a context with a shorter deadline is provided to a method, that deadline takes precedence.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithChunkSize sets the frame size for streaming operations (default: 64KB).
// NewClient rejects non-positive sizes.
func WithChunkSize(size int) ClientOption {
	return func(c *Client) {
		c.chunkSize = size
	}
}

// WithMaxMessageSize sets the max send/receive message size (default: 200MB).
func WithMaxMessageSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.maxMessageSize = size
		}
	}
}

// WithInterleave sets the frame order used by ScanMultiple (default: Sequential).
func WithInterleave(i Interleave) ClientOption {
	return func(c *Client) {
		c.interleave = i
	}
}

// WithLogger sets the logger used for debug and warning output. The default discards everything.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics registers the client's Prometheus collectors on reg.
func WithMetrics(reg prometheus.Registerer) ClientOption {
	return func(c *Client) {
		c.registerer = reg
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider. The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) {
		c.tracerProvider = tp
	}
}
