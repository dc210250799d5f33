package clamav

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ClientOption configures the REST client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom *http.Client for the REST client.
// This allows full control over transport, TLS, timeouts, etc.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the default request timeout for all operations.
// If a context with a shorter deadline is provided to a method, that deadline takes precedence.
// Non-positive durations are ignored (no-op).
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHeaders sets default headers sent with every request.
// These can be used for authentication tokens, custom tracing headers, etc.
// The map is copied so later mutations by the caller do not affect the client.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		if headers == nil {
			c.headers = nil
			return
		}
		c.headers = make(map[string]string, len(headers))
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithConcurrency sets how many uploads ScanMultiple runs at once (default: 4).
// Non-positive values are ignored.
func WithConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
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
