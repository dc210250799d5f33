package clamav

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DevHatRo/clamav-sdk-go/internal/telemetry"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultConcurrency = 4
	maxErrorBodySize   = 64 * 1024

	pathHealthCheck = "/api/health-check"
	pathVersion     = "/api/version"
	pathScan        = "/api/scan"
	pathStreamScan  = "/api/stream-scan"
)

// Client is the REST client for the ClamAV API.
// It is safe for concurrent use from multiple goroutines.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	headers     map[string]string
	concurrency int
	logger      *zap.Logger

	registerer     prometheus.Registerer
	tracerProvider trace.TracerProvider
	telemetry      *telemetry.Recorder
}

// NewClient creates a REST client for the ClamAV API.
// baseURL is the server base URL, e.g. "http://localhost:6000".
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid base URL: %s", baseURL), err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, NewValidationError(fmt.Sprintf("base URL must include scheme and host: %s", baseURL), nil)
	}

	c := &Client{
		baseURL:     baseURL,
		timeout:     defaultTimeout,
		concurrency: defaultConcurrency,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}

	c.telemetry, err = telemetry.New("rest", c.registerer, c.tracerProvider)
	if err != nil {
		return nil, NewValidationError("failed to register metrics", err)
	}

	return c, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// HealthCheck checks if the ClamAV service is healthy.
func (c *Client) HealthCheck(ctx context.Context) (*HealthCheckResult, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathHealthCheck, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, NewServiceError("failed to decode health check response", resp.StatusCode, err)
	}

	return &HealthCheckResult{
		Healthy: resp.StatusCode == http.StatusOK && body.Message == "ok",
		Message: body.Message,
	}, nil
}

// Version returns the ClamAV API server version info.
func (c *Client) Version(ctx context.Context) (*VersionResult, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathVersion, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var result VersionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, NewServiceError("failed to decode version response", resp.StatusCode, err)
	}

	return &result, nil
}

// ScanFile scans file data provided as a byte slice via multipart upload.
// filename is optional metadata sent with the multipart upload.
func (c *Client) ScanFile(ctx context.Context, data []byte, filename string) (*ScanResult, error) {
	return c.ScanReader(ctx, bytes.NewReader(data), filename)
}

// ScanFilePath reads a file from disk and scans it via multipart upload.
func (c *Client) ScanFilePath(ctx context.Context, filePath string) (*ScanResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("failed to open file: %s", filePath), err)
	}
	defer f.Close()

	return c.ScanReader(ctx, f, filepath.Base(filePath))
}

// ScanReader scans data from an io.Reader via multipart upload.
func (c *Client) ScanReader(ctx context.Context, r io.Reader, filename string) (*ScanResult, error) {
	if filename == "" {
		filename = "file"
	}

	return c.instrument(ctx, "scan_file", filename, func(ctx context.Context) (*ScanResult, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)

		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return nil, NewValidationError("failed to create multipart form", err)
		}

		if _, err := io.Copy(part, r); err != nil {
			return nil, NewValidationError("failed to write file data", err)
		}

		if err := writer.Close(); err != nil {
			return nil, NewValidationError("failed to close multipart writer", err)
		}

		req, err := c.newRequest(ctx, http.MethodPost, pathScan, &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())

		return c.doScan(req, filename)
	})
}

// ScanStream scans in-memory data via the stream-scan endpoint.
// The endpoint requires a body, so empty data is a validation error.
func (c *Client) ScanStream(ctx context.Context, data []byte, filename string) (*ScanResult, error) {
	res, err := c.ScanStreamReader(ctx, bytes.NewReader(data), int64(len(data)))
	if res != nil && res.Filename == "" {
		res.Filename = filename
	}
	return res, err
}

// ScanStreamReader scans data from an io.Reader via the stream-scan endpoint.
// size is the Content-Length to set (required, must be > 0).
// For unknown sizes, buffer into bytes first and use ScanFile instead.
func (c *Client) ScanStreamReader(ctx context.Context, r io.Reader, size int64) (*ScanResult, error) {
	if size <= 0 {
		return nil, NewValidationError("size must be greater than 0", nil)
	}

	return c.instrument(ctx, "scan_stream", "", func(ctx context.Context) (*ScanResult, error) {
		req, err := c.newRequest(ctx, http.MethodPost, pathStreamScan, r)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		req.ContentLength = size

		return c.doScan(req, "")
	})
}

// ScanStreamFile reads a file from disk and scans via the stream-scan endpoint.
func (c *Client) ScanStreamFile(ctx context.Context, filePath string) (*ScanResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("failed to open file: %s", filePath), err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("failed to stat file: %s", filePath), err)
	}

	res, err := c.ScanStreamReader(ctx, f, stat.Size())
	if res != nil && res.Filename == "" {
		res.Filename = filepath.Base(filePath)
	}
	return res, err
}

// ScanMultiple scans several files concurrently, one multipart upload per
// file, with at most WithConcurrency uploads in flight. Results are sent to
// the returned channel in completion order and the channel is closed once
// every file has a result or an error. The channel is buffered for all files,
// so a consumer that stops reading does not leak goroutines.
func (c *Client) ScanMultiple(ctx context.Context, files []FileInput) (<-chan *FileResult, error) {
	keys := NewCorrelationKeys(files)
	results := make(chan *FileResult, len(files))

	ctx, op := c.telemetry.Start(ctx, "scan_multiple", attribute.Int("clamav.files", len(files)))

	go func() {
		defer close(results)

		var g errgroup.Group
		g.SetLimit(c.concurrency)
		for i, file := range files {
			g.Go(func() error {
				res, err := c.ScanReader(ctx, file.Source(), file.Filename)
				if res != nil && res.Filename == "" {
					res.Filename = file.Filename
				}
				results <- &FileResult{
					Key:      keys[i],
					Index:    i,
					Filename: file.Filename,
					Result:   res,
					Err:      err,
				}
				op.Event("file_done", attribute.String("clamav.key", keys[i].String()))
				return nil
			})
		}
		_ = g.Wait()
		op.End("", ctx.Err())
		c.logger.Debug("multi-file scan finished", zap.Int("files", len(files)))
	}()

	return results, nil
}

// ScanMultipleAll is the blocking form of ScanMultiple.
func (c *Client) ScanMultipleAll(ctx context.Context, files []FileInput) (FileResults, error) {
	results, err := c.ScanMultiple(ctx, files)
	if err != nil {
		return nil, err
	}
	return CollectResults(results), nil
}

// ScanMultipleCallback is like ScanMultiple but invokes fn for each result.
// Blocks until all results are received.
func (c *Client) ScanMultipleCallback(ctx context.Context, files []FileInput, fn func(*FileResult)) error {
	results, err := c.ScanMultiple(ctx, files)
	if err != nil {
		return err
	}

	for result := range results {
		fn(result)
	}

	return nil
}

func (c *Client) instrument(ctx context.Context, operation, filename string, fn func(context.Context) (*ScanResult, error)) (*ScanResult, error) {
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

// newRequest creates an HTTP request with context, base URL, and default headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, NewConnectionError("failed to create request", err)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// do executes an HTTP request and maps transport errors to SDK error types.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classifyTransportError(err)
	}
	return resp, nil
}

// doScan executes a scan request and maps the response.
func (c *Client) doScan(req *http.Request, filename string) (*ScanResult, error) {
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var result ScanResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, NewServiceError("failed to decode scan response", resp.StatusCode, err)
	}
	if result.Filename == "" {
		result.Filename = filename
	}

	return MapScanResult(&result)
}

// handleErrorResponse maps HTTP error responses to SDK error types.
// The body is read as JSON when possible and used verbatim otherwise.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return NewServiceError(
			fmt.Sprintf("unexpected status %d and failed to read error response", resp.StatusCode),
			resp.StatusCode, err,
		)
	}

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	var msg string
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Message
		if msg == "" {
			msg = body.Status
		}
	} else {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return MapHTTPStatus(resp.StatusCode, msg)
}

// classifyTransportError maps Go transport errors to SDK error types.
func (c *Client) classifyTransportError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return NewTimeoutError("request canceled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request timed out", err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return NewTimeoutError("request timed out", err)
	}

	// Network errors (connection refused, DNS, etc.)
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NewConnectionError("DNS resolution failed", err)
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return NewConnectionError("connection failed", err)
	}

	return NewConnectionError("request failed", err)
}
