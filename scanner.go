package clamav

import "context"

//go:generate mockgen -package mockscanner -source=scanner.go -destination=internal/mock/mockscanner/scanner.go

// Scanner is the capability set shared by the REST and gRPC clients.
//
// Blocking methods return once the scan completes. ScanMultiple returns
// immediately and delivers results on the channel as they arrive; the
// channel is closed once every file has a result or an error.
type Scanner interface {
	HealthCheck(ctx context.Context) (*HealthCheckResult, error)
	ScanFile(ctx context.Context, data []byte, filename string) (*ScanResult, error)
	ScanStream(ctx context.Context, data []byte, filename string) (*ScanResult, error)
	ScanMultiple(ctx context.Context, files []FileInput) (<-chan *FileResult, error)
	ScanMultipleAll(ctx context.Context, files []FileInput) (FileResults, error)
	Close() error
}

var _ Scanner = (*Client)(nil)

// CollectResults drains a result channel into a slice in completion order.
func CollectResults(results <-chan *FileResult) FileResults {
	var out FileResults
	for r := range results {
		out = append(out, r)
	}
	return out
}
