package clamav

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"go.uber.org/multierr"
)

// Scan status values reported by the ClamAV API.
const (
	StatusClean    = "OK"
	StatusInfected = "FOUND"
	StatusError    = "ERROR"
)

// Verdict is the classified outcome of a scan.
type Verdict int

const (
	VerdictClean Verdict = iota
	VerdictInfected
	VerdictError
)

func (v Verdict) String() string {
	switch v {
	case VerdictClean:
		return "clean"
	case VerdictInfected:
		return "infected"
	case VerdictError:
		return "error"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// ScanResult represents the result of a virus scan.
type ScanResult struct {
	// Status is "OK" (clean), "FOUND" (infected), or "ERROR".
	Status string `json:"status"`
	// Message contains the virus name if infected, error description if error, or empty if clean.
	Message string `json:"message"`
	// ScanTime is the scan duration in seconds.
	ScanTime float64 `json:"time"`
	// Filename is the scanned file's name, if provided.
	Filename string `json:"filename,omitempty"`
}

// IsInfected returns true if the scan found a virus.
func (r *ScanResult) IsInfected() bool {
	return r.Status == StatusInfected
}

// IsClean returns true if the file is clean.
func (r *ScanResult) IsClean() bool {
	return r.Status == StatusClean
}

// IsError returns true if the server reported a scan error.
func (r *ScanResult) IsError() bool {
	return r.Status == StatusError
}

// Verdict classifies the status. Anything that is neither clean nor infected is an error.
func (r *ScanResult) Verdict() Verdict {
	switch r.Status {
	case StatusClean:
		return VerdictClean
	case StatusInfected:
		return VerdictInfected
	default:
		return VerdictError
	}
}

// Duration returns ScanTime as a time.Duration.
func (r *ScanResult) Duration() time.Duration {
	return time.Duration(r.ScanTime * float64(time.Second))
}

// HealthCheckResult represents the health status of the ClamAV service.
type HealthCheckResult struct {
	// Healthy is true when the ClamAV service is operational.
	Healthy bool
	// Message contains the raw status message from the server.
	Message string
}

// VersionResult contains the ClamAV API server version info.
type VersionResult struct {
	// Version is the server version string.
	Version string `json:"version"`
	// Commit is the git commit hash of the server build.
	Commit string `json:"commit"`
	// Build is the build timestamp.
	Build string `json:"build"`
}

// FileInput represents a file to scan (used by ScanMultiple).
type FileInput struct {
	// Data is the file content.
	Data []byte
	// Filename is the name of the file.
	Filename string
	// Reader, when set, is read instead of Data.
	Reader io.Reader
	// Size is the declared payload size. Zero means unknown.
	Size int64
}

// Source returns the reader for the payload content.
func (f FileInput) Source() io.Reader {
	if f.Reader != nil {
		return f.Reader
	}
	return bytes.NewReader(f.Data)
}

// CorrelationKey identifies one payload within a multi-file session.
type CorrelationKey struct {
	// Session is the identifier of the session the payload belongs to.
	Session string
	// Seq is assigned in submission order starting at 0.
	Seq uint64
	// Filename is advisory and not unique.
	Filename string
}

// String renders the key in the form carried on the wire.
func (k CorrelationKey) String() string {
	return fmt.Sprintf("%s/%d", k.Session, k.Seq)
}

// FileResult is the outcome of one payload in a multi-file scan.
// Exactly one of Result and Err is set.
type FileResult struct {
	Key      CorrelationKey
	Index    int
	Filename string
	Result   *ScanResult
	Err      error
}

// FileResults is a list of multi-file outcomes in completion order.
type FileResults []*FileResult

// Err combines every per-file error, or returns nil if all files produced a result.
func (rs FileResults) Err() error {
	var err error
	for _, r := range rs {
		if r.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", r.Filename, r.Err))
		}
	}
	return err
}

// Infected returns the results that found a virus.
func (rs FileResults) Infected() FileResults {
	var out FileResults
	for _, r := range rs {
		if r.Result != nil && r.Result.IsInfected() {
			out = append(out, r)
		}
	}
	return out
}
