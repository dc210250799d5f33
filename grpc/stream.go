package grpc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	clamav "github.com/DevHatRo/clamav-sdk-go"
	pb "github.com/DevHatRo/clamav-sdk-go/grpc/proto"
)

// ScanStream scans data via client streaming RPC.
// The data is sent in frames of the configured chunk size (WithChunkSize, default 64KB).
func (c *Client) ScanStream(ctx context.Context, data []byte, filename string) (*clamav.ScanResult, error) {
	return c.ScanStreamReader(ctx, bytes.NewReader(data), filename)
}

// ScanStreamReader scans an io.Reader via client streaming RPC.
// Frames are read lazily, so the content is never buffered in memory as a whole.
// An empty reader is sent as a single empty final frame.
func (c *Client) ScanStreamReader(ctx context.Context, r io.Reader, filename string) (*clamav.ScanResult, error) {
	chunker, err := clamav.NewChunker(r, c.chunkSize)
	if err != nil {
		return nil, err
	}

	return c.instrument(ctx, "scan_stream", filename, func(ctx context.Context) (*clamav.ScanResult, error) {
		stream, err := c.scanner.ScanStream(ctx)
		if err != nil {
			return nil, mapGRPCError(err)
		}

		for {
			frame, err := chunker.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				// Returning cancels the stream context, so the server sees an aborted call.
				return nil, err
			}
			if err := stream.Send(frameRequest(frame, filename, "")); err != nil {
				if errors.Is(err, io.EOF) {
					// The server ended the call; CloseAndRecv reports why.
					break
				}
				return nil, mapGRPCError(err)
			}
			c.telemetry.FrameSent()
		}

		resp, err := stream.CloseAndRecv()
		if err != nil {
			return nil, mapGRPCError(err)
		}
		return mapScanResponse(resp, filename)
	})
}

// ScanStreamFile reads a file from disk and scans via client streaming RPC.
func (c *Client) ScanStreamFile(ctx context.Context, filePath string) (*clamav.ScanResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, clamav.NewValidationError("failed to open file: "+filePath, err)
	}
	defer func() { _ = f.Close() }()

	return c.ScanStreamReader(ctx, f, filepath.Base(filePath))
}

// frameRequest builds the wire message for one frame. The filename travels on
// the first frame only.
func frameRequest(f clamav.Frame, filename, requestID string) *pb.ScanStreamRequest {
	req := &pb.ScanStreamRequest{
		Chunk:     f.Data,
		IsLast:    f.Final,
		RequestId: requestID,
		Seq:       f.Seq,
	}
	if f.Seq == 0 {
		req.Filename = filename
	}
	return req
}
