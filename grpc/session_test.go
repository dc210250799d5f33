package grpc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	clamav "github.com/DevHatRo/clamav-sdk-go"
	pb "github.com/DevHatRo/clamav-sdk-go/grpc/proto"
)

// payload is one file as assembled by a test server.
type payload struct {
	requestID string
	filename  string
	data      []byte
}

// readAll drains a ScanMultiple stream until the client half-closes and
// returns the payloads in completion order.
func readAll(stream pb.ClamAVScanner_ScanMultipleServer) ([]payload, error) {
	var done []payload
	open := map[string]*payload{}
	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return done, nil
		}
		if err != nil {
			return nil, err
		}
		p, ok := open[req.RequestId]
		if !ok {
			p = &payload{requestID: req.RequestId}
			open[req.RequestId] = p
		}
		if req.Filename != "" {
			p.filename = req.Filename
		}
		p.data = append(p.data, req.Chunk...)
		if req.IsLast {
			done = append(done, *p)
			delete(open, req.RequestId)
		}
	}
}

func byFilename(results clamav.FileResults) map[string]*clamav.FileResult {
	out := make(map[string]*clamav.FileResult, len(results))
	for _, r := range results {
		out[r.Filename] = r
	}
	return out
}

func TestScanMultiple(t *testing.T) {
	t.Run("multiple clean files", func(t *testing.T) {
		env := newTestEnv(t, &mockClamAVServer{})
		defer env.close()

		files := []clamav.FileInput{
			{Data: []byte("file1 content"), Filename: "file1.txt"},
			{Data: []byte("file2 content"), Filename: "file2.txt"},
			{Data: []byte("file3 content"), Filename: "file3.txt"},
		}

		results, err := env.client.ScanMultiple(context.Background(), files)
		require.NoError(t, err)

		var count int
		for r := range results {
			require.NoError(t, r.Err)
			assert.True(t, r.Result.IsClean(), "file %s", r.Filename)
			assert.Equal(t, files[r.Index].Filename, r.Filename)
			count++
		}
		assert.Equal(t, 3, count)
	})

	t.Run("mixed clean and infected", func(t *testing.T) {
		env := newTestEnv(t, &mockClamAVServer{
			scanFunc: func(data []byte, filename string) (*pb.ScanResponse, error) {
				if bytes.Contains(data, []byte("EICAR")) {
					return &pb.ScanResponse{Status: "FOUND", Message: "Eicar-Test-Signature", Filename: filename}, nil
				}
				return &pb.ScanResponse{Status: "OK", Filename: filename}, nil
			},
		})
		defer env.close()

		results, err := env.client.ScanMultipleAll(context.Background(), []clamav.FileInput{
			{Data: []byte("clean data"), Filename: "clean.txt"},
			{Data: []byte("EICAR-DATA"), Filename: "infected.txt"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		require.NoError(t, results.Err())

		infected := results.Infected()
		require.Len(t, infected, 1)
		assert.Equal(t, "infected.txt", infected[0].Filename)
		assert.Equal(t, "Eicar-Test-Signature", infected[0].Result.Message)
	})

	t.Run("empty file list opens no stream", func(t *testing.T) {
		env := newTestEnv(t, &mockClamAVServer{
			multiFunc: func(pb.ClamAVScanner_ScanMultipleServer) error {
				t.Error("stream should not be opened")
				return nil
			},
		})
		defer env.close()

		results, err := env.client.ScanMultiple(context.Background(), nil)
		require.NoError(t, err)
		_, open := <-results
		assert.False(t, open)
	})

	t.Run("results in reverse order are matched by request id", func(t *testing.T) {
		env := newTestEnv(t, &mockClamAVServer{
			multiFunc: func(stream pb.ClamAVScanner_ScanMultipleServer) error {
				got, err := readAll(stream)
				if err != nil {
					return err
				}
				for i := len(got) - 1; i >= 0; i-- {
					// No filename, so only the request id identifies the payload.
					if err := stream.Send(&pb.ScanResponse{Status: "OK", RequestId: got[i].requestID}); err != nil {
						return err
					}
				}
				return nil
			},
		})
		defer env.close()

		results, err := env.client.ScanMultipleAll(context.Background(), []clamav.FileInput{
			{Data: []byte("aaa"), Filename: "a.txt"},
			{Data: []byte("bbb"), Filename: "b.txt"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "b.txt", results[0].Filename)
		assert.Equal(t, 1, results[0].Index)
		assert.Equal(t, "a.txt", results[1].Filename)
		assert.Equal(t, 0, results[1].Index)
		for _, r := range results {
			require.NoError(t, r.Err)
			assert.True(t, r.Result.IsClean())
			assert.Equal(t, r.Filename, r.Result.Filename)
		}
	})

	t.Run("falls back to filename when request id is not echoed", func(t *testing.T) {
		env := newTestEnv(t, &mockClamAVServer{
			multiFunc: func(stream pb.ClamAVScanner_ScanMultipleServer) error {
				got, err := readAll(stream)
				if err != nil {
					return err
				}
				for i := len(got) - 1; i >= 0; i-- {
					st := "OK"
					if bytes.Equal(got[i].data, []byte("bad")) {
						st = "FOUND"
					}
					if err := stream.Send(&pb.ScanResponse{Status: st, Filename: got[i].filename}); err != nil {
						return err
					}
				}
				return nil
			},
		})
		defer env.close()

		results, err := env.client.ScanMultipleAll(context.Background(), []clamav.FileInput{
			{Data: []byte("bad"), Filename: "a.txt"},
			{Data: []byte("good"), Filename: "b.txt"},
		})
		require.NoError(t, err)

		m := byFilename(results)
		require.Len(t, m, 2)
		assert.True(t, m["a.txt"].Result.IsInfected())
		assert.True(t, m["b.txt"].Result.IsClean())
	})

	t.Run("falls back to submission order without identifiers", func(t *testing.T) {
		env := newTestEnv(t, &mockClamAVServer{
			multiFunc: func(stream pb.ClamAVScanner_ScanMultipleServer) error {
				got, err := readAll(stream)
				if err != nil {
					return err
				}
				for range got {
					if err := stream.Send(&pb.ScanResponse{Status: "OK"}); err != nil {
						return err
					}
				}
				return nil
			},
		})
		defer env.close()

		results, err := env.client.ScanMultipleAll(context.Background(), []clamav.FileInput{
			{Data: []byte("1"), Filename: "one.txt"},
			{Data: []byte("2"), Filename: "two.txt"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, 0, results[0].Index)
		assert.Equal(t, "one.txt", results[0].Result.Filename)
		assert.Equal(t, 1, results[1].Index)
	})

	t.Run("abnormal close fails only pending files", func(t *testing.T) {
		env := newTestEnv(t, &mockClamAVServer{
			multiFunc: func(stream pb.ClamAVScanner_ScanMultipleServer) error {
				got, err := readAll(stream)
				if err != nil {
					return err
				}
				// Answer the first file, then end the call without answering the second.
				return stream.Send(&pb.ScanResponse{Status: "OK", RequestId: got[0].requestID})
			},
		})
		defer env.close()

		results, err := env.client.ScanMultipleAll(context.Background(), []clamav.FileInput{
			{Data: []byte("aaa"), Filename: "a.txt"},
			{Data: []byte("bbb"), Filename: "b.txt"},
		})
		require.NoError(t, err)

		m := byFilename(results)
		require.Len(t, m, 2)
		require.NoError(t, m["a.txt"].Err)
		assert.True(t, m["a.txt"].Result.IsClean())

		assert.Nil(t, m["b.txt"].Result)
		assert.True(t, clamav.IsConnectionError(m["b.txt"].Err), "got %v", m["b.txt"].Err)

		agg := results.Err()
		require.Error(t, agg)
		assert.ErrorIs(t, agg, clamav.ErrConnection)
	})

	t.Run("stream status error is mapped for every pending file", func(t *testing.T) {
		env := newTestEnv(t, &mockClamAVServer{
			multiFunc: func(stream pb.ClamAVScanner_ScanMultipleServer) error {
				if _, err := readAll(stream); err != nil {
					return err
				}
				return status.Error(codes.Internal, "clamd is not running")
			},
		})
		defer env.close()

		results, err := env.client.ScanMultipleAll(context.Background(), []clamav.FileInput{
			{Data: []byte("a"), Filename: "a.txt"},
			{Data: []byte("b"), Filename: "b.txt"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.True(t, clamav.IsServiceUnavailableError(r.Err), "got %v", r.Err)
		}
	})

	t.Run("file too large error is per file", func(t *testing.T) {
		env := newTestEnv(t, &mockClamAVServer{
			scanFunc: func(data []byte, filename string) (*pb.ScanResponse, error) {
				if filename == "huge.iso" {
					return &pb.ScanResponse{Status: "ERROR", Message: "File size limit exceeded", Filename: filename}, nil
				}
				return &pb.ScanResponse{Status: "OK", Filename: filename}, nil
			},
		})
		defer env.close()

		results, err := env.client.ScanMultipleAll(context.Background(), []clamav.FileInput{
			{Data: []byte("small"), Filename: "small.txt"},
			{Data: []byte("pretend this is big"), Filename: "huge.iso"},
		})
		require.NoError(t, err)

		m := byFilename(results)
		require.NoError(t, m["small.txt"].Err)
		assert.ErrorIs(t, m["huge.iso"].Err, clamav.ErrFileTooLarge)
	})

	t.Run("unknown request id is dropped", func(t *testing.T) {
		env := newTestEnv(t, &mockClamAVServer{
			multiFunc: func(stream pb.ClamAVScanner_ScanMultipleServer) error {
				got, err := readAll(stream)
				if err != nil {
					return err
				}
				if err := stream.Send(&pb.ScanResponse{Status: "FOUND", RequestId: "someone-else/7"}); err != nil {
					return err
				}
				return stream.Send(&pb.ScanResponse{Status: "OK", RequestId: got[0].requestID})
			},
		})
		defer env.close()

		results, err := env.client.ScanMultipleAll(context.Background(), []clamav.FileInput{
			{Data: []byte("a"), Filename: "a.txt"},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.NoError(t, results[0].Err)
		assert.True(t, results[0].Result.IsClean())
	})

	t.Run("reader failure fails only that file", func(t *testing.T) {
		mock := &mockClamAVServer{}
		mock.multiFunc = func(stream pb.ClamAVScanner_ScanMultipleServer) error {
			for {
				req, err := stream.Recv()
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				mock.record(req)
				if req.IsLast {
					if err := stream.Send(&pb.ScanResponse{Status: "OK", RequestId: req.RequestId}); err != nil {
						return err
					}
				}
			}
		}
		env := newTestEnv(t, mock, WithChunkSize(4))
		defer env.close()

		boom := errors.New("read failed")
		results, err := env.client.ScanMultipleAll(context.Background(), []clamav.FileInput{
			{Filename: "broken.bin", Reader: &failingReader{data: []byte("abcdefgh"), err: boom}},
			{Filename: "fine.txt", Data: []byte("fine")},
		})
		require.NoError(t, err)

		m := byFilename(results)
		require.Len(t, m, 2)
		assert.Nil(t, m["broken.bin"].Result)
		assert.True(t, clamav.IsValidationError(m["broken.bin"].Err))
		assert.ErrorIs(t, m["broken.bin"].Err, boom)

		require.NoError(t, m["fine.txt"].Err)
		assert.True(t, m["fine.txt"].Result.IsClean())

		// The broken payload is still terminated so the server can tell it apart from the next one.
		var brokenFinal bool
		for _, f := range mock.receivedFrames() {
			if f.RequestId == m["broken.bin"].Key.String() && f.IsLast {
				brokenFinal = true
			}
		}
		assert.True(t, brokenFinal)
	})

	t.Run("cancellation fails pending files with timeout", func(t *testing.T) {
		env := newTestEnv(t, &mockClamAVServer{
			multiFunc: func(stream pb.ClamAVScanner_ScanMultipleServer) error {
				<-stream.Context().Done()
				return stream.Context().Err()
			},
		})
		defer env.close()

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		results, err := env.client.ScanMultipleAll(ctx, []clamav.FileInput{
			{Data: []byte("a"), Filename: "a.txt"},
			{Data: []byte("b"), Filename: "b.txt"},
		})
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 3*time.Second)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.True(t, clamav.IsTimeoutError(r.Err), "got %v", r.Err)
		}
	})
}

func TestScanMultipleCorrelationKeys(t *testing.T) {
	env := newTestEnv(t, &mockClamAVServer{})
	defer env.close()

	files := []clamav.FileInput{
		{Data: []byte("same"), Filename: "dup.txt"},
		{Data: []byte("same"), Filename: "dup.txt"},
		{Data: []byte("other"), Filename: "other.txt"},
	}
	results, err := env.client.ScanMultipleAll(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, 3)

	seen := map[string]bool{}
	indexes := make([]int, 0, len(results))
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.False(t, seen[r.Key.String()], "duplicate key %s", r.Key)
		seen[r.Key.String()] = true
		assert.Equal(t, uint64(r.Index), r.Key.Seq)
		assert.Equal(t, results[0].Key.Session, r.Key.Session)
		indexes = append(indexes, r.Index)
	}
	sort.Ints(indexes)
	assert.Equal(t, []int{0, 1, 2}, indexes)

	for _, f := range env.mock.receivedFrames() {
		assert.True(t, seen[f.RequestId], "frame carries unknown request id %q", f.RequestId)
	}
}

func TestScanMultipleInterleave(t *testing.T) {
	files := []clamav.FileInput{
		{Data: []byte("aaaaaa"), Filename: "a.txt"},
		{Data: []byte("bbbbbb"), Filename: "b.txt"},
	}

	order := func(t *testing.T, opts ...ClientOption) []string {
		t.Helper()
		env := newTestEnv(t, &mockClamAVServer{}, append(opts, WithChunkSize(2))...)
		defer env.close()

		results, err := env.client.ScanMultipleAll(context.Background(), files)
		require.NoError(t, err)
		require.NoError(t, results.Err())

		names := map[string]string{}
		for _, r := range results {
			names[r.Key.String()] = r.Filename
		}
		var seq []string
		for _, f := range env.mock.receivedFrames() {
			seq = append(seq, names[f.RequestId]+":"+string(f.Chunk))
		}
		return seq
	}

	t.Run("sequential", func(t *testing.T) {
		assert.Equal(t, []string{
			"a.txt:aa", "a.txt:aa", "a.txt:aa",
			"b.txt:bb", "b.txt:bb", "b.txt:bb",
		}, order(t))
	})

	t.Run("round robin", func(t *testing.T) {
		assert.Equal(t, []string{
			"a.txt:aa", "b.txt:bb",
			"a.txt:aa", "b.txt:bb",
			"a.txt:aa", "b.txt:bb",
		}, order(t, WithInterleave(RoundRobin)))
	})
}

func TestScanMultipleCallback(t *testing.T) {
	env := newTestEnv(t, &mockClamAVServer{})
	defer env.close()

	files := []clamav.FileInput{
		{Data: []byte("file1"), Filename: "f1.txt"},
		{Data: []byte("file2"), Filename: "f2.txt"},
	}

	var results []*clamav.FileResult
	err := env.client.ScanMultipleCallback(context.Background(), files, func(r *clamav.FileResult) {
		results = append(results, r)
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestScanMultipleMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	env := newTestEnv(t, &mockClamAVServer{}, WithMetrics(reg), WithChunkSize(3))
	defer env.close()

	_, err := env.client.ScanMultipleAll(context.Background(), []clamav.FileInput{
		{Data: []byte("abcdef"), Filename: "a.txt"},
		{Data: []byte("x"), Filename: "b.txt"},
	})
	require.NoError(t, err)

	// The session goroutine records its outcome after closing the channel.
	require.Eventually(t, func() bool {
		return counterValue(t, reg, "clamav_sdk_scans_total") == 1 &&
			counterValue(t, reg, "clamav_sdk_frames_sent_total") == 3
	}, time.Second, 10*time.Millisecond)
}

func counterValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

func TestScanMultipleReleasesStream(t *testing.T) {
	released := make(chan struct{})
	env := newTestEnv(t, &mockClamAVServer{
		multiFunc: func(stream pb.ClamAVScanner_ScanMultipleServer) error {
			got, err := readAll(stream)
			if err != nil {
				return err
			}
			for _, p := range got {
				if err := stream.Send(&pb.ScanResponse{Status: "OK", RequestId: p.requestID}); err != nil {
					return err
				}
			}
			// Keep the call open; the client ends it once every file is resolved.
			<-stream.Context().Done()
			close(released)
			return stream.Context().Err()
		},
	})
	defer env.close()

	results, err := env.client.ScanMultipleAll(context.Background(), []clamav.FileInput{
		{Data: []byte("a"), Filename: "a.txt"},
		{Data: []byte("b"), Filename: "b.txt"},
	})
	require.NoError(t, err)
	require.NoError(t, results.Err())
	require.Len(t, results, 2)

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("stream was not canceled after all results were delivered")
	}
}
