package grpc

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	clamav "github.com/DevHatRo/clamav-sdk-go"
	pb "github.com/DevHatRo/clamav-sdk-go/grpc/proto"
	"github.com/DevHatRo/clamav-sdk-go/internal/telemetry"
)

// ScanMultiple scans several files over one bidirectional stream.
//
// Every file is assigned a correlation key before anything is sent. Frames
// are written in the order chosen by WithInterleave, each tagged with its
// file's key, while responses are read concurrently and matched back to
// their files. Results are sent to the returned channel in completion order;
// the channel is closed once every file has a result or an error.
//
// Failures are reported per file: a file whose source cannot be read fails
// alone, and if the stream breaks every file still waiting gets the mapped
// error. The channel is buffered for all files, so a consumer that stops
// reading does not leak goroutines.
func (c *Client) ScanMultiple(ctx context.Context, files []clamav.FileInput) (<-chan *clamav.FileResult, error) {
	results := make(chan *clamav.FileResult, len(files))
	if len(files) == 0 {
		close(results)
		return results, nil
	}

	ctx, cancel := c.contextWithTimeout(ctx)
	ctx, op := c.telemetry.Start(ctx, "scan_multiple", attribute.Int("clamav.files", len(files)))

	stream, err := c.scanner.ScanMultiple(ctx)
	if err != nil {
		cancel()
		err = mapGRPCError(err)
		op.End("", err)
		return nil, err
	}

	s := &session{
		client:  c,
		stream:  stream,
		files:   files,
		keys:    clamav.NewCorrelationKeys(files),
		results: results,
		events:  make(chan event, len(files)+2),
		op:      op,
	}
	c.logger.Debug("multi-file session opened",
		zap.String("session", s.keys[0].Session),
		zap.Int("files", len(files)),
		zap.Stringer("interleave", c.interleave),
	)

	go s.run(ctx, cancel)

	return results, nil
}

// ScanMultipleAll is the blocking form of ScanMultiple.
func (c *Client) ScanMultipleAll(ctx context.Context, files []clamav.FileInput) (clamav.FileResults, error) {
	results, err := c.ScanMultiple(ctx, files)
	if err != nil {
		return nil, err
	}
	return clamav.CollectResults(results), nil
}

// ScanMultipleCallback is like ScanMultiple but invokes fn for each result.
// Blocks until all results are received or ctx is canceled.
func (c *Client) ScanMultipleCallback(ctx context.Context, files []clamav.FileInput, fn func(*clamav.FileResult)) error {
	results, err := c.ScanMultiple(ctx, files)
	if err != nil {
		return err
	}

	for result := range results {
		fn(result)
	}

	return nil
}

type eventKind int

const (
	eventResponse eventKind = iota
	eventLocalFailure
	eventRecvFailure
	eventSendFailure
)

// event is handed from the send and receive goroutines to the collector,
// which alone owns the pending table.
type event struct {
	kind  eventKind
	index int
	resp  *pb.ScanResponse
	err   error
	// awaiting is set on local failures whose payload already reached the
	// server, which may still answer for it.
	awaiting bool
}

type session struct {
	client  *Client
	stream  pb.ClamAVScanner_ScanMultipleClient
	files   []clamav.FileInput
	keys    []clamav.CorrelationKey
	results chan<- *clamav.FileResult
	events  chan event
	op      *telemetry.Op
}

func (s *session) run(ctx context.Context, cancel context.CancelFunc) {
	// Send and receive failures reach the collector as events.
	var wg sync.WaitGroup
	wg.Go(func() { s.sendAll(ctx) })
	wg.Go(func() { s.recvAll(ctx) })

	err := s.collect(ctx)
	close(s.results)
	s.op.End("", err)

	// Every payload is resolved; abort whatever the server still has in flight.
	cancel()
	wg.Wait()
	s.client.logger.Debug("multi-file session closed", zap.String("session", s.keys[0].Session), zap.Error(err))
}

func (s *session) post(ctx context.Context, ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// source is one payload being framed by the send goroutine.
type source struct {
	index   int
	chunker *clamav.Chunker
	sent    int
}

func (s *session) sendAll(ctx context.Context) {
	defer s.stream.CloseSend() //nolint:errcheck // best-effort on send side close

	sources := make([]*source, 0, len(s.files))
	for i, f := range s.files {
		chunker, err := clamav.NewChunker(f.Source(), s.client.chunkSize)
		if err != nil {
			if !s.post(ctx, event{kind: eventLocalFailure, index: i, err: err}) {
				return
			}
			continue
		}
		sources = append(sources, &source{index: i, chunker: chunker})
	}

	var err error
	switch s.client.interleave {
	case RoundRobin:
		err = s.sendRoundRobin(ctx, sources)
	default:
		err = s.sendSequential(ctx, sources)
	}

	// On io.EOF the server ended the stream; the receive side reports why.
	if err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
		s.post(ctx, event{kind: eventSendFailure, err: mapGRPCError(err)})
	}
}

func (s *session) sendSequential(ctx context.Context, sources []*source) error {
	for _, src := range sources {
		for {
			done, err := s.step(ctx, src)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
	}
	return nil
}

func (s *session) sendRoundRobin(ctx context.Context, sources []*source) error {
	active := sources
	for len(active) > 0 {
		next := active[:0]
		for _, src := range active {
			done, err := s.step(ctx, src)
			if err != nil {
				return err
			}
			if !done {
				next = append(next, src)
			}
		}
		active = next
	}
	return nil
}

// step sends the next frame of src and reports whether src is finished.
// A returned error ends the whole session's sending.
func (s *session) step(ctx context.Context, src *source) (bool, error) {
	if err := ctx.Err(); err != nil {
		return true, err
	}

	frame, err := src.chunker.Next()
	if err != nil {
		return true, s.abandon(ctx, src, err)
	}
	if err := s.send(src, frame); err != nil {
		return true, err
	}
	return frame.Final, nil
}

// abandon fails src locally. If part of it was already sent, it is
// terminated with an empty final frame so the server does not merge it with
// the next payload. The failure is posted before that frame, so the collector
// knows to discard the server's answer for it.
func (s *session) abandon(ctx context.Context, src *source, cause error) error {
	awaiting := src.sent > 0
	if !s.post(ctx, event{kind: eventLocalFailure, index: src.index, err: cause, awaiting: awaiting}) {
		return ctx.Err()
	}
	if !awaiting {
		return nil
	}
	return s.send(src, clamav.Frame{Seq: uint64(src.sent), Final: true})
}

func (s *session) send(src *source, frame clamav.Frame) error {
	req := frameRequest(frame, s.files[src.index].Filename, s.keys[src.index].String())
	if err := s.stream.Send(req); err != nil {
		return err
	}
	src.sent++
	s.client.telemetry.FrameSent()
	return nil
}

func (s *session) recvAll(ctx context.Context) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			s.post(ctx, event{kind: eventRecvFailure, err: err})
			return
		}
		if !s.post(ctx, event{kind: eventResponse, resp: resp}) {
			return
		}
	}
}

// pendingEntry is a payload the server is expected to answer.
type pendingEntry struct {
	index int
	// discard marks payloads that already failed locally.
	discard bool
}

// collect owns the pending table. It returns once every payload is resolved,
// with the channel error that resolved the remainder, if any.
func (s *session) collect(ctx context.Context) error {
	n := len(s.files)
	resolved := 0
	pending := make([]pendingEntry, n)
	byKey := make(map[string]int, n)
	for i := range s.files {
		pending[i] = pendingEntry{index: i}
		byKey[s.keys[i].String()] = i
	}

	recorder := s.client.telemetry
	recorder.Pending(n)
	defer func() { recorder.Pending(-(n - resolved)) }()

	emit := func(i int, res *clamav.ScanResult, err error) {
		s.results <- &clamav.FileResult{
			Key:      s.keys[i],
			Index:    i,
			Filename: s.files[i].Filename,
			Result:   res,
			Err:      err,
		}
		resolved++
		recorder.Pending(-1)
		s.op.Event("file_done", attribute.String("clamav.key", s.keys[i].String()))
		s.client.logger.Debug("file resolved",
			zap.String("key", s.keys[i].String()),
			zap.String("filename", s.files[i].Filename),
			zap.Error(err),
		)
	}

	remove := func(pos int) pendingEntry {
		e := pending[pos]
		pending = append(pending[:pos], pending[pos+1:]...)
		return e
	}

	failRemaining := func(err error) error {
		for _, e := range pending {
			if !e.discard {
				emit(e.index, nil, err)
			}
		}
		pending = nil
		return err
	}

	for resolved < n {
		select {
		case <-ctx.Done():
			return failRemaining(clamav.NewTimeoutError("multi-file scan canceled", ctx.Err()))

		case ev := <-s.events:
			switch ev.kind {
			case eventLocalFailure:
				pos := findIndex(pending, ev.index)
				if pos < 0 {
					continue
				}
				if ev.awaiting {
					pending[pos].discard = true
				} else {
					remove(pos)
				}
				emit(ev.index, nil, ev.err)

			case eventResponse:
				pos := s.match(pending, byKey, ev.resp)
				if pos < 0 {
					s.client.logger.Warn("dropping unmatched scan response",
						zap.String("request_id", ev.resp.RequestId),
						zap.String("filename", ev.resp.Filename),
					)
					continue
				}
				e := remove(pos)
				if e.discard {
					continue
				}
				res, err := mapScanResponse(ev.resp, s.files[e.index].Filename)
				emit(e.index, res, err)

			case eventRecvFailure:
				if errors.Is(ev.err, io.EOF) {
					return failRemaining(clamav.NewConnectionError("stream closed before all results were received", nil))
				}
				if ctx.Err() != nil {
					return failRemaining(clamav.NewTimeoutError("multi-file scan canceled", ctx.Err()))
				}
				return failRemaining(mapGRPCError(ev.err))

			case eventSendFailure:
				return failRemaining(ev.err)
			}
		}
	}
	return nil
}

// match finds the pending position a response belongs to: by echoed request
// id, else the oldest pending payload with the same filename, else the oldest
// pending payload. A request id that is not pending yields -1.
func (s *session) match(pending []pendingEntry, byKey map[string]int, resp *pb.ScanResponse) int {
	if resp.RequestId != "" {
		i, ok := byKey[resp.RequestId]
		if !ok {
			return -1
		}
		return findIndex(pending, i)
	}
	if resp.Filename != "" {
		for pos, e := range pending {
			if s.files[e.index].Filename == resp.Filename {
				return pos
			}
		}
	}
	if len(pending) > 0 {
		return 0
	}
	return -1
}

func findIndex(pending []pendingEntry, index int) int {
	for pos, e := range pending {
		if e.index == index {
			return pos
		}
	}
	return -1
}
