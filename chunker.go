package clamav

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/google/uuid"
)

// DefaultChunkSize is the frame payload size used for streaming uploads.
const DefaultChunkSize = 64 * 1024

// Frame is one unit of a payload sent over a streaming channel.
type Frame struct {
	// Seq is the position of the frame within its payload, starting at 0.
	Seq uint64
	// Data is the frame payload. Only the final frame may be empty.
	Data []byte
	// Final marks the last frame of the payload.
	Final bool
}

// Chunker splits a byte source into ordered frames of at most size bytes.
// The last frame is marked Final; an empty source yields a single empty final frame.
// A Chunker is not safe for concurrent use.
type Chunker struct {
	r    *bufio.Reader
	buf  []byte
	seq  uint64
	done bool
}

// NewChunker returns a Chunker reading from r.
func NewChunker(r io.Reader, size int) (*Chunker, error) {
	if size <= 0 {
		return nil, NewInvalidChunkSizeError(size)
	}
	return &Chunker{r: bufio.NewReader(r), buf: make([]byte, size)}, nil
}

// Next returns the next frame, or io.EOF once the final frame has been returned.
// Errors reading the source are returned as validation errors and end the sequence.
// Frame data is copied out of the read buffer and sized to its content.
func (c *Chunker) Next() (Frame, error) {
	if c.done {
		return Frame{}, io.EOF
	}

	n, err := io.ReadFull(c.r, c.buf)
	final := false
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		final = true
	case err != nil:
		c.done = true
		return Frame{}, NewValidationError("failed to read data", err)
	default:
		// A full chunk is final only if nothing follows it.
		if _, perr := c.r.Peek(1); perr != nil {
			if !errors.Is(perr, io.EOF) {
				c.done = true
				return Frame{}, NewValidationError("failed to read data", perr)
			}
			final = true
		}
	}

	f := Frame{Seq: c.seq, Data: bytes.Clone(c.buf[:n]), Final: final}
	c.seq++
	c.done = final
	return f, nil
}

// ChunkBytes splits data into frames eagerly.
func ChunkBytes(data []byte, size int) ([]Frame, error) {
	c, err := NewChunker(FileInput{Data: data}.Source(), size)
	if err != nil {
		return nil, err
	}
	frames := make([]Frame, 0, len(data)/size+1)
	for {
		f, err := c.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
}

// NewCorrelationKeys assigns one key per file for a new session.
func NewCorrelationKeys(files []FileInput) []CorrelationKey {
	session := uuid.NewString()
	keys := make([]CorrelationKey, len(files))
	for i, f := range files {
		keys[i] = CorrelationKey{Session: session, Seq: uint64(i), Filename: f.Filename}
	}
	return keys
}
