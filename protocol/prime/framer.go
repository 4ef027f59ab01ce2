// File: protocol/prime/framer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Request framing. A Framer turns raw reads into frames handed to DecodeRequest.
// Framers hold per-connection state and are not safe for concurrent use.

package prime

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-tcp/api"
)

// DefaultMaxFrameSize bounds a buffered line in FramingLine mode.
const DefaultMaxFrameSize = 1 << 20

// Framing selects how inbound bytes are split into requests.
type Framing int

const (
	// FramingChunk treats every read as one JSON document.
	FramingChunk Framing = iota
	// FramingLine splits the stream on '\n'.
	FramingLine
)

func (f Framing) String() string {
	switch f {
	case FramingChunk:
		return "chunk"
	case FramingLine:
		return "line"
	default:
		return fmt.Sprintf("framing(%d)", int(f))
	}
}

// ParseFraming maps "chunk" or "line" to a Framing.
func ParseFraming(s string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chunk", "":
		return FramingChunk, nil
	case "line":
		return FramingLine, nil
	default:
		return 0, api.NewError(api.ErrCodeInvalidArgument, "unknown framing").WithContext("framing", s)
	}
}

// Framer accumulates reads and yields complete frames in arrival order.
type Framer interface {
	// Push hands the bytes of one read to the framer. The framer does not
	// retain chunk after the frames it produced have been popped.
	Push(chunk []byte) error
	// Pop returns the next complete frame.
	Pop() ([]byte, bool)
	// Drain returns buffered bytes that never saw a terminator; used at EOF.
	Drain() ([]byte, bool)
	// Terminate appends the response delimiter for this framing.
	Terminate(resp []byte) []byte
}

// NewFramer builds a framer for f. maxFrame <= 0 selects DefaultMaxFrameSize.
func NewFramer(f Framing, maxFrame int) Framer {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrameSize
	}
	if f == FramingLine {
		return &lineFramer{frames: queue.New(), max: maxFrame}
	}
	return &chunkFramer{}
}

type chunkFramer struct {
	pending []byte
	ready   bool
}

func (c *chunkFramer) Push(chunk []byte) error {
	c.pending = chunk
	c.ready = true
	return nil
}

func (c *chunkFramer) Pop() ([]byte, bool) {
	if !c.ready {
		return nil, false
	}
	frame := c.pending
	c.pending, c.ready = nil, false
	return frame, true
}

func (c *chunkFramer) Drain() ([]byte, bool) { return nil, false }

func (c *chunkFramer) Terminate(resp []byte) []byte { return resp }

type lineFramer struct {
	partial []byte
	frames  *queue.Queue
	max     int
}

func (l *lineFramer) Push(chunk []byte) error {
	data := chunk
	if len(l.partial) > 0 {
		data = append(l.partial, chunk...)
	}
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		if i > l.max {
			return l.tooLarge(i)
		}
		line := bytes.TrimSuffix(data[:i], []byte{'\r'})
		l.frames.Add(append([]byte(nil), line...))
		data = data[i+1:]
	}
	if len(data) > l.max {
		return l.tooLarge(len(data))
	}
	l.partial = append(l.partial[:0], data...)
	return nil
}

func (l *lineFramer) tooLarge(n int) error {
	l.partial = l.partial[:0]
	return &DecodeError{
		Reason: fmt.Sprintf("line of %d bytes exceeds limit of %d", n, l.max),
		Err:    api.ErrFrameTooLarge,
	}
}

func (l *lineFramer) Pop() ([]byte, bool) {
	if l.frames.Length() == 0 {
		return nil, false
	}
	return l.frames.Remove().([]byte), true
}

func (l *lineFramer) Drain() ([]byte, bool) {
	rest := bytes.TrimSpace(l.partial)
	l.partial = l.partial[:0]
	if len(rest) == 0 {
		return nil, false
	}
	return append([]byte(nil), rest...), true
}

func (l *lineFramer) Terminate(resp []byte) []byte { return append(resp, '\n') }
