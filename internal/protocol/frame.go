package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bnema/me2u/internal/domain"
	"github.com/bnema/me2u/internal/fdpoll"
)

// DefaultByteTimeout bounds the wait for each byte once a frame read began.
const DefaultByteTimeout = time.Second

// Source is a pollable byte stream, typically an *os.File.
type Source interface {
	io.Reader
	Fd() uintptr
}

// FrameReader reads terminator-delimited frames one byte at a time so that
// no bytes past a terminator are ever consumed.
type FrameReader struct {
	src        Source
	terminator []byte
	timeout    time.Duration
}

func NewFrameReader(src Source, terminator string, timeout time.Duration) *FrameReader {
	if timeout <= 0 {
		timeout = DefaultByteTimeout
	}

	return &FrameReader{
		src:        src,
		terminator: []byte(terminator),
		timeout:    timeout,
	}
}

// ReadFrame returns the next frame without its terminator. A stalled stream
// yields ErrFrameTimeout and end-of-stream yields ErrConnectionClosed; both
// wrap ErrTransport.
func (r *FrameReader) ReadFrame() ([]byte, error) {
	var buf []byte
	one := make([]byte, 1)

	for {
		ready, err := fdpoll.WaitOne(r.src.Fd(), r.timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
		if !ready {
			return nil, fmt.Errorf("%w: %w after %s", domain.ErrTransport, domain.ErrFrameTimeout, r.timeout)
		}

		n, err := r.src.Read(one)
		if n == 0 {
			if err == nil || errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %w", domain.ErrTransport, domain.ErrConnectionClosed)
			}
			return nil, fmt.Errorf("%w: read: %w", domain.ErrTransport, err)
		}

		buf = append(buf, one[0])
		if bytes.HasSuffix(buf, r.terminator) {
			return buf[:len(buf)-len(r.terminator)], nil
		}
	}
}
