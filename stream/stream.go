// Package stream provides the sequential byte reader the interpreter
// drives while parsing stream-bound fields, per the interpreter's external
// interface: "sequential read-N-bytes with current position; optional
// seek". Position advances monotonically under normal parsing.
package stream

import (
	"io"

	"github.com/pkg/errors"
)

// Stream is the narrow interface the field layer consumes. It is
// intentionally small: positional reads, the current offset, seeking (used
// by the FSeek/FSkip builtins), and the total length.
type Stream interface {
	// ReadN reads exactly n bytes at the current position, advancing it by
	// n, and returns io.ErrUnexpectedEOF if fewer than n bytes remain.
	ReadN(n int) ([]byte, error)

	// Tell returns the current position.
	Tell() int64

	// Seek repositions the stream, for array/struct back-patching.
	Seek(offset int64) error

	// Len returns the total size of the underlying data, if known.
	Len() int64
}

// memStream is the concrete Stream implementation used throughout this
// module: a fixed byte slice with a cursor. Templates are interpreted
// against already-materialized byte buffers, so a ReadSeeker-backed stream
// is unnecessary generality the domain doesn't call for.
type memStream struct {
	data []byte
	pos  int64
}

// New wraps a byte slice as a Stream.
func New(data []byte) Stream {
	return &memStream{data: data}
}

// FromReader reads r fully and wraps the result as a Stream.
func FromReader(r io.Reader) (Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "stream: read source")
	}
	return New(data), nil
}

func (s *memStream) ReadN(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("stream: negative read length %d", n)
	}
	end := s.pos + int64(n)
	if end > int64(len(s.data)) {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "stream: read %d bytes at offset %d (len %d)", n, s.pos, len(s.data))
	}
	b := s.data[s.pos:end]
	s.pos = end
	return b, nil
}

func (s *memStream) Tell() int64 { return s.pos }

func (s *memStream) Seek(offset int64) error {
	if offset < 0 || offset > int64(len(s.data)) {
		return errors.Errorf("stream: seek out of range: %d (len %d)", offset, len(s.data))
	}
	s.pos = offset
	return nil
}

func (s *memStream) Len() int64 { return int64(len(s.data)) }
