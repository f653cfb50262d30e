package vst3

import (
	"encoding/binary"
	"io"
	"math"
)

// MemoryStream is an in-memory IBStream.
type MemoryStream struct {
	buf []byte
	pos int64
}

// NewMemoryStream creates a stream reading from data. The slice is used
// directly; callers must not modify it while the stream is in use.
func NewMemoryStream(data []byte) *MemoryStream {
	return &MemoryStream{buf: data}
}

// Read reads data from the stream
func (s *MemoryStream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.pos >= int64(len(s.buf)) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.pos:])
	s.pos += int64(n)
	return n, nil
}

// Write writes data at the current position, growing the stream as needed.
func (s *MemoryStream) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		if end > int64(cap(s.buf)) {
			grown := make([]byte, end, max(end, int64(2*cap(s.buf))))
			copy(grown, s.buf)
			s.buf = grown
		} else {
			s.buf = s.buf[:end]
		}
	}
	copy(s.buf[s.pos:], p)
	s.pos = end
	return len(p), nil
}

// Seek implements io.Seeker.
func (s *MemoryStream) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = s.pos + offset
	case io.SeekEnd:
		next = int64(len(s.buf)) + offset
	default:
		return s.pos, ResultInvalidArg
	}
	if next < 0 {
		return s.pos, ResultInvalidArg
	}
	s.pos = next
	return next, nil
}

// Tell returns the current position.
func (s *MemoryStream) Tell() int64 { return s.pos }

// Rewind seeks to the start.
func (s *MemoryStream) Rewind() { s.pos = 0 }

// Reset empties the stream, keeping its storage.
func (s *MemoryStream) Reset() {
	s.buf = s.buf[:0]
	s.pos = 0
}

// Bytes returns the stream contents without copying.
func (s *MemoryStream) Bytes() []byte { return s.buf }

// Len returns the stream size.
func (s *MemoryStream) Len() int { return len(s.buf) }

// WriteInt32 writes an int32 to the stream
func WriteInt32(w io.Writer, value int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(value))
	_, err := w.Write(buf[:])
	return err
}

// ReadInt32 reads an int32 from the stream
func ReadInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// WriteFloat64 writes a float64 to the stream
func WriteFloat64(w io.Writer, value float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(value))
	_, err := w.Write(buf[:])
	return err
}

// ReadFloat64 reads a float64 from the stream
func ReadFloat64(r io.Reader) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// WriteString writes a string to the stream with length prefix
func WriteString(w io.Writer, str string) error {
	if err := WriteInt32(w, int32(len(str))); err != nil {
		return err
	}
	if str == "" {
		return nil
	}
	_, err := io.WriteString(w, str)
	return err
}

// ReadString reads a string from the stream with length prefix
func ReadString(r io.Reader) (string, error) {
	length, err := ReadInt32(r)
	if err != nil {
		return "", err
	}
	if length < 0 {
		return "", ResultInvalidArg
	}
	if length == 0 {
		return "", nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
