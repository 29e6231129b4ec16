package codec

import (
	"encoding/binary"
	"math"
)

// Reader consumes big-endian primitives from a caller-owned buffer.
//
// The first failure sticks: once a read fails every later read returns a zero
// value and the same error, so record decoders can read a run of fields and
// check Err once. The cursor position after a failure is unspecified.
type Reader struct {
	data []byte
	off  int
	err  error
}

// NewReader creates a reader positioned at the start of data
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first error encountered, if any
func (r *Reader) Err() error {
	return r.err
}

// Offset returns the cursor position
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// ReadInt16 reads a 2-byte integer
func (r *Reader) ReadInt16() (int16, error) {
	b := r.take("int16", 2)
	if b == nil {
		return 0, r.err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

// ReadInt32 reads a 4-byte integer
func (r *Reader) ReadInt32() (int32, error) {
	b := r.take("int32", 4)
	if b == nil {
		return 0, r.err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// ReadInt64 reads an 8-byte integer
func (r *Reader) ReadInt64() (int64, error) {
	b := r.take("int64", 8)
	if b == nil {
		return 0, r.err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// ReadFloat32 reads a 4-byte IEEE-754 value
func (r *Reader) ReadFloat32() (float32, error) {
	b := r.take("float32", 4)
	if b == nil {
		return 0, r.err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

// ReadFloat64 reads an 8-byte IEEE-754 value
func (r *Reader) ReadFloat64() (float64, error) {
	b := r.take("float64", 8)
	if b == nil {
		return 0, r.err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// ReadBool reads one byte; any non-zero value is true
func (r *Reader) ReadBool() (bool, error) {
	b := r.take("bool", 1)
	if b == nil {
		return false, r.err
	}
	return b[0] != 0, nil
}

// ReadString reads an int32 length followed by that many UTF-8 bytes
func (r *Reader) ReadString() (string, error) {
	b, err := r.readPrefixed("string")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadBlob reads an int32 length followed by that many bytes. The result is
// a copy and does not alias the input buffer.
func (r *Reader) ReadBlob() ([]byte, error) {
	b, err := r.readPrefixed("blob")
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// ReadBytes reads exactly n bytes. The result aliases the input buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		r.fail(KindInvalidLength, "bytes", int64(n))
		return nil, r.err
	}
	b := r.take("bytes", n)
	if b == nil {
		return nil, r.err
	}
	return b, nil
}

// Skip advances the cursor by n bytes
func (r *Reader) Skip(n int) error {
	_, err := r.ReadBytes(n)
	return err
}

// ReadCount reads an int32 element count and rejects negative values
func (r *Reader) ReadCount(op string) (int, error) {
	start := r.off
	n, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		r.off = start
		r.fail(KindInvalidLength, op, int64(n))
		return 0, r.err
	}
	return int(n), nil
}

func (r *Reader) readPrefixed(op string) ([]byte, error) {
	start := r.off
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 || int(n) > r.Remaining() {
		r.off = start
		r.fail(KindInvalidLength, op, int64(n))
		return nil, r.err
	}
	return r.take(op, int(n)), nil
}

// take returns the next n bytes or nil after recording an underflow
func (r *Reader) take(op string, n int) []byte {
	if r.err != nil {
		return nil
	}
	if n > r.Remaining() {
		r.fail(KindBufferUnderflow, op, int64(n))
		return nil
	}
	b := r.data[r.off : r.off+n : r.off+n]
	r.off += n
	return b
}

func (r *Reader) fail(kind ErrorKind, op string, need int64) {
	if r.err != nil {
		return
	}
	r.err = &DecodeError{
		Kind:   kind,
		Op:     op,
		Offset: r.off,
		Need:   need,
		Have:   int64(r.Remaining()),
	}
}
