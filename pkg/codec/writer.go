package codec

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer appends big-endian primitives to a caller-owned buffer.
// It keeps no state of its own besides the buffer reference.
type Writer struct {
	buf     *bytes.Buffer
	scratch [8]byte
}

// NewWriter creates a writer that appends to buf
func NewWriter(buf *bytes.Buffer) *Writer {
	if buf == nil {
		buf = new(bytes.Buffer)
	}
	return &Writer{buf: buf}
}

// WriteInt16 appends a 2-byte integer
func (w *Writer) WriteInt16(v int16) {
	binary.BigEndian.PutUint16(w.scratch[:2], uint16(v))
	w.buf.Write(w.scratch[:2])
}

// WriteInt32 appends a 4-byte integer
func (w *Writer) WriteInt32(v int32) {
	binary.BigEndian.PutUint32(w.scratch[:4], uint32(v))
	w.buf.Write(w.scratch[:4])
}

// WriteInt64 appends an 8-byte integer
func (w *Writer) WriteInt64(v int64) {
	binary.BigEndian.PutUint64(w.scratch[:8], uint64(v))
	w.buf.Write(w.scratch[:8])
}

// WriteFloat32 appends the IEEE-754 bits of v
func (w *Writer) WriteFloat32(v float32) {
	binary.BigEndian.PutUint32(w.scratch[:4], math.Float32bits(v))
	w.buf.Write(w.scratch[:4])
}

// WriteFloat64 appends the IEEE-754 bits of v
func (w *Writer) WriteFloat64(v float64) {
	binary.BigEndian.PutUint64(w.scratch[:8], math.Float64bits(v))
	w.buf.Write(w.scratch[:8])
}

// WriteBool appends a single byte, 1 for true and 0 for false
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

// WriteString appends the UTF-8 byte length as int32 followed by the bytes.
// An empty string is just a zero length.
func (w *Writer) WriteString(s string) {
	w.writeLength(len(s))
	w.buf.WriteString(s)
}

// WriteBlob appends an int32 length followed by the raw bytes
func (w *Writer) WriteBlob(b []byte) {
	w.writeLength(len(b))
	w.buf.Write(b)
}

// WriteBytes appends b without a length prefix
func (w *Writer) WriteBytes(b []byte) {
	w.buf.Write(b)
}

// Len returns the number of bytes in the underlying buffer
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Bytes returns the underlying buffer contents
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) writeLength(n int) {
	if n > math.MaxInt32 {
		panic("codec: length exceeds int32")
	}
	w.WriteInt32(int32(n))
}
