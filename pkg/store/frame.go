package store

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/ssargent/fieldnotes/pkg/codec"
)

// FrameHeaderSize is the fixed part of a frame:
// CRC32(4) + Timestamp(8) + ID(8) + Tombstone(1) + PayloadSize(4)
const FrameHeaderSize = 25

// Frame is one entry in the data file. Payload holds an enveloped note and is
// empty for tombstones.
//
//	[CRC32(4)][Timestamp(8)][ID(8)][Tombstone(1)][PayloadSize(4)][Payload]
//
// All integers are big-endian. The CRC covers every byte after itself.
type Frame struct {
	CRC32     uint32
	Timestamp int64
	ID        int64
	Tombstone bool
	Payload   []byte
}

// Size returns the encoded size of the frame
func (f *Frame) Size() int64 {
	return FrameHeaderSize + int64(len(f.Payload))
}

// Encode serializes the frame and fills in its CRC
func (f *Frame) Encode() []byte {
	if len(f.Payload) > math.MaxInt32 {
		panic("store: payload exceeds int32")
	}
	var buf bytes.Buffer
	buf.Grow(int(f.Size()))
	w := codec.NewWriter(&buf)
	w.WriteInt32(0) // CRC placeholder
	w.WriteInt64(f.Timestamp)
	w.WriteInt64(f.ID)
	w.WriteBool(f.Tombstone)
	w.WriteBlob(f.Payload)

	data := buf.Bytes()
	f.CRC32 = crc32.ChecksumIEEE(data[4:])
	data[0] = byte(f.CRC32 >> 24)
	data[1] = byte(f.CRC32 >> 16)
	data[2] = byte(f.CRC32 >> 8)
	data[3] = byte(f.CRC32)
	return data
}

// decodeFrameHeader parses the fixed header and returns the payload size
func decodeFrameHeader(header []byte) (*Frame, int, error) {
	r := codec.NewReader(header)
	crc, _ := r.ReadInt32()
	f := &Frame{CRC32: uint32(crc)}
	f.Timestamp, _ = r.ReadInt64()
	f.ID, _ = r.ReadInt64()
	f.Tombstone, _ = r.ReadBool()
	size, err := r.ReadCount("frame payload")
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorruption, err)
	}
	return f, size, nil
}

// decodeFrame parses a complete frame and verifies its CRC
func decodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, fmt.Errorf("%w: frame too short (%d bytes)", ErrCorruption, len(data))
	}
	f, size, err := decodeFrameHeader(data[:FrameHeaderSize])
	if err != nil {
		return nil, err
	}
	if len(data) != FrameHeaderSize+size {
		return nil, fmt.Errorf("%w: frame size mismatch: %d != %d", ErrCorruption, len(data), FrameHeaderSize+size)
	}
	f.Payload = data[FrameHeaderSize:]
	if err := f.validate(data); err != nil {
		return nil, err
	}
	return f, nil
}

// validate checks the stored CRC against the frame bytes
func (f *Frame) validate(data []byte) error {
	if sum := crc32.ChecksumIEEE(data[4:]); sum != f.CRC32 {
		return fmt.Errorf("%w: CRC32 mismatch: %d != %d", ErrCorruption, f.CRC32, sum)
	}
	return nil
}
