// Package envelope frames versioned records so they can be stored or sent
// without the reader knowing their schema version in advance.
//
// Each record is written as
//
//	[Version int32][Size int32][Payload(Size)]
//
// where Payload is the record's own codec encoding. The size lets a reader
// skip fields added by a newer writer and find the next sibling record.
package envelope

import (
	"bytes"
	"math"

	"github.com/ssargent/fieldnotes/pkg/codec"
)

// HeaderSize is the number of bytes before the payload
const HeaderSize = 8

// Header is the framing that precedes a payload
type Header struct {
	Version int
	Size    int
}

// Options control how envelopes are decoded
type Options struct {
	// Strict rejects payloads written by a newer schema version instead of
	// reading their known prefix.
	Strict bool
}

// Write frames rec and appends it to w
func Write(w *codec.Writer, rec codec.Record) {
	payload := codec.Encode(rec)
	if len(payload) > math.MaxInt32 {
		panic("envelope: payload exceeds int32")
	}
	w.WriteInt32(int32(rec.Version()))
	w.WriteInt32(int32(len(payload)))
	w.WriteBytes(payload)
}

// Marshal frames rec into a new byte slice
func Marshal(rec codec.Record) []byte {
	var buf bytes.Buffer
	Write(codec.NewWriter(&buf), rec)
	return buf.Bytes()
}

// ReadHeader reads the version and size of the next envelope
func ReadHeader(r *codec.Reader) (Header, error) {
	version, _ := r.ReadInt32()
	size, err := r.ReadCount("envelope size")
	if err != nil {
		return Header{}, err
	}
	if version < 0 {
		return Header{}, &codec.DecodeError{
			Kind:   codec.KindInvalidLength,
			Op:     "envelope version",
			Offset: r.Offset() - HeaderSize,
			Need:   int64(version),
		}
	}
	if size > r.Remaining() {
		return Header{}, &codec.DecodeError{
			Kind:   codec.KindInvalidLength,
			Op:     "envelope size",
			Offset: r.Offset() - 4,
			Need:   int64(size),
			Have:   int64(r.Remaining()),
		}
	}
	return Header{Version: int(version), Size: size}, nil
}

// Read decodes the next envelope from r into rec using default options
func Read(r *codec.Reader, rec codec.Record) (Header, error) {
	return Options{}.Read(r, rec)
}

// Read decodes the next envelope from r into rec. On success the cursor is
// positioned after the payload, even when a newer writer left fields rec does
// not know about.
func (o Options) Read(r *codec.Reader, rec codec.Record) (Header, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Header{}, err
	}
	if o.Strict {
		if err := codec.CheckVersion(rec, h.Version); err != nil {
			return Header{}, err
		}
	}

	payload, err := r.ReadBytes(h.Size)
	if err != nil {
		return Header{}, err
	}
	// The payload reader bounds the record so it cannot run into the next one
	if err := codec.Decode(payload, h.Version, rec); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Unmarshal decodes a single envelope from data using default options
func Unmarshal(data []byte, rec codec.Record) error {
	return Options{}.Unmarshal(data, rec)
}

// Unmarshal decodes a single envelope from data
func (o Options) Unmarshal(data []byte, rec codec.Record) error {
	_, err := o.Read(codec.NewReader(data), rec)
	return err
}

// Peek reads the header at the start of data without decoding the payload
func Peek(data []byte) (Header, error) {
	return ReadHeader(codec.NewReader(data))
}
