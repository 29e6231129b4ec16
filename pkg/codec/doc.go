// Package codec provides the versioned binary record format used by fieldnotes.
//
// Every record type hand-declares its own layout by implementing Record. There
// is no reflection: a record reports its compiled schema version, resets
// itself to defaults, decodes the fields present at a given version, and
// encodes every field of its current version.
//
// # Wire Format
//
// All values are big-endian and fixed-width unless noted:
//
//	int16, int32, int64   two's complement
//	float32, float64      IEEE-754 bits
//	bool                  one byte, 0 or 1
//	string                int32 UTF-8 byte length, then the bytes
//	blob                  int32 byte length, then the bytes
//	list                  int32 count, then each element's own encoding
//
// An empty string or blob is a zero length with nothing after it. List
// elements are concatenated without delimiters; decoding relies on each
// element consuming exactly its own bytes.
//
// # Versioning
//
// The version a payload was written with is never read by the record itself.
// It comes from the caller, usually from an envelope that precedes the payload
// (see package envelope). Decode logic gates later fields on that version:
//
//	func (p *Point) Decode(r *codec.Reader, version int) error {
//	    p.X, _ = r.ReadInt32()
//	    p.Y, _ = r.ReadInt32()
//	    if version >= 1 {
//	        p.Label, _ = r.ReadString()
//	    }
//	    return r.Err()
//	}
//
//	func (p *Point) Encode(w *codec.Writer) {
//	    w.WriteInt32(p.X)
//	    w.WriteInt32(p.Y)
//	    w.WriteString(p.Label)
//	}
//
// Fields introduced at version N are appended after all fields of earlier
// versions, so an older stream simply lacks trailing bytes. Fields missing
// from an older stream keep the values Reset gave them.
//
// Encode has no version parameter. A record always writes its current
// layout; there is no way to produce an older one.
//
// A version newer than the compiled one is not an error: Decode reads it as
// the compiled version, so the known prefix of a newer stream stays readable.
// Callers that need to reject newer streams can use CheckVersion.
//
// # Error Handling
//
// Reader keeps the first failure and turns every later read into a no-op, so
// decoders can read a run of fields and check Err once. Every failure matches
// ErrDecode with errors.Is; a *DecodeError carries the kind:
//   - KindBufferUnderflow: fewer bytes remain than a fixed-width value needs
//   - KindInvalidLength: a string, blob or list prefix is negative, or a
//     string or blob is longer than the remaining input
//   - KindUnsupportedVersion: reported by CheckVersion only
//
// A record that failed to decode is in an unspecified state and must be
// discarded. A failing list element aborts the whole list and the record
// that contains it.
//
// # Thread Safety
//
// Readers, Writers and records are not synchronized. A record must have a
// single owner while it is encoded or decoded.
package codec
