package codec

import "bytes"

// Record is implemented by every versioned record type.
//
// Version is a constant of the type, not of the instance. Decode receives the
// version the payload was written with; it must gate every field introduced
// after version 0 with "if version >= N" in declaration order. Encode always
// writes the complete current layout in that same order.
type Record interface {
	// Version returns the compiled schema version
	Version() int
	// Reset restores every field to its type default
	Reset()
	// Decode populates fields written at the given schema version
	Decode(r *Reader, version int) error
	// Encode writes every field of the current schema
	Encode(w *Writer)
}

// Encode serializes rec at its current schema version. The output carries no
// version tag; framing is left to the caller (see package envelope).
func Encode(rec Record) []byte {
	var buf bytes.Buffer
	rec.Encode(NewWriter(&buf))
	return buf.Bytes()
}

// Decode resets rec and decodes data written at the given version.
// Versions newer than the compiled one are read as the compiled version.
// Trailing bytes left after the record are not an error.
func Decode(data []byte, version int, rec Record) error {
	return DecodeFrom(NewReader(data), version, rec)
}

// DecodeFrom is Decode over an existing reader, leaving the cursor after the record
func DecodeFrom(r *Reader, version int, rec Record) error {
	rec.Reset()
	if err := rec.Decode(r, ClampVersion(rec, version)); err != nil {
		return err
	}
	return r.Err()
}

// ClampVersion caps version at the compiled version of rec. Negative versions
// are treated as version 0.
func ClampVersion(rec Record, version int) int {
	if v := rec.Version(); version > v {
		return v
	}
	if version < 0 {
		return 0
	}
	return version
}

// CheckVersion reports a KindUnsupportedVersion error when version is newer
// than the compiled version of rec
func CheckVersion(rec Record, version int) error {
	if v := rec.Version(); version > v {
		return &DecodeError{
			Kind: KindUnsupportedVersion,
			Op:   "version",
			Need: int64(version),
			Have: int64(v),
		}
	}
	return nil
}
