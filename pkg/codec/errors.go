package codec

import (
	"errors"
	"fmt"
)

// ErrDecode is matched by every decoding failure, whatever its kind
var ErrDecode = errors.New("codec: decode failed")

// ErrorKind classifies a decoding failure
type ErrorKind int

const (
	// KindBufferUnderflow means fewer bytes remain than a fixed-width field needs
	KindBufferUnderflow ErrorKind = iota + 1
	// KindInvalidLength means a string, blob or list prefix is negative or too large
	KindInvalidLength
	// KindUnsupportedVersion means a stream is newer than the compiled schema.
	// Only strict callers report it; the default policy clamps the version.
	KindUnsupportedVersion
)

func (k ErrorKind) String() string {
	switch k {
	case KindBufferUnderflow:
		return "buffer underflow"
	case KindInvalidLength:
		return "invalid length"
	case KindUnsupportedVersion:
		return "unsupported version"
	default:
		return "unknown"
	}
}

// DecodeError describes where and why a decode stopped
type DecodeError struct {
	Kind   ErrorKind
	Op     string // primitive or record being read
	Offset int    // cursor position when the read started
	Need   int64  // bytes (or version) requested
	Have   int64  // bytes remaining (or compiled version)
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case KindUnsupportedVersion:
		return fmt.Sprintf("codec: %s: %s %d > %d", e.Op, e.Kind, e.Need, e.Have)
	default:
		return fmt.Sprintf("codec: %s at offset %d: %s (need %d, have %d)",
			e.Op, e.Offset, e.Kind, e.Need, e.Have)
	}
}

// Is makes errors.Is(err, ErrDecode) true for every DecodeError
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// IsKind reports whether err is a DecodeError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
