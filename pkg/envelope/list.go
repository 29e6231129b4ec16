package envelope

import (
	"math"

	"github.com/ssargent/fieldnotes/pkg/codec"
)

// WriteList writes an int32 count followed by each item in its own envelope.
// Unlike codec.EncodeList every element carries its version, so lists written
// by different schema generations can be mixed.
func WriteList[T codec.Record](w *codec.Writer, items []T) {
	if len(items) > math.MaxInt32 {
		panic("envelope: list too long")
	}
	w.WriteInt32(int32(len(items)))
	for _, item := range items {
		Write(w, item)
	}
}

// ReadList reads a list written by WriteList using default options
func ReadList[T codec.Record](r *codec.Reader, newItem func() T) ([]T, error) {
	return ReadListWith(Options{}, r, newItem)
}

// ReadListWith reads a list written by WriteList. The result is never nil.
func ReadListWith[T codec.Record](o Options, r *codec.Reader, newItem func() T) ([]T, error) {
	n, err := r.ReadCount("envelope list")
	if err != nil {
		return nil, err
	}
	capHint := n
	if limit := r.Remaining() / HeaderSize; capHint > limit {
		capHint = limit
	}

	items := make([]T, 0, capHint)
	for i := 0; i < n; i++ {
		item := newItem()
		if _, err := o.Read(r, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
