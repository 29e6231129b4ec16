package codec

import "math"

// EncodeList writes an int32 count followed by each item's own encoding.
// Items carry no per-element delimiter or length prefix.
func EncodeList[T Record](w *Writer, items []T) {
	if len(items) > math.MaxInt32 {
		panic("codec: list too long")
	}
	w.WriteInt32(int32(len(items)))
	for _, item := range items {
		item.Encode(w)
	}
}

// DecodeList reads a list written by EncodeList. Each element is built by
// newItem, reset, and decoded at its compiled version. The result is never
// nil, and any element failure aborts the whole list.
func DecodeList[T Record](r *Reader, newItem func() T) ([]T, error) {
	n, err := r.ReadCount("list")
	if err != nil {
		return nil, err
	}

	// A corrupt count must not drive a huge allocation
	capHint := n
	if rem := r.Remaining(); capHint > rem {
		capHint = rem
	}
	items := make([]T, 0, capHint)

	for i := 0; i < n; i++ {
		item := newItem()
		if err := DecodeFrom(r, item.Version(), item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
