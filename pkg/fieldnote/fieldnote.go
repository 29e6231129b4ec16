// Package fieldnote defines the geocaching field note records and their
// binary schemas.
package fieldnote

import (
	"time"

	"github.com/ssargent/fieldnotes/pkg/codec"
	"github.com/ssargent/fieldnotes/pkg/logtype"
)

// SchemaVersion is the current FieldNote schema.
//
//	v0: ID, CacheCode, CacheName, Type, Time, Note, Favorite, Logged, images
//	v1: items
const SchemaVersion = 1

// NoID marks a note that has not been assigned an identifier
const NoID int64 = -1

// FieldNote is a log entry written in the field, before it is posted
type FieldNote struct {
	ID        int64
	CacheCode string
	CacheName string
	Type      logtype.Type
	Time      int64 // UTC seconds
	Note      string
	Favorite  bool
	Logged    bool

	images []*Image
	items  []*Item
}

var _ codec.Record = (*FieldNote)(nil)

// New returns a field note in its reset state
func New() *FieldNote {
	n := &FieldNote{}
	n.Reset()
	return n
}

// FromBytes decodes a payload written at the given schema version. The
// version normally comes from an envelope.
func FromBytes(data []byte, version int) (*FieldNote, error) {
	n := New()
	if err := codec.Decode(data, version, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Version implements codec.Record
func (n *FieldNote) Version() int {
	return SchemaVersion
}

// Reset implements codec.Record
func (n *FieldNote) Reset() {
	n.ID = NoID
	n.CacheCode = ""
	n.CacheName = ""
	n.Type = logtype.Default
	n.Time = 0
	n.Note = ""
	n.Favorite = false
	n.Logged = false
	n.images = []*Image{}

	// v1
	n.items = []*Item{}
}

// Decode implements codec.Record
func (n *FieldNote) Decode(r *codec.Reader, version int) error {
	n.ID, _ = r.ReadInt64()
	n.CacheCode, _ = r.ReadString()
	n.CacheName, _ = r.ReadString()
	typ, _ := r.ReadInt32()
	n.Type = logtype.Type(typ)
	n.Time, _ = r.ReadInt64()
	n.Note, _ = r.ReadString()
	n.Favorite, _ = r.ReadBool()
	n.Logged, _ = r.ReadBool()

	images, err := codec.DecodeList(r, newImage)
	if err != nil {
		return err
	}
	n.images = images

	if version >= 1 {
		items, err := codec.DecodeList(r, newItem)
		if err != nil {
			return err
		}
		n.items = items
	}
	return r.Err()
}

// Encode implements codec.Record
func (n *FieldNote) Encode(w *codec.Writer) {
	w.WriteInt64(n.ID)
	w.WriteString(n.CacheCode)
	w.WriteString(n.CacheName)
	w.WriteInt32(int32(n.Type))
	w.WriteInt64(n.Time)
	w.WriteString(n.Note)
	w.WriteBool(n.Favorite)
	w.WriteBool(n.Logged)
	codec.EncodeList(w, n.images)

	// v1
	codec.EncodeList(w, n.items)
}

// Timestamp returns Time as a UTC time
func (n *FieldNote) Timestamp() time.Time {
	return time.Unix(n.Time, 0).UTC()
}

// SetTimestamp stores t truncated to whole seconds
func (n *FieldNote) SetTimestamp(t time.Time) {
	n.Time = t.Unix()
}

// Images returns the attached images in order. The slice is a copy.
func (n *FieldNote) Images() []*Image {
	return append([]*Image(nil), n.images...)
}

// Items returns the attached items in order. The slice is a copy.
func (n *FieldNote) Items() []*Item {
	return append([]*Item(nil), n.items...)
}

// AddImage appends an image
func (n *FieldNote) AddImage(img *Image) {
	n.images = append(n.images, img)
}

// AddItem appends an item
func (n *FieldNote) AddItem(item *Item) {
	n.items = append(n.items, item)
}

// ClearImages removes all images
func (n *FieldNote) ClearImages() {
	n.images = []*Image{}
}

// ClearItems removes all items
func (n *FieldNote) ClearItems() {
	n.items = []*Item{}
}

// Equal reports whether n and o hold the same field values
func (n *FieldNote) Equal(o *FieldNote) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.ID != o.ID || n.CacheCode != o.CacheCode || n.CacheName != o.CacheName ||
		n.Type != o.Type || n.Time != o.Time || n.Note != o.Note ||
		n.Favorite != o.Favorite || n.Logged != o.Logged {
		return false
	}
	if len(n.images) != len(o.images) || len(n.items) != len(o.items) {
		return false
	}
	for i := range n.images {
		if !n.images[i].Equal(o.images[i]) {
			return false
		}
	}
	for i := range n.items {
		if !n.items[i].Equal(o.items[i]) {
			return false
		}
	}
	return true
}
