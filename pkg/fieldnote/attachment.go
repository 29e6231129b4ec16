package fieldnote

import (
	"bytes"

	"github.com/ssargent/fieldnotes/pkg/codec"
)

// Image is a photo attached to a field note
type Image struct {
	ID          int64
	NoteID      int64
	Caption     string
	Description string
	Data        []byte
}

var _ codec.Record = (*Image)(nil)

func newImage() *Image { return &Image{} }

// Version implements codec.Record
func (img *Image) Version() int { return 0 }

// Reset implements codec.Record
func (img *Image) Reset() {
	img.ID = NoID
	img.NoteID = NoID
	img.Caption = ""
	img.Description = ""
	img.Data = nil
}

// Decode implements codec.Record
func (img *Image) Decode(r *codec.Reader, version int) error {
	img.ID, _ = r.ReadInt64()
	img.NoteID, _ = r.ReadInt64()
	img.Caption, _ = r.ReadString()
	img.Description, _ = r.ReadString()
	img.Data, _ = r.ReadBlob()
	return r.Err()
}

// Encode implements codec.Record
func (img *Image) Encode(w *codec.Writer) {
	w.WriteInt64(img.ID)
	w.WriteInt64(img.NoteID)
	w.WriteString(img.Caption)
	w.WriteString(img.Description)
	w.WriteBlob(img.Data)
}

// Equal reports whether img and o hold the same values. Nil and empty Data
// are equal since both encode to a zero-length blob.
func (img *Image) Equal(o *Image) bool {
	if img == nil || o == nil {
		return img == o
	}
	return img.ID == o.ID && img.NoteID == o.NoteID &&
		img.Caption == o.Caption && img.Description == o.Description &&
		bytes.Equal(img.Data, o.Data)
}

// Item is a trackable or other item dropped, retrieved or visited with a log
type Item struct {
	ID     int64
	NoteID int64
	Code   string
	Name   string
	Action int32
}

var _ codec.Record = (*Item)(nil)

func newItem() *Item { return &Item{} }

// Version implements codec.Record
func (it *Item) Version() int { return 0 }

// Reset implements codec.Record
func (it *Item) Reset() {
	*it = Item{ID: NoID, NoteID: NoID}
}

// Decode implements codec.Record
func (it *Item) Decode(r *codec.Reader, version int) error {
	it.ID, _ = r.ReadInt64()
	it.NoteID, _ = r.ReadInt64()
	it.Code, _ = r.ReadString()
	it.Name, _ = r.ReadString()
	it.Action, _ = r.ReadInt32()
	return r.Err()
}

// Encode implements codec.Record
func (it *Item) Encode(w *codec.Writer) {
	w.WriteInt64(it.ID)
	w.WriteInt64(it.NoteID)
	w.WriteString(it.Code)
	w.WriteString(it.Name)
	w.WriteInt32(it.Action)
}

// Equal reports whether it and o hold the same values
func (it *Item) Equal(o *Item) bool {
	if it == nil || o == nil {
		return it == o
	}
	return *it == *o
}
