package api

import (
	"context"

	"github.com/ssargent/fieldnotes/pkg/fieldnote"
	"github.com/ssargent/fieldnotes/pkg/logtype"
)

// Content types accepted and produced by the note endpoints
const (
	ContentTypeJSON   = "application/json"
	ContentTypeBinary = "application/octet-stream"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string // Empty disables authentication
	// MaxBodySize caps request bodies; zero means 8 MiB
	MaxBodySize int64
	// StrictVersions rejects uploaded envelopes written by a newer schema
	StrictVersions bool
}

// Repository is the storage the API serves notes from. Both the log store
// and the revision archive implement it.
type Repository interface {
	Put(ctx context.Context, n *fieldnote.FieldNote) error
	Get(ctx context.Context, id int64) (*fieldnote.FieldNote, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*fieldnote.FieldNote, error)
	FindByCache(ctx context.Context, code string) ([]*fieldnote.FieldNote, error)
}

// NoteDTO is the JSON form of a field note
type NoteDTO struct {
	ID        int64        `json:"id"`
	CacheCode string       `json:"cache_code"`
	CacheName string       `json:"cache_name"`
	Type      logtype.Type `json:"type"`
	Time      int64        `json:"time"`
	Note      string       `json:"note"`
	Favorite  bool         `json:"favorite"`
	Logged    bool         `json:"logged"`
	Images    []ImageDTO   `json:"images"`
	Items     []ItemDTO    `json:"items"`
}

// ImageDTO is the JSON form of an attached image. Data is base64 encoded.
type ImageDTO struct {
	ID          int64  `json:"id"`
	NoteID      int64  `json:"note_id"`
	Caption     string `json:"caption"`
	Description string `json:"description"`
	Data        []byte `json:"data,omitempty"`
}

// ItemDTO is the JSON form of an attached item
type ItemDTO struct {
	ID     int64  `json:"id"`
	NoteID int64  `json:"note_id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Action int32  `json:"action"`
}

// NewNoteDTO converts a note to its JSON form
func NewNoteDTO(n *fieldnote.FieldNote) NoteDTO {
	dto := NoteDTO{
		ID:        n.ID,
		CacheCode: n.CacheCode,
		CacheName: n.CacheName,
		Type:      n.Type,
		Time:      n.Time,
		Note:      n.Note,
		Favorite:  n.Favorite,
		Logged:    n.Logged,
		Images:    []ImageDTO{},
		Items:     []ItemDTO{},
	}
	for _, img := range n.Images() {
		dto.Images = append(dto.Images, ImageDTO{
			ID:          img.ID,
			NoteID:      img.NoteID,
			Caption:     img.Caption,
			Description: img.Description,
			Data:        img.Data,
		})
	}
	for _, it := range n.Items() {
		dto.Items = append(dto.Items, ItemDTO(*it))
	}
	return dto
}

// FieldNote converts the JSON form back to a note
func (d NoteDTO) FieldNote() *fieldnote.FieldNote {
	n := fieldnote.New()
	n.ID = d.ID
	n.CacheCode = d.CacheCode
	n.CacheName = d.CacheName
	n.Type = d.Type
	n.Time = d.Time
	n.Note = d.Note
	n.Favorite = d.Favorite
	n.Logged = d.Logged
	for _, img := range d.Images {
		n.AddImage(&fieldnote.Image{
			ID:          img.ID,
			NoteID:      img.NoteID,
			Caption:     img.Caption,
			Description: img.Description,
			Data:        img.Data,
		})
	}
	for _, it := range d.Items {
		item := fieldnote.Item(it)
		n.AddItem(&item)
	}
	return n
}

// DecodeResponse describes a decoded envelope
type DecodeResponse struct {
	Version int     `json:"version"`
	Size    int     `json:"size"`
	Note    NoteDTO `json:"note"`
}
