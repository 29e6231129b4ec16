package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.chromium.org/luci/common/logging"

	"github.com/ssargent/fieldnotes/pkg/codec"
	"github.com/ssargent/fieldnotes/pkg/envelope"
	"github.com/ssargent/fieldnotes/pkg/fieldnote"
	"github.com/ssargent/fieldnotes/pkg/store"
)

const defaultMaxBodySize = 8 << 20

// Server holds the API server state
type Server struct {
	repo    Repository
	config  ServerConfig
	metrics *Metrics
	decoder envelope.Options
}

// NewServer creates a new API server
func NewServer(repo Repository, config ServerConfig, metrics *Metrics) *Server {
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = defaultMaxBodySize
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{
		repo:    repo,
		config:  config,
		metrics: metrics,
		decoder: envelope.Options{Strict: config.StrictVersions},
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListNotes godoc
//
//	@Summary		List notes
//	@Description	List the latest version of every note. With Accept: application/octet-stream the body is a count followed by one envelope per note.
//	@Tags			notes
//	@Produce		json,octet-stream
//	@Success		200	{array}		NoteDTO
//	@Failure		500	{object}	APIResponse
//	@Router			/notes [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	notes, err := s.repo.List(r.Context())
	s.metrics.RecordRepoOperation("list", err == nil, time.Since(start))
	if err != nil {
		s.internalError(w, r, "list notes", err)
		return
	}
	s.metrics.UpdateNoteCount(len(notes))
	s.sendNotes(w, r, notes)
}

// handleCacheNotes godoc
//
//	@Summary		List notes for a cache
//	@Description	List the latest version of every note written for a cache code. Codes are case-insensitive.
//	@Tags			notes
//	@Produce		json,octet-stream
//	@Param			code	path		string	true	"Cache code"
//	@Success		200		{array}		NoteDTO
//	@Failure		500		{object}	APIResponse
//	@Router			/caches/{code}/notes [get]
//	@Security		ApiKeyAuth
func (s *Server) handleCacheNotes(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	start := time.Now()
	notes, err := s.repo.FindByCache(r.Context(), code)
	s.metrics.RecordRepoOperation("find_by_cache", err == nil, time.Since(start))
	if err != nil {
		s.internalError(w, r, "find notes by cache", err)
		return
	}
	s.sendNotes(w, r, notes)
}

// sendNotes writes notes as a JSON array or as an envelope list
func (s *Server) sendNotes(w http.ResponseWriter, r *http.Request, notes []*fieldnote.FieldNote) {
	if wantsBinary(r) {
		var buf bytes.Buffer
		envelope.WriteList(codec.NewWriter(&buf), notes)
		s.metrics.RecordCodec("encode", true, buf.Len())
		sendBinary(w, buf.Bytes())
		return
	}

	dtos := make([]NoteDTO, 0, len(notes))
	for _, n := range notes {
		dtos = append(dtos, NewNoteDTO(n))
	}
	sendSuccess(w, dtos)
}

// handleGetNote godoc
//
//	@Summary		Get a note
//	@Description	Get the latest version of a note as JSON, or as an envelope with Accept: application/octet-stream
//	@Tags			notes
//	@Produce		json,octet-stream
//	@Param			id	path		int	true	"Note id"
//	@Success		200	{object}	NoteDTO
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Router			/notes/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	n, err := s.repo.Get(r.Context(), id)
	s.metrics.RecordRepoOperation("get", err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendError(w, fmt.Sprintf("Note %d not found", id), http.StatusNotFound)
			return
		}
		s.internalError(w, r, "get note", err)
		return
	}

	if wantsBinary(r) {
		data := envelope.Marshal(n)
		s.metrics.RecordCodec("encode", true, len(data))
		sendBinary(w, data)
		return
	}
	sendSuccess(w, NewNoteDTO(n))
}

// handlePutNote godoc
//
//	@Summary		Store a note
//	@Description	Store a note from a JSON body or an envelope (Content-Type: application/octet-stream). The path id wins; a body with a different id is rejected.
//	@Tags			notes
//	@Accept			json,octet-stream
//	@Produce		json
//	@Param			id		path		int		true	"Note id"
//	@Param			body	body		NoteDTO	true	"Note"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		400		{object}	APIResponse
//	@Failure		413		{object}	APIResponse
//	@Failure		500		{object}	APIResponse
//	@Router			/notes/{id} [put]
//	@Security		ApiKeyAuth
func (s *Server) handlePutNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var n *fieldnote.FieldNote
	if isBinaryContent(r) {
		n = fieldnote.New()
		if err := s.decoder.Unmarshal(body, n); err != nil {
			s.metrics.RecordCodec("decode", false, len(body))
			sendError(w, fmt.Sprintf("Invalid note envelope: %v", err), http.StatusBadRequest)
			return
		}
		s.metrics.RecordCodec("decode", true, len(body))
	} else {
		dto := NoteDTO{ID: fieldnote.NoID}
		if err := json.Unmarshal(body, &dto); err != nil {
			sendError(w, fmt.Sprintf("Invalid JSON in request body: %v", err), http.StatusBadRequest)
			return
		}
		n = dto.FieldNote()
	}

	if n.ID != fieldnote.NoID && n.ID != id {
		sendError(w, fmt.Sprintf("Body id %d does not match path id %d", n.ID, id), http.StatusBadRequest)
		return
	}
	n.ID = id

	start := time.Now()
	err := s.repo.Put(r.Context(), n)
	s.metrics.RecordRepoOperation("put", err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, store.ErrInvalidID) {
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.internalError(w, r, "put note", err)
		return
	}

	sendSuccess(w, map[string]interface{}{"id": id, "message": "Note stored successfully"})
}

// handleDeleteNote godoc
//
//	@Summary		Delete a note
//	@Description	Delete a note and, for the revision archive, all of its revisions
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		int	true	"Note id"
//	@Success		200	{object}	map[string]string
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Router			/notes/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	err := s.repo.Delete(r.Context(), id)
	s.metrics.RecordRepoOperation("delete", err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendError(w, fmt.Sprintf("Note %d not found", id), http.StatusNotFound)
			return
		}
		s.internalError(w, r, "delete note", err)
		return
	}

	sendSuccess(w, map[string]string{"message": "Note deleted successfully"})
}

// handleDecode godoc
//
//	@Summary		Decode an envelope
//	@Description	Decode a note envelope to JSON without storing it. Use ?strict=true to reject newer schema versions.
//	@Tags			codec
//	@Accept			octet-stream
//	@Produce		json
//	@Param			strict	query		bool	false	"Reject newer schema versions"
//	@Success		200		{object}	DecodeResponse
//	@Failure		400		{object}	APIResponse
//	@Router			/decode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	decoder := s.decoder
	if strict := r.URL.Query().Get("strict"); strict != "" {
		v, err := strconv.ParseBool(strict)
		if err != nil {
			sendError(w, "Invalid strict parameter", http.StatusBadRequest)
			return
		}
		decoder.Strict = v
	}

	n := fieldnote.New()
	header, err := decoder.Read(codec.NewReader(body), n)
	if err != nil {
		s.metrics.RecordCodec("decode", false, len(body))
		sendError(w, fmt.Sprintf("Invalid note envelope: %v", err), http.StatusBadRequest)
		return
	}
	s.metrics.RecordCodec("decode", true, len(body))

	sendSuccess(w, DecodeResponse{
		Version: header.Version,
		Size:    header.Size,
		Note:    NewNoteDTO(n),
	})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logging.Errorf(r.Context(), "%s: %s", op, err)
	sendError(w, fmt.Sprintf("Failed to %s: %v", op, err), http.StatusInternalServerError)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		sendError(w, fmt.Sprintf("Invalid note id %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
