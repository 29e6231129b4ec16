package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.chromium.org/luci/common/logging"

	"github.com/ssargent/fieldnotes/pkg/envelope"
	"github.com/ssargent/fieldnotes/pkg/fieldnote"
	"github.com/ssargent/fieldnotes/pkg/index"
)

// DataFileName is the name of the append-only data file inside DataDir
const DataFileName = "notes.data"

// Store is a log-structured store of field notes. Every Put appends the
// enveloped note to the data file; an in-memory index points at the latest
// frame for each id and a second one groups ids by cache code.
type Store struct {
	config   Config
	writer   *LogWriter
	reader   *LogReader
	index    *HashIndex
	byCache  *index.CacheIndex
	dataFile string
	decoder  envelope.Options
	mutex    sync.Mutex
	isOpen   bool
}

// New creates a store rooted at config.DataDir. Call Open before use.
func New(config Config) (*Store, error) {
	if config.DataDir == "" {
		return nil, &Error{"data directory is required"}
	}
	if err := os.MkdirAll(config.DataDir, 0750); err != nil {
		return nil, err
	}

	return &Store{
		config:   config,
		dataFile: filepath.Join(config.DataDir, DataFileName),
		index:    NewHashIndex(),
		byCache:  index.NewCacheIndex(),
		decoder:  envelope.Options{Strict: config.StrictVersions},
	}, nil
}

// Open validates the data file, truncates a damaged tail and rebuilds the index
func (s *Store) Open(ctx context.Context) (*RecoveryResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isOpen {
		return &RecoveryResult{}, nil
	}

	recovery, err := s.validateLogFile(ctx)
	if err != nil {
		return nil, err
	}

	writer, err := NewLogWriter(LogWriterConfig{
		FilePath:      s.dataFile,
		FsyncInterval: s.config.FsyncInterval,
		BufferSize:    64 * 1024,
	})
	if err != nil {
		return nil, err
	}

	reader, err := NewLogReader(LogReaderConfig{FilePath: s.dataFile})
	if err != nil {
		_ = writer.Close()
		return nil, err
	}

	if err := s.index.BuildFromLog(reader, payloadVersion); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, err
	}

	s.writer = writer
	s.reader = reader
	s.isOpen = true
	s.indexCaches(ctx)

	logging.Infof(ctx, "opened note store %s: %d notes, %d frames validated in %s",
		s.dataFile, s.index.Size(), recovery.RecordsValidated, recovery.RecoveryTime)
	return recovery, nil
}

// Put stores n under n.ID, replacing any earlier version
func (s *Store) Put(ctx context.Context, n *fieldnote.FieldNote) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return ErrClosed
	}
	if n == nil || n.ID < 0 {
		return ErrInvalidID
	}

	frame := &Frame{
		Timestamp: time.Now().UnixNano(),
		ID:        n.ID,
		Payload:   envelope.Marshal(n),
	}
	offset, err := s.writer.Append(frame)
	if err != nil {
		return fmt.Errorf("append note %d: %w", n.ID, err)
	}

	s.index.Put(n.ID, IndexEntry{
		Offset:    offset,
		Size:      frame.Size(),
		Timestamp: frame.Timestamp,
		Version:   n.Version(),
	})
	s.byCache.Put(n.ID, n.CacheCode)
	logging.Debugf(ctx, "stored note %d at offset %d (%d bytes)", n.ID, offset, frame.Size())
	return nil
}

// Get returns the latest stored version of note id
func (s *Store) Get(ctx context.Context, id int64) (*fieldnote.FieldNote, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return nil, ErrClosed
	}
	return s.getInternal(id)
}

func (s *Store) getInternal(id int64) (*fieldnote.FieldNote, error) {
	entry, exists := s.index.Get(id)
	if !exists {
		return nil, ErrNotFound
	}

	// Buffered frames must reach the file before the reader can see them
	if err := s.writer.Flush(); err != nil {
		return nil, err
	}

	frame, err := s.reader.ReadAt(entry.Offset, entry.Size)
	if err != nil {
		return nil, err
	}
	if frame.ID != id || frame.Tombstone {
		return nil, fmt.Errorf("%w: index points at frame for %d, want %d", ErrCorruption, frame.ID, id)
	}

	n := fieldnote.New()
	if err := s.decoder.Unmarshal(frame.Payload, n); err != nil {
		return nil, fmt.Errorf("decode note %d: %w", id, err)
	}
	return n, nil
}

// Delete removes note id by appending a tombstone
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return ErrClosed
	}
	if _, exists := s.index.Get(id); !exists {
		return ErrNotFound
	}

	if _, err := s.writer.Append(&Frame{
		Timestamp: time.Now().UnixNano(),
		ID:        id,
		Tombstone: true,
	}); err != nil {
		return fmt.Errorf("append tombstone %d: %w", id, err)
	}
	s.index.Delete(id)
	s.byCache.Delete(id)
	logging.Debugf(ctx, "deleted note %d", id)
	return nil
}

// List returns every stored note ordered by id
func (s *Store) List(ctx context.Context) ([]*fieldnote.FieldNote, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return nil, ErrClosed
	}

	ids := s.index.IDs()
	notes := make([]*fieldnote.FieldNote, 0, len(ids))
	for _, id := range ids {
		n, err := s.getInternal(id)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// FindByCache returns the notes written for a cache code, ordered by id.
// Codes are compared case-insensitively.
func (s *Store) FindByCache(ctx context.Context, code string) ([]*fieldnote.FieldNote, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return nil, ErrClosed
	}

	ids := s.byCache.Lookup(code)
	notes := make([]*fieldnote.FieldNote, 0, len(ids))
	for _, id := range ids {
		n, err := s.getInternal(id)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// indexCaches fills the cache code index from the live notes. Notes that
// cannot be decoded are left out.
func (s *Store) indexCaches(ctx context.Context) {
	for _, id := range s.index.IDs() {
		n, err := s.getInternal(id)
		if err != nil {
			logging.Warningf(ctx, "not indexing note %d: %s", id, err)
			continue
		}
		s.byCache.Put(id, n.CacheCode)
	}
}

// IDs returns the ids of all stored notes in ascending order
func (s *Store) IDs() []int64 {
	return s.index.IDs()
}

// Stats returns store statistics
func (s *Store) Stats() Stats {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats := Stats{Notes: s.index.Size()}
	if s.writer != nil {
		stats.DataSize = s.writer.Size()
	}
	return stats
}

// Close flushes pending writes and closes the data file
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return nil
	}
	s.isOpen = false

	if err := s.writer.Close(); err != nil {
		_ = s.reader.Close()
		return err
	}
	return s.reader.Close()
}

// validateLogFile scans the data file and truncates it at the first damaged
// frame. A crash mid-append leaves at most one torn frame at the tail; damage
// earlier in the file discards every frame behind it, and the result counts
// them all.
func (s *Store) validateLogFile(ctx context.Context) (*RecoveryResult, error) {
	startTime := time.Now()

	info, err := os.Stat(s.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return &RecoveryResult{IndexRebuilt: true, RecoveryTime: time.Since(startTime)}, nil
		}
		return nil, err
	}
	fileSizeBefore := info.Size()

	reader, err := NewLogReader(LogReaderConfig{FilePath: s.dataFile})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var recordsValidated int64
	var corruption error
	for {
		if _, err := reader.ReadNext(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			corruption = err
			break
		}
		recordsValidated++
	}

	result := &RecoveryResult{
		RecordsValidated: recordsValidated,
		FileSizeBefore:   fileSizeBefore,
		FileSizeAfter:    fileSizeBefore,
		IndexRebuilt:     true,
	}

	if corruption != nil {
		if !errors.Is(corruption, ErrCorruption) {
			return nil, corruption
		}
		lastValidOffset := reader.Offset()
		discarded, intact, err := countTailFrames(s.dataFile, lastValidOffset, fileSizeBefore)
		if err != nil {
			return nil, err
		}
		logging.Warningf(ctx, "truncating %s at offset %d, discarding %d bytes in %d frames (%d intact): %s",
			s.dataFile, lastValidOffset, fileSizeBefore-lastValidOffset, discarded, intact, corruption)

		if err := os.Truncate(s.dataFile, lastValidOffset); err != nil {
			return nil, err
		}
		result.FileSizeAfter = lastValidOffset
		result.RecordsTruncated = discarded
	}

	result.RecoveryTime = time.Since(startTime)
	return result, nil
}

// countTailFrames walks the frames in [offset, end) by their size fields.
// Each frame counts toward discarded and those whose CRC still checks out
// toward intact. Bytes that no longer parse as a frame count as one.
func countTailFrames(path string, offset, end int64) (discarded, intact int64, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	header := make([]byte, FrameHeaderSize)
	for offset < end {
		discarded++
		if end-offset < FrameHeaderSize {
			break
		}
		if _, err := file.ReadAt(header, offset); err != nil {
			return 0, 0, err
		}
		_, size, err := decodeFrameHeader(header)
		if err != nil || offset+FrameHeaderSize+int64(size) > end {
			break
		}
		data := make([]byte, FrameHeaderSize+size)
		if _, err := file.ReadAt(data, offset); err != nil {
			return 0, 0, err
		}
		if _, err := decodeFrame(data); err == nil {
			intact++
		}
		offset += int64(len(data))
	}
	return discarded, intact, nil
}

// payloadVersion reports the schema version stored in a frame's envelope
func payloadVersion(f *Frame) int {
	h, err := envelope.Peek(f.Payload)
	if err != nil {
		return -1
	}
	return h.Version
}
