package store

import (
	"time"
)

// IndexEntry represents the location of a note's latest frame in the log
type IndexEntry struct {
	Offset    int64 // Byte offset within the data file
	Size      int64 // Size of the frame in bytes
	Timestamp int64 // Frame timestamp in nanoseconds
	Version   int   // Schema version of the stored payload
}

// LogWriterConfig holds configuration for the log writer
type LogWriterConfig struct {
	FilePath      string        // Path to the active data file
	FsyncInterval time.Duration // How often to fsync (0 = every write)
	BufferSize    int           // Write buffer size
}

// LogReaderConfig holds configuration for the log reader
type LogReaderConfig struct {
	FilePath    string // Path to the data file
	StartOffset int64  // Offset to start reading from
}

// Config holds configuration for the note store
type Config struct {
	DataDir       string        // Directory for data files
	FsyncInterval time.Duration // Fsync interval for durability
	// StrictVersions rejects payloads written by a newer schema instead of
	// reading their known prefix.
	StrictVersions bool
}

// RecoveryResult describes what Open found and repaired in the data file
type RecoveryResult struct {
	RecordsValidated int64
	RecordsTruncated int64
	FileSizeBefore   int64
	FileSizeAfter    int64
	IndexRebuilt     bool
	RecoveryTime     time.Duration
}

// Stats holds store statistics
type Stats struct {
	Notes    int
	DataSize int64
}

// FrameIterator provides streaming access to frames
type FrameIterator interface {
	Next() bool
	Frame() *Frame
	Err() error
	Close() error
}

// Errors
var (
	ErrNotFound   = &Error{"note not found"}
	ErrInvalidID  = &Error{"invalid note id"}
	ErrCorruption = &Error{"data corruption detected"}
	ErrClosed     = &Error{"store is not open"}
)

// Error represents a note store error
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
