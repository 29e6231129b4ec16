package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// LogReader provides sequential and random access to frames in a log file
type LogReader struct {
	file   *os.File
	reader *bufio.Reader
	offset int64
	config LogReaderConfig
}

// NewLogReader creates a new log reader for the specified file
func NewLogReader(config LogReaderConfig) (*LogReader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	if config.StartOffset > 0 {
		if _, err := file.Seek(config.StartOffset, io.SeekStart); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return &LogReader{
		file:   file,
		reader: bufio.NewReader(file),
		offset: config.StartOffset,
		config: config,
	}, nil
}

// ReadNext reads the frame at the current offset. It returns io.EOF at a
// clean end of file and ErrCorruption for a torn or damaged frame.
func (r *LogReader) ReadNext() (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	n, err := io.ReadFull(r.reader, header)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: torn frame header at offset %d", ErrCorruption, r.offset)
		}
		return nil, err
	}

	_, size, err := decodeFrameHeader(header)
	if err != nil {
		return nil, err
	}
	if err := r.checkSize(size); err != nil {
		return nil, err
	}

	data := make([]byte, FrameHeaderSize+size)
	copy(data, header)
	if _, err := io.ReadFull(r.reader, data[FrameHeaderSize:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: torn frame payload at offset %d", ErrCorruption, r.offset)
		}
		return nil, err
	}

	frame, err := decodeFrame(data)
	if err != nil {
		return nil, err
	}
	r.offset += int64(n + size)
	return frame, nil
}

// checkSize rejects payload sizes that run past the end of the file, so a
// damaged size field cannot drive a large allocation
func (r *LogReader) checkSize(size int) error {
	if size <= r.reader.Buffered() {
		return nil
	}
	info, err := r.file.Stat()
	if err != nil {
		return err
	}
	if end := r.offset + FrameHeaderSize + int64(size); end > info.Size() {
		return fmt.Errorf("%w: torn frame payload at offset %d", ErrCorruption, r.offset)
	}
	return nil
}

// ReadAt reads the frame that starts at offset without moving the cursor
func (r *LogReader) ReadAt(offset int64, size int64) (*Frame, error) {
	if size < FrameHeaderSize {
		return nil, fmt.Errorf("%w: frame size %d at offset %d", ErrCorruption, size, offset)
	}
	data := make([]byte, size)
	if _, err := r.file.ReadAt(data, offset); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: frame at offset %d extends past end of file", ErrCorruption, offset)
		}
		return nil, err
	}
	return decodeFrame(data)
}

// Seek sets the read offset
func (r *LogReader) Seek(offset int64) error {
	if _, err := r.file.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	r.reader.Reset(r.file)
	r.offset = offset
	return nil
}

// Offset returns the current read offset
func (r *LogReader) Offset() int64 {
	return r.offset
}

// Iterator returns a streaming iterator over frames from the current offset
func (r *LogReader) Iterator() FrameIterator {
	return &logFrameIterator{reader: r}
}

// Close closes the log reader
func (r *LogReader) Close() error {
	return r.file.Close()
}

// logFrameIterator implements FrameIterator for streaming access
type logFrameIterator struct {
	reader *LogReader
	frame  *Frame
	err    error
}

func (it *logFrameIterator) Next() bool {
	it.frame, it.err = it.reader.ReadNext()
	return it.err == nil
}

func (it *logFrameIterator) Frame() *Frame {
	return it.frame
}

// Err returns the error that stopped iteration, or nil at a clean end of file
func (it *logFrameIterator) Err() error {
	if errors.Is(it.err, io.EOF) {
		return nil
	}
	return it.err
}

func (it *logFrameIterator) Close() error {
	// The underlying reader is owned by the caller
	return nil
}
