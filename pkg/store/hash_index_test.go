package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIndex_Operations(t *testing.T) {
	idx := NewHashIndex()

	idx.Put(3, IndexEntry{Offset: 100, Size: 30})
	idx.Put(1, IndexEntry{Offset: 0, Size: 25})
	idx.Put(2, IndexEntry{Offset: 50, Size: 40})

	entry, ok := idx.Get(3)
	require.True(t, ok)
	assert.Equal(t, int64(100), entry.Offset)
	assert.Equal(t, 3, idx.Size())
	assert.Equal(t, []int64{1, 2, 3}, idx.IDs())

	idx.Delete(2)
	_, ok = idx.Get(2)
	assert.False(t, ok)
	assert.Equal(t, []int64{1, 3}, idx.IDs())

	idx.Clear()
	assert.Equal(t, 0, idx.Size())
	assert.Empty(t, idx.IDs())
}

func TestHashIndex_BuildFromLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.data")
	writer, err := NewLogWriter(LogWriterConfig{FilePath: path})
	require.NoError(t, err)

	frames := []*Frame{
		{Timestamp: 1, ID: 1, Payload: []byte("a")},
		{Timestamp: 2, ID: 2, Payload: []byte("bb")},
		{Timestamp: 3, ID: 1, Payload: []byte("ccc")},
		{Timestamp: 4, ID: 2, Tombstone: true},
		{Timestamp: 5, ID: 4, Payload: []byte("d")},
	}
	var offsets []int64
	for _, f := range frames {
		off, err := writer.Append(f)
		require.NoError(t, err)
		offsets = append(offsets, off)
	}
	require.NoError(t, writer.Close())

	reader, err := NewLogReader(LogReaderConfig{FilePath: path})
	require.NoError(t, err)
	defer reader.Close()

	idx := NewHashIndex()
	idx.Put(99, IndexEntry{})
	require.NoError(t, idx.BuildFromLog(reader, func(f *Frame) int { return len(f.Payload) }))

	assert.Equal(t, []int64{1, 4}, idx.IDs())

	entry, ok := idx.Get(1)
	require.True(t, ok)
	assert.Equal(t, offsets[2], entry.Offset)
	assert.Equal(t, frames[2].Size(), entry.Size)
	assert.Equal(t, int64(3), entry.Timestamp)
	assert.Equal(t, 3, entry.Version)

	frame, err := reader.ReadAt(entry.Offset, entry.Size)
	require.NoError(t, err)
	assert.Equal(t, "ccc", string(frame.Payload))
}
