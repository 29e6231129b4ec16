package store

import (
	"sort"
	"sync"
)

// HashIndex maps note ids to the location of their latest frame
type HashIndex struct {
	entries map[int64]IndexEntry
	mutex   sync.RWMutex
}

// NewHashIndex creates a new hash index
func NewHashIndex() *HashIndex {
	return &HashIndex{
		entries: make(map[int64]IndexEntry),
	}
}

// Put adds or updates the entry for id
func (idx *HashIndex) Put(id int64, entry IndexEntry) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()
	idx.entries[id] = entry
}

// Get retrieves the entry for id
func (idx *HashIndex) Get(id int64) (IndexEntry, bool) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	entry, exists := idx.entries[id]
	return entry, exists
}

// Delete removes id from the index
func (idx *HashIndex) Delete(id int64) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()
	delete(idx.entries, id)
}

// Size returns the number of ids in the index
func (idx *HashIndex) Size() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return len(idx.entries)
}

// Clear removes all entries
func (idx *HashIndex) Clear() {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()
	idx.entries = make(map[int64]IndexEntry)
}

// IDs returns all ids in ascending order
func (idx *HashIndex) IDs() []int64 {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	ids := make([]int64, 0, len(idx.entries))
	for id := range idx.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BuildFromLog scans the log from the start and rebuilds the index. Later
// frames for an id replace earlier ones; tombstones remove the id.
func (idx *HashIndex) BuildFromLog(reader *LogReader, versionOf func(*Frame) int) error {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.entries = make(map[int64]IndexEntry)

	if err := reader.Seek(0); err != nil {
		return err
	}

	iterator := reader.Iterator()
	defer iterator.Close()

	for iterator.Next() {
		frame := iterator.Frame()
		if frame.Tombstone {
			delete(idx.entries, frame.ID)
			continue
		}
		idx.entries[frame.ID] = IndexEntry{
			Offset:    reader.Offset() - frame.Size(),
			Size:      frame.Size(),
			Timestamp: frame.Timestamp,
			Version:   versionOf(frame),
		}
	}

	return iterator.Err()
}
