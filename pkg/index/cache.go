// Package index provides secondary indexes over stored field notes.
package index

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ssargent/fieldnotes/pkg/bptree"
)

// DefaultOrder is the branching factor of the underlying tree
const DefaultOrder = 32

// CacheIndex maps cache codes to the ids of the notes written for them.
// Codes are case-insensitive.
type CacheIndex struct {
	tree  *bptree.BPlusTree[string, int64]
	codes map[int64]string
	mutex sync.Mutex
}

// NewCacheIndex creates an empty index
func NewCacheIndex() *CacheIndex {
	return &CacheIndex{
		tree:  bptree.NewBPlusTree[string, int64](DefaultOrder),
		codes: make(map[int64]string),
	}
}

// Put records that note id belongs to code, moving it if the note was
// indexed under another code
func (idx *CacheIndex) Put(id int64, code string) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	code = normalize(code)
	if old, ok := idx.codes[id]; ok {
		if old == code {
			return
		}
		idx.tree.Delete(entryKey(old, id))
	}
	idx.codes[id] = code
	idx.tree.Insert(entryKey(code, id), id)
}

// Delete forgets note id
func (idx *CacheIndex) Delete(id int64) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	if code, ok := idx.codes[id]; ok {
		idx.tree.Delete(entryKey(code, id))
		delete(idx.codes, id)
	}
}

// Lookup returns the ids of the notes for code in ascending order
func (idx *CacheIndex) Lookup(code string) []int64 {
	prefix := codePrefix(normalize(code))
	ids := []int64{}
	idx.tree.Ascend(prefix, func(key string, id int64) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		ids = append(ids, id)
		return true
	})
	return ids
}

// Len returns the number of indexed notes
func (idx *CacheIndex) Len() int {
	return idx.tree.Len()
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// codePrefix is shared by every entry for code. The length prefix keeps a
// code containing the separator from matching another code's entries.
func codePrefix(code string) string {
	return fmt.Sprintf("%08d%s\x00", len(code), code)
}

// entryKey groups entries by code, then orders them numerically by id. Ids
// are never negative so zero padding sorts them correctly.
func entryKey(code string, id int64) string {
	return fmt.Sprintf("%s%019d", codePrefix(code), id)
}
