// Package storage keeps every saved revision of a field note in a pebble
// database. Keys sort by note id and then by ksuid, so the newest revision of
// a note is always the last key under its prefix.
package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/segmentio/ksuid"
	"go.chromium.org/luci/common/logging"

	"github.com/ssargent/fieldnotes/pkg/envelope"
	"github.com/ssargent/fieldnotes/pkg/fieldnote"
	"github.com/ssargent/fieldnotes/pkg/store"
)

const (
	keyPrefix    = "note/"
	idSize       = 8
	revisionSize = 20
	keySize      = len(keyPrefix) + idSize + revisionSize
)

// Options configures an Archive
type Options struct {
	// FS overrides the filesystem, mainly for tests with vfs.NewMem()
	FS vfs.FS
	// StrictVersions rejects revisions written by a newer schema
	StrictVersions bool
	// Sync fsyncs every write
	Sync bool
}

// Revision is one saved version of a note
type Revision struct {
	ID   ksuid.KSUID
	Note *fieldnote.FieldNote
}

// Time returns when the revision was saved
func (r Revision) Time() time.Time {
	return r.ID.Time()
}

// Archive is a pebble backed store of note revisions
type Archive struct {
	db      *pebble.DB
	decoder envelope.Options
	write   *pebble.WriteOptions
	// serializes Save so revision ids stay unique and ordered per note
	mutex sync.Mutex
}

// Open opens or creates an archive at path
func Open(path string, opts Options) (*Archive, error) {
	pebbleOpts := &pebble.Options{}
	if opts.FS != nil {
		pebbleOpts.FS = opts.FS
	}
	db, err := pebble.Open(path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}

	write := pebble.NoSync
	if opts.Sync {
		write = pebble.Sync
	}
	return &Archive{
		db:      db,
		decoder: envelope.Options{Strict: opts.StrictVersions},
		write:   write,
	}, nil
}

// Save stores n as a new revision and returns the revision id
func (a *Archive) Save(ctx context.Context, n *fieldnote.FieldNote) (ksuid.KSUID, error) {
	if n == nil || n.ID < 0 {
		return ksuid.Nil, store.ErrInvalidID
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	rev := ksuid.New()
	latest, ok, err := a.latestKey(n.ID)
	if err != nil {
		return ksuid.Nil, err
	}
	if ok {
		// Two saves within the same second must still sort in save order
		if prev := revisionOf(latest); ksuid.Compare(rev, prev) <= 0 {
			rev = prev.Next()
		}
	}

	if err := a.db.Set(revisionKey(n.ID, rev), envelope.Marshal(n), a.write); err != nil {
		return ksuid.Nil, fmt.Errorf("save note %d: %w", n.ID, err)
	}
	logging.Debugf(ctx, "archived note %d revision %s", n.ID, rev)
	return rev, nil
}

// Put saves a new revision of n
func (a *Archive) Put(ctx context.Context, n *fieldnote.FieldNote) error {
	_, err := a.Save(ctx, n)
	return err
}

// Get returns the latest revision of note id
func (a *Archive) Get(ctx context.Context, id int64) (*fieldnote.FieldNote, error) {
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: idPrefix(id),
		UpperBound: idUpperBound(id),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	if !iter.Last() {
		if err := iter.Error(); err != nil {
			return nil, err
		}
		return nil, store.ErrNotFound
	}
	return a.decode(id, iter.Value())
}

// Revisions returns every revision of note id, oldest first
func (a *Archive) Revisions(ctx context.Context, id int64) ([]Revision, error) {
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: idPrefix(id),
		UpperBound: idUpperBound(id),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var revisions []Revision
	for iter.First(); iter.Valid(); iter.Next() {
		n, err := a.decode(id, iter.Value())
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, Revision{ID: revisionOf(iter.Key()), Note: n})
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	if len(revisions) == 0 {
		return nil, store.ErrNotFound
	}
	return revisions, nil
}

// Delete removes every revision of note id
func (a *Archive) Delete(ctx context.Context, id int64) error {
	if _, ok, err := a.latestKey(id); err != nil {
		return err
	} else if !ok {
		return store.ErrNotFound
	}
	if err := a.db.DeleteRange(idPrefix(id), idUpperBound(id), a.write); err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	logging.Debugf(ctx, "deleted all revisions of note %d", id)
	return nil
}

// List returns the latest revision of every note ordered by id
func (a *Archive) List(ctx context.Context) ([]*fieldnote.FieldNote, error) {
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: prefixUpperBound([]byte(keyPrefix)),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	notes := []*fieldnote.FieldNote{}
	for valid := iter.Last(); valid; {
		id, ok := idOf(iter.Key())
		if !ok {
			return nil, fmt.Errorf("%w: malformed archive key %x", store.ErrCorruption, iter.Key())
		}
		n, err := a.decode(id, iter.Value())
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
		// Skip the older revisions of this note
		valid = iter.SeekLT(idPrefix(id))
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	for i, j := 0, len(notes)-1; i < j; i, j = i+1, j-1 {
		notes[i], notes[j] = notes[j], notes[i]
	}
	return notes, nil
}

// FindByCache returns the latest revision of every note written for a cache
// code, ordered by id. Codes are compared case-insensitively.
func (a *Archive) FindByCache(ctx context.Context, code string) ([]*fieldnote.FieldNote, error) {
	all, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	notes := []*fieldnote.FieldNote{}
	for _, n := range all {
		if strings.EqualFold(strings.TrimSpace(n.CacheCode), code) {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

// Close closes the underlying database
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) decode(id int64, value []byte) (*fieldnote.FieldNote, error) {
	n := fieldnote.New()
	if err := a.decoder.Unmarshal(value, n); err != nil {
		return nil, fmt.Errorf("decode note %d: %w", id, err)
	}
	return n, nil
}

func (a *Archive) latestKey(id int64) ([]byte, bool, error) {
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: idPrefix(id),
		UpperBound: idUpperBound(id),
	})
	if err != nil {
		return nil, false, err
	}
	defer iter.Close()

	if !iter.Last() {
		return nil, false, iter.Error()
	}
	return append([]byte(nil), iter.Key()...), true, nil
}

func idPrefix(id int64) []byte {
	key := make([]byte, len(keyPrefix)+idSize, keySize)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], uint64(id))
	return key
}

func idUpperBound(id int64) []byte {
	return prefixUpperBound(idPrefix(id))
}

func revisionKey(id int64, rev ksuid.KSUID) []byte {
	return append(idPrefix(id), rev.Bytes()...)
}

func idOf(key []byte) (int64, bool) {
	if len(key) != keySize {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(key[len(keyPrefix):])), true
}

func revisionOf(key []byte) ksuid.KSUID {
	rev, err := ksuid.FromBytes(key[len(keyPrefix)+idSize:])
	if err != nil {
		return ksuid.Nil
	}
	return rev
}

// prefixUpperBound returns the smallest key greater than every key with prefix
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
