package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/fieldnotes/pkg/codec"
	"github.com/ssargent/fieldnotes/pkg/fieldnote"
	"github.com/ssargent/fieldnotes/pkg/logtype"
	"github.com/ssargent/fieldnotes/pkg/store"
)

func openTestArchive(t *testing.T, opts Options) *Archive {
	t.Helper()
	if opts.FS == nil {
		opts.FS = vfs.NewMem()
	}
	a, err := Open("archive", opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func note(id int64, text string) *fieldnote.FieldNote {
	n := fieldnote.New()
	n.ID = id
	n.CacheCode = "GC1234"
	n.CacheName = "Test Cache"
	n.Type = logtype.Found
	n.Note = text
	n.AddItem(&fieldnote.Item{ID: 1, NoteID: id, Code: "TB1", Name: "coin"})
	return n
}

func TestArchive_SaveAndGetLatest(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t, Options{})

	first, err := a.Save(ctx, note(42, "first"))
	require.NoError(t, err)
	second, err := a.Save(ctx, note(42, "second"))
	require.NoError(t, err)
	third, err := a.Save(ctx, note(42, "third"))
	require.NoError(t, err)

	assert.Negative(t, ksuid.Compare(first, second))
	assert.Negative(t, ksuid.Compare(second, third))

	got, err := a.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "third", got.Note)
	assert.Len(t, got.Items(), 1)
}

func TestArchive_Revisions(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t, Options{})

	for _, text := range []string{"a", "b", "c"} {
		require.NoError(t, a.Put(ctx, note(7, text)))
	}
	require.NoError(t, a.Put(ctx, note(8, "other")))

	revisions, err := a.Revisions(ctx, 7)
	require.NoError(t, err)
	require.Len(t, revisions, 3)
	for i, text := range []string{"a", "b", "c"} {
		assert.Equal(t, text, revisions[i].Note.Note)
		assert.False(t, revisions[i].Time().IsZero())
	}

	_, err = a.Revisions(ctx, 9)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestArchive_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t, Options{})
	const writers = 32

	var wg sync.WaitGroup
	revs := make([]ksuid.KSUID, writers)
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			revs[i], errs[i] = a.Save(ctx, note(7, fmt.Sprintf("writer %d", i)))
		}(i)
	}
	wg.Wait()

	seen := make(map[ksuid.KSUID]bool, writers)
	for i := 0; i < writers; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[revs[i]], "duplicate revision %s", revs[i])
		seen[revs[i]] = true
	}

	revisions, err := a.Revisions(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, revisions, writers)
}

func TestArchive_GetMissing(t *testing.T) {
	a := openTestArchive(t, Options{})

	_, err := a.Get(context.Background(), 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestArchive_InvalidID(t *testing.T) {
	a := openTestArchive(t, Options{})

	_, err := a.Save(context.Background(), fieldnote.New())
	assert.ErrorIs(t, err, store.ErrInvalidID)
	assert.ErrorIs(t, a.Put(context.Background(), nil), store.ErrInvalidID)
}

func TestArchive_DeleteRemovesAllRevisions(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t, Options{})

	require.NoError(t, a.Put(ctx, note(1, "x")))
	require.NoError(t, a.Put(ctx, note(1, "y")))
	require.NoError(t, a.Put(ctx, note(2, "z")))

	require.NoError(t, a.Delete(ctx, 1))
	_, err := a.Get(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = a.Revisions(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := a.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "z", got.Note)

	assert.ErrorIs(t, a.Delete(ctx, 1), store.ErrNotFound)
}

func TestArchive_ListLatestPerNote(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t, Options{})

	notes, err := a.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	require.NoError(t, a.Put(ctx, note(300, "old")))
	require.NoError(t, a.Put(ctx, note(5, "only")))
	require.NoError(t, a.Put(ctx, note(300, "new")))
	require.NoError(t, a.Put(ctx, note(256, "mid")))

	notes, err = a.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, int64(5), notes[0].ID)
	assert.Equal(t, int64(256), notes[1].ID)
	assert.Equal(t, int64(300), notes[2].ID)
	assert.Equal(t, "new", notes[2].Note)
}

func TestArchive_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	fs := vfs.NewMem()

	a, err := Open("archive", Options{FS: fs, Sync: true})
	require.NoError(t, err)
	require.NoError(t, a.Put(ctx, note(3, "kept")))
	require.NoError(t, a.Close())

	a, err = Open("archive", Options{FS: fs})
	require.NoError(t, err)
	defer a.Close()

	got, err := a.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Note)
}

func TestArchive_StrictVersions(t *testing.T) {
	ctx := context.Background()
	fs := vfs.NewMem()

	a, err := Open("archive", Options{FS: fs})
	require.NoError(t, err)
	// Envelope from a future schema: version 9, one trailing byte it added
	future := []byte{0, 0, 0, 9, 0, 0, 0, 1, 0xAB}
	require.NoError(t, a.db.Set(revisionKey(1, ksuid.New()), future, pebble.Sync))
	_, err = a.Get(ctx, 1)
	assert.Error(t, err, "lenient decode still needs a complete body")
	require.NoError(t, a.Close())

	strict, err := Open("archive", Options{FS: fs, StrictVersions: true})
	require.NoError(t, err)
	defer strict.Close()

	_, err = strict.Get(ctx, 1)
	require.Error(t, err)
	assert.True(t, codec.IsKind(err, codec.KindUnsupportedVersion))
}

func TestPrefixUpperBound(t *testing.T) {
	assert.Equal(t, []byte("note0"), prefixUpperBound([]byte("note/")))
	assert.Equal(t, []byte{0x01}, prefixUpperBound([]byte{0x00, 0xFF}))
	assert.Nil(t, prefixUpperBound([]byte{0xFF, 0xFF}))
}

func TestArchive_FindByCache(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t, Options{})

	other := note(2, "elsewhere")
	other.CacheCode = "GC9999"
	require.NoError(t, a.Put(ctx, note(5, "a")))
	require.NoError(t, a.Put(ctx, other))
	lower := note(1, "b")
	lower.CacheCode = "gc1234"
	require.NoError(t, a.Put(ctx, lower))

	notes, err := a.FindByCache(ctx, "GC1234")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, int64(1), notes[0].ID)
	assert.Equal(t, int64(5), notes[1].ID)

	// Only the latest revision counts
	moved := note(5, "moved")
	moved.CacheCode = "GC9999"
	require.NoError(t, a.Put(ctx, moved))
	notes, err = a.FindByCache(ctx, "GC1234")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, int64(1), notes[0].ID)

	notes, err = a.FindByCache(ctx, "GC0000")
	require.NoError(t, err)
	assert.Empty(t, notes)
}
