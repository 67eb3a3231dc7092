package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktag/internal/catalog"
	"stocktag/internal/provider"
)

func enrolledCatalog(t *testing.T, names ...string) (*catalog.Catalog, []catalog.MediaItem) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("img"), 0644))
		paths = append(paths, path)
	}
	cat := catalog.New()
	items, rejected := cat.Enroll(paths)
	require.Empty(t, rejected)
	return cat, items
}

func resultFor(item catalog.MediaItem, title string) provider.Result {
	return provider.Result{
		ItemID:   item.ID,
		Provider: "fake",
		Meta:     provider.Metadata{Title: title},
	}
}

func TestPutOverwrites(t *testing.T) {
	_, items := enrolledCatalog(t, "a.jpg")
	store := NewStore()

	store.Put(items[0].ID, resultFor(items[0], "first"))
	store.Put(items[0].ID, resultFor(items[0], "second"))

	got, ok := store.Get(items[0].ID)
	require.True(t, ok)
	assert.Equal(t, "second", got.Meta.Title)
	assert.Equal(t, 1, store.Len())
}

func TestGetAbsent(t *testing.T) {
	store := NewStore()
	_, ok := store.Get("nope")
	assert.False(t, ok)
}

func TestSucceededFollowsEnrollmentOrder(t *testing.T) {
	cat, items := enrolledCatalog(t, "a.jpg", "b.jpg", "c.jpg")
	store := NewStore()

	// Completion order c, a, b
	for _, i := range []int{2, 0, 1} {
		store.Put(items[i].ID, resultFor(items[i], items[i].Filename))
		cat.Mark(items[i].ID, catalog.StatusSucceeded, "")
	}

	entries := store.Succeeded(cat)
	require.Len(t, entries, 3)
	assert.Equal(t, "a.jpg", entries[0].Item.Filename)
	assert.Equal(t, "b.jpg", entries[1].Item.Filename)
	assert.Equal(t, "c.jpg", entries[2].Item.Filename)
}

func TestSucceededExcludesNonSucceededItems(t *testing.T) {
	cat, items := enrolledCatalog(t, "a.jpg", "b.jpg")
	store := NewStore()

	store.Put(items[0].ID, resultFor(items[0], "kept"))
	cat.Mark(items[0].ID, catalog.StatusSucceeded, "")

	// A stored result does not leak into the export view once the item is
	// no longer succeeded.
	store.Put(items[1].ID, resultFor(items[1], "stale"))
	cat.Mark(items[1].ID, catalog.StatusFailed, "later invalidated")

	entries := store.Succeeded(cat)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Result.Meta.Title)
}
