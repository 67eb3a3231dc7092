package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktag/internal/catalog"
	"stocktag/internal/provider"
)

func testStore(t *testing.T) *ProjectStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testItem(id, name string) catalog.MediaItem {
	return catalog.MediaItem{
		ID:       id,
		Path:     "/media/" + name,
		Filename: name,
		Kind:     catalog.KindImage,
		MIMEType: "image/jpeg",
		Status:   catalog.StatusPending,
	}
}

func TestRecordStatusRoundTrip(t *testing.T) {
	store := testStore(t)
	item := testItem("id-1", "a.jpg")

	require.NoError(t, store.RecordStatus(item))

	record, err := store.Get("id-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "/media/a.jpg", record.Path)
	assert.Equal(t, "a.jpg", record.Filename)
	assert.Equal(t, "pending", record.Status)
	assert.Empty(t, record.Title)
	assert.Empty(t, record.Keywords)
}

func TestRecordStatusUpdatesExistingRow(t *testing.T) {
	store := testStore(t)
	item := testItem("id-1", "a.jpg")

	require.NoError(t, store.RecordStatus(item))

	item.Status = catalog.StatusFailed
	item.LastErr = "rate limited"
	require.NoError(t, store.RecordStatus(item))

	record, err := store.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", record.Status)
	assert.Equal(t, "rate limited", record.LastErr)
}

func TestRecordResult(t *testing.T) {
	store := testStore(t)
	item := testItem("id-1", "a.jpg")
	item.Status = catalog.StatusSucceeded

	result := provider.Result{
		ItemID:   "id-1",
		Provider: "gemini",
		Meta: provider.Metadata{
			Title:       "Sunrise over hills",
			Description: "Golden light on rolling hills.",
			Keywords:    []string{"sunrise", "hills", "golden"},
			Category:    "nature",
		},
	}
	require.NoError(t, store.RecordResult(item, result))

	record, err := store.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", record.Status)
	assert.Equal(t, "Sunrise over hills", record.Title)
	assert.Equal(t, []string{"sunrise", "hills", "golden"}, record.Keywords)
	assert.Equal(t, "nature", record.Category)
	assert.Equal(t, 18, record.TitleLength)
	assert.Equal(t, 3, record.TagsCount)
	assert.Equal(t, "gemini", record.Provider)
}

func TestRecordResultOverwritesStatusRow(t *testing.T) {
	store := testStore(t)
	item := testItem("id-1", "a.jpg")

	require.NoError(t, store.RecordStatus(item))

	item.Status = catalog.StatusSucceeded
	result := provider.Result{ItemID: "id-1", Provider: "openai", Meta: provider.Metadata{Title: "t"}}
	require.NoError(t, store.RecordResult(item, result))

	record, err := store.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", record.Status)
	assert.Equal(t, "openai", record.Provider)
}

func TestGetMissing(t *testing.T) {
	store := testStore(t)
	record, err := store.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestGetAllOrderedByPath(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.RecordStatus(testItem("id-2", "b.jpg")))
	require.NoError(t, store.RecordStatus(testItem("id-1", "a.jpg")))

	records, err := store.GetAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a.jpg", records[0].Filename)
	assert.Equal(t, "b.jpg", records[1].Filename)
}

func TestDelete(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.RecordStatus(testItem("id-1", "a.jpg")))
	require.NoError(t, store.Delete("id-1"))

	record, err := store.Get("id-1")
	require.NoError(t, err)
	assert.Nil(t, record)
}
