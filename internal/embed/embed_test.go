package embed

import (
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	exiftool "github.com/barasher/go-exiftool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktag/internal/provider"
)

func TestMetadataFields(t *testing.T) {
	meta := provider.Metadata{
		Title:       "Sunrise over hills",
		Description: "Golden light on rolling hills.",
		Keywords:    []string{"sunrise", "hills"},
	}

	fields := metadataFields(meta)
	assert.Equal(t, "Sunrise over hills", fields["XMP-dc:Title"])
	assert.Equal(t, "Sunrise over hills", fields["IPTC:ObjectName"])
	assert.Equal(t, "Golden light on rolling hills.", fields["XMP-dc:Description"])
	assert.Equal(t, []string{"sunrise", "hills"}, fields["XMP-dc:Subject"])
	assert.Equal(t, []string{"sunrise", "hills"}, fields["IPTC:Keywords"])
}

func TestMetadataFieldsSkipsEmptyValues(t *testing.T) {
	fields := metadataFields(provider.Metadata{Title: "only a title"})
	assert.Contains(t, fields, "XMP-dc:Title")
	assert.NotContains(t, fields, "XMP-dc:Description")
	assert.NotContains(t, fields, "XMP-dc:Subject")
}

func TestWriteEmbedsTitle(t *testing.T) {
	if _, err := exec.LookPath("exiftool"); err != nil {
		t.Skip("exiftool not installed")
	}

	path := filepath.Join(t.TempDir(), "a.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	require.NoError(t, f.Close())

	w, err := NewWriter()
	require.NoError(t, err)
	defer w.Close()

	meta := provider.Metadata{Title: "Tiny square", Keywords: []string{"tiny"}}
	require.NoError(t, w.Write(path, meta))

	et, err := exiftool.NewExiftool()
	require.NoError(t, err)
	defer et.Close()

	read := et.ExtractMetadata(path)
	require.Len(t, read, 1)
	require.NoError(t, read[0].Err)
	title, err := read[0].GetString("Title")
	require.NoError(t, err)
	assert.Equal(t, "Tiny square", title)
}

func TestWriteMissingFile(t *testing.T) {
	if _, err := exec.LookPath("exiftool"); err != nil {
		t.Skip("exiftool not installed")
	}

	w, err := NewWriter()
	require.NoError(t, err)
	defer w.Close()

	err = w.Write(filepath.Join(t.TempDir(), "missing.png"), provider.Metadata{Title: "t"})
	assert.Error(t, err)
}
