// Package embed writes generated metadata into the media files themselves,
// so titles, descriptions and keywords travel with the image into any tool
// that reads XMP or IPTC.
package embed

import (
	"fmt"

	exiftool "github.com/barasher/go-exiftool"

	"stocktag/internal/provider"
)

// Writer embeds metadata through a long-lived exiftool process. Callers must
// Close it when done.
type Writer struct {
	et *exiftool.Exiftool
}

// NewWriter starts the exiftool process. It fails when the exiftool binary
// is not installed.
func NewWriter() (*Writer, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &Writer{et: et}, nil
}

// Close stops the exiftool process.
func (w *Writer) Close() error {
	return w.et.Close()
}

// Write embeds the generated metadata into the file at path. Empty metadata
// fields leave the corresponding tags untouched.
func (w *Writer) Write(path string, meta provider.Metadata) error {
	fms := []exiftool.FileMetadata{
		{File: path, Fields: metadataFields(meta)},
	}
	w.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return fmt.Errorf("failed to embed metadata in %s: %w", path, fms[0].Err)
	}
	return nil
}

// metadataFields maps generated metadata onto XMP and IPTC tags.
func metadataFields(meta provider.Metadata) map[string]interface{} {
	fields := make(map[string]interface{})
	if meta.Title != "" {
		fields["XMP-dc:Title"] = meta.Title
		fields["IPTC:ObjectName"] = meta.Title
	}
	if meta.Description != "" {
		fields["XMP-dc:Description"] = meta.Description
		fields["IPTC:Caption-Abstract"] = meta.Description
	}
	if len(meta.Keywords) > 0 {
		fields["XMP-dc:Subject"] = meta.Keywords
		fields["IPTC:Keywords"] = meta.Keywords
	}
	return fields
}
