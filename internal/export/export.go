// Package export serializes generated metadata into per-marketplace
// delimited documents. Rows follow catalog enrollment order so exports are
// reproducible regardless of scheduling order.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"stocktag/internal/results"
)

// UnmappableCategoryError reports a free-form category with no entry in the
// platform's taxonomy. The failing row is excluded and reported; other rows
// still export.
type UnmappableCategoryError struct {
	Platform Platform
	Category string
}

func (e *UnmappableCategoryError) Error() string {
	return fmt.Sprintf("category %q has no %s taxonomy mapping", e.Category, e.Platform)
}

// RowError ties a per-row failure to the file it belongs to.
type RowError struct {
	Filename string
	Err      error
}

// Report summarizes one export: rows written and rows excluded with their
// reasons.
type Report struct {
	Platform Platform
	Rows     int
	Skipped  []RowError
}

// Export writes one document for the given platform. Entries must already
// be filtered to succeeded items in enrollment order (results.Store.Succeeded
// provides that). Per-row failures do not abort the export.
func Export(w io.Writer, platform Platform, entries []results.Entry) (*Report, error) {
	spec, ok := platformSpecs[platform]
	if !ok {
		return nil, fmt.Errorf("unknown export platform %q", platform)
	}

	cw := csv.NewWriter(w)
	cw.Comma = spec.delimiter

	if err := cw.Write(spec.columns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	report := &Report{Platform: platform}
	for _, entry := range entries {
		row, err := buildRow(platform, spec, entry)
		if err != nil {
			report.Skipped = append(report.Skipped, RowError{Filename: entry.Item.Filename, Err: err})
			log.Warn().
				Str("platform", string(platform)).
				Str("file", entry.Item.Filename).
				Err(err).
				Msg("excluded row from export")
			continue
		}
		if err := cw.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row for %s: %w", entry.Item.Filename, err)
		}
		report.Rows++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush export: %w", err)
	}
	return report, nil
}

func buildRow(platform Platform, spec platformSpec, entry results.Entry) ([]string, error) {
	meta := entry.Result.Meta
	keywords := strings.Join(meta.Keywords, spec.tagJoin)

	category := ""
	if spec.mapCategory != nil {
		mapped, ok := spec.mapCategory(meta.Category)
		if !ok && spec.requiresCategory {
			return nil, &UnmappableCategoryError{Platform: platform, Category: meta.Category}
		}
		category = mapped
	}

	switch platform {
	case PlatformFreepik:
		return []string{entry.Item.Filename, meta.Title, keywords, "", ""}, nil
	case PlatformShutterstock:
		return []string{entry.Item.Filename, meta.Description, keywords, category, "no", "no", "no"}, nil
	case PlatformAdobeStock:
		return []string{entry.Item.Filename, meta.Title, keywords, category, ""}, nil
	case PlatformIStock:
		return []string{entry.Item.Filename, meta.Description, meta.Title, keywords, ""}, nil
	case PlatformGeneric:
		return []string{entry.Item.Filename, meta.Title, meta.Description, keywords, meta.Category}, nil
	}
	return nil, fmt.Errorf("unknown export platform %q", platform)
}
