// Package prompt assembles provider-agnostic generation requests. The
// assembled text deterministically encodes which metadata fields are
// requested, so the same item and config always produce the same prompt.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/lithammer/dedent"

	"stocktag/internal/catalog"
	"stocktag/internal/config"
	"stocktag/internal/provider"
)

var basePrompt = strings.TrimSpace(dedent.Dedent(`
	You are writing metadata for a stock content marketplace. Analyze the
	media and describe what it literally shows. Be specific and factual;
	avoid marketing language.`))

var defaultBody = strings.TrimSpace(dedent.Dedent(`
	Write metadata that helps buyers find this content through search.
	Titles should be descriptive and under 70 characters. Descriptions
	should be 1-2 sentences. Provide 30-50 single-word or short-phrase
	keywords ordered by relevance. The category should be a single broad
	subject such as "nature", "business", "people" or "technology".`))

var jsonTailHeader = strings.TrimSpace(dedent.Dedent(`
	Respond with a single JSON object containing exactly these fields:`))

var jsonTailFooter = strings.TrimSpace(dedent.Dedent(`
	Respond ONLY with the JSON object, no markdown or other text.`))

var fieldLines = map[config.Field]string{
	config.FieldTitle:       `- title: string, a short descriptive title`,
	config.FieldDescription: `- description: string, 1-2 sentences describing the content`,
	config.FieldKeywords:    `- keywords: array of strings, ordered by relevance, no duplicates`,
	config.FieldCategory:    `- category: string, a single broad subject`,
}

// Build turns a media item and a run configuration into a generation
// request. The media file is read here so every attempt reuses the same
// bytes.
func Build(item catalog.MediaItem, cfg config.RunConfig) (*provider.Request, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(item.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read media file: %w", err)
	}

	return &provider.Request{
		ItemID:   item.ID,
		Prompt:   Text(item.Kind, cfg),
		Media:    data,
		MIMEType: item.MIMEType,
		Video:    item.Kind == catalog.KindVideo,
	}, nil
}

// Text assembles the prompt for a media kind and configuration. Sections
// are stacked base -> body -> exclusions -> mandatory JSON tail, with the
// tail always last.
func Text(kind catalog.Kind, cfg config.RunConfig) string {
	var sections []string

	sections = append(sections, basePrompt)

	if cfg.PromptMode == config.ModeCustom {
		sections = append(sections, strings.TrimSpace(cfg.CustomText))
	} else {
		sections = append(sections, defaultBody)
	}

	if kind == catalog.KindVideo {
		sections = append(sections, "The media is a video clip. Describe the overall scene and action, not a single frame.")
	}

	if neg := strings.TrimSpace(cfg.NegativeText); neg != "" {
		sections = append(sections, "Do not mention or include: "+neg)
	}

	sections = append(sections, jsonTail(cfg))

	return strings.Join(sections, "\n\n")
}

// jsonTail lists the requested fields in canonical order regardless of the
// order they appear in the config.
func jsonTail(cfg config.RunConfig) string {
	var b strings.Builder
	b.WriteString(jsonTailHeader)
	b.WriteString("\n")
	for _, f := range config.AllFields {
		if cfg.HasField(f) {
			b.WriteString(fieldLines[f])
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(jsonTailFooter)
	return b.String()
}
