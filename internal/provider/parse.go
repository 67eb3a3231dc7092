package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawMetadata mirrors the JSON object the providers are instructed to
// return. Keywords may arrive as an array or a comma-separated string
// depending on how closely the model followed the prompt.
type rawMetadata struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Keywords    json.RawMessage `json:"keywords"`
	Category    string          `json:"category"`
}

// parseMetadata normalizes a model response into Metadata. It tolerates
// markdown code fences and surrounding chatter around the JSON object.
func parseMetadata(text string) (*Metadata, error) {
	cleaned := extractJSONObject(text)
	if cleaned == "" {
		return nil, fmt.Errorf("no JSON object found in response: %s", text)
	}

	var raw rawMetadata
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w (response: %s)", err, cleaned)
	}

	meta := &Metadata{
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		Category:    strings.TrimSpace(raw.Category),
	}

	keywords, err := parseKeywords(raw.Keywords)
	if err != nil {
		return nil, err
	}
	meta.Keywords = keywords

	return meta, nil
}

// extractJSONObject strips markdown fences and returns the outermost JSON
// object in the text, or empty string if none is present.
func extractJSONObject(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// parseKeywords accepts either a JSON array of strings or a single
// delimited string, deduplicates case-insensitively and preserves order.
func parseKeywords(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var joined string
		if err := json.Unmarshal(raw, &joined); err != nil {
			return nil, fmt.Errorf("keywords are neither a list nor a string: %s", string(raw))
		}
		list = strings.FieldsFunc(joined, func(r rune) bool {
			return r == ',' || r == ';'
		})
	}

	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, kw := range list {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out, nil
}
