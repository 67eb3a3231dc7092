package provider

import (
	"context"
	"time"
)

// Request is one generation attempt for a single media item. It is immutable
// once built; a retry reuses the same request.
type Request struct {
	ItemID   string
	Prompt   string
	Media    []byte
	MIMEType string
	Video    bool
}

// Metadata is the normalized shape every provider response is mapped into.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Category    string   `json:"category"`
}

// TitleLength returns the character length of the title.
func (m Metadata) TitleLength() int {
	return len([]rune(m.Title))
}

// TagsCount returns the number of keywords.
func (m Metadata) TagsCount() int {
	return len(m.Keywords)
}

// Usage contains token usage and cost information for one call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// Result is the outcome of one successful generation attempt.
type Result struct {
	ItemID   string
	Provider string
	Meta     Metadata
	Usage    Usage
	Latency  time.Duration
}

// Client executes one generation request against an AI service. A client
// performs nothing beyond the network call: results flow back to the
// scheduler, which owns catalog and store mutation.
type Client interface {
	// Name returns the provider name, e.g. "gemini".
	Name() string
	// Generate runs one request and normalizes the response. Errors are
	// *Error values so the retry policy can classify them.
	Generate(ctx context.Context, req *Request) (*Result, error)
}
