package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const GeminiDefaultModel = "gemini-3-flash-preview"

// Gemini pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.50 // $0.50 per 1M input tokens (text/image/video)
	geminiOutputPricePerMillion = 3.00 // $3.00 per 1M output tokens (including thinking)
)

// Gemini uses Google's Gemini API for metadata generation.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed client. An empty model selects the
// default model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = GeminiDefaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

// Name implements the Client interface.
func (g *Gemini) Name() string {
	return "gemini"
}

// Generate implements the Client interface using Gemini. Images and videos
// are both sent as inline data; Gemini accepts either.
func (g *Gemini) Generate(ctx context.Context, req *Request) (*Result, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(req.Prompt),
		{InlineData: &genai.Blob{Data: req.Media, MIMEType: req.MIMEType}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	started := time.Now()
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	latency := time.Since(started)

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, &Error{Kind: KindMalformedResponse, Provider: g.Name(), Err: errors.New("no response from Gemini")}
	}

	meta, err := parseMetadata(result.Text())
	if err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Provider: g.Name(), Err: err}
	}

	usage := Usage{}
	if result.UsageMetadata != nil {
		usage.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
		usage.CostUSD = tokenCost(usage.InputTokens, usage.OutputTokens, geminiInputPricePerMillion, geminiOutputPricePerMillion)
	}

	log.Info().
		Str("model", g.model).
		Str("itemId", req.ItemID).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Dur("latency", latency).
		Msg("gemini llm call")

	return &Result{
		ItemID:   req.ItemID,
		Provider: g.Name(),
		Meta:     *meta,
		Usage:    usage,
		Latency:  latency,
	}, nil
}

func classifyGeminiError(err error) *Error {
	if isTimeout(err) {
		return classifyTransport("gemini", err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus("gemini", apiErr.Code, err)
	}
	return classifyTransport("gemini", err)
}

func tokenCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}
