package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

const OpenAIDefaultModel = "gpt-5.2"

// OpenAI pricing (per million tokens)
const (
	openaiInputPricePerMillion  = 1.75  // $1.75 per 1M input tokens
	openaiOutputPricePerMillion = 14.00 // $14.00 per 1M output tokens
)

// OpenAI uses OpenAI's vision-capable chat API for metadata generation.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed client. An empty model selects the
// default model.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = OpenAIDefaultModel
	}
	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Name implements the Client interface.
func (o *OpenAI) Name() string {
	return "openai"
}

// Generate implements the Client interface using OpenAI. The chat vision
// endpoint only accepts images, so video items fail as unsupported media
// without a network call.
func (o *OpenAI) Generate(ctx context.Context, req *Request) (*Result, error) {
	if req.Video {
		return nil, &Error{
			Kind:     KindUnsupportedMedia,
			Provider: o.Name(),
			Err:      fmt.Errorf("openai vision does not accept video (%s)", req.MIMEType),
		}
	}

	// Encode image as base64 data URL
	b64Data := base64.StdEncoding.EncodeToString(req.Media)
	dataURL := fmt.Sprintf("data:%s;base64,%s", req.MIMEType, b64Data)

	started := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(req.Prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	latency := time.Since(started)

	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: KindMalformedResponse, Provider: o.Name(), Err: errors.New("no response from OpenAI")}
	}

	meta, err := parseMetadata(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Provider: o.Name(), Err: err}
	}

	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
		CostUSD:      tokenCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, openaiInputPricePerMillion, openaiOutputPricePerMillion),
	}

	log.Info().
		Str("model", o.model).
		Str("itemId", req.ItemID).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Dur("latency", latency).
		Msg("openai llm call")

	return &Result{
		ItemID:   req.ItemID,
		Provider: o.Name(),
		Meta:     *meta,
		Usage:    usage,
		Latency:  latency,
	}, nil
}

func classifyOpenAIError(err error) *Error {
	if isTimeout(err) {
		return classifyTransport("openai", err)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyStatus("openai", apiErr.StatusCode, err)
	}
	return classifyTransport("openai", err)
}
