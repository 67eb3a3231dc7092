package provider

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const (
	geminiModelsURL = "https://generativelanguage.googleapis.com/v1beta/models"
	openaiModelsURL = "https://api.openai.com/v1/models"
)

// KeyCheckerOpts overrides the provider endpoints, used in tests.
type KeyCheckerOpts struct {
	GeminiBaseURL string
	OpenAIBaseURL string
}

// KeyChecker validates API keys with a cheap authenticated call against the
// provider's model-listing endpoint, before a run burns real requests on a
// bad key.
type KeyChecker struct {
	httpClient *resty.Client
	geminiURL  string
	openaiURL  string
}

// NewKeyChecker creates a key checker.
func NewKeyChecker(opts KeyCheckerOpts) *KeyChecker {
	c := &KeyChecker{
		geminiURL: geminiModelsURL,
		openaiURL: openaiModelsURL,
	}
	if opts.GeminiBaseURL != "" {
		c.geminiURL = opts.GeminiBaseURL
	}
	if opts.OpenAIBaseURL != "" {
		c.openaiURL = opts.OpenAIBaseURL
	}
	c.httpClient = resty.New().
		SetHeader("Accept", "application/json")
	return c
}

// Validate checks the key for the named provider. A bad or missing key
// comes back as an authentication Error; other failures are transient.
func (c *KeyChecker) Validate(ctx context.Context, providerName, apiKey string) error {
	if apiKey == "" {
		return &Error{Kind: KindAuthentication, Provider: providerName, Err: fmt.Errorf("api key is empty")}
	}

	req := c.httpClient.NewRequest().SetContext(ctx)

	var resp *resty.Response
	var err error
	switch providerName {
	case "gemini":
		resp, err = req.SetQueryParam("key", apiKey).Get(c.geminiURL)
	case "openai":
		resp, err = req.SetHeader("Authorization", "Bearer "+apiKey).Get(c.openaiURL)
	default:
		return fmt.Errorf("unknown provider %q", providerName)
	}
	if err != nil {
		return classifyTransport(providerName, err)
	}
	if resp.IsError() {
		return classifyStatus(providerName, resp.StatusCode(), fmt.Errorf("key check returned %s", resp.Status()))
	}
	return nil
}
