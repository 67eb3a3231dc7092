package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	AppName     = "stocktag"
	EnvFileName = "config.env"
)

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Mode selects how the generation prompt is assembled.
type Mode string

const (
	ModeDefault Mode = "default"
	ModeCustom  Mode = "custom"
)

// Field is one of the metadata fields a generation request can ask for.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldKeywords    Field = "keywords"
	FieldCategory    Field = "category"
)

// AllFields lists every recognized field in canonical order. Prompt assembly
// iterates this slice so the same field selection always produces the same
// prompt text.
var AllFields = []Field{FieldTitle, FieldDescription, FieldKeywords, FieldCategory}

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// RunConfig is the immutable configuration snapshot for one pipeline run.
type RunConfig struct {
	Provider       string
	Model          string // empty means the provider's default model
	PromptMode     Mode
	CustomText     string
	NegativeText   string // optional exclusions appended to the prompt
	Fields         []Field
	Concurrency    int
	RetryCap       int // retries after the first attempt
	RequestTimeout time.Duration
}

// ConfigurationError reports an invalid pipeline configuration. A run is
// never started with an invalid config.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// Default returns the configuration used when the user has not overridden
// anything: Gemini, all fields, three retries, four concurrent requests.
func Default() RunConfig {
	return RunConfig{
		Provider:       ProviderGemini,
		PromptMode:     ModeDefault,
		Fields:         append([]Field(nil), AllFields...),
		Concurrency:    4,
		RetryCap:       3,
		RequestTimeout: 2 * time.Minute,
	}
}

// Validate checks the snapshot before a run starts.
func (c RunConfig) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unknown provider %q", c.Provider)}
	}
	switch c.PromptMode {
	case ModeDefault:
	case ModeCustom:
		if c.CustomText == "" {
			return &ConfigurationError{Reason: "custom prompt mode requires custom text"}
		}
	default:
		return &ConfigurationError{Reason: fmt.Sprintf("unknown prompt mode %q", c.PromptMode)}
	}
	if len(c.Fields) == 0 {
		return &ConfigurationError{Reason: "at least one output field is required"}
	}
	known := make(map[Field]bool, len(AllFields))
	for _, f := range AllFields {
		known[f] = true
	}
	for _, f := range c.Fields {
		if !known[f] {
			return &ConfigurationError{Reason: fmt.Sprintf("unknown field %q", f)}
		}
	}
	if c.Concurrency < 1 {
		return &ConfigurationError{Reason: "concurrency must be at least 1"}
	}
	if c.RetryCap < 0 {
		return &ConfigurationError{Reason: "retry cap must not be negative"}
	}
	if c.RequestTimeout <= 0 {
		return &ConfigurationError{Reason: "request timeout must be positive"}
	}
	return nil
}

// HasField reports whether the config requests the given field.
func (c RunConfig) HasField(f Field) bool {
	for _, have := range c.Fields {
		if have == f {
			return true
		}
	}
	return false
}
