package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *RunConfig)
		wantErr string
	}{
		{
			name:    "unknown provider",
			mutate:  func(c *RunConfig) { c.Provider = "acme" },
			wantErr: "unknown provider",
		},
		{
			name:    "custom mode without text",
			mutate:  func(c *RunConfig) { c.PromptMode = ModeCustom },
			wantErr: "custom prompt mode requires custom text",
		},
		{
			name:    "no fields",
			mutate:  func(c *RunConfig) { c.Fields = nil },
			wantErr: "at least one output field",
		},
		{
			name:    "unknown field",
			mutate:  func(c *RunConfig) { c.Fields = []Field{"mood"} },
			wantErr: "unknown field",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *RunConfig) { c.Concurrency = 0 },
			wantErr: "concurrency",
		},
		{
			name:    "negative retry cap",
			mutate:  func(c *RunConfig) { c.RetryCap = -1 },
			wantErr: "retry cap",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *RunConfig) { c.RequestTimeout = 0 },
			wantErr: "request timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)

			var cfgErr *ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestCustomModeWithTextIsValid(t *testing.T) {
	cfg := Default()
	cfg.PromptMode = ModeCustom
	cfg.CustomText = "describe the weather"
	assert.NoError(t, cfg.Validate())
}

func TestHasField(t *testing.T) {
	cfg := Default()
	cfg.Fields = []Field{FieldTitle, FieldKeywords}
	assert.True(t, cfg.HasField(FieldTitle))
	assert.True(t, cfg.HasField(FieldKeywords))
	assert.False(t, cfg.HasField(FieldCategory))
}

func TestDefaultTimeout(t *testing.T) {
	assert.Equal(t, 2*time.Minute, Default().RequestTimeout)
}
