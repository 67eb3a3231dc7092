package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCheckerValidGeminiKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "good-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models": []}`))
	}))
	defer ts.Close()

	checker := NewKeyChecker(KeyCheckerOpts{GeminiBaseURL: ts.URL})
	assert.NoError(t, checker.Validate(context.Background(), "gemini", "good-key"))
}

func TestKeyCheckerValidOpenAIKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer good-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": []}`))
	}))
	defer ts.Close()

	checker := NewKeyChecker(KeyCheckerOpts{OpenAIBaseURL: ts.URL})
	assert.NoError(t, checker.Validate(context.Background(), "openai", "good-key"))
}

func TestKeyCheckerInvalidKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	checker := NewKeyChecker(KeyCheckerOpts{OpenAIBaseURL: ts.URL})
	err := checker.Validate(context.Background(), "openai", "bad-key")
	require.Error(t, err)
	assert.Equal(t, KindAuthentication, KindOf(err))
}

func TestKeyCheckerServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	checker := NewKeyChecker(KeyCheckerOpts{GeminiBaseURL: ts.URL})
	err := checker.Validate(context.Background(), "gemini", "some-key")
	require.Error(t, err)
	assert.Equal(t, KindTransientNetwork, KindOf(err))
}

func TestKeyCheckerEmptyKey(t *testing.T) {
	checker := NewKeyChecker(KeyCheckerOpts{})
	err := checker.Validate(context.Background(), "gemini", "")
	require.Error(t, err)
	assert.Equal(t, KindAuthentication, KindOf(err))
}

func TestKeyCheckerUnknownProvider(t *testing.T) {
	checker := NewKeyChecker(KeyCheckerOpts{})
	err := checker.Validate(context.Background(), "llama", "key")
	assert.ErrorContains(t, err, "unknown provider")
}
