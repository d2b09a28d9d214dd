package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roofio/internal/config"
	"roofio/internal/generator"
	"roofio/internal/generator/gemini"
)

func newTestGenerator(serverURL string) *gemini.Generator {
	return gemini.NewGeneratorWithEndpoint(&config.GeneratorProviderConfig{
		Provider: "gemini",
		APIKey:   "g-key",
	}, serverURL)
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		contents := reqBody["contents"].([]interface{})
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		assert.Equal(t, "the prompt", parts[0].(map[string]interface{})["text"])

		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "{\"warranty_years\": 20}"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 40, "candidatesTokenCount": 7}
		}`))
	}))
	defer server.Close()

	out, err := newTestGenerator(server.URL).Generate(context.Background(), "the prompt")

	require.NoError(t, err)
	assert.Equal(t, `{"warranty_years": 20}`, out.Text)
	assert.Equal(t, "gemini-2.0-flash", out.Model)
	assert.Equal(t, 40, out.InputTokens)
	assert.Equal(t, 7, out.OutputTokens)
}

func TestGenerate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), "p")

	var rl *generator.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, "gemini", rl.Provider)
}

func TestGenerate_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "no candidates")
}
