package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"onboarding-assistant-be/internal/config"
	"onboarding-assistant-be/internal/pkg/logger"
	"onboarding-assistant-be/pkg/routecontext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dashboard.json"),
		[]byte(`{"route":"/dashboard","description":"Overview","elements":[],"apiCalls":[],"userActions":["Create a report"]}`), 0o644))

	return &config.Config{
		OpenAI: config.OpenAIConfig{
			APIKey:         "sk-test",
			AssistantID:    "asst_test",
			BaseURL:        "http://127.0.0.1:1/v1/",
			RequestTimeout: time.Second,
		},
		Assistant: config.AssistantConfig{Provider: "openai", PollInterval: time.Second, MaxPollAttempts: 30},
		Context:   config.ContextConfig{Strategy: config.StrategyStatic, DataDirectory: dir},
		Embedding: config.EmbeddingConfig{Provider: "ollama", SimilarityThreshold: 0.7},
	}
}

func TestNewContainer_Static(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(t), logger.NewNopLogger())
	require.NoError(t, err)

	require.IsType(t, &routecontext.StaticResolver{}, c.Resolver)
	assert.NotNil(t, c.Driver)
	assert.NotNil(t, c.AssistantController)

	rc := c.AssistantService.GetContext(context.Background(), "/dashboard/")
	assert.Equal(t, []string{"Create a report"}, rc.UserActions)
}

func TestNewContainer_EmbeddingWithOllama(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float64{1, 0}})
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Context.Strategy = config.StrategyEmbedding
	cfg.Embedding.OllamaBaseURL = server.URL

	c, err := NewContainer(context.Background(), cfg, logger.NewNopLogger())
	require.NoError(t, err)
	require.IsType(t, &routecontext.EmbeddingResolver{}, c.Resolver)

	// every route embeds to the same vector, so an unknown route matches the only known one
	rc := c.Resolver.Resolve(context.Background(), "/dashboard/reports")
	assert.Equal(t, "Overview", rc.Description)
}

func TestNewContainer_Errors(t *testing.T) {
	t.Run("unknown backend provider", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Assistant.Provider = "bedrock"
		_, err := NewContainer(context.Background(), cfg, logger.NewNopLogger())
		assert.ErrorContains(t, err, "unsupported assistant provider")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Context.Strategy = "fuzzy"
		_, err := NewContainer(context.Background(), cfg, logger.NewNopLogger())
		assert.ErrorContains(t, err, "unsupported context strategy")
	})

	t.Run("unknown embedding provider", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Context.Strategy = config.StrategyEmbedding
		cfg.Embedding.Provider = "jina"
		_, err := NewContainer(context.Background(), cfg, logger.NewNopLogger())
		assert.ErrorContains(t, err, "unsupported embedding provider")
	})
}
