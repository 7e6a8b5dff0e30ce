package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	OpenAI    OpenAIConfig
	Assistant AssistantConfig
	Context   ContextConfig
	Embedding EmbeddingConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type OpenAIConfig struct {
	APIKey         string
	AssistantID    string
	BaseURL        string
	VerboseLogging bool
	EmbeddingModel string
	RequestTimeout time.Duration
}

type AssistantConfig struct {
	Provider        string // backend factory key, "openai"
	PollInterval    time.Duration
	MaxPollAttempts int
}

type ContextConfig struct {
	Strategy      string // "static" or "embedding"
	DataDirectory string
}

type EmbeddingConfig struct {
	Provider            string // "openai", "gemini" or "ollama"
	SimilarityThreshold float64
	GoogleGeminiAPIKey  string
	GeminiModel         string
	OllamaBaseURL       string
	OllamaModel         string
}

type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Context strategies
const (
	StrategyStatic    = "static"
	StrategyEmbedding = "embedding"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/assistant.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			AssistantID:    getEnv("OPENAI_ASSISTANT_ID", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1/"),
			VerboseLogging: getEnvAsBool("OPENAI_VERBOSE_LOGGING", false),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-ada-002"),
			RequestTimeout: getEnvAsDuration("OPENAI_REQUEST_TIMEOUT", 30*time.Second),
		},
		Assistant: AssistantConfig{
			Provider:        getEnv("ASSISTANT_PROVIDER", "openai"),
			PollInterval:    getEnvAsDuration("ASSISTANT_POLL_INTERVAL", time.Second),
			MaxPollAttempts: getEnvAsInt("ASSISTANT_MAX_POLL_ATTEMPTS", 30),
		},
		Context: ContextConfig{
			Strategy:      strings.ToLower(getEnv("CONTEXT_STRATEGY", StrategyStatic)),
			DataDirectory: getEnv("DATA_DIRECTORY", "Data"),
		},
		Embedding: EmbeddingConfig{
			Provider:            strings.ToLower(getEnv("EMBEDDING_PROVIDER", "openai")),
			SimilarityThreshold: getEnvAsFloat("EMBEDDING_SIMILARITY_THRESHOLD", 0.7),
			GoogleGeminiAPIKey:  getEnv("GOOGLE_GEMINI_API_KEY", ""),
			GeminiModel:         getEnv("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:         getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "onboarding-assistant-be"),
		},
	}
}

// IsProduction reports whether GO_ENV selects production logging
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Validate returns an error naming every missing or inconsistent setting
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		problems = append(problems, "OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(c.OpenAI.AssistantID) == "" {
		problems = append(problems, "OPENAI_ASSISTANT_ID is required")
	}

	switch c.Context.Strategy {
	case StrategyStatic:
	case StrategyEmbedding:
		switch c.Embedding.Provider {
		case "openai", "ollama":
		case "gemini":
			if strings.TrimSpace(c.Embedding.GoogleGeminiAPIKey) == "" {
				problems = append(problems, "GOOGLE_GEMINI_API_KEY is required when EMBEDDING_PROVIDER is gemini")
			}
		default:
			problems = append(problems, fmt.Sprintf("EMBEDDING_PROVIDER %q is not supported", c.Embedding.Provider))
		}
	default:
		problems = append(problems, fmt.Sprintf("CONTEXT_STRATEGY %q is not supported", c.Context.Strategy))
	}

	if c.Assistant.MaxPollAttempts <= 0 {
		problems = append(problems, "ASSISTANT_MAX_POLL_ATTEMPTS must be positive")
	}
	if c.Assistant.PollInterval <= 0 {
		problems = append(problems, "ASSISTANT_POLL_INTERVAL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
