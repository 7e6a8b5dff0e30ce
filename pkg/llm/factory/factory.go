package factory

import (
	"fmt"
	"time"

	"onboarding-assistant-be/internal/pkg/logger"
	"onboarding-assistant-be/pkg/llm"
	"onboarding-assistant-be/pkg/llm/openai"
)

// BackendOptions carries the settings every assistant backend understands
type BackendOptions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Verbose bool
}

func NewAssistantBackend(providerType string, opts BackendOptions, log logger.ILogger) (llm.AssistantBackend, error) {
	switch providerType {
	case "openai", "":
		client := openai.NewAssistantsClient(opts.APIKey, opts.BaseURL, opts.Timeout, log)
		client.Verbose = opts.Verbose
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported assistant provider: %s", providerType)
	}
}
