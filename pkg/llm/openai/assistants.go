package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"onboarding-assistant-be/internal/pkg/logger"
	"onboarding-assistant-be/pkg/llm"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1/"

	moduleName = "openai"
)

// AssistantsClient talks to the OpenAI Assistants API (threads, messages, runs)
type AssistantsClient struct {
	BaseURL string
	Verbose bool

	client openai.Client
	logger logger.ILogger
}

var _ llm.AssistantBackend = &AssistantsClient{}

// NewAssistantsClient builds a client on the OpenAI SDK. The SDK's own retries are
// disabled: a failed submission surfaces to the caller instead of being replayed.
// Extra request options are appended after the defaults.
func NewAssistantsClient(apiKey, baseURL string, timeout time.Duration, log logger.ILogger, opts ...option.RequestOption) *AssistantsClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &AssistantsClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  log,
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(c.BaseURL + "/"),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
		option.WithMiddleware(c.logExchange),
	}
	c.client = openai.NewClient(append(clientOpts, opts...)...)
	return c
}

// logExchange traces every backend round trip at debug level when Verbose is set
func (c *AssistantsClient) logExchange(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	if !c.Verbose {
		return next(req)
	}

	start := time.Now()
	c.logger.Debug(moduleName, "Backend request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := next(req)
	details := map[string]interface{}{
		"method":  req.Method,
		"url":     req.URL.String(),
		"latency": time.Since(start).String(),
	}
	if err != nil {
		details["error"] = err.Error()
		c.logger.Debug(moduleName, "Backend request failed", details)
		return resp, err
	}
	details["status"] = resp.StatusCode
	c.logger.Debug(moduleName, "Backend response", details)
	return resp, nil
}

// --- Interface Implementation ---

func (c *AssistantsClient) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", wrapError("create thread", err)
	}
	if thread.ID == "" {
		return "", fmt.Errorf("create thread: response has no thread id")
	}
	if !strings.HasPrefix(thread.ID, llm.ThreadIDPrefix) {
		c.logger.Warn(moduleName, "Created thread id does not carry the expected prefix", map[string]interface{}{
			"thread_id": thread.ID,
			"prefix":    llm.ThreadIDPrefix,
		})
	}
	return thread.ID, nil
}

func (c *AssistantsClient) AddMessage(ctx context.Context, threadID, role, content string) error {
	_, err := c.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role:    openai.BetaThreadMessageNewParamsRole(role),
		Content: openai.BetaThreadMessageNewParamsContentUnion{OfString: openai.String(content)},
	})
	if err != nil {
		return wrapError("add message", err)
	}
	return nil
}

func (c *AssistantsClient) CreateRun(ctx context.Context, threadID, assistantID string) (*llm.Run, error) {
	run, err := c.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: assistantID,
	})
	if err != nil {
		return nil, wrapError("create run", err)
	}
	if run.ID == "" {
		return nil, fmt.Errorf("create run: response has no run id")
	}
	return toRun(run, threadID), nil
}

func (c *AssistantsClient) GetRun(ctx context.Context, threadID, runID string) (*llm.Run, error) {
	run, err := c.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return nil, wrapError("get run", err)
	}
	if run.Status == "" {
		return nil, fmt.Errorf("get run: response has no status")
	}
	return toRun(run, threadID), nil
}

func (c *AssistantsClient) ListMessages(ctx context.Context, threadID string, limit int) ([]llm.ThreadMessage, error) {
	params := openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderDesc,
	}
	if limit > 0 {
		params.Limit = openai.Int(int64(limit))
	}

	page, err := c.client.Beta.Threads.Messages.List(ctx, threadID, params)
	if err != nil {
		return nil, wrapError("list messages", err)
	}

	messages := make([]llm.ThreadMessage, 0, len(page.Data))
	for _, m := range page.Data {
		msg := llm.ThreadMessage{ID: m.ID, Role: string(m.Role)}
		for _, block := range m.Content {
			cb := llm.ContentBlock{Type: block.Type}
			if block.Type == "text" {
				cb.Text = block.Text.Value
			}
			msg.Content = append(msg.Content, cb)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func toRun(r *openai.Run, threadID string) *llm.Run {
	run := &llm.Run{
		ID:       r.ID,
		ThreadID: r.ThreadID,
		Status:   string(r.Status),
	}
	if run.ThreadID == "" {
		run.ThreadID = threadID
	}
	if r.LastError.Code != "" || r.LastError.Message != "" {
		run.LastError = &llm.RunError{Code: string(r.LastError.Code), Message: r.LastError.Message}
	}
	return run
}

// wrapError turns SDK status errors into *llm.APIError; transport errors keep their chain
func wrapError(op string, err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	message := apiErr.Message
	if message == "" {
		message = http.StatusText(apiErr.StatusCode)
	}
	return &llm.APIError{
		Operation:  op,
		StatusCode: apiErr.StatusCode,
		Type:       apiErr.Type,
		Code:       apiErr.Code,
		Message:    message,
	}
}
