package assistant

import (
	"strings"
	"time"

	"onboarding-assistant-be/pkg/llm"
)

const moduleName = "assistant"

// User-facing replies. Backend codes and messages never reach the caller.
const (
	MessageQuota        = "The OpenAI API quota has been exceeded. Please check your billing details in the OpenAI dashboard or contact your administrator."
	MessageRunFailed    = "The assistant encountered an error while processing your request. This might be because the assistant doesn't have access to the necessary files. Please check your assistant configuration in the OpenAI dashboard and ensure it has the required files uploaded."
	MessageTimeout      = "The assistant took too long to respond. Please try again later."
	MessageRetryLater   = "I'm sorry, but I couldn't process your request at this time. Please try again later."
	MessageNoResponse   = "I'm sorry, but I couldn't generate a response at this time."
	MessageGenericError = "I'm sorry, but I encountered an error processing your request. Our team has been notified and is working to resolve the issue. Please try again later."
)

// RunStatusTimeout is reported when the poll budget runs out before the run settles
const RunStatusTimeout = "timeout"

const (
	DefaultPollInterval    = 1 * time.Second
	DefaultMaxPollAttempts = 30
	DefaultMessageLimit    = 10
)

// Action types
const (
	ActionHighlight = "highlight"
	ActionNavigate  = "navigate"
)

// Action is a UI instruction extracted from the assistant's reply
type Action struct {
	Type        string `json:"type"`
	ElementID   string `json:"elementId,omitempty"`
	Description string `json:"description,omitempty"`
	Route       string `json:"route,omitempty"`
}

// Response is the outcome of one query. It is always well formed, including on failure.
type Response struct {
	Message  string   `json:"message"`
	ThreadID string   `json:"threadId"`
	Actions  []Action `json:"actions"`
}

// Query is one question from the widget
type Query struct {
	Text     string
	Route    string
	ThreadID string
}

type Config struct {
	AssistantID     string
	PollInterval    time.Duration
	MaxPollAttempts int
	MessageLimit    int
	// Verbose logs message content and replies at debug level
	Verbose bool
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxPollAttempts <= 0 {
		c.MaxPollAttempts = DefaultMaxPollAttempts
	}
	if c.MessageLimit <= 0 {
		c.MessageLimit = DefaultMessageLimit
	}
	return c
}

// IsValidThreadID reports whether id has the backend's thread identifier format
func IsValidThreadID(id string) bool {
	return strings.HasPrefix(id, llm.ThreadIDPrefix) && len(id) > len(llm.ThreadIDPrefix)
}

func newResponse(message, threadID string) *Response {
	return &Response{Message: message, ThreadID: threadID, Actions: []Action{}}
}
