package llm

import (
	"context"
	"fmt"
)

// Message roles understood by thread-based assistant backends
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Run statuses reported by the backend
const (
	RunStatusQueued         = "queued"
	RunStatusInProgress     = "in_progress"
	RunStatusRequiresAction = "requires_action"
	RunStatusCancelling     = "cancelling"
	RunStatusCancelled      = "cancelled"
	RunStatusFailed         = "failed"
	RunStatusCompleted      = "completed"
	RunStatusIncomplete     = "incomplete"
	RunStatusExpired        = "expired"
)

// ErrorCodeRateLimitExceeded is the run error code the backend uses when quota is exhausted
const ErrorCodeRateLimitExceeded = "rate_limit_exceeded"

// ThreadIDPrefix starts every thread identifier the backend issues
const ThreadIDPrefix = "thread_"

// RunError is the last error recorded on a run
type RunError struct {
	Code    string
	Message string
}

// Run is a snapshot of one asynchronous assistant invocation against a thread
type Run struct {
	ID        string
	ThreadID  string
	Status    string
	LastError *RunError
}

// IsPending reports whether the backend is still working on the run
func (r *Run) IsPending() bool {
	return r.Status == RunStatusQueued || r.Status == RunStatusInProgress
}

// ContentBlock is one piece of message content. Only text blocks carry Text.
type ContentBlock struct {
	Type string // "text", "image_file", ...
	Text string
}

// ThreadMessage is a message stored on a backend thread
type ThreadMessage struct {
	ID      string
	Role    string
	Content []ContentBlock
}

// AssistantBackend defines the contract for a stateful, thread-based assistant backend.
// Threads and messages live on the backend; callers only hold identifiers.
type AssistantBackend interface {
	// CreateThread creates an empty thread and returns its identifier
	CreateThread(ctx context.Context) (string, error)

	// AddMessage appends a message to the thread
	AddMessage(ctx context.Context, threadID, role, content string) error

	// CreateRun starts the assistant against the thread's accumulated messages
	CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error)

	// GetRun fetches the current state of a run
	GetRun(ctx context.Context, threadID, runID string) (*Run, error)

	// ListMessages returns up to limit messages, newest first
	ListMessages(ctx context.Context, threadID string, limit int) ([]ThreadMessage, error)
}

// APIError is returned when the backend answers with a non-success status
type APIError struct {
	Operation  string
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: status %d (%s): %s", e.Operation, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Operation, e.StatusCode, e.Message)
}
