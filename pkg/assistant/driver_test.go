package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"onboarding-assistant-be/internal/pkg/logger"
	"onboarding-assistant-be/pkg/llm"
	"onboarding-assistant-be/pkg/routecontext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu sync.Mutex

	newThreadID string
	runStatuses []string // returned by successive GetRun calls; the last one repeats
	lastError   *llm.RunError
	messages    []llm.ThreadMessage

	createThreadErr error
	addMessageErr   error
	createRunErr    error
	getRunErr       error
	listErr         error

	createThreadCalls int
	getRunCalls       int
	listCalls         int
	addedTo           []string
	addedContent      []string
	runAssistantID    string
}

func (f *fakeBackend) CreateThread(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createThreadCalls++
	if f.createThreadErr != nil {
		return "", f.createThreadErr
	}
	return f.newThreadID, nil
}

func (f *fakeBackend) AddMessage(_ context.Context, threadID, role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if role != llm.RoleUser {
		return errors.New("unexpected role " + role)
	}
	f.addedTo = append(f.addedTo, threadID)
	f.addedContent = append(f.addedContent, content)
	return f.addMessageErr
}

func (f *fakeBackend) CreateRun(_ context.Context, threadID, assistantID string) (*llm.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runAssistantID = assistantID
	if f.createRunErr != nil {
		return nil, f.createRunErr
	}
	return &llm.Run{ID: "run_1", ThreadID: threadID, Status: llm.RunStatusQueued}, nil
}

func (f *fakeBackend) GetRun(_ context.Context, threadID, runID string) (*llm.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getRunCalls++
	if f.getRunErr != nil {
		return nil, f.getRunErr
	}
	status := llm.RunStatusCompleted
	if len(f.runStatuses) > 0 {
		idx := f.getRunCalls - 1
		if idx >= len(f.runStatuses) {
			idx = len(f.runStatuses) - 1
		}
		status = f.runStatuses[idx]
	}
	run := &llm.Run{ID: runID, ThreadID: threadID, Status: status}
	if status == llm.RunStatusFailed {
		run.LastError = f.lastError
	}
	return run, nil
}

func (f *fakeBackend) ListMessages(_ context.Context, _ string, limit int) ([]llm.ThreadMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit < len(f.messages) {
		return f.messages[:limit], nil
	}
	return f.messages, nil
}

func reply(text string) []llm.ThreadMessage {
	return []llm.ThreadMessage{
		{ID: "msg_2", Role: llm.RoleAssistant, Content: []llm.ContentBlock{{Type: "text", Text: text}}},
		{ID: "msg_1", Role: llm.RoleUser, Content: []llm.ContentBlock{{Type: "text", Text: "question"}}},
	}
}

func newTestDriver(backend llm.AssistantBackend, maxAttempts int) *Driver {
	return NewDriver(backend, Config{
		AssistantID:     "asst_123",
		PollInterval:    time.Millisecond,
		MaxPollAttempts: maxAttempts,
	}, logger.NewNopLogger())
}

var dashboardContext = routecontext.RouteContext{
	Route:       "/dashboard",
	Description: "Overview",
	Elements:    []routecontext.UIElement{{ID: "btn1", Description: "Submit"}},
	APICalls:    []string{},
	UserActions: []string{},
}

func TestDriver_ThreadResolution(t *testing.T) {
	tests := []struct {
		name         string
		supplied     string
		wantThreadID string
		wantCreated  bool
	}{
		{name: "empty id creates a thread", supplied: "", wantThreadID: "thread_new", wantCreated: true},
		{name: "malformed id creates a thread", supplied: "abc123", wantThreadID: "thread_new", wantCreated: true},
		{name: "bare prefix creates a thread", supplied: "thread_", wantThreadID: "thread_new", wantCreated: true},
		{name: "valid id is reused", supplied: "thread_existing", wantThreadID: "thread_existing", wantCreated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{newThreadID: "thread_new", messages: reply("Hello")}
			driver := newTestDriver(backend, 5)

			resp := driver.ProcessQuery(context.Background(), Query{Text: "Hi", Route: "/dashboard", ThreadID: tt.supplied}, dashboardContext)

			assert.Equal(t, tt.wantThreadID, resp.ThreadID)
			assert.Equal(t, "Hello", resp.Message)
			require.Len(t, backend.addedTo, 1)
			assert.Equal(t, tt.wantThreadID, backend.addedTo[0])
			if tt.wantCreated {
				assert.Equal(t, 1, backend.createThreadCalls)
				assert.True(t, strings.HasPrefix(backend.addedContent[0], "Context for the page /dashboard:"))
			} else {
				assert.Equal(t, 0, backend.createThreadCalls)
				assert.Equal(t, "The user is currently on /dashboard and has asked: Hi", backend.addedContent[0])
			}
		})
	}
}

func TestDriver_ThreadRoundTrip(t *testing.T) {
	backend := &fakeBackend{newThreadID: "thread_abc", messages: reply("First")}
	driver := newTestDriver(backend, 5)

	first := driver.ProcessQuery(context.Background(), Query{Text: "one"}, routecontext.RouteContext{})
	second := driver.ProcessQuery(context.Background(), Query{Text: "two", ThreadID: first.ThreadID}, routecontext.RouteContext{})

	assert.Equal(t, "thread_abc", first.ThreadID)
	assert.Equal(t, first.ThreadID, second.ThreadID)
	assert.Equal(t, 1, backend.createThreadCalls)
	assert.Equal(t, []string{"one", "two"}, backend.addedContent)
}

func TestDriver_CompletedWithActions(t *testing.T) {
	backend := &fakeBackend{
		newThreadID: "thread_1",
		runStatuses: []string{llm.RunStatusInProgress, llm.RunStatusCompleted},
		messages:    reply("Click [[highlight: btn1 | the submit button]] to continue. [[navigate: /dashboard]]"),
	}
	driver := newTestDriver(backend, 5)

	resp := driver.ProcessQuery(context.Background(), Query{Text: "How?"}, routecontext.RouteContext{})

	assert.Equal(t, "Click  to continue. ", resp.Message)
	assert.Equal(t, []Action{
		{Type: ActionHighlight, ElementID: "btn1", Description: "the submit button"},
		{Type: ActionNavigate, Route: "/dashboard"},
	}, resp.Actions)
	assert.Equal(t, 2, backend.getRunCalls)
	assert.Equal(t, "asst_123", backend.runAssistantID)
}

func TestDriver_PollBudgetExhausted(t *testing.T) {
	backend := &fakeBackend{
		newThreadID: "thread_slow",
		runStatuses: []string{llm.RunStatusInProgress},
	}
	driver := newTestDriver(backend, 4)

	resp := driver.ProcessQuery(context.Background(), Query{Text: "slow"}, routecontext.RouteContext{})

	assert.Equal(t, MessageTimeout, resp.Message)
	assert.Equal(t, "thread_slow", resp.ThreadID)
	assert.Empty(t, resp.Actions)
	assert.NotNil(t, resp.Actions)
	assert.Equal(t, 4, backend.getRunCalls, "exactly the configured number of status fetches")
	assert.Equal(t, 0, backend.listCalls, "no remote calls after the budget is spent")
}

func TestDriver_WaitForRunReportsTimeoutStatus(t *testing.T) {
	backend := &fakeBackend{runStatuses: []string{llm.RunStatusQueued}}
	driver := newTestDriver(backend, 3)

	run, err := driver.waitForRun(context.Background(), "thread_1", &llm.Run{ID: "run_1", Status: llm.RunStatusQueued})

	require.NoError(t, err)
	assert.Equal(t, RunStatusTimeout, run.Status)
	assert.Equal(t, 3, backend.getRunCalls)
}

func TestDriver_TerminalClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		lastError *llm.RunError
		want      string
	}{
		{
			name:      "rate limit",
			status:    llm.RunStatusFailed,
			lastError: &llm.RunError{Code: llm.ErrorCodeRateLimitExceeded, Message: "You exceeded your current quota"},
			want:      MessageQuota,
		},
		{
			name:      "other failure",
			status:    llm.RunStatusFailed,
			lastError: &llm.RunError{Code: "server_error", Message: "boom"},
			want:      MessageRunFailed,
		},
		{name: "failure without detail", status: llm.RunStatusFailed, want: MessageRunFailed},
		{name: "cancelled", status: llm.RunStatusCancelled, want: MessageRetryLater},
		{name: "expired", status: llm.RunStatusExpired, want: MessageRetryLater},
		{name: "requires action", status: llm.RunStatusRequiresAction, want: MessageRetryLater},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{
				newThreadID: "thread_used",
				runStatuses: []string{llm.RunStatusInProgress, tt.status},
				lastError:   tt.lastError,
				messages:    reply("should not be read"),
			}
			driver := newTestDriver(backend, 10)

			resp := driver.ProcessQuery(context.Background(), Query{Text: "q"}, routecontext.RouteContext{})

			assert.Equal(t, tt.want, resp.Message)
			assert.Equal(t, "thread_used", resp.ThreadID)
			assert.Equal(t, []Action{}, resp.Actions)
			assert.Equal(t, 0, backend.listCalls)
		})
	}
}

func TestDriver_FatalErrors(t *testing.T) {
	backendErr := &llm.APIError{Operation: "test", StatusCode: 500, Message: "internal"}

	tests := []struct {
		name         string
		supplied     string
		setup        func(*fakeBackend)
		wantThreadID string
	}{
		{
			name:         "create thread fails",
			setup:        func(f *fakeBackend) { f.createThreadErr = backendErr },
			wantThreadID: "",
		},
		{
			name:         "create thread fails for malformed id",
			supplied:     "not-a-thread",
			setup:        func(f *fakeBackend) { f.createThreadErr = backendErr },
			wantThreadID: "",
		},
		{
			name:         "add message fails on reused thread",
			supplied:     "thread_kept",
			setup:        func(f *fakeBackend) { f.addMessageErr = backendErr },
			wantThreadID: "thread_kept",
		},
		{
			name:         "create run fails on new thread",
			setup:        func(f *fakeBackend) { f.createRunErr = backendErr },
			wantThreadID: "thread_new",
		},
		{
			name:         "status fetch fails",
			setup:        func(f *fakeBackend) { f.getRunErr = errors.New("connection reset") },
			wantThreadID: "thread_new",
		},
		{
			name:         "list messages fails",
			setup:        func(f *fakeBackend) { f.listErr = backendErr },
			wantThreadID: "thread_new",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{newThreadID: "thread_new", messages: reply("unused")}
			tt.setup(backend)
			driver := newTestDriver(backend, 5)

			resp := driver.ProcessQuery(context.Background(), Query{Text: "q", ThreadID: tt.supplied}, routecontext.RouteContext{})

			assert.Equal(t, MessageGenericError, resp.Message)
			assert.Equal(t, tt.wantThreadID, resp.ThreadID)
			assert.Equal(t, []Action{}, resp.Actions)
			assert.NotContains(t, resp.Message, "internal")
		})
	}
}

func TestDriver_ExtractionFallback(t *testing.T) {
	tests := []struct {
		name     string
		messages []llm.ThreadMessage
	}{
		{name: "no messages"},
		{
			name: "only user messages",
			messages: []llm.ThreadMessage{
				{ID: "msg_1", Role: llm.RoleUser, Content: []llm.ContentBlock{{Type: "text", Text: "hi"}}},
			},
		},
		{
			name: "assistant message without text",
			messages: []llm.ThreadMessage{
				{ID: "msg_2", Role: llm.RoleAssistant, Content: []llm.ContentBlock{{Type: "image_file"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{newThreadID: "thread_1", messages: tt.messages}
			driver := newTestDriver(backend, 5)

			resp := driver.ProcessQuery(context.Background(), Query{Text: "q"}, routecontext.RouteContext{})

			assert.Equal(t, MessageNoResponse, resp.Message)
			assert.Equal(t, "thread_1", resp.ThreadID)
			assert.Equal(t, []Action{}, resp.Actions)
		})
	}
}

func TestDriver_NewestAssistantMessageWins(t *testing.T) {
	backend := &fakeBackend{
		newThreadID: "thread_1",
		messages: []llm.ThreadMessage{
			{ID: "msg_4", Role: llm.RoleAssistant, Content: []llm.ContentBlock{{Type: "image_file"}, {Type: "text", Text: "newest"}}},
			{ID: "msg_3", Role: llm.RoleUser, Content: []llm.ContentBlock{{Type: "text", Text: "q"}}},
			{ID: "msg_2", Role: llm.RoleAssistant, Content: []llm.ContentBlock{{Type: "text", Text: "older"}}},
		},
	}
	driver := newTestDriver(backend, 5)

	resp := driver.ProcessQuery(context.Background(), Query{Text: "q"}, routecontext.RouteContext{})

	assert.Equal(t, "newest", resp.Message)
}

func TestDriver_CancelledContextStopsWaiting(t *testing.T) {
	backend := &fakeBackend{newThreadID: "thread_1", runStatuses: []string{llm.RunStatusInProgress}}
	driver := NewDriver(backend, Config{AssistantID: "asst", PollInterval: time.Hour, MaxPollAttempts: 3}, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := driver.ProcessQuery(ctx, Query{Text: "q"}, routecontext.RouteContext{})

	assert.Equal(t, MessageGenericError, resp.Message)
	assert.Equal(t, "thread_1", resp.ThreadID)
	assert.Equal(t, 0, backend.getRunCalls)
}

func TestIsValidThreadID(t *testing.T) {
	assert.True(t, IsValidThreadID("thread_abc123"))
	assert.False(t, IsValidThreadID(""))
	assert.False(t, IsValidThreadID("thread_"))
	assert.False(t, IsValidThreadID("run_abc"))
	assert.False(t, IsValidThreadID("THREAD_abc"))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{AssistantID: "asst"}.withDefaults()
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, DefaultMaxPollAttempts, cfg.MaxPollAttempts)
	assert.Equal(t, DefaultMessageLimit, cfg.MessageLimit)
}
