package assistant

import (
	"context"
	"fmt"

	"onboarding-assistant-be/internal/pkg/logger"
	"onboarding-assistant-be/pkg/llm"
	"onboarding-assistant-be/pkg/routecontext"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Driver runs one query through the backend's thread lifecycle: resolve the thread,
// submit the message, start a run, poll it to a terminal state and extract the reply.
// It keeps no state between calls and does not serialize queries on the same thread.
type Driver struct {
	backend llm.AssistantBackend
	cfg     Config
	logger  logger.ILogger
	tracer  trace.Tracer
}

func NewDriver(backend llm.AssistantBackend, cfg Config, log logger.ILogger) *Driver {
	return &Driver{
		backend: backend,
		cfg:     cfg.withDefaults(),
		logger:  log,
		tracer:  otel.Tracer("onboarding-assistant-be/pkg/assistant"),
	}
}

// ProcessQuery never returns an error. Failures become a user-facing message carrying
// the thread id that was established, or "" when none was.
func (d *Driver) ProcessQuery(ctx context.Context, q Query, rc routecontext.RouteContext) *Response {
	ctx, span := d.tracer.Start(ctx, "assistant.process_query", trace.WithAttributes(
		attribute.String("assistant.route", q.Route),
		attribute.Bool("assistant.thread_supplied", q.ThreadID != ""),
	))
	defer span.End()

	var threadID string
	resp, err := d.processQuery(ctx, q, rc, &threadID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		d.logger.Error(moduleName, "Failed to process query", map[string]interface{}{
			"thread_id": threadID,
			"route":     q.Route,
			"error":     err,
		})
		return newResponse(MessageGenericError, threadID)
	}

	span.SetAttributes(
		attribute.String("assistant.thread_id", resp.ThreadID),
		attribute.Int("assistant.actions", len(resp.Actions)),
	)
	return resp
}

func (d *Driver) processQuery(ctx context.Context, q Query, rc routecontext.RouteContext, threadID *string) (*Response, error) {
	id, created, err := d.resolveThread(ctx, q.ThreadID)
	if err != nil {
		return nil, err
	}
	*threadID = id

	content := BuildUserMessage(q.Text, q.Route, rc, created)
	if err := d.addMessage(ctx, id, content); err != nil {
		return nil, err
	}

	run, err := d.createRun(ctx, id)
	if err != nil {
		return nil, err
	}

	run, err = d.waitForRun(ctx, id, run)
	if err != nil {
		return nil, err
	}

	if run.Status != llm.RunStatusCompleted {
		return newResponse(d.classifyRun(run), id), nil
	}

	text, err := d.latestAssistantText(ctx, id)
	if err != nil {
		return nil, err
	}
	if text == "" {
		d.logger.Warn(moduleName, "No assistant reply found on thread", map[string]interface{}{"thread_id": id})
		return newResponse(MessageNoResponse, id), nil
	}

	parsed := ParseActions(text)
	if d.cfg.Verbose {
		d.logger.Debug(moduleName, "Assistant reply", map[string]interface{}{
			"thread_id": id,
			"reply":     text,
			"actions":   len(parsed.Actions),
		})
	}

	return &Response{Message: parsed.CleanText, ThreadID: id, Actions: parsed.Actions}, nil
}

// resolveThread reuses a well-formed thread id and creates a thread otherwise
func (d *Driver) resolveThread(ctx context.Context, supplied string) (string, bool, error) {
	if supplied != "" && IsValidThreadID(supplied) {
		d.logger.Debug(moduleName, "Reusing thread", map[string]interface{}{"thread_id": supplied})
		return supplied, false, nil
	}
	if supplied != "" {
		d.logger.Warn(moduleName, "Ignoring thread id with unexpected format", map[string]interface{}{"thread_id": supplied})
	}

	ctx, span := d.tracer.Start(ctx, "assistant.create_thread")
	defer span.End()

	id, err := d.backend.CreateThread(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create thread failed")
		return "", false, fmt.Errorf("create thread: %w", err)
	}
	span.SetAttributes(attribute.String("assistant.thread_id", id))

	d.logger.Info(moduleName, "Created thread", map[string]interface{}{"thread_id": id})
	return id, true, nil
}

func (d *Driver) addMessage(ctx context.Context, threadID, content string) error {
	ctx, span := d.tracer.Start(ctx, "assistant.add_message", trace.WithAttributes(
		attribute.String("assistant.thread_id", threadID),
	))
	defer span.End()

	if d.cfg.Verbose {
		d.logger.Debug(moduleName, "Submitting message", map[string]interface{}{"thread_id": threadID, "content": content})
	}

	if err := d.backend.AddMessage(ctx, threadID, llm.RoleUser, content); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "add message failed")
		return fmt.Errorf("add message: %w", err)
	}
	return nil
}

func (d *Driver) createRun(ctx context.Context, threadID string) (*llm.Run, error) {
	ctx, span := d.tracer.Start(ctx, "assistant.create_run", trace.WithAttributes(
		attribute.String("assistant.thread_id", threadID),
	))
	defer span.End()

	run, err := d.backend.CreateRun(ctx, threadID, d.cfg.AssistantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create run failed")
		return nil, fmt.Errorf("create run: %w", err)
	}
	span.SetAttributes(attribute.String("assistant.run_id", run.ID))

	d.logger.Info(moduleName, "Started run", map[string]interface{}{"thread_id": threadID, "run_id": run.ID, "status": run.Status})
	return run, nil
}

// latestAssistantText returns the first text block of the newest assistant message
func (d *Driver) latestAssistantText(ctx context.Context, threadID string) (string, error) {
	ctx, span := d.tracer.Start(ctx, "assistant.list_messages", trace.WithAttributes(
		attribute.String("assistant.thread_id", threadID),
	))
	defer span.End()

	messages, err := d.backend.ListMessages(ctx, threadID, d.cfg.MessageLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list messages failed")
		return "", fmt.Errorf("list messages: %w", err)
	}

	for _, msg := range messages {
		if msg.Role != llm.RoleAssistant {
			continue
		}
		for _, block := range msg.Content {
			if block.Type == "text" {
				return block.Text, nil
			}
		}
		return "", nil
	}
	return "", nil
}
