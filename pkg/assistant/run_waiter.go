package assistant

import (
	"context"
	"fmt"
	"time"

	"onboarding-assistant-be/pkg/llm"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const pollLogEvery = 5

// waitForRun polls the run until it leaves queued/in_progress or the attempt budget is
// spent. A spent budget yields a run with status RunStatusTimeout and no further calls.
func (d *Driver) waitForRun(ctx context.Context, threadID string, run *llm.Run) (*llm.Run, error) {
	ctx, span := d.tracer.Start(ctx, "assistant.wait_run", trace.WithAttributes(
		attribute.String("assistant.thread_id", threadID),
		attribute.String("assistant.run_id", run.ID),
	))
	defer span.End()

	current := run
	attempts := 0
	for current.IsPending() {
		if attempts >= d.cfg.MaxPollAttempts {
			d.logger.Warn(moduleName, "Run did not finish within poll budget", map[string]interface{}{
				"thread_id": threadID,
				"run_id":    run.ID,
				"attempts":  attempts,
				"status":    current.Status,
			})
			current = &llm.Run{ID: run.ID, ThreadID: threadID, Status: RunStatusTimeout}
			break
		}

		if err := pause(ctx, d.cfg.PollInterval); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "wait interrupted")
			return nil, fmt.Errorf("wait for run %s: %w", run.ID, err)
		}
		attempts++

		next, err := d.backend.GetRun(ctx, threadID, run.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "get run failed")
			return nil, fmt.Errorf("get run %s: %w", run.ID, err)
		}
		current = next

		if attempts%pollLogEvery == 0 {
			d.logger.Info(moduleName, "Waiting for run", map[string]interface{}{
				"thread_id": threadID,
				"run_id":    run.ID,
				"attempt":   attempts,
				"status":    current.Status,
			})
		}
	}

	span.SetAttributes(
		attribute.String("assistant.run_status", current.Status),
		attribute.Int("assistant.poll_attempts", attempts),
	)
	return current, nil
}

// classifyRun maps a settled, non-completed run to the reply shown to the user
func (d *Driver) classifyRun(run *llm.Run) string {
	details := map[string]interface{}{
		"thread_id": run.ThreadID,
		"run_id":    run.ID,
		"status":    run.Status,
	}
	if run.LastError != nil {
		details["error_code"] = run.LastError.Code
		details["error_message"] = run.LastError.Message
	}

	switch run.Status {
	case llm.RunStatusFailed:
		d.logger.Error(moduleName, "Run failed", details)
		if run.LastError != nil && run.LastError.Code == llm.ErrorCodeRateLimitExceeded {
			return MessageQuota
		}
		return MessageRunFailed
	case RunStatusTimeout:
		return MessageTimeout
	default:
		d.logger.Warn(moduleName, "Run ended without completing", details)
		return MessageRetryLater
	}
}

func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
