// Package jobs hosts background task definitions and the Asynq worker.
package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskHistorySnapshot is the task type for nightly balance snapshots.
	TaskHistorySnapshot = "history:snapshot"
)

const snapshotDateLayout = "2006-01-02"

// HistorySnapshotPayload carries the snapshot date. An empty date means today.
type HistorySnapshotPayload struct {
	Date string `json:"date"`
}

// NewHistorySnapshotTask constructs an Asynq task.
func NewHistorySnapshotTask(payload HistorySnapshotPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHistorySnapshot, data), nil
}

// SnapshotRunner records balances for every account at a given date.
type SnapshotRunner interface {
	Snapshot(ctx context.Context, date time.Time) (int, error)
}

// HandleHistorySnapshotTask returns an Asynq handler bound to the runner.
func HandleHistorySnapshotTask(runner SnapshotRunner) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload HistorySnapshotPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		var date time.Time
		if payload.Date != "" {
			parsed, err := time.Parse(snapshotDateLayout, payload.Date)
			if err != nil {
				return asynq.SkipRetry
			}
			date = parsed
		}
		_, err := runner.Snapshot(ctx, date)
		return err
	}
}
