package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeSessionCleanup  = "session:cleanup"
	TaskTypeChallengeRotate = "challenge:rotate"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// SessionCleanupPayload bounds which stale activity gets swept.
type SessionCleanupPayload struct {
	OlderThan time.Duration `json:"older_than"`
}

// ChallengeRotatePayload carries the rotation date so retries stay stable.
type ChallengeRotatePayload struct {
	Date string `json:"date"`
}

// NewSessionCleanupTask builds a task that sweeps stale in-flight activity.
func NewSessionCleanupTask(olderThan time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(SessionCleanupPayload{OlderThan: olderThan})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeSessionCleanup, payload, asynq.Queue(QueueLow)), nil
}

// NewChallengeRotateTask builds a task that publishes the challenge of the
// day. A zero date means "the day the task runs", which is what the scheduler
// wants; a concrete date is for manual backfills.
func NewChallengeRotateTask(date time.Time) (*asynq.Task, error) {
	var day string
	if !date.IsZero() {
		day = date.Format("2006-01-02")
	}

	payload, err := json.Marshal(ChallengeRotatePayload{Date: day})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeChallengeRotate, payload, asynq.Queue(QueueDefault)), nil
}
