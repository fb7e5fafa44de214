// Package jobs runs catalogue maintenance on an asynq queue.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRepairStatus rewrites stored statuses outside the known set.
	TaskRepairStatus = "skus:repair_status"
)

// RepairStatusPayload carries scheduling metadata.
type RepairStatusPayload struct {
	RequestedAt time.Time `json:"requested_at"`
	Source      string    `json:"source,omitempty"`
}

// NewRepairStatusTask constructs an asynq task for the status repair.
func NewRepairStatusTask(payload RepairStatusPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRepairStatus, body,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
	), nil
}
