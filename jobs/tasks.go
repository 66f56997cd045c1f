package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueScan flags open installments whose due date has passed.
	TaskOverdueScan = "installments:overdue-scan"
	// TaskPaytermsWarmup preloads the payment-condition cache.
	TaskPaytermsWarmup = "payterms:warmup"
)

// OverdueScanPayload carries scheduling metadata for the overdue scan.
type OverdueScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewOverdueScanTask constructs an Asynq task for the overdue installment scan.
func NewOverdueScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(OverdueScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, body, asynq.Queue(QueueDefault)), nil
}

// PaytermsWarmupPayload carries scheduling metadata for the cache warmup.
type PaytermsWarmupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewPaytermsWarmupTask constructs an Asynq task for the condition cache warmup.
func NewPaytermsWarmupTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(PaytermsWarmupPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaytermsWarmup, body, asynq.Queue(QueueDefault)), nil
}
