package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-computes the current-period dashboard.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskOverdueScan reclassifies overdue receivables for reporting.
	TaskOverdueScan = "receivables:overdue_scan"
)

// DashboardWarmupPayload scopes a warmup run.
type DashboardWarmupPayload struct {
	PeriodTypes []string `json:"period_types,omitempty"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// OverdueScanPayload scopes an overdue scan run.
type OverdueScanPayload struct{}

// NewOverdueScanTask constructs an Asynq task.
func NewOverdueScanTask() (*asynq.Task, error) {
	data, err := json.Marshal(OverdueScanPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data), nil
}
