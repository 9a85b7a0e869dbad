package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan counts and logs products below their reorder threshold.
	TaskLowStockScan = "stock:low_scan"
	// TaskAnalyticsWarmup pre-populates the chart summaries cache.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// LowStockScanPayload configures a low stock scan.
type LowStockScanPayload struct {
	// LogLimit caps how many products are named in the log line.
	LogLimit int `json:"log_limit"`
}

// AnalyticsWarmupPayload configures a warmup run.
type AnalyticsWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewLowStockScanTask constructs the stock:low_scan task.
func NewLowStockScanTask(logLimit int) (*asynq.Task, error) {
	data, err := json.Marshal(LowStockScanPayload{LogLimit: logLimit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// NewAnalyticsWarmupTask constructs the analytics:warmup task.
func NewAnalyticsWarmupTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(AnalyticsWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data), nil
}

// NewTask builds a task by type name with its default payload.
func NewTask(name string) (*asynq.Task, error) {
	switch name {
	case TaskLowStockScan:
		return NewLowStockScanTask(defaultLogLimit)
	case TaskAnalyticsWarmup:
		return NewAnalyticsWarmupTask("manual")
	default:
		return nil, fmt.Errorf("jobs: unsupported task %q", name)
	}
}
