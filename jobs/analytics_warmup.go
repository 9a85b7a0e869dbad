package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stockdesk/stockdesk/internal/jobs"
)

// Warmer pre-populates cached analytics.
type Warmer interface {
	Warm(ctx context.Context) error
}

// AnalyticsWarmupJob refreshes the chart summaries cache.
type AnalyticsWarmupJob struct {
	Analytics Warmer
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(analytics Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{
		Analytics: analytics,
		Logger:    logger,
		Metrics:   metrics,
		clock:     time.Now,
	}
}

// Handle processes analytics:warmup tasks.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload AnalyticsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("analytics warmup payload: %v: %w", err, asynq.SkipRetry)
	}

	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskAnalyticsWarmup)
	defer func() { err = tracker.End(err) }()

	logger := slog.Default()
	if j.Logger != nil {
		logger = j.Logger
	}
	start := j.clock()
	if err := j.Analytics.Warm(ctx); err != nil {
		logger.Error("analytics warmup failed", slog.String("reason", payload.Reason), slog.Any("error", err))
		return err
	}
	logger.Info("analytics warmup complete",
		slog.String("reason", payload.Reason),
		slog.Duration("elapsed", j.clock().Sub(start)))
	return nil
}

// BumpSubscriber delivers analytics cache version bumps.
type BumpSubscriber interface {
	Subscribe(ctx context.Context, fn func(version int64)) error
}

// TaskEnqueuer submits tasks to the queue.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// WarmOnBump schedules a delayed warmup after each cache version bump.
// Bursts of sales collapse into one task through the uniqueness window.
func WarmOnBump(ctx context.Context, bumps BumpSubscriber, queue TaskEnqueuer, delay time.Duration, logger *slog.Logger) error {
	return bumps.Subscribe(ctx, func(version int64) {
		// The payload must not vary per bump or uniqueness would not hold.
		task, err := NewAnalyticsWarmupTask("sale recorded")
		if err != nil {
			logger.Error("build warmup task", slog.Any("error", err))
			return
		}
		_, err = queue.EnqueueContext(ctx, task,
			asynq.Queue(QueueDefault),
			asynq.ProcessIn(delay),
			asynq.Unique(delay+time.Minute),
			asynq.MaxRetry(1))
		switch {
		case errors.Is(err, asynq.ErrDuplicateTask):
		case err != nil:
			logger.Warn("enqueue warmup after bump", slog.Int64("version", version), slog.Any("error", err))
		default:
			logger.Debug("warmup scheduled", slog.Int64("version", version))
		}
	})
}
