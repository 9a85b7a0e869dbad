package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stockdesk/stockdesk/internal/jobs"
	"github.com/stockdesk/stockdesk/internal/masterdata/products"
)

const defaultLogLimit = 20

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// LowStockSource lists products at or below their reorder threshold.
type LowStockSource interface {
	LowStock(ctx context.Context) ([]products.Product, error)
}

// LowStockScanJob reports low stock products to the logs and the gauge.
type LowStockScanJob struct {
	Products LowStockSource
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(source LowStockSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Products: source, Logger: logger, Metrics: metrics}
}

// Handle processes stock:low_scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Products == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("low stock scan payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.LogLimit <= 0 {
		payload.LogLimit = defaultLogLimit
	}

	metrics := j.metrics()
	tracker := metrics.Track(TaskLowStockScan)
	defer func() { err = tracker.End(err) }()

	low, err := j.Products.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("low stock scan: %w", err)
	}
	metrics.SetLowStock(len(low))

	logger := j.logger()
	if len(low) == 0 {
		logger.Info("low stock scan complete", slog.Int("count", 0))
		return nil
	}
	names := make([]string, 0, min(len(low), payload.LogLimit))
	for _, p := range low[:min(len(low), payload.LogLimit)] {
		names = append(names, fmt.Sprintf("%s (%d/%d)", p.Name, p.Stock, p.Quantity))
	}
	logger.Warn("low stock products", slog.Int("count", len(low)), slog.Any("products", names))
	return nil
}

func (j *LowStockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}
