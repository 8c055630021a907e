package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gestfac/gestfac/internal/receivables"
)

// CacheBumper invalidates dashboard caches.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// OverdueScanJob counts effectively overdue receivables and bumps the
// dashboard cache so aging charts pick up reclassifications that happen
// purely through the passage of time.
type OverdueScanJob struct {
	Receivables *receivables.Service
	Cache       CacheBumper
	Logger      *slog.Logger
	clock       func() time.Time
}

// NewOverdueScanJob wires dependencies for the overdue scan handler.
func NewOverdueScanJob(svc *receivables.Service, cache CacheBumper, logger *slog.Logger) *OverdueScanJob {
	return &OverdueScanJob{
		Receivables: svc,
		Cache:       cache,
		Logger:      logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes overdue scan tasks.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Receivables == nil {
		return errors.New("overdue scan: handler not configured")
	}

	asOf := j.clock()
	buckets, totalOverdue, err := j.Receivables.Aging(ctx, asOf)
	if err != nil {
		j.logger().Error("overdue scan aging", slog.Any("error", err))
		return err
	}
	overdueCount := 0
	for _, b := range buckets {
		overdueCount += b.Count
	}

	if j.Cache != nil {
		if err := j.Cache.Bump(ctx); err != nil {
			j.logger().Warn("overdue scan cache bump", slog.Any("error", err))
		}
	}

	j.logger().Info("overdue scan completed",
		slog.Int("overdue_records", overdueCount),
		slog.Float64("total_overdue", totalOverdue))
	return nil
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
