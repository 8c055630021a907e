package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gestfac/gestfac/internal/analytics"
)

// DashboardWarmupJob pre-populates the dashboard cache for the current
// reporting periods so the first request after an invalidation stays fast.
type DashboardWarmupJob struct {
	Analytics *analytics.Service
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(analyticsSvc *analytics.Service, logger *slog.Logger) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Analytics: analyticsSvc,
		Logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	periodTypes := payload.PeriodTypes
	if len(periodTypes) == 0 {
		periodTypes = []string{string(analytics.PeriodMonthly), string(analytics.PeriodQuarterly)}
	}

	now := j.now()
	referenceMonth := now.Format("2006-01")
	logger := j.logger().With(slog.String("reference_month", referenceMonth))
	logger.Info("starting dashboard warmup")

	for _, pt := range periodTypes {
		warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		_, err := j.Analytics.GetDashboard(warmCtx, analytics.DashboardQuery{
			Period: analytics.PeriodSelection{
				Type:           analytics.PeriodType(pt),
				ReferenceMonth: referenceMonth,
			},
		})
		cancel()
		if err != nil {
			logger.Error("warm dashboard", slog.String("period_type", pt), slog.Any("error", err))
			return err
		}
	}

	logger.Info("completed dashboard warmup", slog.Int("periods", len(periodTypes)))
	return nil
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
