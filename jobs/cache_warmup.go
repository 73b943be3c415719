package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/retailbooks/retailbooks/internal/gst"
	jobmetrics "github.com/retailbooks/retailbooks/internal/jobs"
	"github.com/retailbooks/retailbooks/internal/period"
	"github.com/retailbooks/retailbooks/internal/shared"
)

// CacheWarmupJob precomputes the current month's filing so the first
// interactive request of the day hits a warm cache.
type CacheWarmupJob struct {
	GST     *gst.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewCacheWarmupJob wires dependencies for the warmup handler.
func NewCacheWarmupJob(gstSvc *gst.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheWarmupJob {
	return &CacheWarmupJob{
		GST:     gstSvc,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes cache warmup tasks.
func (j *CacheWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.GST == nil {
		return errors.New("cache warmup: handler not configured")
	}

	tracker := j.metrics().Track(TaskCacheWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := j.now()
	month := now.Month()
	spec := period.Spec{PeriodType: period.TypeMonth, Year: now.Year(), Month: &month}

	started := time.Now()
	if _, err := j.GST.Filing(ctx, spec); err != nil {
		// A shop that has not filled in its registration yet is not a job
		// failure; everything else is.
		if errors.Is(err, shared.ErrShopUnconfigured) {
			j.logger().Info("warmup skipped, shop not configured")
			return resultErr
		}
		resultErr = err
		j.logger().Error("warm filing cache", slog.Any("error", err))
		return resultErr
	}

	j.logger().Info("filing cache warmed",
		slog.Int("year", now.Year()),
		slog.Int("month", int(month)),
		slog.Duration("took", time.Since(started)))
	return resultErr
}

func (j *CacheWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCacheWarmup))
	}
	return slog.Default().With(slog.String("job", TaskCacheWarmup))
}

func (j *CacheWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *CacheWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
