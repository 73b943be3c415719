package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hibiken/asynq"

	"github.com/retailbooks/retailbooks/internal/gst"
	"github.com/retailbooks/retailbooks/internal/gst/export"
	jobmetrics "github.com/retailbooks/retailbooks/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// FilingExportJob renders a requested filing period to an xlsx workbook in
// the export directory.
type FilingExportJob struct {
	GST       *gst.Service
	ExportDir string
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewFilingExportJob wires dependencies for the export handler.
func NewFilingExportJob(gstSvc *gst.Service, exportDir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *FilingExportJob {
	return &FilingExportJob{GST: gstSvc, ExportDir: exportDir, Logger: logger, Metrics: metrics}
}

// Handle processes filing export tasks.
func (j *FilingExportJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.GST == nil {
		return errors.New("filing export: handler not configured")
	}
	var payload FilingExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.JobID == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskFilingExport)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("job_id", payload.JobID))

	filing, err := j.GST.Filing(ctx, payload.Spec())
	if err != nil {
		resultErr = err
		logger.Error("build filing for export", slog.Any("error", err))
		return resultErr
	}

	path := j.FilePath(payload.JobID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		resultErr = err
		return resultErr
	}
	file, err := os.Create(path)
	if err != nil {
		resultErr = err
		return resultErr
	}
	defer file.Close()

	if err := export.WriteFilingXLSX(file, filing); err != nil {
		resultErr = err
		logger.Error("write filing workbook", slog.Any("error", err))
		return resultErr
	}

	j.metrics().AddExport()
	logger.Info("filing export written", slog.String("path", path))
	return resultErr
}

// FilePath returns the workbook location for a given job id.
func (j *FilingExportJob) FilePath(jobID string) string {
	return filepath.Join(j.ExportDir, fmt.Sprintf("filing-%s.xlsx", jobID))
}

func (j *FilingExportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskFilingExport))
	}
	return slog.Default().With(slog.String("job", TaskFilingExport))
}

func (j *FilingExportJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
