// Package jobs wires background processing for the reporting engine: filing
// exports requested over HTTP and scheduled cache warmups, both running on
// an Asynq queue.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/retailbooks/retailbooks/internal/period"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskFilingExport renders a GST filing to a spreadsheet on disk.
	TaskFilingExport = "gst:filing_export"
	// TaskCacheWarmup precomputes the current period filing into the cache.
	TaskCacheWarmup = "gst:cache_warmup"
)

// FilingExportPayload carries the requested period and the job id the
// caller can use to locate the produced file.
type FilingExportPayload struct {
	JobID      string `json:"job_id"`
	PeriodType string `json:"period_type"`
	Year       int    `json:"year"`
	Month      int    `json:"month,omitempty"`
	Quarter    int    `json:"quarter,omitempty"`
}

// NewFilingExportPayload flattens a period spec into the wire payload.
func NewFilingExportPayload(jobID string, spec period.Spec) FilingExportPayload {
	p := FilingExportPayload{JobID: jobID, PeriodType: string(spec.PeriodType), Year: spec.Year}
	if spec.Month != nil {
		p.Month = int(*spec.Month)
	}
	if spec.Quarter != nil {
		p.Quarter = *spec.Quarter
	}
	return p
}

// Spec reconstructs the period spec the payload encodes.
func (p FilingExportPayload) Spec() period.Spec {
	spec := period.Spec{PeriodType: period.Type(p.PeriodType), Year: p.Year}
	if p.Month != 0 {
		month := time.Month(p.Month)
		spec.Month = &month
	}
	if p.Quarter != 0 {
		quarter := p.Quarter
		spec.Quarter = &quarter
	}
	return spec
}

// NewFilingExportTask constructs an Asynq task for one export request.
func NewFilingExportTask(payload FilingExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFilingExport, data), nil
}

// NewCacheWarmupTask constructs the scheduled warmup task. The payload is
// empty; the handler always warms the current month.
func NewCacheWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskCacheWarmup, nil)
}
