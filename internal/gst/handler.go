package gst

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/retailbooks/retailbooks/internal/period"
	"github.com/retailbooks/retailbooks/internal/platform/httpx"
)

// Enqueuer schedules background filing exports.
type Enqueuer interface {
	EnqueueFilingExport(ctx context.Context, spec period.Spec) (string, error)
}

// Handler exposes the filing report over HTTP.
type Handler struct {
	service  *Service
	enqueuer Enqueuer
	logger   *slog.Logger
	group    singleflight.Group
}

// NewHandler constructs the filing handler. The enqueuer may be nil when
// background exports are not wired.
func NewHandler(service *Service, enqueuer Enqueuer, logger *slog.Logger) *Handler {
	return &Handler{service: service, enqueuer: enqueuer, logger: logger}
}

// MountRoutes registers filing endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/filing", h.filing)
	r.Post("/filing/export", h.export)
}

// parsePeriodSpec reads period_type, year and month/quarter query params.
func parsePeriodSpec(r *http.Request) (period.Spec, error) {
	q := r.URL.Query()
	spec := period.Spec{PeriodType: period.Type(q.Get("period_type"))}

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return period.Spec{}, fmt.Errorf("year must be numeric")
	}
	spec.Year = year

	if raw := q.Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return period.Spec{}, fmt.Errorf("month must be 1-12")
		}
		month := time.Month(m)
		spec.Month = &month
	}
	if raw := q.Get("quarter"); raw != "" {
		quarter, err := strconv.Atoi(raw)
		if err != nil {
			return period.Spec{}, fmt.Errorf("quarter must be numeric")
		}
		spec.Quarter = &quarter
	}
	return spec, nil
}

// flightKey normalizes a period spec into a stable collapse key. Month and
// quarter are dereferenced to plain ints so two requests describing the
// same period always produce the same key regardless of pointer identity.
func flightKey(spec period.Spec) string {
	var month, quarter int
	if spec.Month != nil {
		month = int(*spec.Month)
	}
	if spec.Quarter != nil {
		quarter = *spec.Quarter
	}
	return fmt.Sprintf("%s:%d:%d:%d", spec.PeriodType, spec.Year, month, quarter)
}

func (h *Handler) filing(w http.ResponseWriter, r *http.Request) {
	spec, err := parsePeriodSpec(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}

	// Identical concurrent report requests collapse into one build.
	result, err, _ := h.group.Do(flightKey(spec), func() (interface{}, error) {
		return h.service.Filing(r.Context(), spec)
	})
	if err != nil {
		h.logger.Error("build filing", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Exports Disabled", "no export worker configured")
		return
	}
	spec, err := parsePeriodSpec(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	if _, err := period.Resolve(spec); err != nil {
		httpx.RespondError(w, err)
		return
	}

	jobID, err := h.enqueuer.EnqueueFilingExport(r.Context(), spec)
	if err != nil {
		h.logger.Error("enqueue filing export", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Enqueue Failed", "")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}
