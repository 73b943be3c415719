package stock

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/retailbooks/retailbooks/internal/period"
	"github.com/retailbooks/retailbooks/internal/platform/httpx"
)

// Handler exposes stock reconciliation over HTTP.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the stock handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes registers stock endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.summary)
}

type summaryQuery struct {
	From string `validate:"required,datetime=2006-01-02"`
	To   string `validate:"required,datetime=2006-01-02"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	q := summaryQuery{From: r.URL.Query().Get("from"), To: r.URL.Query().Get("to")}
	if err := h.validate.Struct(q); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", err.Error())
		return
	}
	start, _ := time.Parse(time.DateOnly, q.From)
	end, _ := time.Parse(time.DateOnly, q.To)
	rng, err := period.Resolve(period.Spec{Start: &start, End: &end})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if raw := r.URL.Query().Get("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "product_id must be numeric")
			return
		}
		summary, err := h.service.ProductSummary(r.Context(), id, rng)
		if err != nil {
			h.logger.Error("stock summary", slog.Int64("product_id", id), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, []Summary{summary})
		return
	}

	summaries, err := h.service.AllSummaries(r.Context(), rng)
	if err != nil {
		h.logger.Error("stock summaries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summaries)
}
