package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/retailbooks/retailbooks/internal/period"
	"github.com/retailbooks/retailbooks/internal/platform/httpx"
	"github.com/retailbooks/retailbooks/internal/store"
)

// Handler exposes ledger statements over HTTP.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the ledger handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes registers ledger endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers/{id}", h.customerStatement)
	r.Get("/suppliers/{id}", h.supplierStatement)
	r.Get("/cashbook", h.cashBook)
	r.Get("/daybook", h.daybook)
}

type rangeQuery struct {
	From string `validate:"required,datetime=2006-01-02"`
	To   string `validate:"required,datetime=2006-01-02"`
}

func (h *Handler) parseRange(r *http.Request) (period.Range, error) {
	q := rangeQuery{From: r.URL.Query().Get("from"), To: r.URL.Query().Get("to")}
	if err := h.validate.Struct(q); err != nil {
		return period.Range{}, err
	}
	start, _ := time.Parse(time.DateOnly, q.From)
	end, _ := time.Parse(time.DateOnly, q.To)
	return period.Resolve(period.Spec{Start: &start, End: &end})
}

func (h *Handler) customerStatement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "customer id must be numeric")
		return
	}
	rng, err := h.parseRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", err.Error())
		return
	}
	stmt, err := h.service.CustomerStatement(r.Context(), id, rng)
	if err != nil {
		h.logger.Error("customer statement", slog.Int64("customer_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stmt)
}

func (h *Handler) supplierStatement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "supplier id must be numeric")
		return
	}
	rng, err := h.parseRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", err.Error())
		return
	}
	stmt, err := h.service.SupplierStatement(r.Context(), id, rng)
	if err != nil {
		h.logger.Error("supplier statement", slog.Int64("supplier_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stmt)
}

func (h *Handler) cashBook(w http.ResponseWriter, r *http.Request) {
	var bucket store.ModeBucket
	switch r.URL.Query().Get("mode") {
	case "cash", "":
		bucket = store.ModeCash
	case "bank":
		bucket = store.ModeBank
	default:
		httpx.Problem(w, http.StatusBadRequest, "Invalid Mode", "mode must be cash or bank")
		return
	}
	rng, err := h.parseRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", err.Error())
		return
	}
	stmt, err := h.service.CashBook(r.Context(), bucket, rng)
	if err != nil {
		h.logger.Error("cash book", slog.String("bucket", string(bucket)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stmt)
}

func (h *Handler) daybook(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", err.Error())
		return
	}
	rows, err := h.service.Daybook(r.Context(), rng)
	if err != nil {
		h.logger.Error("daybook", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows})
}
