package insights

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/retailbooks/retailbooks/internal/platform/httpx"
)

// Handler exposes customer insights over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the insights handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// MountRoutes registers insights endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers", h.customers)
}

func (h *Handler) customers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Customers(r.Context())
	if err != nil {
		h.logger.Error("customer insights failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
