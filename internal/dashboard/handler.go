package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/platform/middleware"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/httputil"
)

type Provider interface {
	ForFlat(ctx context.Context, flatNo string) (*Dashboard, error)
}

type Handler struct {
	dashboards Provider
	logger     *slog.Logger
}

func NewHandler(dashboards Provider, logger *slog.Logger) *Handler {
	return &Handler{dashboards: dashboards, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/resident/dashboard", h.HandleDashboard)
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := h.dashboards.ForFlat(ctx, r.URL.Query().Get("flatNo"))
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "failed to load dashboard",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}
