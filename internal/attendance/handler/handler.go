package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/attendance/models"
	"gatehouse/internal/platform/middleware"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/httputil"
)

// Service defines the attendance operations the HTTP layer needs.
type Service interface {
	CheckIn(ctx context.Context, guardID id.GuardID) (*models.Record, error)
	CheckOut(ctx context.Context, guardID id.GuardID) (*models.Record, error)
	ByDate(ctx context.Context, day id.Date) ([]*models.Record, error)
	OnDuty(ctx context.Context, day id.Date) ([]*models.OnDuty, error)
}

type Handler struct {
	attendance Service
	logger     *slog.Logger
}

func New(attendance Service, logger *slog.Logger) *Handler {
	return &Handler{attendance: attendance, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/guard/checkin/{guardId}", h.HandleCheckIn)
	r.Post("/guard/checkout/{guardId}", h.HandleCheckOut)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/guard-attendance", h.HandleByDate)
	r.Get("/guard/on", h.onDuty("start"))
	r.Get("/guards-by-date", h.onDuty("date"))
}

func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.handlePunch(w, r, h.attendance.CheckIn, "check in guard")
}

func (h *Handler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	h.handlePunch(w, r, h.attendance.CheckOut, "check out guard")
}

func (h *Handler) handlePunch(w http.ResponseWriter, r *http.Request, op func(context.Context, id.GuardID) (*models.Record, error), what string) {
	guardID, err := id.ParseGuardID(chi.URLParam(r, "guardId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := op(r.Context(), guardID)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(r.Context(), "failed to "+what,
				"request_id", middleware.GetRequestID(r.Context()),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleByDate serves ?date=YYYY-MM-DD.
func (h *Handler) HandleByDate(w http.ResponseWriter, r *http.Request) {
	day, err := id.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rows, err := h.attendance.ByDate(r.Context(), day)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

// onDuty serves the guards on duty for the day named by the param query
// parameter.
func (h *Handler) onDuty(param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := id.ParseDate(r.URL.Query().Get(param))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		rows, err := h.attendance.OnDuty(r.Context(), day)
		if err != nil {
			if dErrors.CodeOf(err) == dErrors.CodeInternal {
				h.logger.ErrorContext(r.Context(), "failed to list guards on duty",
					"request_id", middleware.GetRequestID(r.Context()),
					"error", err.Error(),
				)
			}
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, rows)
	}
}
