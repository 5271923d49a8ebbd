package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/directory/models"
	"gatehouse/internal/platform/middleware"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/httputil"
)

// Service defines the directory operations the admin console needs.
type Service interface {
	AddResident(ctx context.Context, f models.ResidentFields) (*models.Resident, error)
	GetResident(ctx context.Context, residentID id.ResidentID) (*models.Resident, error)
	ListResidents(ctx context.Context, search string) ([]*models.Resident, error)
	UpdateResident(ctx context.Context, residentID id.ResidentID, f models.ResidentFields) (*models.Resident, error)
	AddGuard(ctx context.Context, f models.GuardFields) (*models.Guard, error)
	GetGuard(ctx context.Context, guardID id.GuardID) (*models.Guard, error)
	ListGuards(ctx context.Context, search string) ([]*models.Guard, error)
	UpdateGuard(ctx context.Context, guardID id.GuardID, f models.GuardFields) (*models.Guard, error)
}

type Handler struct {
	directory Service
	logger    *slog.Logger
}

func New(directory Service, logger *slog.Logger) *Handler {
	return &Handler{directory: directory, logger: logger}
}

// RegisterAdmin mounts resident and guard management on an already protected
// router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Post("/add-resident", h.HandleAddResident)
		r.Get("/get-residents", h.HandleListResidents)
		r.Get("/search-residents", h.HandleListResidents)
		r.Get("/resident/{id}", h.HandleGetResident)
		r.Put("/update-resident/{id}", h.HandleUpdateResident)

		r.Post("/add-guard", h.HandleAddGuard)
		r.Get("/get-guards", h.HandleListGuards)
		r.Get("/search-guards", h.HandleListGuards)
		r.Get("/guard/{id}", h.HandleGetGuard)
		r.Put("/update-guard/{id}", h.HandleUpdateGuard)
	})
}

func (h *Handler) HandleAddResident(w http.ResponseWriter, r *http.Request) {
	var body ResidentBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.directory.AddResident(r.Context(), body.fields())
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to add resident")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

// HandleListResidents serves both the plain list and ?search=.
func (h *Handler) HandleListResidents(w http.ResponseWriter, r *http.Request) {
	out, err := h.directory.ListResidents(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to list residents")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGetResident(w http.ResponseWriter, r *http.Request) {
	residentID, err := id.ParseResidentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.directory.GetResident(r.Context(), residentID)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to load resident")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleUpdateResident(w http.ResponseWriter, r *http.Request) {
	residentID, err := id.ParseResidentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var body ResidentBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.directory.UpdateResident(r.Context(), residentID, body.fields())
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to update resident")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleAddGuard(w http.ResponseWriter, r *http.Request) {
	var body GuardBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	g, err := h.directory.AddGuard(r.Context(), body.fields())
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to add guard")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, g)
}

func (h *Handler) HandleListGuards(w http.ResponseWriter, r *http.Request) {
	out, err := h.directory.ListGuards(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to list guards")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGetGuard(w http.ResponseWriter, r *http.Request) {
	guardID, err := id.ParseGuardID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	g, err := h.directory.GetGuard(r.Context(), guardID)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to load guard")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) HandleUpdateGuard(w http.ResponseWriter, r *http.Request) {
	guardID, err := id.ParseGuardID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var body GuardBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	g, err := h.directory.UpdateGuard(r.Context(), guardID, body.fields())
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to update guard")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
