package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/complaint/models"
	"gatehouse/internal/platform/middleware"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/httputil"
)

// Service defines the complaint operations the HTTP layer needs.
type Service interface {
	File(ctx context.Context, d models.Details) (*models.Complaint, error)
	Get(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error)
	List(ctx context.Context, q models.Query) ([]*models.Complaint, error)
	Edit(ctx context.Context, complaintID id.ComplaintID, e models.Edit) (*models.Complaint, error)
	Assign(ctx context.Context, complaintID id.ComplaintID, assignee string) (*models.Complaint, error)
	SetStatus(ctx context.Context, complaintID id.ComplaintID, status models.Status) (*models.Complaint, error)
}

type Handler struct {
	complaints Service
	logger     *slog.Logger
}

func New(complaints Service, logger *slog.Logger) *Handler {
	return &Handler{complaints: complaints, logger: logger}
}

// Register mounts the resident complaint routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Get("/resident/complaints", h.HandleList)
		r.Post("/resident/complaints", h.HandleFile)
		r.Get("/resident/complaints/{id}", h.HandleGet)
		r.Put("/resident/complaints/{id}", h.HandleEdit)
	})
}

// RegisterAdmin mounts triage routes on an already protected router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/complaints", h.HandleList)
	r.Get("/complaints/{id}", h.HandleGet)
	r.Put("/complaints/{id}/assign", h.HandleAssign)
	r.Put("/complaints/{id}/status", h.HandleSetStatus)
}

func (h *Handler) HandleFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body FileBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.logger.WarnContext(ctx, "invalid complaint request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	d, err := body.details()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.complaints.File(ctx, d)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to file complaint")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

// HandleList serves ?flatNo=&status=&priority=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := models.Query{FlatNo: strings.TrimSpace(params.Get("flatNo"))}
	if raw := strings.TrimSpace(params.Get("status")); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		q.Status = status
	}
	if raw := strings.TrimSpace(params.Get("priority")); raw != "" {
		priority, err := models.ParsePriority(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		q.Priority = priority
	}

	out, err := h.complaints.List(r.Context(), q)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to list complaints")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	complaintID, err := id.ParseComplaintID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.complaints.Get(r.Context(), complaintID)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to load complaint")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	complaintID, err := id.ParseComplaintID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var body EditBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	e, err := body.edit()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.complaints.Edit(r.Context(), complaintID, e)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to update complaint")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	complaintID, err := id.ParseComplaintID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var body AssignBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.complaints.Assign(r.Context(), complaintID, body.AssignedTo)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to assign complaint")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	complaintID, err := id.ParseComplaintID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var body StatusBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	status, err := models.ParseStatus(body.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.complaints.SetStatus(r.Context(), complaintID, status)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to change complaint status")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
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
