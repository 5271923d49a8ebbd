package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/platform/middleware"
	"gatehouse/internal/visit/models"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/httputil"
)

// Service defines the visit lifecycle operations the HTTP layer needs.
type Service interface {
	RequestVisit(ctx context.Context, d models.Details) (*models.VisitRequest, error)
	ScheduleVisit(ctx context.Context, d models.Details) (*models.VisitRequest, error)
	Approve(ctx context.Context, visitID id.VisitID) (*models.VisitRequest, error)
	Decline(ctx context.Context, visitID id.VisitID) (*models.VisitRequest, error)
	ValidateVisit(ctx context.Context, visitID id.VisitID) (bool, error)
	CheckinVisitor(ctx context.Context, visitID id.VisitID) (*models.VisitRequest, error)
	CheckoutVisitor(ctx context.Context, visitID id.VisitID) (*models.VisitRequest, error)
	ListByFlat(ctx context.Context, flatNo string) ([]*models.VisitRequest, error)
	PendingRequests(ctx context.Context, flatNo string) ([]*models.VisitRequest, error)
	TodayVisits(ctx context.Context, flatNo string) ([]*models.VisitRequest, error)
	PendingApprovals(ctx context.Context, flatNo string) ([]*models.VisitRequest, error)
	ScheduledVisits(ctx context.Context, flatNo string, date *id.Date) ([]*models.VisitRequest, error)
	TodayBoard(ctx context.Context) ([]*models.VisitRequest, error)
	VisitsOn(ctx context.Context, date id.Date) ([]*models.VisitRequest, error)
}

// Handler serves the guard and resident visit routes.
type Handler struct {
	visits Service
	logger *slog.Logger
}

// New creates a new visit Handler.
func New(visits Service, logger *slog.Logger) *Handler {
	return &Handler{visits: visits, logger: logger}
}

// Register mounts guard and resident visit routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Post("/guard/request-visit", h.HandleRequestVisit)
		r.Get("/guard/request-visit-status", h.HandleStatusBoard)
		r.Get("/guard/validate-visit", h.HandleValidateVisit)
		r.Post("/guard/visitor/{id}/checkin", h.HandleCheckinVisitor)

		r.Post("/resident/schedule-visit", h.HandleScheduleVisit)
		r.Post("/resident/approve-visit/{id}", h.HandleApprove)
		r.Post("/resident/decline-visit/{id}", h.HandleDecline)
		r.Post("/resident/visit/{id}/checkout", h.HandleCheckoutVisitor)
		r.Get("/resident/visitor-requests", h.HandlePendingRequests)
		r.Get("/resident/today-visits", h.HandleTodayVisits)
		r.Get("/resident/pending-approvals", h.HandlePendingApprovals)
		r.Get("/resident/scheduled-visits", h.HandleScheduledVisits)
	})
}

// RegisterAdmin mounts the read-only admin visit views on an already
// protected router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/visitors/on", h.HandleVisitsOn)
	r.Get("/active-visitors", h.HandleActiveVisitors)
	r.Get("/flat-visitor/{flat}", h.HandleFlatVisitors)
}

func (h *Handler) HandleRequestVisit(w http.ResponseWriter, r *http.Request) {
	h.handleCreate(w, r, h.visits.RequestVisit, "guard visit request")
}

func (h *Handler) HandleScheduleVisit(w http.ResponseWriter, r *http.Request) {
	h.handleCreate(w, r, h.visits.ScheduleVisit, "scheduled visit")
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request, create func(context.Context, models.Details) (*models.VisitRequest, error), what string) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var body VisitRequestBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.logger.WarnContext(ctx, "invalid "+what,
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	v, err := create(ctx, body.details())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create "+what)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, v)
}

// HandleStatusBoard lists today's requests for the gate.
func (h *Handler) HandleStatusBoard(w http.ResponseWriter, r *http.Request) {
	visits, err := h.visits.TodayBoard(r.Context())
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to load status board")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatusBoard(visits))
}

// HandleValidateVisit answers the gate terminal with a bare boolean.
func (h *Handler) HandleValidateVisit(w http.ResponseWriter, r *http.Request) {
	visitID, err := id.ParseVisitID(r.URL.Query().Get("visitorId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	valid, err := h.visits.ValidateVisit(r.Context(), visitID)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to validate visit")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, valid)
}

func (h *Handler) HandleCheckinVisitor(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.visits.CheckinVisitor, "check in visitor")
}

func (h *Handler) HandleCheckoutVisitor(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.visits.CheckoutVisitor, "check out visitor")
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.visits.Approve, "approve visit")
}

func (h *Handler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.visits.Decline, "decline visit")
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, id.VisitID) (*models.VisitRequest, error), what string) {
	visitID, err := id.ParseVisitID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := op(r.Context(), visitID)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to "+what)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) HandlePendingRequests(w http.ResponseWriter, r *http.Request) {
	h.handleFlatList(w, r, h.visits.PendingRequests)
}

func (h *Handler) HandleTodayVisits(w http.ResponseWriter, r *http.Request) {
	h.handleFlatList(w, r, h.visits.TodayVisits)
}

func (h *Handler) HandlePendingApprovals(w http.ResponseWriter, r *http.Request) {
	h.handleFlatList(w, r, h.visits.PendingApprovals)
}

func (h *Handler) HandleScheduledVisits(w http.ResponseWriter, r *http.Request) {
	flatNo, err := requireFlat(r.URL.Query().Get("flatNo"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var date *id.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := id.ParseDate(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		date = &d
	}
	visits, err := h.visits.ScheduledVisits(r.Context(), flatNo, date)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to list scheduled visits")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, visits)
}

func (h *Handler) handleFlatList(w http.ResponseWriter, r *http.Request, list func(context.Context, string) ([]*models.VisitRequest, error)) {
	flatNo, err := requireFlat(r.URL.Query().Get("flatNo"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	visits, err := list(r.Context(), flatNo)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to list visits")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, visits)
}

func (h *Handler) HandleVisitsOn(w http.ResponseWriter, r *http.Request) {
	date, err := id.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	visits, err := h.visits.VisitsOn(r.Context(), date)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to list visits")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, visits)
}

func (h *Handler) HandleActiveVisitors(w http.ResponseWriter, r *http.Request) {
	visits, err := h.visits.TodayBoard(r.Context())
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to list visits")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, visits)
}

func (h *Handler) HandleFlatVisitors(w http.ResponseWriter, r *http.Request) {
	flatNo, err := requireFlat(chi.URLParam(r, "flat"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	visits, err := h.visits.ListByFlat(r.Context(), flatNo)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to list visits")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, visits)
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

func requireFlat(raw string) (string, error) {
	flat := strings.TrimSpace(raw)
	if flat == "" {
		return "", dErrors.New(dErrors.CodeValidation, "flatNo is required")
	}
	return flat, nil
}
