package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/platform/middleware"
	"gatehouse/internal/qrpass/models"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/httputil"
)

// Service defines the QR pass operations the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, d models.Details) (*models.Issued, error)
	Validate(ctx context.Context, code string) (*models.Validation, error)
	CheckIn(ctx context.Context, passID id.PassID) (*models.Pass, error)
	CheckOut(ctx context.Context, passID id.PassID) (*models.Pass, error)
	Get(ctx context.Context, passID id.PassID) (*models.Pass, error)
	History(ctx context.Context, q models.Query) ([]*models.Pass, error)
}

type Handler struct {
	passes Service
	logger *slog.Logger
}

func New(passes Service, logger *slog.Logger) *Handler {
	return &Handler{passes: passes, logger: logger}
}

// Register mounts the /qr-visitor routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/qr-visitor", func(r chi.Router) {
		r.Get("/{id}/image", h.HandleImage)

		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)

			r.Post("/create", h.HandleCreate)
			r.Post("/validate", h.HandleValidate)
			r.Post("/checkin/{id}", h.HandleCheckIn)
			r.Post("/checkout/{id}", h.HandleCheckOut)
			r.Get("/history", h.HandleHistory)
			r.Get("/history/{flatNo}", h.HandleHistory)
			r.Get("/history/date/{date}", h.HandleHistory)
			r.Get("/history/flat/{flatNo}/date/{date}", h.HandleHistory)
		})
	})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body CreatePassBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.logger.WarnContext(ctx, "invalid qr pass request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	issued, err := h.passes.Create(ctx, body.details())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to issue qr pass")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, issued)
}

// HandleValidate answers a gate scan. Denials are 200 with valid=false.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var body ScanBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.passes.Validate(r.Context(), body.QRCode)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to validate qr pass")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.passes.CheckIn, "check in qr visitor")
}

func (h *Handler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.passes.CheckOut, "check out qr visitor")
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, id.PassID) (*models.Pass, error), what string) {
	passID, err := id.ParsePassID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := op(r.Context(), passID)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to "+what)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// HandleHistory serves all four history routes; absent path params do not
// filter.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	q := models.Query{FlatNo: strings.TrimSpace(chi.URLParam(r, "flatNo"))}
	if raw := chi.URLParam(r, "date"); raw != "" {
		d, err := id.ParseDate(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		q.Date = &d
	}
	passes, err := h.passes.History(r.Context(), q)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to list qr passes")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, passes)
}

// HandleImage renders the pass as a printable QR code.
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	passID, err := id.ParsePassID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.passes.Get(ctx, passID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load qr pass")
		return
	}

	var buf bytes.Buffer
	if err := renderPass(&buf, p); err != nil {
		h.writeServiceError(ctx, w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render qr code"), "failed to render qr code")
		return
	}
	w.Header().Set("Content-Type", imageContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
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
