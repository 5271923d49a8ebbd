package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/package/models"
	"gatehouse/internal/platform/middleware"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/httputil"
)

// Service defines the package operations the HTTP layer needs.
type Service interface {
	Register(ctx context.Context, d models.Details) (*models.Registered, error)
	Get(ctx context.Context, packageID id.PackageID) (*models.Package, error)
	List(ctx context.Context, q models.Query) ([]*models.Package, error)
	VerifyOTP(ctx context.Context, packageID id.PackageID, otp string) (*models.Package, error)
	UpdateStatus(ctx context.Context, packageID id.PackageID, status models.Status) (*models.Package, error)
	Update(ctx context.Context, packageID id.PackageID, d models.Details) (*models.Package, error)
}

type Handler struct {
	packages Service
	logger   *slog.Logger
}

func New(packages Service, logger *slog.Logger) *Handler {
	return &Handler{packages: packages, logger: logger}
}

// Register mounts the /packages routes shared by residents and the gate.
func (h *Handler) Register(r chi.Router) {
	r.Route("/packages", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Post("/", h.HandleRegister)
		r.Get("/", h.HandleList)
		r.Get("/status/{status}", h.HandleList)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Put("/{id}/details", h.HandleUpdate)
		r.Put("/{id}/status", h.HandleUpdateStatus)
		r.Post("/{id}/verify-otp", h.HandleVerifyOTP)
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body PackageBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.logger.WarnContext(ctx, "invalid package request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	reg, err := h.packages.Register(ctx, body.details())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to register package")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, reg)
}

// HandleList serves ?flatNo=&status=&date= and /status/{status}?date=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := models.Query{FlatNo: strings.TrimSpace(r.URL.Query().Get("flatNo"))}

	rawStatus := chi.URLParam(r, "status")
	if rawStatus == "" {
		rawStatus = r.URL.Query().Get("status")
	}
	if strings.TrimSpace(rawStatus) != "" {
		status, err := models.ParseStatus(rawStatus)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		q.Status = status
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := id.ParseDate(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		q.Date = &d
	}

	out, err := h.packages.List(r.Context(), q)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to list packages")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	packageID, err := id.ParsePackageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.packages.Get(r.Context(), packageID)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to load package")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	packageID, err := id.ParsePackageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var body PackageBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.packages.Update(r.Context(), packageID, body.details())
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to update package")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	packageID, err := id.ParsePackageID(chi.URLParam(r, "id"))
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
	p, err := h.packages.UpdateStatus(r.Context(), packageID, status)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to set package status")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// HandleVerifyOTP is the gate's hand-over call.
func (h *Handler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	packageID, err := id.ParsePackageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var body VerifyOTPBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.packages.VerifyOTP(r.Context(), packageID, body.OTP)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to verify package OTP")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.Delivered{
		Message: "OTP verified, package marked as delivered",
		Package: p,
	})
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
