package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gatehouse/internal/complaint/models"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/audit"
	"gatehouse/pkg/platform/sentinel"
	"gatehouse/pkg/requestcontext"
)

// Store persists complaints. Execute must hold the row for validate and mutate.
type Store interface {
	Create(ctx context.Context, c *models.Complaint) error
	FindByID(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error)
	Execute(ctx context.Context, complaintID id.ComplaintID, validate func(*models.Complaint) error, mutate func(*models.Complaint)) (*models.Complaint, error)
	List(ctx context.Context, q models.Query) ([]*models.Complaint, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("gatehouse/internal/complaint"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// File records a new complaint as PENDING.
func (s *Service) File(ctx context.Context, d models.Details) (*models.Complaint, error) {
	ctx, span := s.tracer.Start(ctx, "complaint.File")
	defer span.End()

	c, err := models.NewComplaint(d, requestcontext.Now(ctx))
	if err != nil {
		return nil, asValidation(err)
	}
	if err := s.store.Create(ctx, c); err != nil {
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save complaint")
	}
	span.SetAttributes(attribute.Int64("complaint.id", int64(c.ID)))

	s.logger.InfoContext(ctx, "complaint filed",
		"request_id", requestcontext.RequestID(ctx),
		"complaint_id", c.ID,
		"flat_no", c.FlatNo,
		"priority", c.Priority,
	)
	s.emit(ctx, audit.EventComplaintFiled, c, "resident", "")
	return c, nil
}

func (s *Service) Get(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error) {
	c, err := s.store.FindByID(ctx, complaintID)
	if err != nil {
		return nil, wrapComplaintErr(err, "load")
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, q models.Query) ([]*models.Complaint, error) {
	out, err := s.store.List(ctx, q)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list complaints")
	}
	return out, nil
}

// Edit applies a resident's partial update while the complaint is still open.
func (s *Service) Edit(ctx context.Context, complaintID id.ComplaintID, e models.Edit) (*models.Complaint, error) {
	ctx, span := s.tracer.Start(ctx, "complaint.Edit", trace.WithAttributes(
		attribute.Int64("complaint.id", int64(complaintID)),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	c, err := s.store.Execute(ctx, complaintID,
		func(c *models.Complaint) error { return c.CanEdit(e) },
		func(c *models.Complaint) { c.ApplyEdit(e, now) },
	)
	if err != nil {
		recordSpanError(span, err)
		return nil, wrapComplaintErr(err, "update")
	}
	s.emit(ctx, audit.EventComplaintUpdated, c, "resident", "")
	return c, nil
}

// Assign hands the complaint to staff. A PENDING complaint becomes OPEN.
func (s *Service) Assign(ctx context.Context, complaintID id.ComplaintID, assignee string) (*models.Complaint, error) {
	ctx, span := s.tracer.Start(ctx, "complaint.Assign", trace.WithAttributes(
		attribute.Int64("complaint.id", int64(complaintID)),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	c, err := s.store.Execute(ctx, complaintID,
		func(c *models.Complaint) error { return c.CanAssign(assignee) },
		func(c *models.Complaint) { c.ApplyAssign(assignee, now) },
	)
	if err != nil {
		recordSpanError(span, err)
		return nil, wrapComplaintErr(err, "assign")
	}
	s.logger.InfoContext(ctx, "complaint assigned",
		"request_id", requestcontext.RequestID(ctx),
		"complaint_id", c.ID,
		"assigned_to", c.AssignedTo,
		"status", c.Status,
	)
	s.emit(ctx, audit.EventComplaintAssigned, c, "admin", c.AssignedTo)
	return c, nil
}

// SetStatus moves an assigned complaint along, or rejects a pending one.
func (s *Service) SetStatus(ctx context.Context, complaintID id.ComplaintID, status models.Status) (*models.Complaint, error) {
	ctx, span := s.tracer.Start(ctx, "complaint.SetStatus", trace.WithAttributes(
		attribute.Int64("complaint.id", int64(complaintID)),
		attribute.String("complaint.status", string(status)),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	c, err := s.store.Execute(ctx, complaintID,
		func(c *models.Complaint) error { return c.CanMoveTo(status) },
		func(c *models.Complaint) { c.ApplyStatus(status, now) },
	)
	if err != nil {
		recordSpanError(span, err)
		return nil, wrapComplaintErr(err, "update")
	}
	s.logger.InfoContext(ctx, "complaint status changed",
		"request_id", requestcontext.RequestID(ctx),
		"complaint_id", c.ID,
		"status", c.Status,
	)
	s.emit(ctx, audit.EventComplaintStatusChanged, c, "admin", string(c.Status))
	return c, nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, c *models.Complaint, actor, decision string) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:   string(event),
		Subject:  "complaint:" + c.ID.String(),
		FlatNo:   c.FlatNo,
		Decision: decision,
		ActorID:  actor,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(event),
			"error", err.Error(),
		)
	}
}

func asValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}

func wrapComplaintErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "complaint not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action+" complaint")
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
