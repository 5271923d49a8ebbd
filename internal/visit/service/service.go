package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gatehouse/internal/visit/metrics"
	"gatehouse/internal/visit/models"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/audit"
	"gatehouse/pkg/platform/sentinel"
	"gatehouse/pkg/requestcontext"
)

// Store persists visitor requests. Execute must hold a row lock (mutex or
// FOR UPDATE) across validate and mutate.
type Store interface {
	Create(ctx context.Context, v *models.VisitRequest) error
	FindByID(ctx context.Context, visitID id.VisitID) (*models.VisitRequest, error)
	Execute(ctx context.Context, visitID id.VisitID, validate func(*models.VisitRequest) error, mutate func(*models.VisitRequest)) (*models.VisitRequest, error)
	List(ctx context.Context, q models.Query) ([]*models.VisitRequest, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the visitor request state machine.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	location       *time.Location
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLocation sets the zone whose calendar day counts as "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   slog.Default(),
		location: time.UTC,
		tracer:   otel.Tracer("gatehouse/internal/visit"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestVisit records an unannounced visitor at the gate. The request waits
// for the flat to approve it.
func (s *Service) RequestVisit(ctx context.Context, d models.Details) (*models.VisitRequest, error) {
	return s.create(ctx, models.GuardInitiated{}, d, audit.EventVisitRequested)
}

// ScheduleVisit records a visit the resident expects today. It is approved
// on creation.
func (s *Service) ScheduleVisit(ctx context.Context, d models.Details) (*models.VisitRequest, error) {
	return s.create(ctx, models.ResidentInitiated{}, d, audit.EventVisitScheduled)
}

func (s *Service) create(ctx context.Context, origin models.VisitOrigin, d models.Details, event audit.AuditEvent) (*models.VisitRequest, error) {
	ctx, span := s.tracer.Start(ctx, "visit.Create", trace.WithAttributes(
		attribute.String("visit.origin", origin.Name()),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	v, err := models.NewVisitRequest(origin, d, now, s.today(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.store.Create(ctx, v); err != nil {
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save visit request")
	}
	span.SetAttributes(attribute.Int64("visit.id", int64(v.ID)))

	if s.metrics != nil {
		s.metrics.IncrementCreated(origin.Name())
	}
	s.logger.InfoContext(ctx, "visit request created",
		"request_id", requestcontext.RequestID(ctx),
		"visit_id", v.ID,
		"flat_no", v.FlatNo,
		"origin", origin.Name(),
	)
	s.emit(ctx, event, v, origin.Name(), "")
	return v, nil
}

// Approve lets the resident admit a pending visitor. A declined request
// stays declined.
func (s *Service) Approve(ctx context.Context, visitID id.VisitID) (*models.VisitRequest, error) {
	today := s.today(ctx)
	return s.transition(ctx, "approve", visitID,
		func(v *models.VisitRequest) error { return v.CanApprove() },
		func(v *models.VisitRequest) { v.ApplyApproval(today) },
		audit.EventVisitApproved,
	)
}

// Decline refuses a visitor who has not yet entered.
func (s *Service) Decline(ctx context.Context, visitID id.VisitID) (*models.VisitRequest, error) {
	return s.transition(ctx, "decline", visitID,
		func(v *models.VisitRequest) error { return v.CanDecline() },
		func(v *models.VisitRequest) { v.ApplyDecline() },
		audit.EventVisitDeclined,
	)
}

// CheckinVisitor stamps entry for an approved visitor. The guard may only
// check visitors in; checkout belongs to the resident.
func (s *Service) CheckinVisitor(ctx context.Context, visitID id.VisitID) (*models.VisitRequest, error) {
	now := requestcontext.Now(ctx)
	return s.transition(ctx, "checkin", visitID,
		func(v *models.VisitRequest) error { return v.CanCheckIn() },
		func(v *models.VisitRequest) { v.ApplyCheckIn(now) },
		audit.EventVisitCheckedIn,
	)
}

// CheckoutVisitor stamps exit for a visitor who has checked in.
func (s *Service) CheckoutVisitor(ctx context.Context, visitID id.VisitID) (*models.VisitRequest, error) {
	now := requestcontext.Now(ctx)
	return s.transition(ctx, "checkout", visitID,
		func(v *models.VisitRequest) error { return v.CanCheckOut() },
		func(v *models.VisitRequest) { v.ApplyCheckOut(now) },
		audit.EventVisitCheckedOut,
	)
}

func (s *Service) transition(
	ctx context.Context,
	action string,
	visitID id.VisitID,
	validate func(*models.VisitRequest) error,
	mutate func(*models.VisitRequest),
	event audit.AuditEvent,
) (*models.VisitRequest, error) {
	ctx, span := s.tracer.Start(ctx, "visit."+action, trace.WithAttributes(
		attribute.Int64("visit.id", int64(visitID)),
	))
	defer span.End()

	v, err := s.store.Execute(ctx, visitID, validate, mutate)
	if s.metrics != nil {
		s.metrics.IncrementTransition(action, err)
	}
	if err != nil {
		recordSpanError(span, err)
		err = wrapVisitErr(err, action)
		s.logger.WarnContext(ctx, "visit transition rejected",
			"request_id", requestcontext.RequestID(ctx),
			"visit_id", visitID,
			"action", action,
			"error", err.Error(),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "visit transition applied",
		"request_id", requestcontext.RequestID(ctx),
		"visit_id", v.ID,
		"action", action,
		"status", v.Status,
	)
	s.emit(ctx, event, v, actorFor(action), "")
	return v, nil
}

// ValidateVisit is the gate terminal's validate-and-stamp call. It reports
// whether the visitor may enter today and, if so, records the entry time the
// first time through. Rejections are results, not errors; only persistence
// failures return an error.
func (s *Service) ValidateVisit(ctx context.Context, visitID id.VisitID) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "visit.ValidateVisit", trace.WithAttributes(
		attribute.Int64("visit.id", int64(visitID)),
	))
	defer span.End()

	start := time.Now()
	now := requestcontext.Now(ctx)
	today := s.today(ctx)

	var (
		rejection error
		stamped   bool
	)
	v, err := s.store.Execute(ctx, visitID,
		func(v *models.VisitRequest) error {
			rejection = v.Validate(today)
			return rejection
		},
		func(v *models.VisitRequest) { stamped = v.Redeem(now) },
	)
	valid := err == nil
	if s.metrics != nil {
		s.metrics.ObserveGateValidation(valid, start)
	}
	span.SetAttributes(attribute.Bool("visit.valid", valid))

	switch {
	case err == nil && stamped:
		s.emit(ctx, audit.EventVisitCheckedIn, v, "gate", "admitted")
		return true, nil
	case err == nil:
		s.emit(ctx, audit.EventVisitRevalidated, v, "gate", "already inside")
		return true, nil
	case errors.Is(err, sentinel.ErrNotFound):
		s.logger.InfoContext(ctx, "gate validation for unknown visit",
			"request_id", requestcontext.RequestID(ctx),
			"visit_id", visitID,
		)
		return false, nil
	case rejection != nil && errors.Is(err, rejection):
		s.logger.InfoContext(ctx, "gate validation denied",
			"request_id", requestcontext.RequestID(ctx),
			"visit_id", visitID,
			"reason", rejection.Error(),
		)
		s.emitRejection(ctx, visitID, rejection.Error())
		return false, nil
	default:
		recordSpanError(span, err)
		return false, wrapVisitErr(err, "validate")
	}
}

// ListByFlat returns every request for a flat.
func (s *Service) ListByFlat(ctx context.Context, flatNo string) ([]*models.VisitRequest, error) {
	return s.list(ctx, models.Query{FlatNo: flatNo})
}

// PendingRequests are the flat's requests awaiting a decision that are for
// today or not yet dated.
func (s *Service) PendingRequests(ctx context.Context, flatNo string) ([]*models.VisitRequest, error) {
	return s.list(ctx, models.Query{
		FlatNo:         flatNo,
		Status:         models.StatusPending,
		Date:           id.DatePtr(s.today(ctx)),
		IncludeUndated: true,
	})
}

// TodayVisits returns the flat's requests dated today in any status.
func (s *Service) TodayVisits(ctx context.Context, flatNo string) ([]*models.VisitRequest, error) {
	return s.list(ctx, models.Query{FlatNo: flatNo, Date: id.DatePtr(s.today(ctx))})
}

// PendingApprovals returns every pending request for the flat regardless of
// date.
func (s *Service) PendingApprovals(ctx context.Context, flatNo string) ([]*models.VisitRequest, error) {
	return s.list(ctx, models.Query{FlatNo: flatNo, Status: models.StatusPending})
}

// ScheduledVisits returns visits the resident scheduled, optionally for one
// date.
func (s *Service) ScheduledVisits(ctx context.Context, flatNo string, date *id.Date) ([]*models.VisitRequest, error) {
	byResident := true
	return s.list(ctx, models.Query{FlatNo: flatNo, CreatedByResident: &byResident, Date: date})
}

// TodayBoard is the guard's status board: every request dated today.
func (s *Service) TodayBoard(ctx context.Context) ([]*models.VisitRequest, error) {
	return s.list(ctx, models.Query{Date: id.DatePtr(s.today(ctx))})
}

// VisitsOn returns every request dated on the given day.
func (s *Service) VisitsOn(ctx context.Context, date id.Date) ([]*models.VisitRequest, error) {
	if date.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "date is required")
	}
	return s.list(ctx, models.Query{Date: &date})
}

func (s *Service) list(ctx context.Context, q models.Query) ([]*models.VisitRequest, error) {
	visits, err := s.store.List(ctx, q)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list visit requests")
	}
	return visits, nil
}

func (s *Service) today(ctx context.Context) id.Date {
	return id.DateOf(requestcontext.Now(ctx).In(s.location))
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, v *models.VisitRequest, actor, decision string) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:   string(event),
		Subject:  "visit:" + v.ID.String(),
		FlatNo:   v.FlatNo,
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

func (s *Service) emitRejection(ctx context.Context, visitID id.VisitID, reason string) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:   string(audit.EventVisitRejectedAtGate),
		Subject:  "visit:" + visitID.String(),
		Decision: "denied",
		Reason:   reason,
		ActorID:  "gate",
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(audit.EventVisitRejectedAtGate),
			"error", err.Error(),
		)
	}
}

func actorFor(action string) string {
	if action == "checkin" {
		return "guard"
	}
	return "resident"
}

// wrapVisitErr turns store facts into domain errors. Errors that already
// carry a code (model rule violations, transaction timeouts) pass through.
func wrapVisitErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "visit request not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action+" visit request")
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
