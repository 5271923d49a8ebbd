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

	"gatehouse/internal/attendance/metrics"
	"gatehouse/internal/attendance/models"
	dirmodels "gatehouse/internal/directory/models"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/audit"
	"gatehouse/pkg/platform/sentinel"
	"gatehouse/pkg/requestcontext"
)

// Store is the attendance ledger. UpsertCheckIn must be atomic per
// (guard, day).
type Store interface {
	UpsertCheckIn(ctx context.Context, guardID id.GuardID, day id.Date, now time.Time) (*models.Record, error)
	Execute(ctx context.Context, guardID id.GuardID, day id.Date, validate func(*models.Record) error, mutate func(*models.Record)) (*models.Record, error)
	ListByDate(ctx context.Context, day id.Date) ([]*models.Record, error)
}

// GuardLookup answers whether a guard exists. Implemented by the directory.
type GuardLookup interface {
	GetGuard(ctx context.Context, guardID id.GuardID) (*dirmodels.Guard, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service records guard attendance, one record per guard per day.
type Service struct {
	store          Store
	guards         GuardLookup
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

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func New(store Store, guards GuardLookup, opts ...Option) *Service {
	s := &Service{
		store:    store,
		guards:   guards,
		logger:   slog.Default(),
		location: time.UTC,
		tracer:   otel.Tracer("gatehouse/internal/attendance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIn records the guard's arrival for today. Calling it again the same
// day overwrites the time rather than adding a row.
func (s *Service) CheckIn(ctx context.Context, guardID id.GuardID) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.CheckIn", trace.WithAttributes(
		attribute.Int64("guard.id", int64(guardID)),
	))
	defer span.End()

	if err := s.requireGuard(ctx, guardID); err != nil {
		s.observe("checkin", err)
		return nil, err
	}
	now := requestcontext.Now(ctx)
	r, err := s.store.UpsertCheckIn(ctx, guardID, s.day(now), now)
	if err != nil {
		err = wrapRecordErr(err, "check in guard")
		recordSpanError(span, err)
		s.observe("checkin", err)
		return nil, err
	}
	s.observe("checkin", nil)
	s.logger.InfoContext(ctx, "guard checked in",
		"request_id", requestcontext.RequestID(ctx),
		"guard_id", guardID,
		"attendance_date", r.AttendanceDate.String(),
	)
	s.emit(ctx, audit.EventGuardCheckedIn, guardID)
	return r, nil
}

// CheckOut requires today's record to carry a check-in. Repeated checkouts
// overwrite the time.
func (s *Service) CheckOut(ctx context.Context, guardID id.GuardID) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.CheckOut", trace.WithAttributes(
		attribute.Int64("guard.id", int64(guardID)),
	))
	defer span.End()

	if err := s.requireGuard(ctx, guardID); err != nil {
		s.observe("checkout", err)
		return nil, err
	}
	now := requestcontext.Now(ctx)
	r, err := s.store.Execute(ctx, guardID, s.day(now),
		func(r *models.Record) error { return r.CanCheckOut() },
		func(r *models.Record) { r.ApplyCheckOut(now) },
	)
	if errors.Is(err, sentinel.ErrNotFound) {
		err = dErrors.New(dErrors.CodeInvalidState, "guard has not checked in today")
	}
	if err != nil {
		err = wrapRecordErr(err, "check out guard")
		recordSpanError(span, err)
		s.observe("checkout", err)
		return nil, err
	}
	s.observe("checkout", nil)
	s.logger.InfoContext(ctx, "guard checked out",
		"request_id", requestcontext.RequestID(ctx),
		"guard_id", guardID,
	)
	s.emit(ctx, audit.EventGuardCheckedOut, guardID)
	return r, nil
}

// ByDate lists every record for day.
func (s *Service) ByDate(ctx context.Context, day id.Date) ([]*models.Record, error) {
	if day.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "date is required")
	}
	out, err := s.store.ListByDate(ctx, day)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list attendance")
	}
	return out, nil
}

// OnDuty lists the guards who checked in on day, joined with their directory
// entry. Records whose guard has since vanished from the directory are skipped.
func (s *Service) OnDuty(ctx context.Context, day id.Date) ([]*models.OnDuty, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.OnDuty", trace.WithAttributes(
		attribute.String("attendance.date", day.String()),
	))
	defer span.End()

	records, err := s.ByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	out := make([]*models.OnDuty, 0, len(records))
	for _, r := range records {
		if r.CheckInTime == nil {
			continue
		}
		g, err := s.guards.GetGuard(ctx, r.GuardID)
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.logger.WarnContext(ctx, "attendance record for unknown guard",
				"request_id", requestcontext.RequestID(ctx),
				"guard_id", r.GuardID,
				"attendance_date", day.String(),
			)
			continue
		}
		if err != nil {
			recordSpanError(span, err)
			return nil, wrapRecordErr(err, "load guard")
		}
		out = append(out, &models.OnDuty{
			GuardID:      g.ID,
			Name:         g.Name,
			Email:        g.Email,
			Contact:      g.Contact,
			Shift:        g.Shift,
			CheckInTime:  r.CheckInTime,
			CheckOutTime: r.CheckOutTime,
		})
	}
	return out, nil
}

func (s *Service) requireGuard(ctx context.Context, guardID id.GuardID) error {
	if _, err := s.guards.GetGuard(ctx, guardID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "guard not found")
		}
		return err
	}
	return nil
}

func (s *Service) day(now time.Time) id.Date {
	return id.DateOf(now.In(s.location))
}

func (s *Service) observe(action string, err error) {
	if s.metrics != nil {
		s.metrics.IncrementPunch(action, err)
	}
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, guardID id.GuardID) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:  string(event),
		Subject: "guard:" + guardID.String(),
		ActorID: "guard:" + guardID.String(),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(event),
			"error", err.Error(),
		)
	}
}

func wrapRecordErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "guard not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
