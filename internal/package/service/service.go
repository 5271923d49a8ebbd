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

	"gatehouse/internal/package/metrics"
	"gatehouse/internal/package/models"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/audit"
	"gatehouse/pkg/platform/sentinel"
	"gatehouse/pkg/requestcontext"
)

// Store persists packages. Execute must hold the row for validate and mutate.
type Store interface {
	Create(ctx context.Context, p *models.Package) error
	FindByID(ctx context.Context, packageID id.PackageID) (*models.Package, error)
	Execute(ctx context.Context, packageID id.PackageID, validate func(*models.Package) error, mutate func(*models.Package)) (*models.Package, error)
	List(ctx context.Context, q models.Query) ([]*models.Package, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service registers parcels for residents and hands them over at the gate.
type Service struct {
	store          Store
	newOTP         OTPFunc
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

func WithOTPFunc(f OTPFunc) Option {
	return func(s *Service) {
		if f != nil {
			s.newOTP = f
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		newOTP:   NewOTP,
		logger:   slog.Default(),
		location: time.UTC,
		tracer:   otel.Tracer("gatehouse/internal/package"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register records a parcel the flat is expecting. A blank OTP is generated
// and a missing expected date means today.
func (s *Service) Register(ctx context.Context, d models.Details) (*models.Registered, error) {
	ctx, span := s.tracer.Start(ctx, "package.Register")
	defer span.End()

	now := requestcontext.Now(ctx)
	if d.ExpectedDate.IsZero() {
		d.ExpectedDate = id.DateOf(now.In(s.location))
	}
	if d.DeliveryOTP == "" {
		otp, err := s.newOTP()
		if err != nil {
			recordSpanError(span, err)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate delivery OTP")
		}
		d.DeliveryOTP = otp
	}
	p, err := models.NewPackage(d, now)
	if err != nil {
		return nil, asValidation(err)
	}
	if err := s.store.Create(ctx, p); err != nil {
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save package")
	}
	span.SetAttributes(attribute.Int64("package.id", int64(p.ID)))

	if s.metrics != nil {
		s.metrics.IncrementRegistered()
	}
	s.logger.InfoContext(ctx, "package registered",
		"request_id", requestcontext.RequestID(ctx),
		"package_id", p.ID,
		"flat_no", p.FlatNo,
		"expected_date", p.ExpectedDate.String(),
	)
	s.emit(ctx, audit.EventPackageRegistered, p, "resident", "")
	return &models.Registered{Package: p, DeliveryOTP: p.DeliveryOTP}, nil
}

func (s *Service) Get(ctx context.Context, packageID id.PackageID) (*models.Package, error) {
	p, err := s.store.FindByID(ctx, packageID)
	if err != nil {
		return nil, wrapPackageErr(err, "load")
	}
	return p, nil
}

// List returns packages for a flat, a status and/or an expected date.
func (s *Service) List(ctx context.Context, q models.Query) ([]*models.Package, error) {
	out, err := s.store.List(ctx, q)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list packages")
	}
	return out, nil
}

// VerifyOTP hands the parcel over when otp matches. The check and the status
// change happen under one row lock, so an OTP is accepted at most once.
func (s *Service) VerifyOTP(ctx context.Context, packageID id.PackageID, otp string) (*models.Package, error) {
	ctx, span := s.tracer.Start(ctx, "package.VerifyOTP", trace.WithAttributes(
		attribute.Int64("package.id", int64(packageID)),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	var rejection error
	p, err := s.store.Execute(ctx, packageID,
		func(p *models.Package) error {
			rejection = p.CanDeliverWith(otp)
			return rejection
		},
		func(p *models.Package) { p.ApplyDelivery(now) },
	)
	if err != nil {
		recordSpanError(span, err)
		if rejection != nil && errors.Is(err, rejection) {
			if s.metrics != nil {
				s.metrics.IncrementOTPRejected()
			}
			s.logger.WarnContext(ctx, "package OTP refused",
				"request_id", requestcontext.RequestID(ctx),
				"package_id", packageID,
				"reason", rejection.Error(),
			)
			s.emitRejection(ctx, packageID, rejection.Error())
		}
		return nil, wrapPackageErr(err, "deliver")
	}
	if s.metrics != nil {
		s.metrics.IncrementDelivered("otp")
	}
	s.logger.InfoContext(ctx, "package delivered",
		"request_id", requestcontext.RequestID(ctx),
		"package_id", p.ID,
		"flat_no", p.FlatNo,
	)
	s.emit(ctx, audit.EventPackageDelivered, p, "gate", "otp")
	return p, nil
}

// UpdateStatus is the guard's manual override, outside the OTP flow.
func (s *Service) UpdateStatus(ctx context.Context, packageID id.PackageID, status models.Status) (*models.Package, error) {
	ctx, span := s.tracer.Start(ctx, "package.UpdateStatus", trace.WithAttributes(
		attribute.Int64("package.id", int64(packageID)),
		attribute.String("package.status", string(status)),
	))
	defer span.End()

	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "status can only be PENDING or DELIVERED")
	}
	now := requestcontext.Now(ctx)
	var wasDelivered bool
	p, err := s.store.Execute(ctx, packageID,
		func(p *models.Package) error {
			wasDelivered = p.Status == models.StatusDelivered
			return nil
		},
		func(p *models.Package) { p.ApplyStatus(status, now) },
	)
	if err != nil {
		recordSpanError(span, err)
		return nil, wrapPackageErr(err, "update")
	}
	if !wasDelivered && p.Status == models.StatusDelivered && s.metrics != nil {
		s.metrics.IncrementDelivered("manual")
	}
	s.logger.InfoContext(ctx, "package status set",
		"request_id", requestcontext.RequestID(ctx),
		"package_id", p.ID,
		"status", p.Status,
	)
	s.emit(ctx, audit.EventPackageStatusSet, p, "gate", string(p.Status))
	return p, nil
}

// Update lets the resident correct a package until it is delivered.
func (s *Service) Update(ctx context.Context, packageID id.PackageID, d models.Details) (*models.Package, error) {
	ctx, span := s.tracer.Start(ctx, "package.Update", trace.WithAttributes(
		attribute.Int64("package.id", int64(packageID)),
	))
	defer span.End()

	if err := d.Normalize(); err != nil {
		return nil, asValidation(err)
	}
	p, err := s.store.Execute(ctx, packageID,
		func(p *models.Package) error { return p.CanEdit() },
		func(p *models.Package) { p.ApplyEdit(d) },
	)
	if err != nil {
		recordSpanError(span, err)
		return nil, wrapPackageErr(err, "update")
	}
	s.emit(ctx, audit.EventPackageUpdated, p, "resident", "")
	return p, nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, p *models.Package, actor, decision string) {
	s.publish(ctx, audit.Event{
		Action:   string(event),
		Subject:  "package:" + p.ID.String(),
		FlatNo:   p.FlatNo,
		Decision: decision,
		ActorID:  actor,
	})
}

func (s *Service) emitRejection(ctx context.Context, packageID id.PackageID, reason string) {
	s.publish(ctx, audit.Event{
		Action:   string(audit.EventPackageOTPRejected),
		Subject:  "package:" + packageID.String(),
		Decision: "denied",
		Reason:   reason,
		ActorID:  "gate",
	})
}

func (s *Service) publish(ctx context.Context, e audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", requestcontext.RequestID(ctx),
			"action", e.Action,
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

func wrapPackageErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "package not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action+" package")
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
