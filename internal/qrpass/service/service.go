package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gatehouse/internal/qrpass/metrics"
	"gatehouse/internal/qrpass/models"
	"gatehouse/internal/qrpass/scanlock"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/audit"
	"gatehouse/pkg/platform/sentinel"
	"gatehouse/pkg/requestcontext"
)

const (
	maxCodeAttempts    = 5
	defaultScanLockTTL = 5 * time.Second
)

// Store persists passes. Create returns sentinel.ErrConflict when the code is
// already taken.
type Store interface {
	Create(ctx context.Context, p *models.Pass) error
	FindByID(ctx context.Context, passID id.PassID) (*models.Pass, error)
	FindByCode(ctx context.Context, code string) (*models.Pass, error)
	Execute(ctx context.Context, passID id.PassID, validate func(*models.Pass) error, mutate func(*models.Pass)) (*models.Pass, error)
	List(ctx context.Context, q models.Query) ([]*models.Pass, error)
}

// ScanLock keeps two terminals from redeeming the same pass at once.
type ScanLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (scanlock.Release, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service issues, validates and redeems QR passes.
type Service struct {
	store          Store
	lock           ScanLock
	lockTTL        time.Duration
	newToken       TokenFunc
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

// WithScanLock replaces the in-process scan lock, typically with Redis.
func WithScanLock(lock ScanLock, ttl time.Duration) Option {
	return func(s *Service) {
		if lock != nil {
			s.lock = lock
		}
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithTokenFunc(f TokenFunc) Option {
	return func(s *Service) {
		if f != nil {
			s.newToken = f
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		lock:     scanlock.NewMemory(),
		lockTTL:  defaultScanLockTTL,
		newToken: NewToken,
		logger:   slog.Default(),
		location: time.UTC,
		tracer:   otel.Tracer("gatehouse/internal/qrpass"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create issues an approved pass with a fresh code. A code collision is
// retried with a new code.
func (s *Service) Create(ctx context.Context, d models.Details) (*models.Issued, error) {
	ctx, span := s.tracer.Start(ctx, "qrpass.Create")
	defer span.End()

	now := requestcontext.Now(ctx)
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.newToken()
		if err != nil {
			recordSpanError(span, err)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate QR code")
		}
		p, err := models.NewPass(d, code, now)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return nil, dErrors.New(dErrors.CodeValidation, err.Error())
			}
			return nil, err
		}

		err = s.store.Create(ctx, p)
		if errors.Is(err, sentinel.ErrConflict) {
			if s.metrics != nil {
				s.metrics.IncrementCollision()
			}
			s.logger.WarnContext(ctx, "qr code collision, retrying",
				"request_id", requestcontext.RequestID(ctx),
				"attempt", attempt,
			)
			continue
		}
		if err != nil {
			recordSpanError(span, err)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save QR pass")
		}

		span.SetAttributes(attribute.Int64("qrpass.id", int64(p.ID)))
		if s.metrics != nil {
			s.metrics.IncrementIssued()
		}
		s.logger.InfoContext(ctx, "qr pass issued",
			"request_id", requestcontext.RequestID(ctx),
			"pass_id", p.ID,
			"flat_no", p.FlatNo,
		)
		s.emit(ctx, audit.EventPassIssued, p, "resident", "", "")
		return &models.Issued{
			VisitorID: p.ID,
			QRCode:    p.QRCode,
			Message:   "QR visitor created successfully",
			Success:   true,
		}, nil
	}
	return nil, dErrors.New(dErrors.CodeInternal, "could not allocate a unique QR code")
}

// Validate checks a scanned code without changing anything. Rejections are
// reported in the result; only lookup failures return an error.
func (s *Service) Validate(ctx context.Context, code string) (*models.Validation, error) {
	ctx, span := s.tracer.Start(ctx, "qrpass.Validate")
	defer span.End()

	code = strings.TrimSpace(code)
	if code == "" {
		return s.denied(ctx, nil, "QR code is missing"), nil
	}
	p, err := s.store.FindByCode(ctx, code)
	if errors.Is(err, sentinel.ErrNotFound) {
		return s.denied(ctx, nil, "QR code not found"), nil
	}
	if err != nil {
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up QR code")
	}
	span.SetAttributes(attribute.Int64("qrpass.id", int64(p.ID)))

	if err := p.Validate(s.today(ctx)); err != nil {
		msg := err.Error()
		if de, ok := dErrors.As(err); ok {
			msg = de.Message
		}
		return s.denied(ctx, p, msg), nil
	}
	if s.metrics != nil {
		s.metrics.IncrementScan(true)
	}
	return &models.Validation{Valid: true, Message: "QR visitor validated successfully", Visitor: p}, nil
}

func (s *Service) denied(ctx context.Context, p *models.Pass, msg string) *models.Validation {
	if s.metrics != nil {
		s.metrics.IncrementScan(false)
	}
	s.logger.InfoContext(ctx, "qr scan denied",
		"request_id", requestcontext.RequestID(ctx),
		"reason", msg,
	)
	if p != nil {
		s.emit(ctx, audit.EventPassRejected, p, "gate", "denied", msg)
	}
	return &models.Validation{Valid: false, Message: msg}
}

// CheckIn redeems an approved pass. Concurrent scans of the same pass are
// turned away while the first is in flight.
func (s *Service) CheckIn(ctx context.Context, passID id.PassID) (*models.Pass, error) {
	ctx, span := s.tracer.Start(ctx, "qrpass.CheckIn", trace.WithAttributes(
		attribute.Int64("qrpass.id", int64(passID)),
	))
	defer span.End()

	release, err := s.lock.Acquire(ctx, passID.String(), s.lockTTL)
	switch {
	case errors.Is(err, scanlock.ErrHeld):
		if s.metrics != nil {
			s.metrics.IncrementLockBusy()
		}
		return nil, dErrors.New(dErrors.CodeConflict, "pass is being scanned at another gate")
	case errors.Is(err, sentinel.ErrUnavailable):
		// The row lock still guarantees single redemption.
		s.logger.WarnContext(ctx, "scan lock unavailable",
			"request_id", requestcontext.RequestID(ctx),
			"pass_id", passID,
			"error", err.Error(),
		)
	case err != nil:
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock pass for check-in")
	default:
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.WarnContext(ctx, "failed to release scan lock",
					"pass_id", passID,
					"error", err.Error(),
				)
			}
		}()
	}

	now := requestcontext.Now(ctx)
	today := s.today(ctx)
	return s.transition(ctx, span, "checkin", passID,
		func(p *models.Pass) error { return p.CanCheckIn(today) },
		func(p *models.Pass) { p.ApplyCheckIn(now) },
		audit.EventPassRedeemed,
	)
}

// CheckOut records the visitor leaving. Only a checked-in pass can leave.
func (s *Service) CheckOut(ctx context.Context, passID id.PassID) (*models.Pass, error) {
	ctx, span := s.tracer.Start(ctx, "qrpass.CheckOut", trace.WithAttributes(
		attribute.Int64("qrpass.id", int64(passID)),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	return s.transition(ctx, span, "checkout", passID,
		func(p *models.Pass) error { return p.CanCheckOut() },
		func(p *models.Pass) { p.ApplyCheckOut(now) },
		audit.EventPassCheckedOut,
	)
}

func (s *Service) transition(
	ctx context.Context,
	span trace.Span,
	action string,
	passID id.PassID,
	validate func(*models.Pass) error,
	mutate func(*models.Pass),
	event audit.AuditEvent,
) (*models.Pass, error) {
	p, err := s.store.Execute(ctx, passID, validate, mutate)
	if s.metrics != nil {
		s.metrics.IncrementTransition(action, err)
	}
	if err != nil {
		recordSpanError(span, err)
		return nil, wrapPassErr(err, action)
	}
	s.logger.InfoContext(ctx, "qr pass transition applied",
		"request_id", requestcontext.RequestID(ctx),
		"pass_id", p.ID,
		"action", action,
		"status", p.Status,
	)
	s.emit(ctx, event, p, "gate", "", "")
	return p, nil
}

// Get returns one pass, e.g. for rendering its QR image.
func (s *Service) Get(ctx context.Context, passID id.PassID) (*models.Pass, error) {
	p, err := s.store.FindByID(ctx, passID)
	if err != nil {
		return nil, wrapPassErr(err, "load")
	}
	return p, nil
}

// History lists passes, optionally for one flat and/or visit date.
func (s *Service) History(ctx context.Context, q models.Query) ([]*models.Pass, error) {
	passes, err := s.store.List(ctx, q)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list QR passes")
	}
	return passes, nil
}

// Today lists the flat's passes dated today.
func (s *Service) Today(ctx context.Context, flatNo string) ([]*models.Pass, error) {
	today := s.today(ctx)
	return s.History(ctx, models.Query{FlatNo: flatNo, Date: &today})
}

func (s *Service) today(ctx context.Context) id.Date {
	return id.DateOf(requestcontext.Now(ctx).In(s.location))
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, p *models.Pass, actor, decision, reason string) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:   string(event),
		Subject:  "pass:" + p.ID.String(),
		FlatNo:   p.FlatNo,
		Decision: decision,
		Reason:   reason,
		ActorID:  actor,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(event),
			"error", err.Error(),
		)
	}
}

func wrapPassErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "QR visitor not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action+" QR pass")
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
