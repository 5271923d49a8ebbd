package service

import (
	"context"
	"errors"
	"log/slog"

	"gatehouse/internal/directory/models"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/audit"
	"gatehouse/pkg/platform/sentinel"
	"gatehouse/pkg/requestcontext"
)

type Store interface {
	CreateResident(ctx context.Context, r *models.Resident) error
	FindResident(ctx context.Context, residentID id.ResidentID) (*models.Resident, error)
	ListResidents(ctx context.Context, f models.Filter) ([]*models.Resident, error)
	UpdateResident(ctx context.Context, residentID id.ResidentID, fn func(*models.Resident) error) (*models.Resident, error)

	CreateGuard(ctx context.Context, g *models.Guard) error
	FindGuard(ctx context.Context, guardID id.GuardID) (*models.Guard, error)
	ListGuards(ctx context.Context, f models.Filter) ([]*models.Guard, error)
	UpdateGuard(ctx context.Context, guardID id.GuardID, fn func(*models.Guard) error) (*models.Guard, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages residents and guards for the admin console and answers
// existence checks for the attendance tracker.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
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
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) AddResident(ctx context.Context, f models.ResidentFields) (*models.Resident, error) {
	r, err := models.NewResident(f, requestcontext.Now(ctx))
	if err != nil {
		return nil, asValidation(err)
	}
	if err := s.store.CreateResident(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add resident")
	}
	s.emit(ctx, audit.EventResidentAdded, "resident:"+r.ID.String(), r.FlatNo)
	return r, nil
}

func (s *Service) GetResident(ctx context.Context, residentID id.ResidentID) (*models.Resident, error) {
	r, err := s.store.FindResident(ctx, residentID)
	if err != nil {
		return nil, wrapLookupErr(err, "resident")
	}
	return r, nil
}

// ListResidents returns residents matching search; blank returns everyone.
func (s *Service) ListResidents(ctx context.Context, search string) ([]*models.Resident, error) {
	out, err := s.store.ListResidents(ctx, models.NewFilter(search))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list residents")
	}
	return out, nil
}

func (s *Service) UpdateResident(ctx context.Context, residentID id.ResidentID, f models.ResidentFields) (*models.Resident, error) {
	now := requestcontext.Now(ctx)
	r, err := s.store.UpdateResident(ctx, residentID, func(r *models.Resident) error {
		return r.ApplyUpdate(f, now)
	})
	if err != nil {
		return nil, wrapUpdateErr(err, "resident")
	}
	s.emit(ctx, audit.EventResidentUpdated, "resident:"+r.ID.String(), r.FlatNo)
	return r, nil
}

func (s *Service) AddGuard(ctx context.Context, f models.GuardFields) (*models.Guard, error) {
	g, err := models.NewGuard(f, requestcontext.Now(ctx))
	if err != nil {
		return nil, asValidation(err)
	}
	if err := s.store.CreateGuard(ctx, g); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add guard")
	}
	s.emit(ctx, audit.EventGuardAdded, "guard:"+g.ID.String(), "")
	return g, nil
}

// GetGuard also serves as the attendance tracker's existence check.
func (s *Service) GetGuard(ctx context.Context, guardID id.GuardID) (*models.Guard, error) {
	g, err := s.store.FindGuard(ctx, guardID)
	if err != nil {
		return nil, wrapLookupErr(err, "guard")
	}
	return g, nil
}

func (s *Service) ListGuards(ctx context.Context, search string) ([]*models.Guard, error) {
	out, err := s.store.ListGuards(ctx, models.NewFilter(search))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list guards")
	}
	return out, nil
}

func (s *Service) UpdateGuard(ctx context.Context, guardID id.GuardID, f models.GuardFields) (*models.Guard, error) {
	now := requestcontext.Now(ctx)
	g, err := s.store.UpdateGuard(ctx, guardID, func(g *models.Guard) error {
		return g.ApplyUpdate(f, now)
	})
	if err != nil {
		return nil, wrapUpdateErr(err, "guard")
	}
	s.emit(ctx, audit.EventGuardUpdated, "guard:"+g.ID.String(), "")
	return g, nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, subject, flatNo string) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:  string(event),
		Subject: subject,
		FlatNo:  flatNo,
		ActorID: "admin",
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(event),
			"error", err.Error(),
		)
	}
}

func asValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		de, _ := dErrors.As(err)
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}

func wrapLookupErr(err error, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+what)
}

func wrapUpdateErr(err error, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	}
	if _, ok := dErrors.As(err); ok {
		return asValidation(err)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update "+what)
}
