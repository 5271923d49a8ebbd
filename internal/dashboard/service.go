// Package dashboard assembles a resident's view of their flat from the visit
// and QR pass engines.
package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	qrmodels "gatehouse/internal/qrpass/models"
	visitmodels "gatehouse/internal/visit/models"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/requestcontext"
)

const fetchTimeout = 3 * time.Second

type VisitSource interface {
	PendingApprovals(ctx context.Context, flatNo string) ([]*visitmodels.VisitRequest, error)
	TodayVisits(ctx context.Context, flatNo string) ([]*visitmodels.VisitRequest, error)
}

type PassSource interface {
	Today(ctx context.Context, flatNo string) ([]*qrmodels.Pass, error)
}

// Dashboard is one flat's snapshot.
type Dashboard struct {
	FlatNo           string                     `json:"flatNo"`
	PendingApprovals []*visitmodels.VisitRequest `json:"pendingApprovals"`
	TodayVisits      []*visitmodels.VisitRequest `json:"todayVisits"`
	TodayPasses      []*qrmodels.Pass           `json:"todayPasses"`
	GeneratedAt      time.Time                  `json:"generatedAt"`
}

type Service struct {
	visits VisitSource
	passes PassSource
	logger *slog.Logger
}

func New(visits VisitSource, passes PassSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{visits: visits, passes: passes, logger: logger}
}

// ForFlat fetches the three lists in parallel. The first failure cancels the
// rest.
func (s *Service) ForFlat(ctx context.Context, flatNo string) (*Dashboard, error) {
	flatNo = strings.TrimSpace(flatNo)
	if flatNo == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "flatNo is required")
	}

	d := &Dashboard{FlatNo: flatNo, GeneratedAt: requestcontext.Now(ctx)}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := s.visits.PendingApprovals(ctx, flatNo)
		d.PendingApprovals = out
		return err
	})
	g.Go(func() error {
		out, err := s.visits.TodayVisits(ctx, flatNo)
		d.TodayVisits = out
		return err
	})
	g.Go(func() error {
		out, err := s.passes.Today(ctx, flatNo)
		d.TodayPasses = out
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "dashboard fetch failed",
			"request_id", requestcontext.RequestID(ctx),
			"flat_no", flatNo,
			"error", err.Error(),
		)
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dashboard")
	}
	return d, nil
}
