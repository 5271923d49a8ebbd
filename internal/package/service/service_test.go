package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"gatehouse/internal/package/metrics"
	"gatehouse/internal/package/models"
	"gatehouse/internal/package/store"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/audit"
	"gatehouse/pkg/platform/audit/publisher"
	auditmemory "gatehouse/pkg/platform/audit/store/memory"
	"gatehouse/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	audit   *auditmemory.InMemoryStore
	metrics *metrics.Metrics
	svc     *Service
	now     time.Time
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.svc = s.newService(WithOTPFunc(func() (string, error) { return "482913", nil }))
	s.now = time.Date(2026, 10, 16, 11, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithMetrics(s.metrics),
	}
	return New(s.store, append(base, opts...)...)
}

func (s *ServiceSuite) register() *models.Registered {
	reg, err := s.svc.Register(s.ctx, models.Details{
		Description:  "Books",
		Sender:       "Bookshop",
		ResidentName: "Anita",
		FlatNo:       "C-3",
	})
	s.Require().NoError(err)
	return reg
}

func (s *ServiceSuite) actions(packageID id.PackageID) []string {
	events, err := s.audit.ListBySubject(s.ctx, "package:"+packageID.String())
	s.Require().NoError(err)
	var out []string
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}

func (s *ServiceSuite) TestRegisterFillsOTPAndDate() {
	reg := s.register()
	s.Equal("482913", reg.DeliveryOTP)
	s.Equal(models.StatusPending, reg.Status)
	s.Equal(id.DateOf(s.now), reg.ExpectedDate)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Registered))

	kept, err := s.svc.Register(s.ctx, models.Details{
		Description:  "Shoes",
		FlatNo:       "C-3",
		ExpectedDate: id.NewDate(2026, 10, 20),
		DeliveryOTP:  "7777",
	})
	s.Require().NoError(err)
	s.Equal("7777", kept.DeliveryOTP)
	s.Equal(id.NewDate(2026, 10, 20), kept.ExpectedDate)
}

func (s *ServiceSuite) TestRegisterValidation() {
	_, err := s.svc.Register(s.ctx, models.Details{FlatNo: "C-3"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	s.svc = s.newService(WithOTPFunc(func() (string, error) { return "", errors.New("entropy") }))
	_, err = s.svc.Register(s.ctx, models.Details{Description: "Books", FlatNo: "C-3"})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestVerifyOTPDeliversOnce() {
	reg := s.register()

	_, err := s.svc.VerifyOTP(s.ctx, reg.ID, "000000")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	stored, err := s.svc.Get(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, stored.Status, "a wrong OTP leaves the package pending")

	p, err := s.svc.VerifyOTP(s.ctx, reg.ID, "482913")
	s.Require().NoError(err)
	s.Equal(models.StatusDelivered, p.Status)
	s.Equal(s.now, *p.DeliveredAt)

	later := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
	_, err = s.svc.VerifyOTP(later, reg.ID, "482913")
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyDone))
	stored, err = s.svc.Get(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(s.now, *stored.DeliveredAt, "delivery time is not moved by a second OTP")

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Deliveries.WithLabelValues("otp")))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.OTPRejections))
	s.Equal([]string{
		string(audit.EventPackageRegistered),
		string(audit.EventPackageOTPRejected),
		string(audit.EventPackageDelivered),
		string(audit.EventPackageOTPRejected),
	}, s.actions(reg.ID))
}

func (s *ServiceSuite) TestConcurrentOTPAcceptedOnce() {
	reg := s.register()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.svc.VerifyOTP(s.ctx, reg.ID, "482913"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, successes)
}

func (s *ServiceSuite) TestUpdateStatusOverride() {
	reg := s.register()

	p, err := s.svc.UpdateStatus(s.ctx, reg.ID, models.StatusDelivered)
	s.Require().NoError(err)
	s.Equal(models.StatusDelivered, p.Status)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Deliveries.WithLabelValues("manual")))

	_, err = s.svc.VerifyOTP(s.ctx, reg.ID, "482913")
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyDone))

	p, err = s.svc.UpdateStatus(s.ctx, reg.ID, models.StatusPending)
	s.Require().NoError(err)
	s.Nil(p.DeliveredAt)

	_, err = s.svc.UpdateStatus(s.ctx, reg.ID, models.Status("LOST"))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestUpdateBeforeDeliveryOnly() {
	reg := s.register()
	edit := models.Details{
		Description:  "Books and a lamp",
		FlatNo:       "C-3",
		ExpectedDate: id.NewDate(2026, 10, 17),
	}

	p, err := s.svc.Update(s.ctx, reg.ID, edit)
	s.Require().NoError(err)
	s.Equal("Books and a lamp", p.Description)
	s.Equal("482913", p.DeliveryOTP)

	_, err = s.svc.Update(s.ctx, reg.ID, models.Details{FlatNo: "C-3"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.VerifyOTP(s.ctx, reg.ID, "482913")
	s.Require().NoError(err)
	_, err = s.svc.Update(s.ctx, reg.ID, edit)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *ServiceSuite) TestListAndNotFound() {
	s.register()
	reg := s.register()
	_, err := s.svc.VerifyOTP(s.ctx, reg.ID, "482913")
	s.Require().NoError(err)

	pending, err := s.svc.List(s.ctx, models.Query{FlatNo: "C-3", Status: models.StatusPending})
	s.Require().NoError(err)
	s.Len(pending, 1)

	_, err = s.svc.Get(s.ctx, 404)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.svc.VerifyOTP(s.ctx, 404, "1")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestNewOTP(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]{6}$`)
	for range 50 {
		otp, err := NewOTP()
		if err != nil {
			t.Fatal(err)
		}
		if !digits.MatchString(otp) {
			t.Fatalf("unexpected OTP %q", otp)
		}
	}
}
