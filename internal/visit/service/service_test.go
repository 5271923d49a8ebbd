package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"gatehouse/internal/visit/metrics"
	"gatehouse/internal/visit/models"
	"gatehouse/internal/visit/store"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/audit"
	auditmemory "gatehouse/pkg/platform/audit/store/memory"
	"gatehouse/pkg/platform/audit/publisher"
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
	s.svc = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithMetrics(s.metrics),
	)
	s.now = time.Date(2026, 10, 16, 10, 15, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) at(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func details(flat string) models.Details {
	return models.Details{VisitorName: "Kiran", FlatNo: flat, Relation: "friend", Purpose: "dinner"}
}

func (s *ServiceSuite) TestResidentScheduledVisitIsAdmittedOnce() {
	v, err := s.svc.ScheduleVisit(s.ctx, details("A-101"))
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, v.Status)
	s.True(v.CreatedByResident)
	s.Nil(v.CheckInTime)

	valid, err := s.svc.ValidateVisit(s.ctx, v.ID)
	s.Require().NoError(err)
	s.True(valid)

	stored, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.CheckInTime)
	s.Equal(s.now, *stored.CheckInTime)

	// A second scan still admits but keeps the first entry time.
	valid, err = s.svc.ValidateVisit(s.at(s.now.Add(time.Minute)), v.ID)
	s.Require().NoError(err)
	s.True(valid)
	stored, _ = s.store.FindByID(s.ctx, v.ID)
	s.Equal(s.now, *stored.CheckInTime)

	_, err = s.svc.CheckinVisitor(s.ctx, v.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyDone))
}

func (s *ServiceSuite) TestRepeatedValidationRecordsOneEntry() {
	v, err := s.svc.ScheduleVisit(s.ctx, details("A-102"))
	s.Require().NoError(err)

	for i := range 3 {
		valid, err := s.svc.ValidateVisit(s.at(s.now.Add(time.Duration(i)*time.Minute)), v.ID)
		s.Require().NoError(err)
		s.True(valid)
	}

	events, err := s.audit.ListBySubject(s.ctx, "visit:"+v.ID.String())
	s.Require().NoError(err)
	counts := map[string]int{}
	for _, e := range events {
		counts[e.Action]++
	}
	s.Equal(1, counts[string(audit.EventVisitCheckedIn)])
	s.Equal(2, counts[string(audit.EventVisitRevalidated)])
}

func (s *ServiceSuite) TestGuardRequestFlow() {
	v, err := s.svc.RequestVisit(s.ctx, details("B-7"))
	s.Require().NoError(err)
	s.Equal(models.StatusPending, v.Status)
	s.Require().NotNil(v.ArrivedAt)
	s.Nil(v.CheckInTime)

	_, err = s.svc.CheckinVisitor(s.ctx, v.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	valid, err := s.svc.ValidateVisit(s.ctx, v.ID)
	s.Require().NoError(err)
	s.False(valid)

	approved, err := s.svc.Approve(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, approved.Status)

	checkedIn, err := s.svc.CheckinVisitor(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(s.now, *checkedIn.CheckInTime)

	later := s.now.Add(2 * time.Hour)
	out, err := s.svc.CheckoutVisitor(s.at(later), v.ID)
	s.Require().NoError(err)
	s.Equal(later, *out.CheckOutTime)

	_, err = s.svc.CheckoutVisitor(s.at(later), v.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyDone))
}

func (s *ServiceSuite) TestDeclineThenCheckinFails() {
	v, err := s.svc.RequestVisit(s.ctx, details("C-2"))
	s.Require().NoError(err)

	_, err = s.svc.Decline(s.ctx, v.ID)
	s.Require().NoError(err)

	_, err = s.svc.CheckinVisitor(s.ctx, v.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	_, err = s.svc.Approve(s.ctx, v.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *ServiceSuite) TestDeclineAfterCheckinFails() {
	v, err := s.svc.ScheduleVisit(s.ctx, details("C-2"))
	s.Require().NoError(err)
	_, err = s.svc.CheckinVisitor(s.ctx, v.ID)
	s.Require().NoError(err)

	_, err = s.svc.Decline(s.ctx, v.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *ServiceSuite) TestYesterdaysApprovalDoesNotValidate() {
	yesterday := s.now.Add(-24 * time.Hour)
	v, err := s.svc.ScheduleVisit(s.at(yesterday), details("D-4"))
	s.Require().NoError(err)

	valid, err := s.svc.ValidateVisit(s.ctx, v.ID)
	s.Require().NoError(err)
	s.False(valid)

	stored, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Nil(stored.CheckInTime)

	events, err := s.audit.ListBySubject(s.ctx, "visit:"+v.ID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(string(audit.EventVisitRejectedAtGate), events[1].Action)
	s.Equal(audit.CategoryAccess, events[1].Category)
}

func (s *ServiceSuite) TestValidateUnknownVisitIsFalse() {
	valid, err := s.svc.ValidateVisit(s.ctx, 404)
	s.Require().NoError(err)
	s.False(valid)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.GateValidations.WithLabelValues("denied")))
}

func (s *ServiceSuite) TestUnknownVisitTransitionsAreNotFound() {
	for name, op := range map[string]func(context.Context, id.VisitID) (*models.VisitRequest, error){
		"approve":  s.svc.Approve,
		"decline":  s.svc.Decline,
		"checkin":  s.svc.CheckinVisitor,
		"checkout": s.svc.CheckoutVisitor,
	} {
		_, err := op(s.ctx, 99)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound), name)
	}
}

func (s *ServiceSuite) TestLocationDecidesToday() {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	svc := New(s.store, WithLocation(kolkata))

	// 20:00 UTC on the 16th is already the 17th in IST.
	late := time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)
	v, err := svc.ScheduleVisit(s.at(late), details("E-1"))
	s.Require().NoError(err)
	s.Equal(id.NewDate(2026, 10, 17), *v.VisitDate)
}

func (s *ServiceSuite) TestQueries() {
	yesterday := s.now.Add(-24 * time.Hour)
	old, _ := s.svc.RequestVisit(s.at(yesterday), details("F-9"))
	pendingToday, _ := s.svc.RequestVisit(s.ctx, details("F-9"))
	scheduled, _ := s.svc.ScheduleVisit(s.ctx, details("F-9"))
	_, _ = s.svc.ScheduleVisit(s.ctx, details("G-1"))

	pending, err := s.svc.PendingRequests(s.ctx, "F-9")
	s.Require().NoError(err)
	s.Equal([]id.VisitID{pendingToday.ID}, visitIDs(pending))

	approvals, err := s.svc.PendingApprovals(s.ctx, "F-9")
	s.Require().NoError(err)
	s.Equal([]id.VisitID{old.ID, pendingToday.ID}, visitIDs(approvals))

	today, err := s.svc.TodayVisits(s.ctx, "F-9")
	s.Require().NoError(err)
	s.Equal([]id.VisitID{pendingToday.ID, scheduled.ID}, visitIDs(today))

	byResident, err := s.svc.ScheduledVisits(s.ctx, "F-9", nil)
	s.Require().NoError(err)
	s.Equal([]id.VisitID{scheduled.ID}, visitIDs(byResident))

	board, err := s.svc.TodayBoard(s.ctx)
	s.Require().NoError(err)
	s.Len(board, 3)

	flat, err := s.svc.ListByFlat(s.ctx, "F-9")
	s.Require().NoError(err)
	s.Len(flat, 3)

	on, err := s.svc.VisitsOn(s.ctx, id.DateOf(yesterday))
	s.Require().NoError(err)
	s.Equal([]id.VisitID{old.ID}, visitIDs(on))

	_, err = s.svc.VisitsOn(s.ctx, id.Date{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

// TestCheckInImpliesApproved drives random operation sequences and checks
// that no stored request is ever checked in without being approved, and
// none is checked out without a check-in.
func (s *ServiceSuite) TestCheckInImpliesApproved() {
	rng := rand.New(rand.NewSource(7))
	var ids []id.VisitID
	for i := 0; i < 10; i++ {
		var v *models.VisitRequest
		var err error
		if i%2 == 0 {
			v, err = s.svc.RequestVisit(s.ctx, details("H-1"))
		} else {
			v, err = s.svc.ScheduleVisit(s.ctx, details("H-1"))
		}
		s.Require().NoError(err)
		ids = append(ids, v.ID)
	}

	for step := 0; step < 500; step++ {
		target := ids[rng.Intn(len(ids))]
		ctx := s.at(s.now.Add(time.Duration(step) * time.Second))
		switch rng.Intn(5) {
		case 0:
			_, _ = s.svc.Approve(ctx, target)
		case 1:
			_, _ = s.svc.Decline(ctx, target)
		case 2:
			_, _ = s.svc.CheckinVisitor(ctx, target)
		case 3:
			_, _ = s.svc.CheckoutVisitor(ctx, target)
		case 4:
			_, _ = s.svc.ValidateVisit(ctx, target)
		}
	}

	all, err := s.store.List(s.ctx, models.Query{})
	s.Require().NoError(err)
	for _, v := range all {
		if v.CheckInTime != nil {
			s.Equal(models.StatusApproved, v.Status, "visit %d", v.ID)
		}
		if v.CheckOutTime != nil {
			s.NotNil(v.CheckInTime, "visit %d", v.ID)
		}
	}
}

func (s *ServiceSuite) TestStoreFailureIsInternal() {
	svc := New(failingStore{})
	_, err := svc.ScheduleVisit(s.ctx, details("A-1"))
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	valid, err := svc.ValidateVisit(s.ctx, 1)
	s.False(valid)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestValidationErrorOnBlankName() {
	_, err := s.svc.RequestVisit(s.ctx, models.Details{FlatNo: "A-1"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func visitIDs(visits []*models.VisitRequest) []id.VisitID {
	out := make([]id.VisitID, 0, len(visits))
	for _, v := range visits {
		out = append(out, v.ID)
	}
	return out
}

var errDown = errors.New("connection refused")

type failingStore struct{}

func (failingStore) Create(context.Context, *models.VisitRequest) error { return errDown }
func (failingStore) FindByID(context.Context, id.VisitID) (*models.VisitRequest, error) {
	return nil, errDown
}
func (failingStore) Execute(context.Context, id.VisitID, func(*models.VisitRequest) error, func(*models.VisitRequest)) (*models.VisitRequest, error) {
	return nil, errDown
}
func (failingStore) List(context.Context, models.Query) ([]*models.VisitRequest, error) {
	return nil, errDown
}
