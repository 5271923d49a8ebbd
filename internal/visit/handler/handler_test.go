package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"gatehouse/internal/visit/handler/mocks"
	"gatehouse/internal/visit/models"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/visit-mocks.go -package=mocks Service

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(s.service, logger)
	s.router = chi.NewRouter()
	h.Register(s.router)
	s.router.Route("/admin", h.RegisterAdmin)
}

func sampleVisit() *models.VisitRequest {
	today := id.NewDate(2026, 10, 16)
	return &models.VisitRequest{
		ID:          7,
		VisitorName: "Nisha",
		FlatNo:      "A-101",
		VisitDate:   &today,
		Status:      models.StatusApproved,
		CreatedAt:   time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
	}
}

func (s *HandlerSuite) TestRequestVisit() {
	s.Run("creates a pending request", func() {
		s.service.EXPECT().
			RequestVisit(gomock.Any(), models.Details{VisitorName: "Nisha", FlatNo: "A-101", Relation: "aunt"}).
			Return(&models.VisitRequest{ID: 3, VisitorName: "Nisha", FlatNo: "A-101", Status: models.StatusPending}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/guard/request-visit",
			map[string]string{"name": " Nisha ", "flatNo": "A-101", "relation": "aunt"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "status", "PENDING")
	})

	s.Run("missing name is a validation error", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/guard/request-visit",
			map[string]string{"flatNo": "A-101"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("malformed json is a bad request", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/guard/request-visit", "{")
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})
}

func (s *HandlerSuite) TestScheduleVisit() {
	s.service.EXPECT().
		ScheduleVisit(gomock.Any(), gomock.Any()).
		Return(sampleVisit(), nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/resident/schedule-visit",
		map[string]string{"name": "Nisha", "flatNo": "A-101"})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	testutil.AssertJSONContains(s.T(), rr, "visitDate", "2026-10-16")
}

func (s *HandlerSuite) TestValidateVisit() {
	s.Run("returns a bare boolean", func() {
		s.service.EXPECT().ValidateVisit(gomock.Any(), id.VisitID(7)).Return(true, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/guard/validate-visit?visitorId=7"))

		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq("true", rr.Body.String())
	})

	s.Run("rejects a non-numeric id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/guard/validate-visit?visitorId=abc"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	s.Run("hides internal error details", func() {
		s.service.EXPECT().ValidateVisit(gomock.Any(), id.VisitID(8)).
			Return(false, dErrors.New(dErrors.CodeInternal, "database exploded"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/guard/validate-visit?visitorId=8"))

		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
		s.NotContains(rr.Body.String(), "exploded")
	})
}

func (s *HandlerSuite) TestTransitionsMapErrors() {
	cases := []struct {
		name   string
		path   string
		expect func() *gomock.Call
		status int
		code   dErrors.Code
	}{
		{
			name:   "checkin of pending visit conflicts",
			path:   "/guard/visitor/7/checkin",
			expect: func() *gomock.Call { return s.service.EXPECT().CheckinVisitor(gomock.Any(), id.VisitID(7)) },
			status: http.StatusConflict,
			code:   dErrors.CodeInvalidState,
		},
		{
			name:   "second checkout is already done",
			path:   "/resident/visit/7/checkout",
			expect: func() *gomock.Call { return s.service.EXPECT().CheckoutVisitor(gomock.Any(), id.VisitID(7)) },
			status: http.StatusConflict,
			code:   dErrors.CodeAlreadyDone,
		},
		{
			name:   "approve unknown visit",
			path:   "/resident/approve-visit/7",
			expect: func() *gomock.Call { return s.service.EXPECT().Approve(gomock.Any(), id.VisitID(7)) },
			status: http.StatusNotFound,
			code:   dErrors.CodeNotFound,
		},
		{
			name:   "decline after check in",
			path:   "/resident/decline-visit/7",
			expect: func() *gomock.Call { return s.service.EXPECT().Decline(gomock.Any(), id.VisitID(7)) },
			status: http.StatusConflict,
			code:   dErrors.CodeInvalidState,
		},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			tc.expect().Return(nil, dErrors.New(tc.code, "rejected"))

			rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, tc.path))

			testutil.AssertStatusAndError(s.T(), rr, tc.status, string(tc.code))
		})
	}
}

func (s *HandlerSuite) TestApprove() {
	s.service.EXPECT().Approve(gomock.Any(), id.VisitID(7)).Return(sampleVisit(), nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/resident/approve-visit/7"))

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "status", "APPROVED")
}

func (s *HandlerSuite) TestFlatListsRequireFlat() {
	for _, path := range []string{
		"/resident/visitor-requests",
		"/resident/today-visits",
		"/resident/pending-approvals",
		"/resident/scheduled-visits",
	} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	}
}

func (s *HandlerSuite) TestScheduledVisitsParsesDate() {
	date := id.NewDate(2026, 10, 20)
	s.service.EXPECT().ScheduledVisits(gomock.Any(), "A-101", &date).Return([]*models.VisitRequest{}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/resident/scheduled-visits?flatNo=A-101&date=2026-10-20"))

	testutil.AssertStatusOK(s.T(), rr)
	s.JSONEq("[]", rr.Body.String())
}

func (s *HandlerSuite) TestStatusBoard() {
	checkIn := time.Date(2026, 10, 16, 9, 5, 0, 0, time.UTC)
	v := sampleVisit()
	v.CheckInTime = &checkIn
	s.service.EXPECT().TodayBoard(gomock.Any()).Return([]*models.VisitRequest{v}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/guard/request-visit-status"))

	testutil.AssertStatusOK(s.T(), rr)
	board := testutil.UnmarshalResponse[[]StatusBoardEntry](s.T(), rr)
	s.Require().Len(*board, 1)
	s.Equal("Nisha", (*board)[0].Name)
	s.True(checkIn.Equal(*(*board)[0].CheckInTime))
}

func (s *HandlerSuite) TestAdminViews() {
	s.Run("visits on a date", func() {
		s.service.EXPECT().VisitsOn(gomock.Any(), id.NewDate(2026, 10, 1)).Return([]*models.VisitRequest{sampleVisit()}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/admin/visitors/on?start=2026-10-01"))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("bad date", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/admin/visitors/on?start=01-10-2026"))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("flat visitors", func() {
		s.service.EXPECT().ListByFlat(gomock.Any(), "B-2").Return([]*models.VisitRequest{}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/admin/flat-visitor/B-2"))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("active visitors", func() {
		s.service.EXPECT().TodayBoard(gomock.Any()).Return([]*models.VisitRequest{}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/admin/active-visitors"))
		testutil.AssertStatusOK(s.T(), rr)
	})
}
