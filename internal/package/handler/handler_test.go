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

	"gatehouse/internal/package/handler/mocks"
	"gatehouse/internal/package/models"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/package-mocks.go -package=mocks Service

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
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func samplePackage() *models.Package {
	return &models.Package{
		ID:           7,
		Description:  "Books",
		FlatNo:       "C-3",
		Status:       models.StatusPending,
		ExpectedDate: id.NewDate(2026, 10, 16),
		DeliveryOTP:  "482913",
		CreatedAt:    time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC),
	}
}

func (s *HandlerSuite) TestRegister() {
	s.Run("returns the OTP once", func() {
		s.service.EXPECT().
			Register(gomock.Any(), models.Details{Description: "Books", FlatNo: "C-3", ExpectedDate: id.NewDate(2026, 10, 16)}).
			Return(&models.Registered{Package: samplePackage(), DeliveryOTP: "482913"}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/packages", map[string]string{
			"description": "Books", "flatNo": "C-3", "expectedDate": "2026-10-16",
		}))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "deliveryOtp", "482913")
		testutil.AssertJSONContains(s.T(), rr, "status", "PENDING")
	})

	s.Run("description is required", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/packages", map[string]string{"flatNo": "C-3"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("OTP must be digits", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/packages", map[string]string{
			"description": "Books", "flatNo": "C-3", "deliveryOtp": "abcd",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})
}

func (s *HandlerSuite) TestList() {
	day := id.NewDate(2026, 10, 16)

	s.Run("query filters", func() {
		s.service.EXPECT().List(gomock.Any(), models.Query{FlatNo: "C-3", Status: models.StatusPending, Date: &day}).
			Return([]*models.Package{samplePackage()}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/packages?flatNo=C-3&status=pending&date=2026-10-16"))
		testutil.AssertStatusOK(s.T(), rr)
		s.NotContains(rr.Body.String(), "482913", "lists never carry the OTP")
	})

	s.Run("status path", func() {
		s.service.EXPECT().List(gomock.Any(), models.Query{Status: models.StatusDelivered}).
			Return([]*models.Package{}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/packages/status/Delivered"))
		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq("[]", rr.Body.String())
	})

	s.Run("unknown status", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/packages/status/lost"))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *HandlerSuite) TestVerifyOTP() {
	s.Run("delivers", func() {
		p := samplePackage()
		at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
		p.Status, p.DeliveredAt = models.StatusDelivered, &at
		s.service.EXPECT().VerifyOTP(gomock.Any(), id.PackageID(7), "482913").Return(p, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/packages/7/verify-otp", map[string]string{"otp": "482913"}))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONHasKey(s.T(), rr, "package")
		testutil.AssertJSONHasKey(s.T(), rr, "message")
	})

	s.Run("already delivered is a conflict", func() {
		s.service.EXPECT().VerifyOTP(gomock.Any(), id.PackageID(7), "482913").
			Return(nil, dErrors.New(dErrors.CodeAlreadyDone, "package has already been delivered"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/packages/7/verify-otp", map[string]string{"otp": "482913"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeAlreadyDone))
	})

	s.Run("wrong OTP is a bad request", func() {
		s.service.EXPECT().VerifyOTP(gomock.Any(), id.PackageID(7), "1").
			Return(nil, dErrors.New(dErrors.CodeValidation, "invalid OTP, please check and try again"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/packages/7/verify-otp", map[string]string{"otp": "1"}))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("missing OTP never reaches the service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/packages/7/verify-otp", map[string]string{}))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *HandlerSuite) TestUpdates() {
	s.Run("status override", func() {
		s.service.EXPECT().UpdateStatus(gomock.Any(), id.PackageID(7), models.StatusDelivered).Return(samplePackage(), nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/packages/7/status", map[string]string{"status": "Delivered"}))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("details alias", func() {
		s.service.EXPECT().
			Update(gomock.Any(), id.PackageID(7), models.Details{Description: "Lamp", FlatNo: "C-3"}).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "package cannot be updated after it has been delivered"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/packages/7/details", map[string]string{
			"description": "Lamp", "flatNo": "C-3",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeInvalidState))
	})

	s.Run("get unknown", func() {
		s.service.EXPECT().Get(gomock.Any(), id.PackageID(9)).Return(nil, dErrors.New(dErrors.CodeNotFound, "package not found"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/packages/9"))
		testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	})
}
