package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/platform/config"
	"gatehouse/pkg/platform/audit/publisher"
	"gatehouse/pkg/platform/middleware/admin"
	"gatehouse/pkg/testutil"
)

const testAdminToken = "test-admin-token"

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Server{AdminToken: testAdminToken, Location: time.UTC}

	i, err := openInfra(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(i.Close)

	pub := publisher.NewPublisher(i.auditStore, publisher.WithLogger(log))
	t.Cleanup(pub.Close)

	return newRouter(cfg, log, i, pub, prometheus.NewRegistry())
}

func adminRequest(t *testing.T, method, path string, body any) *http.Request {
	var req *http.Request
	if body != nil {
		req = testutil.NewJSONRequest(t, method, path, body)
	} else {
		req = testutil.NewRequest(t, method, path)
	}
	req.Header.Set(admin.TokenHeader, testAdminToken)
	return req
}

type idBody struct {
	ID int64 `json:"id"`
}

func TestRouter_GateDay(t *testing.T) {
	r := newTestRouter(t)
	var guardID, visitID int64
	var passID int64
	var passCode string
	today := time.Now().UTC().Format("2006-01-02")

	testutil.Given(t, "a guard registered by the admin", func(t *testing.T) {
		rr := testutil.DoRequest(r, adminRequest(t, http.MethodPost, "/admin/add-guard", map[string]string{
			"name": "Ravi", "shift": "night",
		}))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		guardID = testutil.UnmarshalResponse[idBody](t, rr).ID
	})

	testutil.When(t, "the guard starts the shift", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodPost, fmt.Sprintf("/guard/checkin/%d", guardID)))
		testutil.AssertStatusOK(t, rr)
	})

	testutil.When(t, "a visitor arrives and the resident approves", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/guard/request-visit", map[string]string{
			"name": "Asha", "flatNo": "A-101", "purpose": "delivery",
		}))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		testutil.AssertJSONContains(t, rr, "status", "PENDING")
		visitID = testutil.UnmarshalResponse[idBody](t, rr).ID

		rr = testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, fmt.Sprintf("/guard/validate-visit?visitorId=%d", visitID)))
		testutil.AssertStatusOK(t, rr)
		assert.JSONEq(t, "false", rr.Body.String())

		rr = testutil.DoRequest(r, testutil.NewRequest(t, http.MethodPost, fmt.Sprintf("/resident/approve-visit/%d", visitID)))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "APPROVED")

		rr = testutil.DoRequest(r, testutil.NewRequest(t, http.MethodPost, fmt.Sprintf("/guard/visitor/%d/checkin", visitID)))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONHasKey(t, rr, "checkInTime")
	})

	testutil.When(t, "the resident issues a QR pass and the gate scans it", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/qr-visitor/create", map[string]string{
			"name": "Meera", "flatNo": "A-101", "relation": "sister", "visitDate": today,
		}))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		issued := testutil.UnmarshalResponse[struct {
			VisitorID int64  `json:"visitorId"`
			QRCode    string `json:"qrCode"`
		}](t, rr)
		passID, passCode = issued.VisitorID, issued.QRCode

		rr = testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/qr-visitor/validate", map[string]string{"qrCode": passCode}))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "valid", true)

		rr = testutil.DoRequest(r, testutil.NewRequest(t, http.MethodPost, fmt.Sprintf("/qr-visitor/checkin/%d", passID)))
		testutil.AssertStatusOK(t, rr)

		rr = testutil.DoRequest(r, testutil.NewRequest(t, http.MethodPost, fmt.Sprintf("/qr-visitor/checkin/%d", passID)))
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	testutil.Then(t, "the resident dashboard shows the day", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/resident/dashboard?flatNo=A-101"))
		testutil.AssertStatusOK(t, rr)
		d := testutil.UnmarshalResponse[struct {
			PendingApprovals []idBody `json:"pendingApprovals"`
			TodayVisits      []idBody `json:"todayVisits"`
			TodayPasses      []idBody `json:"todayPasses"`
		}](t, rr)
		assert.Empty(t, d.PendingApprovals)
		require.Len(t, d.TodayVisits, 1)
		assert.Equal(t, visitID, d.TodayVisits[0].ID)
		require.Len(t, d.TodayPasses, 1)
		assert.Equal(t, passID, d.TodayPasses[0].ID)
	})

	testutil.Then(t, "the admin sees the guard on today's attendance", func(t *testing.T) {
		rr := testutil.DoRequest(r, adminRequest(t, http.MethodGet, "/admin/guard-attendance?date="+today, nil))
		testutil.AssertStatusOK(t, rr)
		rows := testutil.UnmarshalResponse[[]struct {
			GuardID int64 `json:"guardId"`
		}](t, rr)
		require.Len(t, *rows, 1)
		assert.Equal(t, guardID, (*rows)[0].GuardID)
	})

	testutil.Then(t, "the admin sees the guard on duty by name", func(t *testing.T) {
		for _, path := range []string{"/admin/guard/on?start=" + today, "/admin/guards-by-date?date=" + today} {
			rr := testutil.DoRequest(r, adminRequest(t, http.MethodGet, path, nil))
			testutil.AssertStatusOK(t, rr)
			rows := testutil.UnmarshalResponse[[]struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			}](t, rr)
			require.Len(t, *rows, 1, path)
			assert.Equal(t, guardID, (*rows)[0].ID)
			assert.Equal(t, "Ravi", (*rows)[0].Name)
		}

		rr := testutil.DoRequest(r, adminRequest(t, http.MethodGet, fmt.Sprintf("/admin/guard/%d", guardID), nil))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "name", "Ravi")
	})
}

func TestRouter_PackagesAndComplaints(t *testing.T) {
	r := newTestRouter(t)
	var packageID, complaintID int64
	var otp string

	testutil.Given(t, "a resident expecting a parcel", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/packages", map[string]string{
			"description": "Books", "flatNo": "A-101", "sender": "Bookshop",
		}))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		reg := testutil.UnmarshalResponse[struct {
			ID          int64  `json:"id"`
			DeliveryOTP string `json:"deliveryOtp"`
		}](t, rr)
		packageID, otp = reg.ID, reg.DeliveryOTP
		require.Len(t, otp, 6)
	})

	testutil.When(t, "the gate hands it over with the OTP", func(t *testing.T) {
		path := fmt.Sprintf("/packages/%d/verify-otp", packageID)
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"otp": otp}))
		testutil.AssertStatusOK(t, rr)

		rr = testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"otp": otp}))
		assert.Equal(t, http.StatusConflict, rr.Code, "a delivered package refuses the OTP again")
	})

	testutil.Then(t, "the flat sees it delivered", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/packages?flatNo=A-101&status=DELIVERED"))
		testutil.AssertStatusOK(t, rr)
		rows := testutil.UnmarshalResponse[[]idBody](t, rr)
		require.Len(t, *rows, 1)
		assert.Equal(t, packageID, (*rows)[0].ID)
	})

	testutil.Given(t, "a complaint filed by the resident", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/resident/complaints", map[string]string{
			"title": "Lift stuck", "flatNo": "A-101",
		}))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		testutil.AssertJSONContains(t, rr, "status", "PENDING")
		complaintID = testutil.UnmarshalResponse[idBody](t, rr).ID
	})

	testutil.When(t, "the admin assigns and resolves it", func(t *testing.T) {
		rr := testutil.DoRequest(r, adminRequest(t, http.MethodPut, fmt.Sprintf("/admin/complaints/%d/assign", complaintID), map[string]string{"assignedTo": "Raj"}))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "OPEN")

		rr = testutil.DoRequest(r, adminRequest(t, http.MethodPut, fmt.Sprintf("/admin/complaints/%d/status", complaintID), map[string]string{"status": "RESOLVED"}))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "RESOLVED")
	})

	testutil.Then(t, "the resident sees the resolution", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, fmt.Sprintf("/resident/complaints/%d", complaintID)))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "RESOLVED")
		testutil.AssertJSONContains(t, rr, "assignedTo", "Raj")

		rr = testutil.DoRequest(r, testutil.NewRequest(t, http.MethodPut, fmt.Sprintf("/admin/complaints/%d/assign", complaintID)))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestRouter_Platform(t *testing.T) {
	r := newTestRouter(t)

	t.Run("healthz reports ok on memory backends", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("metrics are exposed after traffic", func(t *testing.T) {
		testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(t, rr)
		assert.Contains(t, rr.Body.String(), "gatehouse_")
	})

	t.Run("admin routes require the token", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/admin/get-guards"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("every response carries a request id", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})
}
