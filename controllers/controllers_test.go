package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"event-registration/catalog"
	"event-registration/metrics"
	"event-registration/models"
	"event-registration/ratelimit"
	"event-registration/services"
	"event-registration/session"
	"event-registration/store"
	"event-registration/testutil"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	sent []string
}

func (n *recordingNotifier) NotifyApproval(_ context.Context, a models.Approval) error {
	n.sent = append(n.sent, a.Team.TeamID)
	return nil
}

func (n *recordingNotifier) Channel() string { return "email" }

type app struct {
	router *mux.Router
	note   *recordingNotifier
}

func newApp(t *testing.T, limits Limits) *app {
	t.Helper()
	st := store.New(testutil.NewTestDB(t))
	cat, err := catalog.Default()
	require.NoError(t, err)
	require.NoError(t, st.SyncEvents(context.Background(), cat.Events))

	logger, _ := test.NewNullLogger()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	sessions := session.NewManager("test-secret", time.Hour)
	note := &recordingNotifier{}

	adminSvc := services.NewAdminService(st, sessions, note, m, logger)
	require.NoError(t, adminSvc.CreateAdmin(context.Background(), services.Credentials{Username: "admin", Password: "letmein"}, false))

	limitStore, err := ratelimit.NewStore("memory://")
	require.NoError(t, err)

	router, err := NewRouter(Deps{
		Store:        st,
		Catalog:      cat,
		Registration: services.NewRegistrationService(st, cat, m, logger),
		Payments:     services.NewPaymentService(st, nil, m, logger),
		Admin:        adminSvc,
		Sessions:     sessions,
		LimitStore:   limitStore,
		Limits:       limits,
		Gatherer:     reg,
		Log:          logger,
	})
	require.NoError(t, err)
	return &app{router: router, note: note}
}

var generous = Limits{Default: "1000-M", Register: "1000-M", Approve: "1000-M"}

func (a *app) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *app) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (a *app) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func teamForm(members int, extra url.Values) url.Values {
	form := url.Values{"team_name": {"Byte Me"}}
	for i := 0; i < members; i++ {
		n := string(rune('1' + i))
		form.Add("member_name[]", "Member "+n)
		form.Add("study_year[]", "III")
		form.Add("department[]", "CSE")
		form.Add("college_name[]", "KEC")
		form.Add("phone[]", "900000000"+n)
		form.Add("college_email[]", "m"+n+"@kec.ac.in")
		form.Add("workshop_choice[]", "")
	}
	for k, v := range extra {
		form[k] = v
	}
	return form
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func (a *app) register(t *testing.T, members int) string {
	t.Helper()
	rec := a.postForm("/team", teamForm(members, url.Values{"nontech_events[]": {"IPL Auction"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	var receipt services.Receipt
	decode(t, rec, &receipt)
	return receipt.TeamID
}

func (a *app) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := a.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"letmein"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestHomeCountsRegistrations(t *testing.T) {
	a := newApp(t, generous)

	var body map[string]int
	decode(t, a.get("/"), &body)
	assert.Equal(t, 0, body["total_registrations"])

	a.register(t, 1)
	a.register(t, 2)

	body = nil
	decode(t, a.get("/"), &body)
	assert.Equal(t, 2, body["total_registrations"])
}

func TestTeamForm(t *testing.T) {
	a := newApp(t, generous)

	rec := a.get("/team")
	require.Equal(t, http.StatusOK, rec.Code)

	var form registrationForm
	decode(t, rec, &form)
	assert.Equal(t, 250, form.FeePerMember)
	assert.Len(t, form.TechnicalEvents, 4)
	assert.Len(t, form.NonTechEvents, 3)
	require.Len(t, form.Workshops, 3)
	for _, w := range form.Workshops {
		if w.Name == "IoT Workshop" {
			require.NotNil(t, w.Remaining)
			assert.Equal(t, 60, *w.Remaining)
		}
	}
}

func TestRegisterRedirectsToPayment(t *testing.T) {
	a := newApp(t, generous)

	rec := a.postForm("/team", teamForm(2, url.Values{
		"tech_events[]":     {"Paper Presentation"},
		"workshop_choice[]": {"IoT Workshop", ""},
	}))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	var receipt services.Receipt
	decode(t, rec, &receipt)
	assert.Equal(t, "/payment/"+receipt.TeamID, rec.Header().Get("Location"))
	assert.Equal(t, 500, receipt.Amount)
	assert.Equal(t, services.TypeTechNonTechWorkshop, receipt.RegistrationType)

	var page paymentPage
	decode(t, a.get("/payment/"+receipt.TeamID), &page)
	assert.Equal(t, 500, page.Amount)
	assert.Equal(t, 2, page.MemberCount)
	assert.Equal(t, models.StatusUnpaid, page.PaymentStatus)
	assert.False(t, page.Submitted)
}

func TestRegisterRejections(t *testing.T) {
	tests := []struct {
		name   string
		form   url.Values
		status int
		msg    string
	}{
		{"no members", teamForm(0, nil), http.StatusBadRequest, "Invalid participant count"},
		{"four members", teamForm(4, nil), http.StatusBadRequest, "Invalid participant count"},
		{
			"three members without qualifying event",
			teamForm(3, url.Values{"tech_events[]": {"Code Debugging"}}),
			http.StatusBadRequest,
			"3 members allowed only for specific events",
		},
		{
			"unknown event",
			teamForm(1, url.Values{"tech_events[]": {"Robo Race"}}),
			http.StatusBadRequest,
			"Robo Race",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newApp(t, generous)
			rec := a.postForm("/team", tt.form)
			assert.Equal(t, tt.status, rec.Code)

			var e models.Error
			decode(t, rec, &e)
			assert.Contains(t, e.Message, tt.msg)

			var body map[string]int
			decode(t, a.get("/"), &body)
			assert.Equal(t, 0, body["total_registrations"])
		})
	}
}

func TestRegisterIsRateLimited(t *testing.T) {
	a := newApp(t, Limits{Default: "1000-M", Register: "1-M", Approve: "1000-M"})

	a.register(t, 1)
	rec := a.postForm("/team", teamForm(1, nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestPaymentSubmission(t *testing.T) {
	a := newApp(t, generous)
	id := a.register(t, 1)

	rec := a.postForm("/payment/"+id, url.Values{"transaction_id": {"UTR123"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/", rec.Header().Get("Location"))

	var page paymentPage
	decode(t, a.get("/payment/"+id), &page)
	assert.Equal(t, models.StatusWaiting, page.PaymentStatus)
	assert.True(t, page.Submitted)

	rec = a.postForm("/payment/"+id, url.Values{"transaction_id": {"UTR999"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, http.StatusNotFound, a.get("/payment/NXNOPE").Code)
	assert.Equal(t, http.StatusBadRequest, a.postForm("/payment/"+id, url.Values{}).Code)
}

func TestPaymentReceiptRejectedWhenUploadsDisabled(t *testing.T) {
	a := newApp(t, generous)
	id := a.register(t, 1)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("transaction_id", "UTR123"))
	part, err := mw.CreateFormFile("receipt", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/payment/"+id, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := a.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var page paymentPage
	decode(t, a.get("/payment/"+id), &page)
	assert.False(t, page.Submitted)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	a := newApp(t, generous)

	for _, path := range []string{"/admin/dashboard", "/approve/NX000000"} {
		rec := a.get(path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"), path)
	}

	forged := &http.Cookie{Name: session.CookieName, Value: "not-a-token"}
	assert.Equal(t, http.StatusSeeOther, a.get("/admin/dashboard", forged).Code)
}

func TestAdminLogin(t *testing.T) {
	a := newApp(t, generous)

	rec := a.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	cookie := a.login(t)
	assert.True(t, cookie.HttpOnly)

	rec = a.get("/admin/login", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
}

func TestApprovalFlow(t *testing.T) {
	a := newApp(t, generous)
	cookie := a.login(t)

	paid := a.register(t, 2)
	unpaid := a.register(t, 1)
	require.Equal(t, http.StatusSeeOther, a.postForm("/payment/"+paid, url.Values{"transaction_id": {"UTR1"}}).Code)

	var d models.Dashboard
	decode(t, a.get("/admin/dashboard", cookie), &d)
	assert.Len(t, d.Teams, 2)
	assert.Equal(t, 0, d.Approved)
	assert.Equal(t, 1, d.Pending)

	rec := a.get("/approve/"+unpaid, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.get("/approve/"+paid, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusConflict, a.get("/approve/"+paid, cookie).Code)
	assert.Equal(t, http.StatusNotFound, a.get("/approve/NXNOPE", cookie).Code)
	assert.Equal(t, []string{paid}, a.note.sent)

	d = models.Dashboard{}
	decode(t, a.get("/admin/dashboard", cookie), &d)
	assert.Equal(t, 1, d.Approved)
	assert.Equal(t, 0, d.Pending)
}

func TestLogoutRevokesSession(t *testing.T) {
	a := newApp(t, generous)
	cookie := a.login(t)
	require.Equal(t, http.StatusOK, a.get("/admin/dashboard", cookie).Code)

	rec := a.get("/admin/logout", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusSeeOther, a.get("/admin/dashboard", cookie).Code)
}

func TestMetricsAndHealth(t *testing.T) {
	a := newApp(t, generous)
	a.register(t, 1)

	assert.Equal(t, http.StatusOK, a.get("/healthz").Code)

	rec := a.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `eventreg_registrations_total{result="ok"} 1`)
}
