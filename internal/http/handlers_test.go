package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"seniorsync/internal/alert"
	"seniorsync/internal/domain"
	"seniorsync/internal/healthcheck"
	"seniorsync/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChat struct {
	got   domain.ChatRequest
	reply string
	err   error
}

func (f *fakeChat) Chat(ctx context.Context, req domain.ChatRequest) (string, error) {
	f.got = req
	return f.reply, f.err
}

type fakeAlerts struct {
	got alert.Alert
	d   alert.Delivery
	err error
}

func (f *fakeAlerts) Send(ctx context.Context, a alert.Alert) (alert.Delivery, error) {
	f.got = a
	return f.d, f.err
}

type fakeReports struct {
	got     domain.ReportSubmission
	result  domain.ReportResult
	err     error
	reports []*domain.StoredReport
	listErr error
	query   [3]string
}

func (f *fakeReports) Submit(ctx context.Context, sub domain.ReportSubmission) (domain.ReportResult, error) {
	f.got = sub
	return f.result, f.err
}

func (f *fakeReports) List(ctx context.Context, userID, from, to string) ([]*domain.StoredReport, error) {
	f.query = [3]string{userID, from, to}
	return f.reports, f.listErr
}

type fakeChecks struct {
	sess    *healthcheck.Session
	res     *service.MessageResult
	err     error
	started [2]string
	message [2]string
}

func (f *fakeChecks) StartCheck(ctx context.Context, userID, locale string) (*healthcheck.Session, error) {
	f.started = [2]string{userID, locale}
	return f.sess, f.err
}

func (f *fakeChecks) SendMessage(ctx context.Context, sessionID, text string) (*service.MessageResult, error) {
	f.message = [2]string{sessionID, text}
	return f.res, f.err
}

func (f *fakeChecks) GetSession(ctx context.Context, sessionID string) (*healthcheck.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.sess == nil || f.sess.ID != sessionID {
		return nil, service.ErrSessionNotFound
	}
	return f.sess, nil
}

type testAPI struct {
	router  *Router
	chat    *fakeChat
	alerts  *fakeAlerts
	reports *fakeReports
	checks  *fakeChecks
}

func setupRouter() *testAPI {
	api := &testAPI{
		router:  NewRouter("/api", zap.NewNop()),
		chat:    &fakeChat{},
		alerts:  &fakeAlerts{},
		reports: &fakeReports{},
		checks:  &fakeChecks{},
	}
	logger := zap.NewNop()
	api.router.RegisterHealthRoutes()
	api.router.RegisterChatRoutes(NewChatHandler(api.chat, logger))
	api.router.RegisterAlertRoutes(NewAlertHandler(api.alerts, logger))
	api.router.RegisterReportRoutes(NewReportHandler(api.reports, logger))
	api.router.RegisterHealthCheckRoutes(NewHealthCheckHandler(api.checks, logger))
	return api
}

func (api *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) Result[json.RawMessage] {
	t.Helper()
	var res Result[json.RawMessage]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestHealth(t *testing.T) {
	api := setupRouter()

	rec := api.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = api.do(http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChat(t *testing.T) {
	api := setupRouter()
	api.chat.reply = "Hello Anna"

	rec := api.do(http.MethodPost, "/api/ai/chat",
		`{"messages":[{"role":"user","content":"hi"}],"user_context":{"age":80,"medications":["aspirin"]}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"Hello Anna"}`, rec.Body.String())
	require.Len(t, api.chat.got.Messages, 1)
	assert.Equal(t, 80, api.chat.got.UserContext.Age)

	rec = api.do(http.MethodGet, "/api/ai/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChat_Errors(t *testing.T) {
	api := setupRouter()

	rec := api.do(http.MethodPost, "/api/ai/chat", `{"messages":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	api.chat.err = service.ErrNoMessages
	rec = api.do(http.MethodPost, "/api/ai/chat", `{"messages":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"messages are required"}`, rec.Body.String())

	api.chat.err = errors.New("companion chat: boom")
	rec = api.do(http.MethodPost, "/api/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSendAlert(t *testing.T) {
	api := setupRouter()
	api.alerts.d = alert.Delivery{Channels: []string{"telegram"}}

	rec := api.do(http.MethodPost, "/api/telegram/alert",
		`{"alert_type":"health_concern","message":"Poor health rating","health_data":{"moodRating":"3/10"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alert.TypeHealthConcern, api.alerts.got.AlertType)
	assert.Equal(t, "3/10", api.alerts.got.HealthData["moodRating"])

	api.alerts.err = fmt.Errorf("%w: type", service.ErrInvalidAlert)
	rec = api.do(http.MethodPost, "/api/telegram/alert", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	api.alerts.err = alert.ErrAllChannelsFailed
	rec = api.do(http.MethodPost, "/api/telegram/alert", `{"alert_type":"emergency","message":"x"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSendReport(t *testing.T) {
	api := setupRouter()
	api.reports.result = domain.ReportResult{Success: true, Message: "Health report successfully saved to database", ReportID: "r1"}

	rec := api.do(http.MethodPost, "/api/eldercare/send-report",
		`{"userId":1,"sleepHours":6,"moodRating":3,"pain":"No","painSeverity":0,"medicationsTaken":"No","meals":"Yes","healthConcerns":"No"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.UserID("1"), api.reports.got.UserID)
	assert.Equal(t, 6, api.reports.got.SleepHours)

	var res domain.ReportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)

	api.reports.err = fmt.Errorf("%w: pain must be Yes or No", domain.ErrInvalidReport)
	rec = api.do(http.MethodPost, "/api/eldercare/send-report", `{"userId":"u1","pain":"maybe"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	api.reports.err = errors.New("save report: connection refused")
	api.reports.result = domain.ReportResult{Success: false, Message: "Database error"}
	rec = api.do(http.MethodPost, "/api/eldercare/send-report", `{"userId":"u1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestListReports(t *testing.T) {
	api := setupRouter()
	api.reports.reports = []*domain.StoredReport{{ReportID: "r1", UserID: "u1", ReportDate: "2024-05-02"}}

	rec := api.do(http.MethodGet, "/api/eldercare/reports?userId=u1&from=2024-05-01&to=2024-05-31", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [3]string{"u1", "2024-05-01", "2024-05-31"}, api.reports.query)

	res := decodeResult(t, rec)
	assert.Equal(t, codeOK, res.Code)
	var list reportList
	require.NoError(t, json.Unmarshal(res.Result, &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "r1", list.Items[0].ReportID)

	api.reports.listErr = service.ErrInvalidDateRange
	rec = api.do(http.MethodGet, "/api/eldercare/reports?from=bad", "")
	res = decodeResult(t, rec)
	assert.Equal(t, codeFail, res.Code)
	assert.Equal(t, service.ErrInvalidDateRange.Error(), res.Message)
}

func TestExportReports(t *testing.T) {
	api := setupRouter()
	api.reports.reports = []*domain.StoredReport{{ReportID: "r1", UserID: "u1", ReportDate: "2024-05-02"}}

	rec := api.do(http.MethodGet, "/api/eldercare/reports/export?userId=u/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=health-reports-u_1.xlsx", rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestHealthCheckRoutes(t *testing.T) {
	api := setupRouter()
	api.checks.sess = &healthcheck.Session{ID: "s1", UserID: "7", State: healthcheck.StateActive}

	rec := api.do(http.MethodPost, "/api/healthcheck/start", `{"userId":7,"language":"sk-SK"}`)
	res := decodeResult(t, rec)
	assert.Equal(t, codeOK, res.Code)
	assert.Equal(t, [2]string{"7", "sk-SK"}, api.checks.started)

	api.checks.res = &service.MessageResult{Reply: "How do you feel today?", State: healthcheck.StateActive}
	rec = api.do(http.MethodPost, "/api/healthcheck/message", `{"sessionId":"s1","message":"7 hours"}`)
	res = decodeResult(t, rec)
	assert.Equal(t, codeOK, res.Code)
	assert.Equal(t, [2]string{"s1", "7 hours"}, api.checks.message)
	assert.Contains(t, string(res.Result), `"reply":"How do you feel today?"`)

	rec = api.do(http.MethodPost, "/api/healthcheck/message", `{"message":"hi"}`)
	assert.Equal(t, "sessionId is required", decodeResult(t, rec).Message)

	rec = api.do(http.MethodGet, "/api/healthcheck/sessions/s1", "")
	res = decodeResult(t, rec)
	assert.Equal(t, codeOK, res.Code)
	assert.Contains(t, string(res.Result), `"id":"s1"`)

	rec = api.do(http.MethodGet, "/api/healthcheck/sessions/other", "")
	assert.Equal(t, service.ErrSessionNotFound.Error(), decodeResult(t, rec).Message)

	rec = api.do(http.MethodGet, "/api/healthcheck/sessions/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthCheckRoutes_Errors(t *testing.T) {
	api := setupRouter()

	api.checks.err = healthcheck.ErrAlreadyCompletedToday
	rec := api.do(http.MethodPost, "/api/healthcheck/start", `{"userId":"u1"}`)
	assert.Equal(t, healthcheck.ErrAlreadyCompletedToday.Error(), decodeResult(t, rec).Message)

	api.checks.err = errors.New("save session: dial tcp: connection refused")
	rec = api.do(http.MethodPost, "/api/healthcheck/start", `{"userId":"u1"}`)
	assert.Equal(t, "internal error", decodeResult(t, rec).Message)
}
