package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetracker/internal/constants"
	"timetracker/internal/models"
	"timetracker/internal/report"
)

const testSecret = "test-secret"

type fakeUsers map[int64]models.User

func (f fakeUsers) UserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := f[id]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return u, nil
}

type fakeSource struct {
	records  []models.WorkLogRecord
	projects map[int64]*models.Project
	filters  []models.WorkLogFilter
}

func (s *fakeSource) WorkLogRecords(_ context.Context, filter models.WorkLogFilter) ([]models.WorkLogRecord, error) {
	s.filters = append(s.filters, filter)
	return s.records, nil
}

func (s *fakeSource) ProjectByID(_ context.Context, id int64) (*models.Project, error) {
	return s.projects[id], nil
}

type fakeMailer struct {
	filename string
	caption  string
	size     int
	err      error
}

func (m *fakeMailer) SendReport(filename string, data []byte, caption string) error {
	m.filename, m.caption, m.size = filename, caption, len(data)
	return m.err
}

type testEnv struct {
	router http.Handler
	source *fakeSource
	mailer *fakeMailer
}

func newTestEnv(t *testing.T, withMailer bool) *testEnv {
	t.Helper()
	rate := 40.0
	src := &fakeSource{
		records: []models.WorkLogRecord{{
			ID:          1,
			Date:        time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC),
			HoursWorked: 8,
			Author:      models.UserRef{ID: 2, FullName: "Jan Kowalski", HourlyRate: &rate},
			Project:     &models.ProjectRef{ID: 1, Code: "most", Name: "Most"},
		}},
		projects: map[int64]*models.Project{1: {ID: 1, Code: "most", Name: "Most"}},
	}
	users := fakeUsers{
		1: {ID: 1, Email: "admin@example.com", Role: constants.ROLE_ADMIN, IsActive: true},
		2: {ID: 2, Email: "jan@example.com", Role: constants.ROLE_USER, IsActive: true},
		3: {ID: 3, Email: "old@example.com", Role: constants.ROLE_USER, IsActive: false},
	}

	handlers := &ReportHandlers{
		Reports:  report.NewService(src, report.ServiceOptions{Location: time.UTC}),
		Location: time.UTC,
	}
	env := &testEnv{source: src}
	if withMailer {
		env.mailer = &fakeMailer{}
		handlers.Mailer = env.mailer
	}

	r := chi.NewRouter()
	SetupRoutes(r, ApiDependencies{SecretKey: testSecret, Users: users, Reports: handlers})
	env.router = r
	return env
}

func authFor(userID int64) string {
	return authSignedAt(userID, time.Now())
}

func authSignedAt(userID int64, at time.Time) string {
	q := url.Values{}
	q.Set("user_id", strconv.FormatInt(userID, 10))
	q.Set("auth_date", strconv.FormatInt(at.Unix(), 10))
	q.Set("hash", signAuthData(q, testSecret))
	return q.Encode()
}

func (e *testEnv) do(method, target string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if userID > 0 {
		req.Header.Set(AuthHeader, authFor(userID))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) jsonResponse {
	t.Helper()
	var body jsonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(http.MethodGet, "/health", 0)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "success", decode(t, rec).Status)
}

func TestRequestIDIsPropagated(t *testing.T) {
	env := newTestEnv(t, false)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	env.do(http.MethodGet, "/health", 0)
	rec := env.do(http.MethodGet, "/metrics", 0)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "timetracker_http_requests_total")
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(http.MethodGet, "/api/reports/monthly-excel?year=2024&month=3", 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/monthly-excel?year=2024&month=3", nil)
	req.Header.Set(AuthHeader, "user_id=1&auth_date=1&hash=deadbeef")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/reports/monthly-excel?year=2024&month=3", 99)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/reports/monthly-excel?year=2024&month=3", 3)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMonthlyExcelRejectsInvalidMonth(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(http.MethodGet, "/api/reports/monthly-excel?year=2024&month=13", 1)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid month 13", decode(t, rec).Message)
	assert.Empty(t, env.source.filters, "no data must be fetched for invalid params")
}

func TestMonthlyExcelRejectsMalformedParams(t *testing.T) {
	env := newTestEnv(t, false)
	for _, target := range []string{
		"/api/reports/monthly-excel?year=abc&month=3",
		"/api/reports/monthly-excel?year=2024&month=foo",
		"/api/reports/monthly-excel?year=2024&month=3&project_id=-1",
		"/api/reports/monthly-excel?year=2024&month=3&start_date=31-31-2024",
	} {
		rec := env.do(http.MethodGet, target, 1)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestMonthlyExcelForUser(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(http.MethodGet, "/api/reports/monthly-excel?year=2024&month=marzec", 2)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, constants.XLSX_CONTENT_TYPE, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report_2024_03.xlsx")
	assert.NotZero(t, rec.Body.Len())

	require.Len(t, env.source.filters, 1)
	filter := env.source.filters[0]
	require.NotNil(t, filter.AuthorID)
	assert.Equal(t, int64(2), *filter.AuthorID)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), filter.From)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), filter.To)
}

func TestMonthlyExcelForAdminHasNoAuthorFilter(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(http.MethodGet, "/api/reports/monthly-excel?year=2024&month=3&project_id=1", 1)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.source.filters, 1)
	assert.Nil(t, env.source.filters[0].AuthorID)
	require.NotNil(t, env.source.filters[0].ProjectID)
	assert.Equal(t, int64(1), *env.source.filters[0].ProjectID)
}

func TestProjectParticipants(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(http.MethodGet, "/api/reports/project-participants?year=2024&month=3", 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "project_id is required", decode(t, rec).Message)

	rec = env.do(http.MethodGet, "/api/reports/project-participants?year=2024&month=3&project_id=5", 1)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/api/reports/project-participants?year=2024&month=3&project_id=1", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "uczestnicy_most_2024_03.xlsx")
}

func TestExportWorkLogs(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(http.MethodGet, "/api/worklogs/export?start_date=2024-03-10&end_date=2024-03-01", 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/worklogs/export?start_date=2024-03-01&end_date=2024-03-31", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "raport_godzin_")
	require.Len(t, env.source.filters, 1)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), env.source.filters[0].To)
}

func TestSendMonthlyExcel(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodPost, "/api/admin/reports/monthly-excel/send?year=2024&month=3", 2)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPost, "/api/admin/reports/monthly-excel/send?year=2024&month=3", 1)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "report_2024_03.xlsx", env.mailer.filename)
	assert.Contains(t, env.mailer.caption, "2024")
	assert.NotZero(t, env.mailer.size)

	env.mailer.err = errors.New("telegram down")
	rec = env.do(http.MethodPost, "/api/admin/reports/monthly-excel/send?year=2024&month=3", 1)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSendMonthlyExcelWithoutMailer(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(http.MethodPost, "/api/admin/reports/monthly-excel/send?year=2024&month=3", 1)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestValidateAuthData(t *testing.T) {
	id, err := validateAuthData(authFor(7), testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = validateAuthData(authFor(7), "other-secret")
	assert.Error(t, err)

	_, err = validateAuthData(authFor(7), "")
	assert.Error(t, err)

	_, err = validateAuthData("auth_date=1&hash=aa", testSecret)
	assert.Error(t, err)

	_, err = validateAuthData("user_id=abc&hash=aa", testSecret)
	assert.Error(t, err)
}

func TestValidateAuthDataAge(t *testing.T) {
	now := time.Date(2024, time.April, 2, 12, 0, 0, 0, time.UTC)
	authNow = func() time.Time { return now }
	t.Cleanup(func() { authNow = time.Now })

	_, err := validateAuthData(authSignedAt(7, now.Add(-23*time.Hour)), testSecret)
	assert.NoError(t, err)

	_, err = validateAuthData(authSignedAt(7, now.Add(-25*time.Hour)), testSecret)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	_, err = validateAuthData(authSignedAt(7, now.Add(time.Hour)), testSecret)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "future")

	q := url.Values{}
	q.Set("user_id", "7")
	q.Set("hash", signAuthData(q, testSecret))
	_, err = validateAuthData(q.Encode(), testSecret)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth_date")
}

func TestReplayedAuthHeaderIsRejected(t *testing.T) {
	env := newTestEnv(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/monthly-excel?year=2024&month=3", nil)
	req.Header.Set(AuthHeader, authSignedAt(1, time.Now().Add(-48*time.Hour)))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMonthlyExcelRejectsRangeOutsideMonth(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(http.MethodGet, "/api/reports/monthly-excel?year=2024&month=3&start_date=2024-03-01&end_date=2024-04-30", 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForError(&report.Error{Kind: report.KindInvalidParams}))
	assert.Equal(t, http.StatusNotFound, statusForError(&report.Error{Kind: report.KindNotFound}))
	assert.Equal(t, http.StatusInternalServerError, statusForError(&report.Error{Kind: report.KindMissingResource}))
	assert.Equal(t, http.StatusInternalServerError, statusForError(errors.New("boom")))
}
