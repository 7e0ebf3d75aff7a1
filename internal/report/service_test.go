package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetracker/internal/models"
)

type fakeSource struct {
	records  []models.WorkLogRecord
	projects map[int64]*models.Project
	err      error

	calls   int
	filters []models.WorkLogFilter
}

func (s *fakeSource) WorkLogRecords(_ context.Context, filter models.WorkLogFilter) ([]models.WorkLogRecord, error) {
	s.calls++
	s.filters = append(s.filters, filter)
	return s.records, s.err
}

func (s *fakeSource) ProjectByID(_ context.Context, id int64) (*models.Project, error) {
	return s.projects[id], nil
}

func int64p(v int64) *int64 { return &v }

func newTestService(src RecordSource) *Service {
	return NewService(src, ServiceOptions{
		CompanySheet:  true,
		EmployeeSheet: true,
		Now:           func() time.Time { return time.Date(2024, time.April, 2, 15, 4, 5, 0, time.UTC) },
	})
}

func TestMonthlyRequestValidate(t *testing.T) {
	from := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	febEnd := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	aprEnd := time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  MonthlyRequest
		ok   bool
	}{
		{"valid", MonthlyRequest{Year: 2024, Month: 3}, true},
		{"month 13", MonthlyRequest{Year: 2024, Month: 13}, false},
		{"month 0", MonthlyRequest{Year: 2024, Month: 0}, false},
		{"year too small", MonthlyRequest{Year: 1899, Month: 1}, false},
		{"year too large", MonthlyRequest{Year: 2101, Month: 1}, false},
		{"inverted range", MonthlyRequest{Year: 2024, Month: 3, From: &from, To: &to}, false},
		{"bad project", MonthlyRequest{Year: 2024, Month: 3, ProjectID: int64p(0)}, false},
		{"start in previous month", MonthlyRequest{Year: 2024, Month: 3, From: &febEnd}, false},
		{"end in next month", MonthlyRequest{Year: 2024, Month: 3, To: &aprEnd}, false},
		{"range inside month", MonthlyRequest{Year: 2024, Month: 3, From: &to, To: &from}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidParams), "got %v", err)
		})
	}
}

func TestMonthlyRequestRange(t *testing.T) {
	from, to := MonthlyRequest{Year: 2024, Month: 12}.Range(time.UTC)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), to)

	start := time.Date(2024, time.December, 5, 13, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.December, 9, 0, 0, 0, 0, time.UTC)
	from, to = MonthlyRequest{Year: 2024, Month: 12, From: &start, To: &end}.Range(time.UTC)
	assert.Equal(t, time.Date(2024, time.December, 5, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, time.December, 10, 0, 0, 0, 0, time.UTC), to, "end date is inclusive")
}

func TestMonthlyRequestRangeStaysInMonth(t *testing.T) {
	start := time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC)
	from, to := MonthlyRequest{Year: 2024, Month: 3, From: &start, To: &end}.Range(time.UTC)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestMonthlyWorkbookRejectsRangeOutsideMonth(t *testing.T) {
	who := author(1, "Anna")
	april := record(2, who, 5, 4)
	april.Date = time.Date(2024, time.April, 5, 8, 0, 0, 0, time.UTC)
	src := &fakeSource{records: []models.WorkLogRecord{record(1, who, 5, 8), april}}

	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC)
	_, err := newTestService(src).MonthlyWorkbook(context.Background(),
		MonthlyRequest{Year: 2024, Month: 3, From: &from, To: &to}, admin)

	assert.Equal(t, KindInvalidParams, KindOf(err))
	assert.Contains(t, Message(err), "end_date 2024-04-30 is outside 2024-03")
	assert.Equal(t, 0, src.calls, "april records are never fetched into the march grid")
}

func TestMonthlyWorkbookRejectsBeforeFetching(t *testing.T) {
	src := &fakeSource{}
	_, err := newTestService(src).MonthlyWorkbook(context.Background(), MonthlyRequest{Year: 2024, Month: 13}, admin)

	assert.Equal(t, KindInvalidParams, KindOf(err))
	assert.Equal(t, 0, src.calls)
}

func TestMonthlyWorkbook(t *testing.T) {
	src := &fakeSource{records: []models.WorkLogRecord{record(1, author(1, "Anna"), 4, 8)}}

	doc, err := newTestService(src).MonthlyWorkbook(context.Background(), MonthlyRequest{Year: 2024, Month: 3}, admin)
	require.NoError(t, err)

	assert.Equal(t, "report_2024_03.xlsx", doc.Filename)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", doc.ContentType)
	require.Len(t, src.filters, 1)
	assert.Nil(t, src.filters[0].AuthorID, "admins see every author")
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), src.filters[0].From)

	f := openWorkbook(t, doc.Data)
	assert.Equal(t, []string{"Lista", "Podsumowanie", "Pracownicy"}, f.GetSheetList())
	assert.Equal(t, 8.0, calcFloat(t, f, "Lista", "AJ4"))
}

func TestMonthlyWorkbookRestrictsNonAdmin(t *testing.T) {
	src := &fakeSource{records: []models.WorkLogRecord{
		record(1, author(5, "Anna"), 4, 8),
		record(2, author(6, "Obcy"), 4, 8),
	}}

	doc, err := newTestService(src).MonthlyWorkbook(context.Background(), MonthlyRequest{Year: 2024, Month: 3}, Requester{UserID: 5})
	require.NoError(t, err)

	require.NotNil(t, src.filters[0].AuthorID)
	assert.Equal(t, int64(5), *src.filters[0].AuthorID)

	f := openWorkbook(t, doc.Data)
	assert.Equal(t, "Anna", rawValue(t, f, "Lista", "B4"))
	assert.Equal(t, "RAZEM", rawValue(t, f, "Lista", "B7"), "grand total follows the only visible worker")
	rows, err := f.GetRows("Lista")
	require.NoError(t, err)
	for i, row := range rows {
		if len(row) > 1 {
			assert.NotEqual(t, "Obcy", row[1], "foreign worker is not reported (row %d)", i+1)
		}
	}
}

func TestMonthlyWorkbookSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}

	_, err := newTestService(src).MonthlyWorkbook(context.Background(), MonthlyRequest{Year: 2024, Month: 3}, admin)

	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorContains(t, err, "connection refused")
}

func TestProjectParticipantsWorkbook(t *testing.T) {
	p1 := &models.ProjectRef{ID: 1, Code: "most", Name: "Most"}
	r := record(1, author(1, "Anna"), 4, 8)
	r.Project = p1
	src := &fakeSource{
		records:  []models.WorkLogRecord{r},
		projects: map[int64]*models.Project{1: {ID: 1, Code: "most", Name: "Most"}},
	}
	svc := newTestService(src)
	ctx := context.Background()

	_, err := svc.ProjectParticipantsWorkbook(ctx, MonthlyRequest{Year: 2024, Month: 3}, admin)
	assert.Equal(t, KindInvalidParams, KindOf(err))
	assert.Equal(t, "project_id is required", Message(err))

	_, err = svc.ProjectParticipantsWorkbook(ctx, MonthlyRequest{Year: 2024, Month: 3, ProjectID: int64p(9)}, admin)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 0, src.calls)

	doc, err := svc.ProjectParticipantsWorkbook(ctx, MonthlyRequest{Year: 2024, Month: 3, ProjectID: int64p(1)}, admin)
	require.NoError(t, err)
	assert.Equal(t, "uczestnicy_most_2024_03.xlsx", doc.Filename)
	require.NotNil(t, src.filters[0].ProjectID)
	assert.Equal(t, int64(1), *src.filters[0].ProjectID)

	f := openWorkbook(t, doc.Data)
	assert.Equal(t, "Anna", rawValue(t, f, "Uczestnicy projektu", "B3"))
}

func TestWorkLogListWorkbook(t *testing.T) {
	src := &fakeSource{records: []models.WorkLogRecord{
		record(1, author(5, "Anna"), 4, 8),
		record(2, author(6, "Obcy"), 4, 8),
	}}
	svc := newTestService(src)

	_, err := svc.WorkLogListWorkbook(context.Background(), ListRequest{ProjectID: int64p(-1)}, admin)
	assert.Equal(t, KindInvalidParams, KindOf(err))

	doc, err := svc.WorkLogListWorkbook(context.Background(), ListRequest{}, Requester{UserID: 5})
	require.NoError(t, err)
	assert.Equal(t, "raport_godzin_20240402_150405.xlsx", doc.Filename)
	assert.True(t, src.filters[0].From.IsZero())
	assert.True(t, src.filters[0].To.IsZero())

	f := openWorkbook(t, doc.Data)
	assert.Equal(t, "Anna (ID: 5)", rawValue(t, f, "Ewidencja czasu pracy", "N2"))
	assert.Equal(t, "", rawValue(t, f, "Ewidencja czasu pracy", "N3"))
}

func TestErrorMessages(t *testing.T) {
	err := invalidParams("MonthlyRequest", "invalid month %d", 13)
	assert.Equal(t, "MonthlyRequest: invalid month 13", err.Error())
	assert.Equal(t, "invalid month 13", Message(err))
	assert.Equal(t, "internal error", Message(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, errors.Is(err, ErrNotFound))
}
