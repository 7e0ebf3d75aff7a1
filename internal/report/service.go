package report

import (
	"context"
	"fmt"
	"log"
	"time"

	"timetracker/internal/constants"
	"timetracker/internal/metrics"
	"timetracker/internal/models"
)

// RecordSource - слой доступа к данным, который поставляет записи отчету.
// ProjectByID возвращает (nil, nil), если проект не найден.
type RecordSource interface {
	WorkLogRecords(ctx context.Context, filter models.WorkLogFilter) ([]models.WorkLogRecord, error)
	ProjectByID(ctx context.Context, id int64) (*models.Project, error)
}

// Document - готовый файл отчета.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MonthlyRequest - параметры месячного отчета. From/To (включительно) заменяют
// диапазон месяца, если заданы.
type MonthlyRequest struct {
	Year      int
	Month     int
	ProjectID *int64
	From      *time.Time
	To        *time.Time
}

// Validate checks the request before any data is fetched.
func (r MonthlyRequest) Validate() error {
	if r.Year < 1900 || r.Year > 2100 {
		return invalidParams("MonthlyRequest", "invalid year %d", r.Year)
	}
	if r.Month < 1 || r.Month > 12 {
		return invalidParams("MonthlyRequest", "invalid month %d", r.Month)
	}
	if r.ProjectID != nil && *r.ProjectID <= 0 {
		return invalidParams("MonthlyRequest", "invalid project_id %d", *r.ProjectID)
	}
	for _, b := range []struct {
		name string
		t    *time.Time
	}{{"start_date", r.From}, {"end_date", r.To}} {
		if b.t != nil && (b.t.Year() != r.Year || int(b.t.Month()) != r.Month) {
			return invalidParams("MonthlyRequest", "%s %s is outside %04d-%02d", b.name, b.t.Format("2006-01-02"), r.Year, r.Month)
		}
	}
	return validateRange("MonthlyRequest", r.From, r.To)
}

func validateRange(op string, from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return invalidParams(op, "start_date %s is after end_date %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return nil
}

// Range returns the [from, to) interval of the request in loc.
// Overrides never widen the interval past the requested month.
func (r MonthlyRequest) Range(loc *time.Location) (time.Time, time.Time) {
	monthStart := time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, 0)
	from, to := monthStart, monthEnd
	if r.From != nil {
		if d := startOfDay(*r.From, loc); d.After(from) {
			from = d
		}
	}
	if r.To != nil {
		if d := startOfDay(*r.To, loc).AddDate(0, 0, 1); d.Before(to) {
			to = d
		}
	}
	return from, to
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ListRequest - параметры плоской выгрузки записей.
type ListRequest struct {
	ProjectID *int64
	From      *time.Time
	To        *time.Time
}

// Validate checks the list request.
func (r ListRequest) Validate() error {
	if r.ProjectID != nil && *r.ProjectID <= 0 {
		return invalidParams("ListRequest", "invalid project_id %d", *r.ProjectID)
	}
	return validateRange("ListRequest", r.From, r.To)
}

// ServiceOptions настраивает состав книги месячного отчета.
type ServiceOptions struct {
	Location        *time.Location
	CompanySheet    bool
	EmployeeSheet   bool
	Now             func() time.Time
	AssemblerConfig AssemblerConfig
}

// Service связывает источник записей, агрегатор и сборщик книги.
// Service turns report requests into spreadsheet documents.
type Service struct {
	source    RecordSource
	assembler *Assembler
	// plain строит дополнительные отчеты без шаблона.
	plain *Assembler
	opts  ServiceOptions
}

// NewService creates a report service.
func NewService(source RecordSource, opts ServiceOptions) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	plainCfg := opts.AssemblerConfig
	plainCfg.TemplateName = ""
	return &Service{
		source:    source,
		assembler: NewAssembler(opts.AssemblerConfig),
		plain:     NewAssembler(plainCfg),
		opts:      opts,
	}
}

func (s *Service) aggregator() Aggregator { return Aggregator{Location: s.opts.Location} }

func filterFor(from, to time.Time, projectID *int64, requester Requester) models.WorkLogFilter {
	filter := models.WorkLogFilter{From: from, To: to, ProjectID: projectID}
	if !requester.IsAdmin {
		id := requester.UserID
		filter.AuthorID = &id
	}
	return filter
}

func (s *Service) fetch(ctx context.Context, op string, filter models.WorkLogFilter) ([]models.WorkLogRecord, error) {
	records, err := s.source.WorkLogRecords(ctx, filter)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Op: op, Msg: "failed to load work logs", Err: err}
	}
	return records, nil
}

// MonthlyWorkbook строит месячный табель со сводными листами.
// MonthlyWorkbook builds the monthly grid workbook.
func (s *Service) MonthlyWorkbook(ctx context.Context, req MonthlyRequest, requester Requester) (*Document, error) {
	start := time.Now()
	doc, workers, err := s.monthlyWorkbook(ctx, req, requester)
	metrics.ObserveReport(constants.REPORT_KIND_MONTHLY, time.Since(start), workers, err)
	if err != nil {
		log.Printf("MonthlyWorkbook: ошибка построения отчета %d-%02d для пользователя %d: %v", req.Year, req.Month, requester.UserID, err)
		return nil, err
	}
	log.Printf("MonthlyWorkbook: отчет %s построен (%d работников, %d байт)", doc.Filename, workers, len(doc.Data))
	return doc, nil
}

func (s *Service) monthlyWorkbook(ctx context.Context, req MonthlyRequest, requester Requester) (*Document, int, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	month := time.Month(req.Month)
	from, to := req.Range(s.opts.Location)

	records, err := s.fetch(ctx, "MonthlyWorkbook", filterFor(from, to, req.ProjectID, requester))
	if err != nil {
		return nil, 0, err
	}
	agg, err := s.aggregator().Aggregate(records, requester)
	if err != nil {
		return nil, 0, err
	}

	primary := RenderPrimarySheet(agg.Workers, DayStylesFor(req.Year, month), req.Year, month)
	var extra []*Sheet
	if s.opts.CompanySheet {
		extra = append(extra, RenderCompanySummary(agg.Global))
	}
	if s.opts.EmployeeSheet {
		extra = append(extra, RenderEmployeeSummary(agg.Workers, agg.Global))
	}

	data, err := s.assembler.Assemble(primary, extra...)
	if err != nil {
		return nil, len(agg.Workers), err
	}
	return &Document{
		Filename:    MonthlyFilename(req.Year, req.Month),
		ContentType: constants.XLSX_CONTENT_TYPE,
		Data:        data,
	}, len(agg.Workers), nil
}

// MonthlyFilename returns report_<year>_<MM>.xlsx.
func MonthlyFilename(year, month int) string {
	return fmt.Sprintf("report_%d_%02d.xlsx", year, month)
}

// ProjectParticipantsWorkbook строит список участников проекта за месяц.
// Без project_id запрос отклоняется, неизвестный проект - KindNotFound.
func (s *Service) ProjectParticipantsWorkbook(ctx context.Context, req MonthlyRequest, requester Requester) (*Document, error) {
	start := time.Now()
	doc, workers, err := s.participantsWorkbook(ctx, req, requester)
	metrics.ObserveReport(constants.REPORT_KIND_PARTICIPANTS, time.Since(start), workers, err)
	if err != nil {
		log.Printf("ProjectParticipantsWorkbook: ошибка построения отчета: %v", err)
		return nil, err
	}
	return doc, nil
}

func (s *Service) participantsWorkbook(ctx context.Context, req MonthlyRequest, requester Requester) (*Document, int, error) {
	if req.ProjectID == nil {
		return nil, 0, invalidParams("ProjectParticipantsWorkbook", "project_id is required")
	}
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}

	project, err := s.source.ProjectByID(ctx, *req.ProjectID)
	if err != nil {
		return nil, 0, &Error{Kind: KindInternal, Op: "ProjectParticipantsWorkbook", Msg: "failed to load project", Err: err}
	}
	if project == nil {
		return nil, 0, &Error{Kind: KindNotFound, Op: "ProjectParticipantsWorkbook", Msg: fmt.Sprintf("project %d not found", *req.ProjectID)}
	}

	from, to := req.Range(s.opts.Location)
	records, err := s.fetch(ctx, "ProjectParticipantsWorkbook", filterFor(from, to, req.ProjectID, requester))
	if err != nil {
		return nil, 0, err
	}
	agg, err := s.aggregator().Aggregate(records, requester)
	if err != nil {
		return nil, 0, err
	}

	data, err := s.plain.Assemble(RenderProjectParticipants(project.Ref(), agg.Workers))
	if err != nil {
		return nil, len(agg.Workers), err
	}
	return &Document{
		Filename:    fmt.Sprintf("uczestnicy_%s_%d_%02d.xlsx", project.Code, req.Year, req.Month),
		ContentType: constants.XLSX_CONTENT_TYPE,
		Data:        data,
	}, len(agg.Workers), nil
}

// WorkLogListWorkbook строит плоскую выгрузку записей.
func (s *Service) WorkLogListWorkbook(ctx context.Context, req ListRequest, requester Requester) (*Document, error) {
	start := time.Now()
	doc, rows, err := s.worklogList(ctx, req, requester)
	metrics.ObserveReport(constants.REPORT_KIND_WORKLOG_LIST, time.Since(start), rows, err)
	if err != nil {
		log.Printf("WorkLogListWorkbook: ошибка выгрузки записей: %v", err)
		return nil, err
	}
	return doc, nil
}

func (s *Service) worklogList(ctx context.Context, req ListRequest, requester Requester) (*Document, int, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	var from, to time.Time
	if req.From != nil {
		from = startOfDay(*req.From, s.opts.Location)
	}
	if req.To != nil {
		to = startOfDay(*req.To, s.opts.Location).AddDate(0, 0, 1)
	}

	records, err := s.fetch(ctx, "WorkLogListWorkbook", filterFor(from, to, req.ProjectID, requester))
	if err != nil {
		return nil, 0, err
	}
	visible := records[:0:0]
	for _, rec := range records {
		if requester.CanSee(rec) {
			visible = append(visible, rec)
		}
	}

	data, err := s.plain.Assemble(RenderWorklogList(visible, s.opts.Location))
	if err != nil {
		return nil, len(visible), err
	}
	return &Document{
		Filename:    fmt.Sprintf("raport_godzin_%s.xlsx", s.opts.Now().In(s.opts.Location).Format("20060102_150405")),
		ContentType: constants.XLSX_CONTENT_TYPE,
		Data:        data,
	}, len(visible), nil
}
