package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"timetracker/internal/report"
	"timetracker/internal/utils"
)

// ReportMailer доставляет готовый отчет в бухгалтерию.
type ReportMailer interface {
	SendReport(filename string, data []byte, caption string) error
}

// ReportHandlers обслуживает выгрузку отчетов.
type ReportHandlers struct {
	Reports  *report.Service
	Location *time.Location
	// Mailer == nil означает, что отправка в Telegram отключена.
	Mailer ReportMailer
}

func (h *ReportHandlers) location() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

func badRequest(op, format string, args ...interface{}) error {
	return &report.Error{Kind: report.KindInvalidParams, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// parseMonthlyRequest читает year, month, project_id, start_date и end_date из запроса.
func (h *ReportHandlers) parseMonthlyRequest(r *http.Request) (report.MonthlyRequest, error) {
	var req report.MonthlyRequest
	q := r.URL.Query()

	year, err := utils.ParseYear(q.Get("year"))
	if err != nil {
		return req, badRequest("parseMonthlyRequest", "invalid year %q", q.Get("year"))
	}
	month, err := utils.ParseMonth(q.Get("month"))
	if err != nil {
		return req, badRequest("parseMonthlyRequest", "invalid month %q", q.Get("month"))
	}
	req.Year, req.Month = year, month

	if req.ProjectID, err = utils.ParseOptionalID(q.Get("project_id")); err != nil {
		return req, badRequest("parseMonthlyRequest", "invalid project_id %q", q.Get("project_id"))
	}
	if req.From, err = utils.ParseOptionalDate(q.Get("start_date"), h.location()); err != nil {
		return req, badRequest("parseMonthlyRequest", "invalid start_date: %v", err)
	}
	if req.To, err = utils.ParseOptionalDate(q.Get("end_date"), h.location()); err != nil {
		return req, badRequest("parseMonthlyRequest", "invalid end_date: %v", err)
	}
	return req, nil
}

func (h *ReportHandlers) parseListRequest(r *http.Request) (report.ListRequest, error) {
	var (
		req report.ListRequest
		err error
	)
	q := r.URL.Query()
	if req.ProjectID, err = utils.ParseOptionalID(q.Get("project_id")); err != nil {
		return req, badRequest("parseListRequest", "invalid project_id %q", q.Get("project_id"))
	}
	if req.From, err = utils.ParseOptionalDate(q.Get("start_date"), h.location()); err != nil {
		return req, badRequest("parseListRequest", "invalid start_date: %v", err)
	}
	if req.To, err = utils.ParseOptionalDate(q.Get("end_date"), h.location()); err != nil {
		return req, badRequest("parseListRequest", "invalid end_date: %v", err)
	}
	return req, nil
}

// MonthlyExcel - GET /api/reports/monthly-excel
func (h *ReportHandlers) MonthlyExcel(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "User context not found")
		return
	}
	req, err := h.parseMonthlyRequest(r)
	if err != nil {
		writeReportError(w, err)
		return
	}
	doc, err := h.Reports.MonthlyWorkbook(r.Context(), req, requesterOf(user))
	if err != nil {
		writeReportError(w, err)
		return
	}
	writeDocument(w, doc)
}

// ProjectParticipants - GET /api/reports/project-participants
func (h *ReportHandlers) ProjectParticipants(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "User context not found")
		return
	}
	req, err := h.parseMonthlyRequest(r)
	if err != nil {
		writeReportError(w, err)
		return
	}
	doc, err := h.Reports.ProjectParticipantsWorkbook(r.Context(), req, requesterOf(user))
	if err != nil {
		writeReportError(w, err)
		return
	}
	writeDocument(w, doc)
}

// ExportWorkLogs - GET /api/worklogs/export
func (h *ReportHandlers) ExportWorkLogs(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "User context not found")
		return
	}
	req, err := h.parseListRequest(r)
	if err != nil {
		writeReportError(w, err)
		return
	}
	doc, err := h.Reports.WorkLogListWorkbook(r.Context(), req, requesterOf(user))
	if err != nil {
		writeReportError(w, err)
		return
	}
	writeDocument(w, doc)
}

// SendMonthlyExcel - POST /api/admin/reports/monthly-excel/send
// Строит месячный отчет от имени администратора и отправляет его в чат бухгалтерии.
func (h *ReportHandlers) SendMonthlyExcel(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "User context not found")
		return
	}
	if h.Mailer == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Telegram delivery is not configured")
		return
	}
	req, err := h.parseMonthlyRequest(r)
	if err != nil {
		writeReportError(w, err)
		return
	}
	doc, err := h.Reports.MonthlyWorkbook(r.Context(), req, requesterOf(user))
	if err != nil {
		writeReportError(w, err)
		return
	}

	caption := fmt.Sprintf("Ewidencja czasu pracy: %s", report.MonthTitle(req.Year, time.Month(req.Month)))
	if err := h.Mailer.SendReport(doc.Filename, doc.Data, caption); err != nil {
		log.Printf("SendMonthlyExcel: ошибка отправки отчета %s: %v", doc.Filename, err)
		writeJSONError(w, http.StatusBadGateway, "Failed to deliver report")
		return
	}
	writeJSONSuccess(w, "Report sent", map[string]interface{}{
		"filename": doc.Filename,
		"size":     len(doc.Data),
	})
}
