package report

import (
	"fmt"
	"time"

	"timetracker/internal/constants"
	"timetracker/internal/models"
)

// RenderWorklogList строит плоскую выгрузку: одна строка на запись в порядке входа.
// Даты выводятся в ISO-формате в часовом поясе loc (nil - UTC).
func RenderWorklogList(records []models.WorkLogRecord, loc *time.Location) *Sheet {
	if loc == nil {
		loc = time.UTC
	}
	sh := NewSheet(constants.SHEET_WORKLOG_LIST)
	sh.HeaderRows = 1
	sh.FreezeRow = 2

	for i, h := range constants.WorklogListHeaders {
		sh.Set(i+1, 1, h, StyleHeader)
	}

	for i, rec := range records {
		values := []interface{}{
			rec.Date.In(loc).Format("2006-01-02"),
			rec.SiteCode,
			projectName(rec.Project),
			teamMemberName(rec.TeamMember),
			teamName(rec.TeamMember),
			rec.EmployeeCount,
			rec.HoursWorked,
			rec.MealsServed,
			companyLabel(rec.CateringCompany),
			rec.OvernightStays,
			companyLabel(rec.AccommodationCompany),
			rec.Absences,
			rec.Notes,
			AuthorLabel(rec.Author),
		}
		for j, v := range values {
			sh.Set(j+1, i+2, v, StyleCell)
		}
	}
	return sh
}

// AuthorLabel formats the record author as "Name (ID: n)".
func AuthorLabel(u models.UserRef) string {
	if name := u.DisplayName(); name != "" {
		return fmt.Sprintf("%s (ID: %d)", name, u.ID)
	}
	return fmt.Sprintf("ID: %d", u.ID)
}

func projectName(p *models.ProjectRef) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func teamMemberName(tm *models.TeamMemberRef) string {
	if tm == nil {
		return ""
	}
	return tm.Name
}

func teamName(tm *models.TeamMemberRef) string {
	if tm == nil {
		return ""
	}
	return tm.TeamName
}

func companyLabel(c *models.CompanyRef) string {
	if c == nil {
		return ""
	}
	return c.Name
}
