package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"timetracker/internal/models"
)

const worklogSelectSQL = `
        SELECT w.id, w.date, w.hours_worked, w.meals_served, w.overnight_stays, w.absences,
               COALESCE(w.notes, ''), COALESCE(w.site_code, ''), w.employee_count,
               u.id, u.email, COALESCE(u.full_name, ''), u.hourly_rate,
               p.id, p.code, p.name,
               tm.id, tm.name, t.name,
               cc.id, cc.name,
               ac.id, ac.name
        FROM worklogs w
        JOIN users u ON u.id = w.user_id
        LEFT JOIN projects p ON p.id = w.project_id
        LEFT JOIN team_members tm ON tm.id = w.team_member_id
        LEFT JOIN teams t ON t.id = tm.team_id
        LEFT JOIN catering_companies cc ON cc.id = w.catering_company_id
        LEFT JOIN accommodation_companies ac ON ac.id = w.accommodation_company_id`

// buildWorkLogQuery собирает запрос выборки записей по фильтру.
// Нулевые границы диапазона не ограничивают выборку.
func buildWorkLogQuery(filter models.WorkLogFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if !filter.From.IsZero() {
		add("w.date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("w.date < $%d", filter.To)
	}
	if filter.ProjectID != nil {
		add("w.project_id = $%d", *filter.ProjectID)
	}
	if filter.AuthorID != nil {
		add("w.user_id = $%d", *filter.AuthorID)
	}

	var sb strings.Builder
	sb.WriteString(worklogSelectSQL)
	if len(conditions) > 0 {
		sb.WriteString("\n        WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	sb.WriteString("\n        ORDER BY w.date, w.id")
	return sb.String(), args
}

// worklogRow - строка результата с nullable-колонками связанных таблиц.
type worklogRow struct {
	id            int64
	date          time.Time
	hours         float64
	meals         int
	overnight     int
	absences      int
	notes         string
	siteCode      string
	employeeCount int
	userID        int64
	userEmail     string
	userName      string
	hourlyRate    sql.NullFloat64
	projectID     sql.NullInt64
	projectCode   sql.NullString
	projectName   sql.NullString
	memberID      sql.NullInt64
	memberName    sql.NullString
	teamName      sql.NullString
	cateringID    sql.NullInt64
	cateringName  sql.NullString
	accommodID    sql.NullInt64
	accommodName  sql.NullString
}

func (r *worklogRow) dest() []interface{} {
	return []interface{}{
		&r.id, &r.date, &r.hours, &r.meals, &r.overnight, &r.absences,
		&r.notes, &r.siteCode, &r.employeeCount,
		&r.userID, &r.userEmail, &r.userName, &r.hourlyRate,
		&r.projectID, &r.projectCode, &r.projectName,
		&r.memberID, &r.memberName, &r.teamName,
		&r.cateringID, &r.cateringName,
		&r.accommodID, &r.accommodName,
	}
}

// record переводит строку в нормализованную запись отчета.
func (r *worklogRow) record() models.WorkLogRecord {
	rec := models.WorkLogRecord{
		ID:             r.id,
		Date:           r.date,
		HoursWorked:    r.hours,
		MealsServed:    r.meals,
		OvernightStays: r.overnight,
		Absences:       r.absences,
		Notes:          r.notes,
		SiteCode:       r.siteCode,
		EmployeeCount:  r.employeeCount,
		Author:         models.UserRef{ID: r.userID, Email: r.userEmail, FullName: r.userName},
	}
	if r.hourlyRate.Valid {
		rate := r.hourlyRate.Float64
		rec.Author.HourlyRate = &rate
	}
	if r.projectID.Valid {
		rec.Project = &models.ProjectRef{ID: r.projectID.Int64, Code: r.projectCode.String, Name: r.projectName.String}
	}
	if r.memberID.Valid {
		rec.TeamMember = &models.TeamMemberRef{ID: r.memberID.Int64, Name: r.memberName.String, TeamName: r.teamName.String}
	}
	if r.cateringID.Valid {
		rec.CateringCompany = &models.CompanyRef{ID: r.cateringID.Int64, Name: r.cateringName.String}
	}
	if r.accommodID.Valid {
		rec.AccommodationCompany = &models.CompanyRef{ID: r.accommodID.Int64, Name: r.accommodName.String}
	}
	return rec
}

// GetWorkLogRecords возвращает записи учета времени по фильтру в порядке даты.
// GetWorkLogRecords loads the normalized work-log records matching filter.
func GetWorkLogRecords(ctx context.Context, filter models.WorkLogFilter) ([]models.WorkLogRecord, error) {
	query, args := buildWorkLogQuery(filter)
	rows, err := DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("GetWorkLogRecords: ошибка выборки записей: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []models.WorkLogRecord
	for rows.Next() {
		var row worklogRow
		if err := rows.Scan(row.dest()...); err != nil {
			log.Printf("GetWorkLogRecords: ошибка сканирования записи: %v", err)
			return nil, err
		}
		records = append(records, row.record())
	}
	if err := rows.Err(); err != nil {
		log.Printf("GetWorkLogRecords: ошибка итерации по записям: %v", err)
		return nil, err
	}
	return records, nil
}
