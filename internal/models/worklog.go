package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// UserRef - автор записи в том виде, в каком он нужен отчету.
// HourlyRate == nil означает, что ставка не задана.
type UserRef struct {
	ID         int64
	FullName   string
	Email      string
	HourlyRate *float64
}

// DisplayName returns the trimmed full name or the email.
func (u UserRef) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Email
}

// ProjectRef ссылается на проект записи.
type ProjectRef struct {
	ID   int64
	Code string
	Name string
}

// Label returns the human readable "code name" form used in summaries.
func (p ProjectRef) Label() string {
	return strings.TrimSpace(p.Code + " " + p.Name)
}

// TeamMemberRef ссылается на члена бригады вместе с названием бригады.
type TeamMemberRef struct {
	ID       int64
	Name     string
	TeamName string
}

// CompanyRef ссылается на фирму из справочника.
type CompanyRef struct {
	ID   int64
	Name string
}

// WorkLogRecord - нормализованная запись учета времени, которую слой данных
// передает генератору отчетов. Необязательные ссылки равны nil, если отсутствуют.
// WorkLogRecord is the normalized, read-only input of the report engine.
// Optional references are nil when absent.
type WorkLogRecord struct {
	ID             int64
	Date           time.Time
	HoursWorked    float64
	MealsServed    int
	OvernightStays int
	Absences       int
	Notes          string
	SiteCode       string
	EmployeeCount  int

	Author               UserRef
	Project              *ProjectRef
	TeamMember           *TeamMemberRef
	CateringCompany      *CompanyRef
	AccommodationCompany *CompanyRef
}

// Validate проверяет запись на границе агрегации.
// Validate checks the record at the aggregation boundary.
func (r WorkLogRecord) Validate() error {
	var errs []error
	if r.Date.IsZero() {
		errs = append(errs, errors.New("date is missing"))
	}
	if r.HoursWorked < 0 {
		errs = append(errs, fmt.Errorf("hours worked is negative (%v)", r.HoursWorked))
	}
	if r.MealsServed < 0 {
		errs = append(errs, fmt.Errorf("meals served is negative (%d)", r.MealsServed))
	}
	if r.OvernightStays < 0 {
		errs = append(errs, fmt.Errorf("overnight stays is negative (%d)", r.OvernightStays))
	}
	if r.Absences < 0 {
		errs = append(errs, fmt.Errorf("absences is negative (%d)", r.Absences))
	}
	if len(errs) > 0 {
		return fmt.Errorf("worklog #%d: %w", r.ID, errors.Join(errs...))
	}
	return nil
}

// WorkLogFilter описывает выборку записей для отчета.
// To - исключающая граница. AuthorID != nil ограничивает выборку записями автора.
// WorkLogFilter selects records for a report. To is exclusive.
type WorkLogFilter struct {
	From      time.Time
	To        time.Time
	ProjectID *int64
	AuthorID  *int64
}
