package models

import "database/sql"

// Project - объект (стройка), к которому привязываются записи.
// Project is a construction site that work-log entries are booked against.
type Project struct {
	ID          int64
	Code        string
	Name        string
	Description sql.NullString
}

// Ref возвращает ссылку на проект для записи отчета.
func (p Project) Ref() ProjectRef {
	return ProjectRef{ID: p.ID, Code: p.Code, Name: p.Name}
}
