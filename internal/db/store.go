package db

import (
	"context"

	"timetracker/internal/models"
)

// Store - источник записей для генератора отчетов поверх глобального подключения DB.
// Store adapts the package-level queries to report.RecordSource.
type Store struct{}

// WorkLogRecords loads the records matching filter.
func (Store) WorkLogRecords(ctx context.Context, filter models.WorkLogFilter) ([]models.WorkLogRecord, error) {
	return GetWorkLogRecords(ctx, filter)
}

// ProjectByID returns the project or nil when it does not exist.
func (Store) ProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	return GetProjectByID(ctx, id)
}

// UserByID returns the user or sql.ErrNoRows.
func (Store) UserByID(ctx context.Context, id int64) (models.User, error) {
	return GetUserByID(ctx, id)
}
