package db

import (
	"context"
	"database/sql"
	"log"

	"timetracker/internal/models"
)

// GetProjectByID возвращает проект по ID или (nil, nil), если проекта нет.
// GetProjectByID returns the project or nil when it does not exist.
func GetProjectByID(ctx context.Context, projectID int64) (*models.Project, error) {
	var p models.Project
	err := DB.QueryRowContext(ctx, `
        SELECT id, COALESCE(code, ''), name, description
        FROM projects WHERE id = $1`, projectID).Scan(&p.ID, &p.Code, &p.Name, &p.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Printf("GetProjectByID: ошибка получения проекта ID %d: %v", projectID, err)
		return nil, err
	}
	return &p, nil
}
