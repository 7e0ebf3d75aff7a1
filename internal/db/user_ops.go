package db

import (
	"context"
	"database/sql"
	"log"

	"timetracker/internal/models"
)

// GetUserByID извлекает пользователя по его ID.
// Возвращает sql.ErrNoRows, если пользователь не найден, чтобы вызывающий код мог это обработать.
// GetUserByID retrieves a user by their ID.
func GetUserByID(ctx context.Context, userID int64) (models.User, error) {
	var u models.User
	err := DB.QueryRowContext(ctx, `
        SELECT id, email, full_name, role, hourly_rate, is_active
        FROM users WHERE id = $1`, userID).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.HourlyRate, &u.IsActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, err
		}
		log.Printf("GetUserByID: ошибка получения пользователя ID %d: %v", userID, err)
		return u, err
	}
	return u, nil
}
