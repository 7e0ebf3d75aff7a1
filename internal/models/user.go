package models

import (
	"database/sql"
	"strings"
)

// User - зарегистрированный пользователь системы (автор записей учета времени).
// User is a registered account that authors work-log entries.
type User struct {
	ID         int64
	Email      string
	FullName   sql.NullString
	Role       string
	HourlyRate sql.NullFloat64
	IsActive   bool
}

// DisplayName возвращает полное имя, а если его нет - email.
// DisplayName returns the full name, falling back to the email.
func (u User) DisplayName() string {
	if u.FullName.Valid {
		if name := strings.TrimSpace(u.FullName.String); name != "" {
			return name
		}
	}
	return u.Email
}
