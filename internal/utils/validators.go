package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"timetracker/internal/constants"
)

// ParseDateParam проверяет и парсит дату из параметра запроса.
// Поддерживает форматы ГГГГ-ММ-ДД, ДД.ММ.ГГГГ, RFC3339 и "ГГГГ-ММ-ДД ЧЧ:ММ:СС".
// ParseDateParam parses a query date in one of the supported layouts, in loc.
func ParseDateParam(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	if loc == nil {
		loc = time.UTC
	}

	layouts := []string{
		"2006-01-02",
		"02.01.2006",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
}

// ParseOptionalDate returns nil for an empty value.
func ParseOptionalDate(value string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseDateParam(value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseOptionalID парсит необязательный положительный идентификатор.
func ParseOptionalID(value string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid id %q", value)
	}
	return &id, nil
}

// ParseYear parses a year; range checks are left to the report request.
func ParseYear(value string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", value)
	}
	return year, nil
}

// ParseMonth принимает номер месяца или его польское название ("luty", "Marzec").
// ParseMonth accepts a month number or a Polish month name.
func ParseMonth(value string) (int, error) {
	value = strings.TrimSpace(value)
	if m, err := strconv.Atoi(value); err == nil {
		return m, nil
	}
	if m, ok := constants.ParseMonthName(value); ok {
		return int(m), nil
	}
	return 0, fmt.Errorf("invalid month %q", value)
}

// IsRoleOrHigher проверяет, соответствует ли роль пользователя минимально требуемой роли.
// Иерархия ролей: User < Admin
func IsRoleOrHigher(userRole string, requiredRole string) bool {
	roleHierarchy := map[string]int{
		constants.ROLE_USER:  0,
		constants.ROLE_ADMIN: 1,
	}

	userLevel, okUser := roleHierarchy[userRole]
	requiredLevel, okRequired := roleHierarchy[requiredRole]
	if !okUser || !okRequired {
		return false
	}
	return userLevel >= requiredLevel
}
