package report

import (
	"time"

	"github.com/rickar/cal/v2"
)

// DaysInGrid - число дневных колонок табеля, одинаковое для всех месяцев.
// DaysInGrid is the fixed number of day columns of every monthly grid.
const DaysInGrid = 31

// DayStyle - визуальная классификация дня месяца.
// DayStyle classifies a day of month for display.
type DayStyle int

const (
	DayRegular DayStyle = iota
	DayWeekend
	DayHoliday
	// DayNonexistent marks day numbers beyond the end of the month (e.g. 30 February).
	DayNonexistent
)

func (s DayStyle) String() string {
	switch s {
	case DayWeekend:
		return "weekend"
	case DayHoliday:
		return "holiday"
	case DayNonexistent:
		return "nonexistent"
	default:
		return "regular"
	}
}

// MonthStyles хранит классификацию дней 1..31 одного месяца.
// MonthStyles holds the classification of days 1..31 of one month.
type MonthStyles struct {
	Year  int
	Month time.Month
	days  [DaysInGrid + 1]DayStyle
}

// Day returns the style of day d (1..31); out of range days are nonexistent.
func (ms MonthStyles) Day(d int) DayStyle {
	if d < 1 || d > DaysInGrid {
		return DayNonexistent
	}
	return ms.days[d]
}

// Exists reports whether day d is a real calendar day of the month.
func (ms MonthStyles) Exists(d int) bool {
	return ms.Day(d) != DayNonexistent
}

// Date returns the calendar date of day d. It is only meaningful when Exists(d).
func (ms MonthStyles) Date(d int) time.Time {
	return time.Date(ms.Year, ms.Month, d, 0, 0, 0, 0, time.UTC)
}

// WorkingDays считает дни с классификацией regular.
// WorkingDays counts the days classified as regular.
func (ms MonthStyles) WorkingDays() int {
	n := 0
	for d := 1; d <= DaysInGrid; d++ {
		if ms.days[d] == DayRegular {
			n++
		}
	}
	return n
}

// DayStylesFor классифицирует дни месяца: праздник или воскресенье - holiday,
// суббота - weekend, остальные - regular. Несуществующие дни не вызывают ошибку.
// DayStylesFor classifies every day of the month, holiday > weekend > regular.
func DayStylesFor(year int, month time.Month) MonthStyles {
	return dayStylesWith(NewHolidayCalendar(), year, month)
}

func dayStylesWith(c *cal.BusinessCalendar, year int, month time.Month) MonthStyles {
	ms := MonthStyles{Year: year, Month: month}
	for d := 1; d <= DaysInGrid; d++ {
		date := time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
		if date.Month() != month {
			ms.days[d] = DayNonexistent
			continue
		}
		actual, observed, _ := c.IsHoliday(date)
		switch {
		case actual || observed || date.Weekday() == time.Sunday:
			ms.days[d] = DayHoliday
		case date.Weekday() == time.Saturday:
			ms.days[d] = DayWeekend
		default:
			ms.days[d] = DayRegular
		}
	}
	return ms
}
