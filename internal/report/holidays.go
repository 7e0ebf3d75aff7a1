package report

import (
	"sort"
	"time"

	"github.com/rickar/cal/v2"
)

// EasterSunday вычисляет дату Пасхи (григорианский календарь) по алгоритму
// Мееуса/Джонса/Батчера.
// EasterSunday computes Western Easter using the anonymous Gregorian computus.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// calcEasterOffset is a cal.HolidayFn for feasts anchored to Easter Sunday.
func calcEasterOffset(h *cal.Holiday, year int) time.Time {
	return EasterSunday(year).AddDate(0, 0, h.Offset)
}

// Праздничные дни, учитываемые в табеле.
// Public holidays taken into account by the monthly sheet.
var (
	HolidayNewYear         = &cal.Holiday{Name: "Nowy Rok", Month: time.January, Day: 1, Func: cal.CalcDayOfMonth}
	HolidayEpiphany        = &cal.Holiday{Name: "Trzech Króli", Month: time.January, Day: 6, Func: cal.CalcDayOfMonth}
	HolidayEasterSunday    = &cal.Holiday{Name: "Wielkanoc", Offset: 0, Func: calcEasterOffset}
	HolidayEasterMonday    = &cal.Holiday{Name: "Poniedziałek Wielkanocny", Offset: 1, Func: calcEasterOffset}
	HolidayLabourDay       = &cal.Holiday{Name: "Święto Pracy", Month: time.May, Day: 1, Func: cal.CalcDayOfMonth}
	HolidayConstitutionDay = &cal.Holiday{Name: "Święto Konstytucji 3 Maja", Month: time.May, Day: 3, Func: cal.CalcDayOfMonth}
	HolidayCorpusChristi   = &cal.Holiday{Name: "Boże Ciało", Offset: 60, Func: calcEasterOffset}
	HolidayAssumption      = &cal.Holiday{Name: "Wniebowzięcie NMP", Month: time.August, Day: 15, Func: cal.CalcDayOfMonth}
	HolidayAllSaints       = &cal.Holiday{Name: "Wszystkich Świętych", Month: time.November, Day: 1, Func: cal.CalcDayOfMonth}
	HolidayIndependence    = &cal.Holiday{Name: "Święto Niepodległości", Month: time.November, Day: 11, Func: cal.CalcDayOfMonth}
	HolidayChristmas       = &cal.Holiday{Name: "Boże Narodzenie", Month: time.December, Day: 25, Func: cal.CalcDayOfMonth}
	HolidayChristmasSecond = &cal.Holiday{Name: "Drugi dzień Bożego Narodzenia", Month: time.December, Day: 26, Func: cal.CalcDayOfMonth}

	Holidays = []*cal.Holiday{
		HolidayNewYear,
		HolidayEpiphany,
		HolidayEasterSunday,
		HolidayEasterMonday,
		HolidayLabourDay,
		HolidayConstitutionDay,
		HolidayCorpusChristi,
		HolidayAssumption,
		HolidayAllSaints,
		HolidayIndependence,
		HolidayChristmas,
		HolidayChristmasSecond,
	}
)

// NewHolidayCalendar создает календарь с праздниками табеля.
// NewHolidayCalendar returns a business calendar with the holidays above registered.
func NewHolidayCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.Name = "Ewidencja czasu pracy"
	c.Description = "Dni ustawowo wolne od pracy"
	c.AddHoliday(Holidays...)
	return c
}

// HolidaysFor возвращает отсортированный список праздничных дат года.
// HolidaysFor returns the sorted holiday dates of the given year.
func HolidaysFor(year int) []time.Time {
	dates := make([]time.Time, 0, len(Holidays))
	for _, h := range Holidays {
		actual, _ := h.Calc(year)
		if actual.IsZero() {
			continue
		}
		dates = append(dates, time.Date(actual.Year(), actual.Month(), actual.Day(), 0, 0, 0, 0, time.UTC))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
