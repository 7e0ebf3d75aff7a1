package constants

import (
	"strings"
	"time"
)

// Report kinds (used in metrics labels and logs)
// Виды отчетов
const (
	REPORT_KIND_MONTHLY      = "monthly"
	REPORT_KIND_PARTICIPANTS = "project_participants"
	REPORT_KIND_WORKLOG_LIST = "worklog_list"
)

// Report statuses for metrics
// Статусы генерации отчета
const (
	REPORT_STATUS_OK    = "ok"
	REPORT_STATUS_ERROR = "error"
)

// User roles
// Роли пользователей
const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

const XLSX_CONTENT_TYPE = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names
// Названия листов
const (
	SHEET_MONTHLY      = "Lista"
	SHEET_COMPANIES    = "Podsumowanie"
	SHEET_EMPLOYEES    = "Pracownicy"
	SHEET_PARTICIPANTS = "Uczestnicy projektu"
	SHEET_WORKLOG_LIST = "Ewidencja czasu pracy"
)

// Primary sheet labels
// Подписи основного листа
const (
	LABEL_INDEX         = "Lp"
	LABEL_NAME          = "Nazwisko i Imię"
	LABEL_WORKING_DAYS  = "Dni robocze"
	LABEL_RATE          = "Stawka"
	LABEL_TOTAL_HOURS   = "Razem godz."
	LABEL_TOTAL_MEALS   = "Posiłki"
	LABEL_TOTAL_NIGHTS  = "Noclegi"
	LABEL_PAY           = "Kwota"
	LABEL_ROW_MEALS     = "posiłki"
	LABEL_ROW_NIGHTS    = "noclegi"
	LABEL_GRAND_TOTAL   = "RAZEM"
	LABEL_TABLE_TOTAL   = "Razem"
	LABEL_TEAM          = "Zespół"
	LABEL_PROJECT       = "Projekt"
	LABEL_HOURS         = "Godziny"
	LABEL_HOURS_SHARE   = "% godzin"
	LABEL_MEALS_SHARE   = "% posiłków"
	LABEL_NIGHTS_SHARE  = "% noclegów"
	LABEL_ALL_HOURS_PCT = "% wszystkich godzin"
	LABEL_CATERING      = "Firma cateringowa"
	LABEL_CATERING_CNT  = "Liczba posiłków"
	LABEL_ACCOMMODATION = "Firma noclegowa"
	LABEL_ACCOMM_CNT    = "Liczba noclegów"
)

// Flat work-log export headers, in column order
// Заголовки плоской выгрузки записей
var WorklogListHeaders = []string{
	"Data",
	"Kod budowy",
	"Nazwa budowy",
	"Członek zespołu",
	"Zespół",
	"Liczba pracowników",
	"Łączna liczba godzin",
	"Posiłki",
	"Firma cateringowa",
	"Noclegi",
	"Firma noclegowa",
	"Nieobecności",
	"Uwagi",
	"Autor",
}

// MonthMap - польские названия месяцев в именительном падеже
var MonthMap = map[time.Month]string{
	time.January:   "styczeń",
	time.February:  "luty",
	time.March:     "marzec",
	time.April:     "kwiecień",
	time.May:       "maj",
	time.June:      "czerwiec",
	time.July:      "lipiec",
	time.August:    "sierpień",
	time.September: "wrzesień",
	time.October:   "październik",
	time.November:  "listopad",
	time.December:  "grudzień",
}

// WeekdayShortMap - сокращения дней недели для третьей строки заголовка
var WeekdayShortMap = map[time.Weekday]string{
	time.Monday:    "Pn",
	time.Tuesday:   "Wt",
	time.Wednesday: "Śr",
	time.Thursday:  "Cz",
	time.Friday:    "Pt",
	time.Saturday:  "So",
	time.Sunday:    "Nd",
}

// MonthReverseMap maps a lower-case Polish month name back to its number.
var MonthReverseMap = make(map[string]time.Month)

func init() {
	for k, v := range MonthMap {
		MonthReverseMap[v] = k
	}
}

// ParseMonthName принимает польское название месяца без учета регистра.
func ParseMonthName(name string) (time.Month, bool) {
	m, ok := MonthReverseMap[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}
