package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"timetracker/internal/constants"
)

// Колонки основного листа (1-based).
const (
	colIndex       = 1  // A
	colName        = 2  // B
	colWorkingDays = 3  // C
	colRate        = 4  // D
	colFirstDay    = 5  // E, день 1
	colLastDay     = 35 // AI, день 31
	colTotalHours  = 36 // AJ
	colTotalMeals  = 37 // AK
	colTotalNights = 38 // AL
	colPay         = 39 // AM
)

// Строки основного листа.
const (
	rowTitle       = 1
	rowHeader      = 2
	rowWeekday     = 3
	firstWorkerRow = 4
	rowsPerWorker  = 3
)

// DayColumn returns the column of day d (1..31).
func DayColumn(d int) int { return colFirstDay + d - 1 }

// WorkerRow returns the first (hours) row of the i-th sorted worker, 0-based.
func WorkerRow(i int) int { return firstWorkerRow + i*rowsPerWorker }

// MonthTitle returns "<MONTH NAME> <year>" in Polish upper case.
func MonthTitle(year int, month time.Month) string {
	name := cases.Upper(language.Polish).String(constants.MonthMap[month])
	return fmt.Sprintf("%s %d", name, year)
}

// SortWorkers упорядочивает работников по бригаде, затем по имени (ординально, устойчиво).
// SortWorkers orders workers by team then name, ordinal and stable.
func SortWorkers(workers []*WorkerSummary) []*WorkerSummary {
	out := make([]*WorkerSummary, len(workers))
	copy(out, workers)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func dayHeaderStyle(s DayStyle) StyleTag {
	switch s {
	case DayWeekend:
		return StyleHeaderWeekend
	case DayHoliday:
		return StyleHeaderHoliday
	case DayNonexistent:
		return StyleHeaderInactive
	}
	return StyleHeader
}

func dayCellStyle(s DayStyle) StyleTag {
	switch s {
	case DayWeekend:
		return StyleDayWeekend
	case DayHoliday:
		return StyleDayHoliday
	case DayNonexistent:
		return StyleDayInactive
	}
	return StyleCell
}

// RenderPrimarySheet раскладывает сводки работников в табель месяца.
// На каждого работника три строки: часы, питание, ночлеги. Итоги и сумма к
// выплате записываются формулами, чтобы правка дневных ячеек пересчитывала их.
// RenderPrimarySheet lays the worker summaries out into the monthly grid.
func RenderPrimarySheet(workers []*WorkerSummary, styles MonthStyles, year int, month time.Month) *Sheet {
	sh := NewSheet(constants.SHEET_MONTHLY)
	sh.FreezeCol = colFirstDay
	sh.FreezeRow = firstWorkerRow
	sh.HeaderRows = rowWeekday

	renderHeader(sh, styles, year, month)

	sorted := SortWorkers(workers)
	workingDays := styles.WorkingDays()
	for i, w := range sorted {
		renderWorker(sh, styles, w, i, workingDays)
	}

	if len(sorted) > 0 {
		renderGrandTotal(sh, len(sorted))
	}
	return sh
}

func renderHeader(sh *Sheet, styles MonthStyles, year int, month time.Month) {
	sh.Set(colName, rowTitle, MonthTitle(year, month), StyleTitle)
	sh.Merge(colName, rowTitle, colRate, rowTitle)

	fixed := []struct {
		col   int
		label string
	}{
		{colIndex, constants.LABEL_INDEX},
		{colName, constants.LABEL_NAME},
		{colWorkingDays, constants.LABEL_WORKING_DAYS},
		{colRate, constants.LABEL_RATE},
		{colTotalHours, constants.LABEL_TOTAL_HOURS},
		{colTotalMeals, constants.LABEL_TOTAL_MEALS},
		{colTotalNights, constants.LABEL_TOTAL_NIGHTS},
		{colPay, constants.LABEL_PAY},
	}
	for _, f := range fixed {
		sh.Set(f.col, rowHeader, f.label, StyleHeader)
		sh.Style(f.col, rowWeekday, StyleHeader)
		sh.Merge(f.col, rowHeader, f.col, rowWeekday)
	}

	for d := 1; d <= DaysInGrid; d++ {
		col := DayColumn(d)
		st := dayHeaderStyle(styles.Day(d))
		if !styles.Exists(d) {
			sh.Style(col, rowHeader, st)
			sh.Style(col, rowWeekday, st)
			continue
		}
		sh.Set(col, rowHeader, d, st)
		sh.Set(col, rowWeekday, constants.WeekdayShortMap[styles.Date(d).Weekday()], st)
	}
}

func renderWorker(sh *Sheet, styles MonthStyles, w *WorkerSummary, i, workingDays int) {
	h := WorkerRow(i)
	m, o := h+1, h+2

	sh.Set(colIndex, h, i+1, StyleCell)
	sh.Set(colName, h, w.Name, StyleName)
	sh.Set(colName, m, constants.LABEL_ROW_MEALS, StyleName)
	sh.Set(colName, o, constants.LABEL_ROW_NIGHTS, StyleName)
	sh.Set(colWorkingDays, h, workingDays, StyleCell)
	sh.Set(colRate, h, w.HourlyRate, StyleMoney)

	first, last := ColName(colFirstDay), ColName(colLastDay)
	sh.SetFormula(colTotalHours, h, fmt.Sprintf("SUM(%s%d:%s%d)", first, h, last, h), StyleTotal)
	sh.SetFormula(colTotalMeals, h, fmt.Sprintf("SUM(%s%d:%s%d)", first, m, last, m), StyleTotal)
	sh.SetFormula(colTotalNights, h, fmt.Sprintf("SUM(%s%d:%s%d)", first, o, last, o), StyleTotal)
	sh.SetFormula(colPay, h, fmt.Sprintf("%s%d*%s%d", ColName(colTotalHours), h, ColName(colRate), h), StyleMoney)

	for _, col := range []int{colIndex, colWorkingDays, colRate, colTotalHours, colTotalMeals, colTotalNights, colPay} {
		sh.Style(col, m, sh.styleAt(col, h))
		sh.Style(col, o, sh.styleAt(col, h))
		sh.Merge(col, h, col, o)
	}

	for d := 1; d <= DaysInGrid; d++ {
		col := DayColumn(d)
		st := dayCellStyle(styles.Day(d))
		for _, r := range []int{h, m, o} {
			sh.Style(col, r, st)
		}
		if !styles.Exists(d) {
			continue
		}
		if v, ok := w.Days[d]; ok {
			sh.Set(col, h, v.CellValue(), st)
		}
		if n := w.Meals[d]; n > 0 {
			sh.Set(col, m, n, st)
		}
		if n := w.OvernightStays[d]; n > 0 {
			sh.Set(col, o, n, st)
		}
	}
}

// renderGrandTotal суммирует только верхние ячейки объединенных блоков работников:
// диапазон по объединенным ячейкам excelize заполняет значением верхней ячейки.
func renderGrandTotal(sh *Sheet, workers int) {
	row := WorkerRow(workers)
	sh.Set(colName, row, constants.LABEL_GRAND_TOTAL, StyleTotal)
	for _, col := range []int{colTotalHours, colTotalMeals, colTotalNights, colPay} {
		style := StyleTotal
		if col == colPay {
			style = StyleMoney
		}
		sh.SetFormula(col, row, blockTopsSum(ColName(col), workers), style)
	}
}

// blockTopsSum строит SUM(X4,X7,...) по первой строке каждого работника.
func blockTopsSum(col string, workers int) string {
	refs := make([]string, 0, workers)
	for i := 0; i < workers; i++ {
		refs = append(refs, fmt.Sprintf("%s%d", col, WorkerRow(i)))
	}
	return "SUM(" + strings.Join(refs, ",") + ")"
}

func (s *Sheet) styleAt(col, row int) StyleTag {
	c, _ := s.Cell(col, row)
	return c.Style
}
