package report

import (
	"fmt"

	"timetracker/internal/constants"
	"timetracker/internal/models"
)

// Percent returns count/total, or 0 when total is zero.
func Percent(count, total float64) float64 {
	if total == 0 {
		return 0
	}
	return count / total
}

// RenderCompanySummary строит лист сводки: таблицы по фирмам питания и
// проживания с итоговой строкой и таблицу проектов с долями от общих итогов.
// RenderCompanySummary builds the company and project summary sheet.
func RenderCompanySummary(g *GlobalSummary) *Sheet {
	sh := NewSheet(constants.SHEET_COMPANIES)
	sh.HeaderRows = 1

	row := renderCompanyTable(sh, 1, constants.LABEL_CATERING, constants.LABEL_CATERING_CNT, g.Catering)
	row = renderCompanyTable(sh, row+1, constants.LABEL_ACCOMMODATION, constants.LABEL_ACCOMM_CNT, g.Accommodation)
	renderProjectTable(sh, row+1, g)
	return sh
}

// renderCompanyTable writes one company table at startRow and returns the row after it.
func renderCompanyTable(sh *Sheet, startRow int, title, countLabel string, companies *OrderedMap[string, int]) int {
	sh.Set(1, startRow, title, StyleHeader)
	sh.Set(2, startRow, countLabel, StyleHeader)

	row := startRow + 1
	companies.Each(func(name string, n int) {
		sh.Set(1, row, name, StyleName)
		sh.Set(2, row, n, StyleCell)
		row++
	})

	sh.Set(1, row, constants.LABEL_TABLE_TOTAL, StyleTotal)
	if companies.Len() == 0 {
		sh.Set(2, row, 0, StyleTotal)
	} else {
		sh.SetFormula(2, row, fmt.Sprintf("SUM(B%d:B%d)", startRow+1, row-1), StyleTotal)
	}
	return row + 1
}

func renderProjectTable(sh *Sheet, startRow int, g *GlobalSummary) {
	headers := []string{
		constants.LABEL_PROJECT,
		constants.LABEL_HOURS,
		constants.LABEL_HOURS_SHARE,
		constants.LABEL_TOTAL_MEALS,
		constants.LABEL_MEALS_SHARE,
		constants.LABEL_TOTAL_NIGHTS,
		constants.LABEL_NIGHTS_SHARE,
	}
	for i, h := range headers {
		sh.Set(i+1, startRow, h, StyleHeader)
	}

	t := g.Totals
	row := startRow + 1
	g.Projects.Each(func(label string, p *ProjectTotals) {
		sh.Set(1, row, label, StyleName)
		sh.Set(2, row, p.Hours, StyleCell)
		sh.Set(3, row, Percent(p.Hours, t.Hours), StylePercent)
		sh.Set(4, row, p.Meals, StyleCell)
		sh.Set(5, row, Percent(float64(p.Meals), float64(t.Meals)), StylePercent)
		sh.Set(6, row, p.OvernightStays, StyleCell)
		sh.Set(7, row, Percent(float64(p.OvernightStays), float64(t.OvernightStays)), StylePercent)
		row++
	})
}

// RenderEmployeeSummary строит лист по работникам: часы, доля от всех часов
// и распределение часов работника по проектам.
// RenderEmployeeSummary builds the per-employee share sheet.
func RenderEmployeeSummary(workers []*WorkerSummary, g *GlobalSummary) *Sheet {
	sh := NewSheet(constants.SHEET_EMPLOYEES)
	sh.HeaderRows = 1
	sh.FreezeRow = 2

	projectLabels := g.Projects.Keys()
	headers := []string{
		constants.LABEL_INDEX,
		constants.LABEL_NAME,
		constants.LABEL_TEAM,
		constants.LABEL_HOURS,
		constants.LABEL_ALL_HOURS_PCT,
	}
	for _, label := range projectLabels {
		headers = append(headers, "% "+label)
	}
	for i, h := range headers {
		sh.Set(i+1, 1, h, StyleHeader)
	}

	sorted := SortWorkers(workers)
	allHours := 0.0
	for _, w := range sorted {
		allHours += w.TotalHours()
	}

	for i, w := range sorted {
		row := i + 2
		hours := w.TotalHours()
		sh.Set(1, row, i+1, StyleCell)
		sh.Set(2, row, w.Name, StyleName)
		sh.Set(3, row, w.Team, StyleName)
		sh.Set(4, row, hours, StyleCell)
		sh.Set(5, row, Percent(hours, allHours), StylePercent)

		byLabel := make(map[string]float64, w.Projects.Len())
		w.Projects.Each(func(_ string, p *ProjectTotals) { byLabel[p.Label] += p.Hours })
		projectHours := w.ProjectHours()
		for j, label := range projectLabels {
			sh.Set(6+j, row, Percent(byLabel[label], projectHours), StylePercent)
		}
	}
	return sh
}

// RenderProjectParticipants строит лист участников одного проекта.
// RenderProjectParticipants lists every worker of a project with their share of its hours.
func RenderProjectParticipants(project models.ProjectRef, workers []*WorkerSummary) *Sheet {
	sh := NewSheet(constants.SHEET_PARTICIPANTS)
	sh.HeaderRows = 2
	sh.FreezeRow = 3

	sh.Set(1, 1, project.Label(), StyleTitle)
	sh.Merge(1, 1, 7, 1)
	headers := []string{
		constants.LABEL_INDEX,
		constants.LABEL_NAME,
		constants.LABEL_TEAM,
		constants.LABEL_HOURS,
		constants.LABEL_TOTAL_MEALS,
		constants.LABEL_TOTAL_NIGHTS,
		constants.LABEL_HOURS_SHARE,
	}
	for i, h := range headers {
		sh.Set(i+1, 2, h, StyleHeader)
	}

	type participant struct {
		w  *WorkerSummary
		pt *ProjectTotals
	}
	var rows []participant
	projectHours := 0.0
	for _, w := range SortWorkers(workers) {
		pt, ok := w.Projects.Get(project.Code)
		if !ok {
			continue
		}
		rows = append(rows, participant{w: w, pt: pt})
		projectHours += pt.Hours
	}

	row := 3
	for i, p := range rows {
		sh.Set(1, row, i+1, StyleCell)
		sh.Set(2, row, p.w.Name, StyleName)
		sh.Set(3, row, p.w.Team, StyleName)
		sh.Set(4, row, p.pt.Hours, StyleCell)
		sh.Set(5, row, p.pt.Meals, StyleCell)
		sh.Set(6, row, p.pt.OvernightStays, StyleCell)
		sh.Set(7, row, Percent(p.pt.Hours, projectHours), StylePercent)
		row++
	}

	sh.Set(2, row, constants.LABEL_TABLE_TOTAL, StyleTotal)
	for _, col := range []int{4, 5, 6} {
		if len(rows) == 0 {
			sh.Set(col, row, 0, StyleTotal)
			continue
		}
		name := ColName(col)
		sh.SetFormula(col, row, fmt.Sprintf("SUM(%s3:%s%d)", name, name, row-1), StyleTotal)
	}
	return sh
}
