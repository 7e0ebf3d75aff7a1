package report

import (
	"fmt"
	"log"
	"strings"
	"time"

	"timetracker/internal/models"
)

const (
	// AbsentLabel заменяет часы в дне отсутствия без примечания.
	AbsentLabel = "Absent"
	// UnnamedCompanyLabel используется, когда к записи не привязана фирма.
	UnnamedCompanyLabel = "Yes"
)

// Requester - пользователь, для которого строится отчет.
type Requester struct {
	UserID  int64
	IsAdmin bool
}

// CanSee reports whether the requester is allowed to see a record.
func (r Requester) CanSee(rec models.WorkLogRecord) bool {
	return r.IsAdmin || rec.Author.ID == r.UserID
}

// DayValue - содержимое дневной ячейки: сумма часов или метка отсутствия.
// DayValue is the content of one day cell: summed hours or an absence label.
type DayValue struct {
	Hours  float64
	Absent bool
	Label  string
}

// CellValue returns what the day cell displays.
func (v DayValue) CellValue() interface{} {
	if v.Absent {
		return v.Label
	}
	return v.Hours
}

// ProjectTotals накапливает часы, питание и ночлеги по проекту.
type ProjectTotals struct {
	Code           string
	Label          string
	Hours          float64
	Meals          int
	OvernightStays int
}

// WorkerSummary - сводка по одному работнику за месяц.
// WorkerSummary is the per-worker monthly view consumed by the layout engine.
type WorkerSummary struct {
	Key        string
	Name       string
	Team       string
	HourlyRate float64

	Days           map[int]DayValue
	Meals          map[int]int
	OvernightStays map[int]int
	Projects       *OrderedMap[string, *ProjectTotals]

	// absenceIDs - ID записи, чья метка отсутствия стоит в дне.
	absenceIDs map[int]int64
}

func newWorkerSummary(key, name, team string, rate float64) *WorkerSummary {
	return &WorkerSummary{
		Key:            key,
		Name:           name,
		Team:           team,
		HourlyRate:     rate,
		Days:           make(map[int]DayValue),
		Meals:          make(map[int]int),
		OvernightStays: make(map[int]int),
		Projects:       NewOrderedMap[string, *ProjectTotals](),
		absenceIDs:     make(map[int]int64),
	}
}

// TotalHours sums the numeric day cells; absence days contribute nothing.
func (w *WorkerSummary) TotalHours() float64 {
	total := 0.0
	for d := 1; d <= DaysInGrid; d++ {
		if v, ok := w.Days[d]; ok && !v.Absent {
			total += v.Hours
		}
	}
	return total
}

// TotalMeals sums the per-day meal counts.
func (w *WorkerSummary) TotalMeals() int {
	total := 0
	for _, n := range w.Meals {
		total += n
	}
	return total
}

// TotalOvernightStays sums the per-day overnight stays.
func (w *WorkerSummary) TotalOvernightStays() int {
	total := 0
	for _, n := range w.OvernightStays {
		total += n
	}
	return total
}

// ProjectHours sums the hours attributed to the worker's projects.
func (w *WorkerSummary) ProjectHours() float64 {
	total := 0.0
	w.Projects.Each(func(_ string, p *ProjectTotals) { total += p.Hours })
	return total
}

// Totals - общие итоги по всем записям.
type Totals struct {
	Hours          float64
	Meals          int
	OvernightStays int
}

// GlobalSummary - сводки по фирмам и проектам, собранные за тот же проход.
// GlobalSummary holds the cross-worker rollups built in the same pass.
type GlobalSummary struct {
	Catering      *OrderedMap[string, int]
	Accommodation *OrderedMap[string, int]
	Projects      *OrderedMap[string, *ProjectTotals]
	Totals        Totals
}

func newGlobalSummary() *GlobalSummary {
	return &GlobalSummary{
		Catering:      NewOrderedMap[string, int](),
		Accommodation: NewOrderedMap[string, int](),
		Projects:      NewOrderedMap[string, *ProjectTotals](),
	}
}

// Aggregate - результат агрегации: работники в порядке появления и общие сводки.
type Aggregate struct {
	Workers []*WorkerSummary
	Global  *GlobalSummary
	// Skipped counts records dropped by the access policy.
	Skipped int
}

// Aggregator сворачивает записи в сводки. Location задает часовой пояс,
// в котором определяется день месяца записи (nil - UTC).
type Aggregator struct {
	Location *time.Location
}

// Aggregate сворачивает записи за один проход.
// Записи, которые запрашивающий не вправе видеть, отбрасываются.
// Aggregate folds the records in a single pass. Records the requester may not
// see are dropped, invalid records abort the aggregation.
func (a Aggregator) Aggregate(records []models.WorkLogRecord, requester Requester) (*Aggregate, error) {
	loc := a.Location
	if loc == nil {
		loc = time.UTC
	}

	workers := NewOrderedMap[string, *WorkerSummary]()
	global := newGlobalSummary()
	skipped := 0

	for _, rec := range records {
		if !requester.CanSee(rec) {
			skipped++
			continue
		}
		if err := rec.Validate(); err != nil {
			return nil, &Error{Kind: KindInvalidRecord, Op: "Aggregate", Msg: "invalid work-log record", Err: err}
		}

		key, name, team, rate := workerIdentity(rec)
		w := workers.GetOrInit(key, func() *WorkerSummary {
			return newWorkerSummary(key, name, team, rate)
		})
		foldRecord(w, global, rec, rec.Date.In(loc).Day())
	}

	if skipped > 0 {
		log.Printf("Aggregate: отброшено %d записей, недоступных пользователю %d", skipped, requester.UserID)
	}

	agg := &Aggregate{Global: global, Skipped: skipped}
	workers.Each(func(_ string, w *WorkerSummary) { agg.Workers = append(agg.Workers, w) })
	return agg, nil
}

// workerIdentity returns the aggregation key and display attributes of a record's worker.
// A team member reference takes precedence over the authoring user.
func workerIdentity(rec models.WorkLogRecord) (key, name, team string, rate float64) {
	if tm := rec.TeamMember; tm != nil {
		return fmt.Sprintf("team-member:%d", tm.ID), strings.TrimSpace(tm.Name), strings.TrimSpace(tm.TeamName), 0
	}
	if rec.Author.HourlyRate != nil {
		rate = *rec.Author.HourlyRate
	}
	return fmt.Sprintf("user:%d", rec.Author.ID), rec.Author.DisplayName(), "", rate
}

func foldRecord(w *WorkerSummary, g *GlobalSummary, rec models.WorkLogRecord, day int) {
	absence := rec.Absences > 0
	if absence {
		label := strings.TrimSpace(rec.Notes)
		if label == "" {
			label = AbsentLabel
		}
		// Из нескольких отсутствий за день побеждает запись с большим ID.
		if prev, ok := w.absenceIDs[day]; !ok || rec.ID >= prev {
			w.absenceIDs[day] = rec.ID
			w.Days[day] = DayValue{Absent: true, Label: label}
		}
	} else {
		// Числовая запись не стирает метку отсутствия.
		if v := w.Days[day]; !v.Absent {
			v.Hours += rec.HoursWorked
			w.Days[day] = v
		}
		g.Totals.Hours += rec.HoursWorked
	}

	if rec.MealsServed > 0 {
		w.Meals[day] += rec.MealsServed
		company := companyName(rec.CateringCompany)
		n, _ := g.Catering.Get(company)
		g.Catering.Set(company, n+rec.MealsServed)
		g.Totals.Meals += rec.MealsServed
	}

	if rec.OvernightStays > 0 {
		w.OvernightStays[day] += rec.OvernightStays
		company := companyName(rec.AccommodationCompany)
		n, _ := g.Accommodation.Get(company)
		g.Accommodation.Set(company, n+rec.OvernightStays)
		g.Totals.OvernightStays += rec.OvernightStays
	}

	if p := rec.Project; p != nil {
		hours := rec.HoursWorked
		if absence {
			hours = 0
		}
		label := p.Label()
		for _, pt := range []*ProjectTotals{
			w.Projects.GetOrInit(p.Code, func() *ProjectTotals { return &ProjectTotals{Code: p.Code, Label: label} }),
			g.Projects.GetOrInit(label, func() *ProjectTotals { return &ProjectTotals{Code: p.Code, Label: label} }),
		} {
			pt.Hours += hours
			pt.Meals += rec.MealsServed
			pt.OvernightStays += rec.OvernightStays
		}
	}
}

func companyName(c *models.CompanyRef) string {
	if c == nil {
		return UnnamedCompanyLabel
	}
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return UnnamedCompanyLabel
}
