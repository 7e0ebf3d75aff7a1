package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func worker(key, name, team string, rate float64) *WorkerSummary {
	return newWorkerSummary(key, name, team, rate)
}

func cellAt(t *testing.T, sh *Sheet, ref string) Cell {
	t.Helper()
	c, ok := sh.At(ref)
	require.True(t, ok, "cell %s is missing", ref)
	return c
}

func TestSortWorkers(t *testing.T) {
	in := []*WorkerSummary{
		worker("user:1", "Zenon", "Brygada B", 0),
		worker("user:2", "adam", "", 0),
		worker("user:3", "Adam", "Brygada B", 0),
		worker("user:4", "Bartek", "", 0),
		worker("user:5", "Bartek", "", 0),
	}

	got := SortWorkers(in)

	keys := make([]string, len(got))
	for i, w := range got {
		keys[i] = w.Key
	}
	assert.Equal(t, []string{"user:4", "user:5", "user:2", "user:3", "user:1"}, keys)
	assert.Equal(t, "user:1", in[0].Key, "input is not reordered")
}

func TestMonthTitle(t *testing.T) {
	assert.Equal(t, "MARZEC 2024", MonthTitle(2024, time.March))
	assert.Equal(t, "PAŹDZIERNIK 2025", MonthTitle(2025, time.October))
}

func TestRenderPrimarySheetHeader(t *testing.T) {
	sh := RenderPrimarySheet(nil, DayStylesFor(2024, time.March), 2024, time.March)

	assert.Equal(t, "Lista", sh.Name)
	assert.Equal(t, "MARZEC 2024", cellAt(t, sh, "B1").Value)
	assert.Equal(t, "Lp", cellAt(t, sh, "A2").Value)
	assert.Equal(t, "Nazwisko i Imię", cellAt(t, sh, "B2").Value)
	assert.Equal(t, "Kwota", cellAt(t, sh, "AM2").Value)

	assert.Equal(t, 1, cellAt(t, sh, "E2").Value)
	assert.Equal(t, "Pt", cellAt(t, sh, "E3").Value)
	assert.Equal(t, StyleHeader, cellAt(t, sh, "E2").Style)
	assert.Equal(t, StyleHeaderWeekend, cellAt(t, sh, "F2").Style, "2 March is a Saturday")
	assert.Equal(t, StyleHeaderWeekend, cellAt(t, sh, "F3").Style)
	assert.Equal(t, StyleHeaderHoliday, cellAt(t, sh, "AI2").Style, "Easter Sunday")

	assert.Contains(t, sh.Merges, Merge{FromCol: colName, FromRow: 1, ToCol: colRate, ToRow: 1})
	assert.Contains(t, sh.Merges, Merge{FromCol: colPay, FromRow: 2, ToCol: colPay, ToRow: 3})

	assert.Equal(t, 3, sh.MaxRow(), "no worker rows and no grand total")
}

func TestRenderPrimarySheetNonexistentDays(t *testing.T) {
	w := worker("user:1", "Anna", "", 0)
	sh := RenderPrimarySheet([]*WorkerSummary{w}, DayStylesFor(2023, time.February), 2023, time.February)

	for _, ref := range []string{"AG2", "AH3", "AI4", "AI5"} {
		c := cellAt(t, sh, ref)
		assert.Nil(t, c.Value, ref)
		assert.Contains(t, []StyleTag{StyleHeaderInactive, StyleDayInactive}, c.Style, ref)
	}
	assert.Equal(t, 28, cellAt(t, sh, "AF2").Value)
}

func TestRenderPrimarySheetWorkerBlock(t *testing.T) {
	a := worker("user:1", "Anna Nowak", "", 50)
	a.Days[1] = DayValue{Hours: 8}
	a.Days[4] = DayValue{Absent: true, Label: "L4"}
	a.Meals[1] = 2
	a.OvernightStays[1] = 1
	b := worker("team-member:3", "Marek", "Brygada A", 0)
	b.Days[2] = DayValue{Hours: 6.5}

	sh := RenderPrimarySheet([]*WorkerSummary{b, a}, DayStylesFor(2024, time.March), 2024, time.March)

	// Anna (empty team) sorts first.
	assert.Equal(t, 1, cellAt(t, sh, "A4").Value)
	assert.Equal(t, "Anna Nowak", cellAt(t, sh, "B4").Value)
	assert.Equal(t, "posiłki", cellAt(t, sh, "B5").Value)
	assert.Equal(t, "noclegi", cellAt(t, sh, "B6").Value)
	assert.Equal(t, 21, cellAt(t, sh, "C4").Value)
	assert.Equal(t, 50.0, cellAt(t, sh, "D4").Value)

	assert.Equal(t, 8.0, cellAt(t, sh, "E4").Value)
	assert.Equal(t, "L4", cellAt(t, sh, "H4").Value)
	assert.Equal(t, 2, cellAt(t, sh, "E5").Value)
	assert.Equal(t, 1, cellAt(t, sh, "E6").Value)
	assert.Equal(t, StyleDayWeekend, cellAt(t, sh, "F5").Style)

	assert.Equal(t, "SUM(E4:AI4)", cellAt(t, sh, "AJ4").Formula)
	assert.Equal(t, "SUM(E5:AI5)", cellAt(t, sh, "AK4").Formula)
	assert.Equal(t, "SUM(E6:AI6)", cellAt(t, sh, "AL4").Formula)
	assert.Equal(t, "AJ4*D4", cellAt(t, sh, "AM4").Formula)
	for _, col := range []int{colIndex, colWorkingDays, colRate, colTotalHours, colTotalMeals, colTotalNights, colPay} {
		assert.Contains(t, sh.Merges, Merge{FromCol: col, FromRow: 4, ToCol: col, ToRow: 6})
	}

	assert.Equal(t, "Marek", cellAt(t, sh, "B7").Value)
	assert.Equal(t, 6.5, cellAt(t, sh, "F7").Value)
	assert.Equal(t, "AJ7*D7", cellAt(t, sh, "AM7").Formula)

	assert.Equal(t, "RAZEM", cellAt(t, sh, "B10").Value)
	assert.Equal(t, "SUM(AJ4,AJ7)", cellAt(t, sh, "AJ10").Formula)
	assert.Equal(t, "SUM(AM4,AM7)", cellAt(t, sh, "AM10").Formula)
	assert.Equal(t, 10, sh.MaxRow())
}
