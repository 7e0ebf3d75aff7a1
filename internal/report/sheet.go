package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// StyleTag - логический стиль ячейки. Конкретное оформление задает сборщик книги.
// StyleTag names the visual role of a cell; the assembler maps tags to concrete styles.
type StyleTag int

const (
	StyleNone StyleTag = iota
	StyleTitle
	StyleHeader
	StyleHeaderWeekend
	StyleHeaderHoliday
	StyleHeaderInactive
	StyleCell
	StyleName
	StyleDayWeekend
	StyleDayHoliday
	StyleDayInactive
	StyleMoney
	StylePercent
	StyleTotal
)

var styleTagNames = map[StyleTag]string{
	StyleNone:           "none",
	StyleTitle:          "title",
	StyleHeader:         "header",
	StyleHeaderWeekend:  "header_weekend",
	StyleHeaderHoliday:  "header_holiday",
	StyleHeaderInactive: "header_inactive",
	StyleCell:           "cell",
	StyleName:           "name",
	StyleDayWeekend:     "day_weekend",
	StyleDayHoliday:     "day_holiday",
	StyleDayInactive:    "day_inactive",
	StyleMoney:          "money",
	StylePercent:        "percent",
	StyleTotal:          "total",
}

func (t StyleTag) String() string {
	if s, ok := styleTagNames[t]; ok {
		return s
	}
	return fmt.Sprintf("style(%d)", int(t))
}

// IsHeader reports whether the tag belongs to a header cell.
func (t StyleTag) IsHeader() bool {
	switch t {
	case StyleTitle, StyleHeader, StyleHeaderWeekend, StyleHeaderHoliday, StyleHeaderInactive:
		return true
	}
	return false
}

// Cell - типизированная ячейка сетки. Formula задается без ведущего "=".
// Value == nil и пустая Formula означают оформленную пустую ячейку.
type Cell struct {
	Col     int
	Row     int
	Value   interface{}
	Formula string
	Style   StyleTag
}

// Ref returns the A1 reference of the cell.
func (c Cell) Ref() string { return CellRef(c.Col, c.Row) }

// Merge - прямоугольная объединенная область, включительно.
type Merge struct {
	FromCol, FromRow int
	ToCol, ToRow     int
}

// Refs returns the top-left and bottom-right references of the merged area.
func (m Merge) Refs() (string, string) {
	return CellRef(m.FromCol, m.FromRow), CellRef(m.ToCol, m.ToRow)
}

// Sheet - независимая от формата модель листа: ячейки в порядке записи,
// объединения, закрепленная область и признак автоширины колонок.
// Sheet is a spreadsheet-library independent grid model.
type Sheet struct {
	Name   string
	Merges []Merge
	// FreezeCol/FreezeRow - первая незакрепленная ячейка (0 - без закрепления).
	FreezeCol int
	FreezeRow int
	// HeaderRows - число строк заголовка, которые шаблон сохраняет без изменения стиля.
	HeaderRows int

	cells []Cell
	index map[[2]int]int
}

// NewSheet creates an empty sheet.
func NewSheet(name string) *Sheet {
	return &Sheet{Name: name, index: make(map[[2]int]int)}
}

func (s *Sheet) put(c Cell) {
	key := [2]int{c.Col, c.Row}
	if i, ok := s.index[key]; ok {
		s.cells[i] = c
		return
	}
	s.index[key] = len(s.cells)
	s.cells = append(s.cells, c)
}

// Set writes a literal value.
func (s *Sheet) Set(col, row int, value interface{}, style StyleTag) {
	s.put(Cell{Col: col, Row: row, Value: value, Style: style})
}

// SetFormula writes a live formula.
func (s *Sheet) SetFormula(col, row int, formula string, style StyleTag) {
	s.put(Cell{Col: col, Row: row, Formula: formula, Style: style})
}

// Style applies a style to a cell keeping its content.
func (s *Sheet) Style(col, row int, style StyleTag) {
	if i, ok := s.index[[2]int{col, row}]; ok {
		s.cells[i].Style = style
		return
	}
	s.put(Cell{Col: col, Row: row, Style: style})
}

// Merge records a merged area. Single-cell areas are ignored.
func (s *Sheet) Merge(fromCol, fromRow, toCol, toRow int) {
	if fromCol == toCol && fromRow == toRow {
		return
	}
	s.Merges = append(s.Merges, Merge{FromCol: fromCol, FromRow: fromRow, ToCol: toCol, ToRow: toRow})
}

// Cell returns the cell at the given coordinates.
func (s *Sheet) Cell(col, row int) (Cell, bool) {
	i, ok := s.index[[2]int{col, row}]
	if !ok {
		return Cell{}, false
	}
	return s.cells[i], true
}

// At returns the cell at an A1 reference.
func (s *Sheet) At(ref string) (Cell, bool) {
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return Cell{}, false
	}
	return s.Cell(col, row)
}

// Cells returns the cells in write order.
func (s *Sheet) Cells() []Cell {
	out := make([]Cell, len(s.cells))
	copy(out, s.cells)
	return out
}

// MaxRow returns the last used row number.
func (s *Sheet) MaxRow() int {
	max := 0
	for _, c := range s.cells {
		if c.Row > max {
			max = c.Row
		}
	}
	return max
}

// CellRef converts 1-based coordinates to an A1 reference.
func CellRef(col, row int) string {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	return ref
}

// ColName converts a 1-based column number to its letters.
func ColName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return ""
	}
	return name
}
