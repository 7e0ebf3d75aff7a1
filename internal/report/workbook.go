package report

import (
	"fmt"
	"log"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	defaultTemplateDataRow = firstWorkerRow
	defaultMaxColumnWidth  = 40
)

// Colors - цвета заливки в формате "#RRGGBB".
type Colors struct {
	Header   string `yaml:"header"`
	Weekend  string `yaml:"weekend"`
	Holiday  string `yaml:"holiday"`
	Inactive string `yaml:"inactive"`
	Total    string `yaml:"total"`
}

// DefaultColors returns the built-in palette.
func DefaultColors() Colors {
	return Colors{
		Header:   "#D9E1F2",
		Weekend:  "#FFF2CC",
		Holiday:  "#F8CBAD",
		Inactive: "#D9D9D9",
		Total:    "#E2EFDA",
	}
}

func (c Colors) withDefaults() Colors {
	d := DefaultColors()
	if c.Header == "" {
		c.Header = d.Header
	}
	if c.Weekend == "" {
		c.Weekend = d.Weekend
	}
	if c.Holiday == "" {
		c.Holiday = d.Holiday
	}
	if c.Inactive == "" {
		c.Inactive = d.Inactive
	}
	if c.Total == "" {
		c.Total = d.Total
	}
	return c
}

// AssemblerConfig - явная конфигурация сборщика книги.
// Пустой TemplateName означает построение книги с нуля.
type AssemblerConfig struct {
	TemplateDirs  []string
	TemplateName  string
	TemplateSheet string
	// TemplateDataRow - строка шаблона, стиль которой копируется в строки данных.
	TemplateDataRow int
	MaxColumnWidth  int
	Colors          Colors
}

// Assembler собирает листы в одну книгу xlsx.
type Assembler struct {
	cfg AssemblerConfig
}

// NewAssembler creates an assembler, filling unset options with defaults.
func NewAssembler(cfg AssemblerConfig) *Assembler {
	if cfg.TemplateDataRow <= 0 {
		cfg.TemplateDataRow = defaultTemplateDataRow
	}
	if cfg.MaxColumnWidth <= 0 {
		cfg.MaxColumnWidth = defaultMaxColumnWidth
	}
	cfg.Colors = cfg.Colors.withDefaults()
	return &Assembler{cfg: cfg}
}

// Config returns the effective configuration.
func (a *Assembler) Config() AssemblerConfig { return a.cfg }

// Assemble сериализует основной и дополнительные листы в xlsx.
// Любая ошибка прерывает сборку целиком: частичный документ не возвращается.
// Assemble renders the primary sheet and the extra sheets into one xlsx document.
func (a *Assembler) Assemble(primary *Sheet, extra ...*Sheet) ([]byte, error) {
	if primary == nil {
		return nil, &Error{Kind: KindInternal, Op: "Assemble", Msg: "primary sheet is missing"}
	}

	var (
		f   *excelize.File
		err error
	)
	if a.cfg.TemplateName != "" {
		f, err = a.openTemplate(primary)
	} else {
		f, err = a.newWorkbook(primary)
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if errClose := f.Close(); errClose != nil {
			log.Printf("Assemble: ошибка закрытия книги: %v", errClose)
		}
	}()

	styles, err := newStyleSet(f, a.cfg.Colors)
	if err != nil {
		return nil, internalError("Assemble", err)
	}

	if a.cfg.TemplateName != "" {
		err = a.fillTemplate(f, primary, styles)
	} else {
		err = a.writeSheet(f, primary, styles.lookup)
	}
	if err != nil {
		return nil, internalError("Assemble", err)
	}

	for _, sh := range extra {
		if sh == nil {
			continue
		}
		if _, err := f.NewSheet(sh.Name); err != nil {
			return nil, internalError("Assemble", fmt.Errorf("sheet %q: %w", sh.Name, err))
		}
		if err := a.writeSheet(f, sh, styles.lookup); err != nil {
			return nil, internalError("Assemble", err)
		}
	}

	if idx, err := f.GetSheetIndex(primary.Name); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, internalError("Assemble", fmt.Errorf("write workbook: %w", err))
	}
	return buf.Bytes(), nil
}

func (a *Assembler) newWorkbook(primary *Sheet) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), primary.Name); err != nil {
		f.Close()
		return nil, internalError("Assemble", fmt.Errorf("rename sheet: %w", err))
	}
	return f, nil
}

// writeSheet writes the cells, merges, widths and panes of sh using style ids from styleOf.
func (a *Assembler) writeSheet(f *excelize.File, sh *Sheet, styleOf func(Cell) int) error {
	for _, c := range sh.Cells() {
		if err := writeCell(f, sh.Name, c, styleOf(c)); err != nil {
			return err
		}
	}
	if err := applyMerges(f, sh); err != nil {
		return err
	}
	if err := a.applyWidths(f, sh); err != nil {
		return err
	}
	return applyPanes(f, sh)
}

func writeCell(f *excelize.File, sheet string, c Cell, styleID int) error {
	ref := c.Ref()
	switch {
	case c.Formula != "":
		if err := f.SetCellFormula(sheet, ref, c.Formula); err != nil {
			return fmt.Errorf("formula %s!%s: %w", sheet, ref, err)
		}
	case c.Value != nil:
		if err := f.SetCellValue(sheet, ref, c.Value); err != nil {
			return fmt.Errorf("value %s!%s: %w", sheet, ref, err)
		}
	}
	if styleID > 0 {
		if err := f.SetCellStyle(sheet, ref, ref, styleID); err != nil {
			return fmt.Errorf("style %s!%s: %w", sheet, ref, err)
		}
	}
	return nil
}

func applyMerges(f *excelize.File, sh *Sheet) error {
	for _, m := range sh.Merges {
		top, bottom := m.Refs()
		if err := f.MergeCell(sh.Name, top, bottom); err != nil {
			return fmt.Errorf("merge %s!%s:%s: %w", sh.Name, top, bottom, err)
		}
	}
	return nil
}

// ColumnWidths вычисляет ширину колонок как min(длина+2, max) по самой длинной записи.
// Формулы и заголовок-титул не учитываются.
func ColumnWidths(sh *Sheet, max int) map[int]int {
	widths := make(map[int]int)
	for _, c := range sh.Cells() {
		if c.Formula != "" || c.Value == nil || c.Style == StyleTitle {
			continue
		}
		n := utf8.RuneCountInString(displayText(c.Value)) + 2
		if n > max {
			n = max
		}
		if n > widths[c.Col] {
			widths[c.Col] = n
		}
	}
	return widths
}

func (a *Assembler) applyWidths(f *excelize.File, sh *Sheet) error {
	for col, w := range ColumnWidths(sh, a.cfg.MaxColumnWidth) {
		name := ColName(col)
		if err := f.SetColWidth(sh.Name, name, name, float64(w)); err != nil {
			return fmt.Errorf("width %s!%s: %w", sh.Name, name, err)
		}
	}
	return nil
}

func applyPanes(f *excelize.File, sh *Sheet) error {
	if sh.FreezeRow <= 1 && sh.FreezeCol <= 1 {
		return nil
	}
	col, row := sh.FreezeCol, sh.FreezeRow
	if col < 1 {
		col = 1
	}
	if row < 1 {
		row = 1
	}
	pane := "bottomRight"
	switch {
	case col == 1:
		pane = "bottomLeft"
	case row == 1:
		pane = "topRight"
	}
	err := f.SetPanes(sh.Name, &excelize.Panes{
		Freeze:      true,
		XSplit:      col - 1,
		YSplit:      row - 1,
		TopLeftCell: CellRef(col, row),
		ActivePane:  pane,
	})
	if err != nil {
		return fmt.Errorf("panes %s: %w", sh.Name, err)
	}
	return nil
}

func displayText(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func internalError(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Msg: "failed to build workbook", Err: err}
}

// styleSet хранит идентификаторы стилей книги для каждого StyleTag.
type styleSet map[StyleTag]int

func (s styleSet) lookup(c Cell) int { return s[c.Style] }

func newStyleSet(f *excelize.File, colors Colors) (styleSet, error) {
	border := []excelize.Border{
		{Type: "left", Color: "#000000", Style: 1},
		{Type: "right", Color: "#000000", Style: 1},
		{Type: "top", Color: "#000000", Style: 1},
		{Type: "bottom", Color: "#000000", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	left := &excelize.Alignment{Horizontal: "left", Vertical: "center"}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}
	bold := &excelize.Font{Bold: true}

	defs := map[StyleTag]*excelize.Style{
		StyleTitle:          {Font: &excelize.Font{Bold: true, Size: 14}, Alignment: left},
		StyleHeader:         {Border: border, Fill: fill(colors.Header), Font: bold, Alignment: center},
		StyleHeaderWeekend:  {Border: border, Fill: fill(colors.Weekend), Font: bold, Alignment: center},
		StyleHeaderHoliday:  {Border: border, Fill: fill(colors.Holiday), Font: bold, Alignment: center},
		StyleHeaderInactive: {Border: border, Fill: fill(colors.Inactive), Font: bold, Alignment: center},
		StyleCell:           {Border: border, Alignment: center},
		StyleName:           {Border: border, Alignment: left},
		StyleDayWeekend:     {Border: border, Fill: fill(colors.Weekend), Alignment: center},
		StyleDayHoliday:     {Border: border, Fill: fill(colors.Holiday), Alignment: center},
		StyleDayInactive:    {Border: border, Fill: fill(colors.Inactive), Alignment: center},
		StyleMoney:          {Border: border, Alignment: center, NumFmt: 4},
		StylePercent:        {Border: border, Alignment: center, NumFmt: 10},
		StyleTotal:          {Border: border, Fill: fill(colors.Total), Font: bold, Alignment: center},
	}

	set := make(styleSet, len(defs))
	for tag, def := range defs {
		id, err := f.NewStyle(def)
		if err != nil {
			return nil, fmt.Errorf("style %s: %w", tag, err)
		}
		set[tag] = id
	}
	return set, nil
}
