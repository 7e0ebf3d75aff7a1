package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LocateTemplate ищет файл шаблона по списку каталогов, первый найденный выигрывает.
// Отсутствие шаблона - ошибка KindMissingResource, без отката к построению с нуля.
// LocateTemplate resolves a template name against the search path.
func LocateTemplate(dirs []string, name string) (string, error) {
	if filepath.IsAbs(name) {
		if isFile(name) {
			return name, nil
		}
		return "", missingTemplate(name, []string{filepath.Dir(name)})
	}
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if isFile(candidate) {
			return candidate, nil
		}
	}
	return "", missingTemplate(name, dirs)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func missingTemplate(name string, dirs []string) error {
	return &Error{
		Kind: KindMissingResource,
		Op:   "LocateTemplate",
		Msg:  fmt.Sprintf("report template %q not found", name),
		Err:  fmt.Errorf("searched: %s", strings.Join(dirs, ", ")),
	}
}

func (a *Assembler) openTemplate(primary *Sheet) (*excelize.File, error) {
	path, err := LocateTemplate(a.cfg.TemplateDirs, a.cfg.TemplateName)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &Error{Kind: KindMissingResource, Op: "Assemble", Msg: "report template is unreadable", Err: err}
	}

	sheet := a.cfg.TemplateSheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		f.Close()
		return nil, &Error{Kind: KindMissingResource, Op: "Assemble", Msg: fmt.Sprintf("template sheet %q not found", sheet), Err: err}
	}
	if sheet != primary.Name {
		if err := f.SetSheetName(sheet, primary.Name); err != nil {
			f.Close()
			return nil, internalError("Assemble", fmt.Errorf("rename template sheet: %w", err))
		}
	}
	return f, nil
}

// fillTemplate записывает основной лист поверх шаблона: строки заголовка
// сохраняют оформление шаблона, строки данных копируют стиль строки-образца.
func (a *Assembler) fillTemplate(f *excelize.File, primary *Sheet, styles styleSet) error {
	rowStyles := make(map[int]int)
	for _, c := range primary.Cells() {
		if _, ok := rowStyles[c.Col]; ok {
			continue
		}
		id, err := f.GetCellStyle(primary.Name, CellRef(c.Col, a.cfg.TemplateDataRow))
		if err != nil {
			return fmt.Errorf("template style %s: %w", CellRef(c.Col, a.cfg.TemplateDataRow), err)
		}
		rowStyles[c.Col] = id
	}

	styleOf := func(c Cell) int {
		if c.Row <= primary.HeaderRows {
			return 0
		}
		if id := rowStyles[c.Col]; id > 0 {
			return id
		}
		return styles.lookup(c)
	}
	for _, c := range primary.Cells() {
		if err := writeCell(f, primary.Name, c, styleOf(c)); err != nil {
			return err
		}
	}
	if err := applyMerges(f, primary); err != nil {
		return err
	}
	return applyPanes(f, primary)
}
