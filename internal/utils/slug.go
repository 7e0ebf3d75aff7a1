package utils

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ProjectCodeMaxLen - максимальная длина кода проекта (VARCHAR(50)).
const ProjectCodeMaxLen = 50

var nonWordRun = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Slugify приводит строку к нижнему регистру и заменяет серии небуквенных
// символов дефисом. Результат не длиннее maxLen рун и не заканчивается дефисом.
// Slugify builds a lowercase, hyphen separated slug of at most maxLen runes.
func Slugify(value string, maxLen int) string {
	lower := cases.Lower(language.Polish).String(value)
	slug := strings.Trim(nonWordRun.ReplaceAllString(lower, "-"), "-")
	if slug == "" {
		return ""
	}
	runes := []rune(slug)
	if len(runes) <= maxLen {
		return slug
	}
	return strings.TrimRight(string(runes[:maxLen]), "-")
}

// CodeAllocator выдает уникальные коды проектов при заполнении старых данных.
// Коллизии разрешаются суффиксами -2, -3, ... с обрезкой основы под maxLen.
type CodeAllocator struct {
	maxLen int
	taken  map[string]struct{}
}

// NewCodeAllocator creates an allocator that treats existing codes as taken.
func NewCodeAllocator(maxLen int, existing ...string) *CodeAllocator {
	a := &CodeAllocator{maxLen: maxLen, taken: make(map[string]struct{}, len(existing))}
	for _, code := range existing {
		a.taken[code] = struct{}{}
	}
	return a
}

// Allocate returns a free code for the project and marks it as taken.
func (a *CodeAllocator) Allocate(projectID int64, name string) string {
	base := Slugify(name, a.maxLen)
	if base == "" {
		base = fmt.Sprintf("project-%d", projectID)
	}
	base = truncateRunes(base, a.maxLen)

	candidate := base
	for suffix := 2; a.isTaken(candidate); suffix++ {
		s := fmt.Sprintf("-%d", suffix)
		candidate = truncateRunes(base, a.maxLen-len(s)) + s
	}
	a.taken[candidate] = struct{}{}
	return candidate
}

func (a *CodeAllocator) isTaken(code string) bool {
	_, ok := a.taken[code]
	return ok
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if n < 0 {
		n = 0
	}
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// SiteCode возвращает код площадки записи: код проекта или "worklog-<id>".
func SiteCode(projectCode string, worklogID int64) string {
	if code := strings.TrimSpace(projectCode); code != "" {
		return code
	}
	return fmt.Sprintf("worklog-%d", worklogID)
}
