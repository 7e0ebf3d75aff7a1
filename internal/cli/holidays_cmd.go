package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"timetracker/internal/constants"
	"timetracker/internal/report"
)

type holidayLine struct {
	date time.Time
	name string
}

func holidayLines(year int) []holidayLine {
	lines := make([]holidayLine, 0, len(report.Holidays))
	for _, h := range report.Holidays {
		actual, _ := h.Calc(year)
		if actual.IsZero() {
			continue
		}
		lines = append(lines, holidayLine{date: actual, name: h.Name})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].date.Before(lines[j].date) })
	return lines
}

func newHolidaysCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List public holidays marked in the monthly sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year < 1900 || year > 2100 {
				return fmt.Errorf("invalid year %d", year)
			}
			out := cmd.OutOrStdout()
			for _, l := range holidayLines(year) {
				fmt.Fprintf(out, "%s  %-3s %s\n", l.date.Format("2006-01-02"), constants.WeekdayShortMap[l.date.Weekday()], l.name)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "calendar year")
	return cmd
}
