package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"timetracker/internal/report"
)

// cliRequester - отчеты из CLI строятся с правами администратора.
var cliRequester = report.Requester{IsAdmin: true}

func newMonthlyCmd(app *App) *cobra.Command {
	var (
		year, month int
		projectID   int64
		out         string
	)
	now := time.Now()
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Generate the monthly timesheet workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := report.MonthlyRequest{Year: year, Month: month}
			if cmd.Flags().Changed("project") {
				req.ProjectID = &projectID
			}
			// Параметры проверяются до подключения к базе.
			if err := req.Validate(); err != nil {
				return err
			}

			reports, err := app.OpenReports()
			if err != nil {
				return fmt.Errorf("opening report service: %w", err)
			}
			doc, err := reports.MonthlyWorkbook(context.Background(), req, cliRequester)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = doc.Filename
			} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				path = filepath.Join(path, doc.Filename)
			}
			if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Written %s (%d bytes)\n", path, len(doc.Data))
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", now.Year(), "report year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "report month (1-12)")
	cmd.Flags().Int64Var(&projectID, "project", 0, "restrict the report to one project id")
	cmd.Flags().StringVar(&out, "out", "", "output file or directory (default: report_<year>_<MM>.xlsx)")
	return cmd
}
