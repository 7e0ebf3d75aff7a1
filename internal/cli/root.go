package cli

import (
	"github.com/spf13/cobra"

	"timetracker/internal/report"
)

// App holds what the commands need. OpenReports подключается к базе лениво,
// чтобы команды без данных (holidays) работали без DATABASE_URL.
type App struct {
	OpenReports func() (*report.Service, error)
}

// NewRootCmd creates the top-level "reportctl" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Work-hour report generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newHolidaysCmd(),
		newMonthlyCmd(app),
	)

	return root
}
