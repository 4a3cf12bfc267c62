package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayplanner/internal/export"
)

func (a *App) exportCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		output    string
		name      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export sessions as iCalendar",
		Example: `  dayplanner export --start=2025-01-01 --end=2025-01-31 -o january.ics
  dayplanner export > all.ics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := statsRange(startDate, endDate, false, time.Now())
			if err != nil {
				return err
			}
			store, err := a.backend()
			if err != nil {
				return err
			}
			sessions, err := store.ListSessions(ctxOf(cmd), a.owner(), r)
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}

			var w io.Writer = a.out
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			if err := export.Write(w, sessions, export.Options{Name: name}); err != nil {
				return fmt.Errorf("writing calendar: %w", err)
			}
			if w != a.out {
				fmt.Fprintf(a.out, "Exported %d sessions to %s\n", len(sessions), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&name, "name", "dayplanner", "Calendar name")
	return cmd
}
