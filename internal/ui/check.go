package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayplanner/internal/integrity"
)

func (a *App) checkCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check recent days for sessions that cannot share the grid",
		Long: `Lay out every session of the last --days days on the grid and report
overlapping or misaligned sessions. Exits non-zero when problems are found.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days == 0 {
				days = a.config.Integrity.LookbackDays
			}
			store, err := a.backend()
			if err != nil {
				return err
			}
			scanner := integrity.NewScanner(store, a.owner(), days)
			r := scanner.Range()
			problems, err := scanner.Scan(ctxOf(cmd))
			if err != nil {
				return err
			}
			if len(problems) == 0 {
				fmt.Fprintf(a.out, "No problems from %s to %s.\n", r.Start, r.End)
				return nil
			}
			for _, p := range problems {
				fmt.Fprintf(a.out, "  %s %s\n", formatError("✗"), p.Error())
			}
			return fmt.Errorf("%d integrity problems found", len(problems))
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Days to look back, today included (default from config)")
	return cmd
}
