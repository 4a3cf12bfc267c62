package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayplanner/internal/dateutil"
	"github.com/javiermolinar/dayplanner/internal/grid"
	"github.com/javiermolinar/dayplanner/internal/slot"
)

func (a *App) gridCmd() *cobra.Command {
	var (
		date string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Show a day as 48 half-hour slots",
		Long: `Show a day's sessions on the half-hour grid.

By default runs of free slots are collapsed; --all prints every slot.`,
		Example: `  dayplanner grid
  dayplanner grid --date=2025-01-15 --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if date, err = resolveDate(date); err != nil {
				return err
			}
			store, err := a.backend()
			if err != nil {
				return err
			}
			sessions, err := store.ListSessionsByDate(ctxOf(cmd), a.owner(), date)
			if err != nil {
				return fmt.Errorf("loading day: %w", err)
			}
			g, err := grid.Build(date, sessions)
			if err != nil {
				return err
			}

			current := -1
			if date == dateutil.Today() {
				current = slot.CurrentIndex(time.Now())
			}
			fmt.Fprintf(a.out, "  %s\n", formatHeader(date))
			printGrid(a.out, g, current, all)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow, monday, next-friday...)")
	cmd.Flags().BoolVar(&all, "all", false, "Print every free slot")
	return cmd
}

// printGrid prints one line per slot. current marks the slot holding now,
// -1 for none. Unless all is set, free runs longer than two slots collapse
// to a single line.
func printGrid(w io.Writer, g *grid.Grid, current int, all bool) {
	for i := 0; i < slot.PerDay; i++ {
		marker := "  "
		if i == current {
			marker = formatStats("▶ ")
		}
		cell, _ := g.At(i)

		switch cell.Kind {
		case grid.OccupiedStart:
			s := cell.Session
			fmt.Fprintf(w, "%s%8s  %s %s  %s\n", marker, slot.Label(i),
				formatSwatch(s.CategoryColor, "█"), s.ActivityName,
				formatMuted(s.StartTime+"-"+s.EndTime+" "+FormatDuration(s.DurationMinutes)))
		case grid.OccupiedContinuation:
			fmt.Fprintf(w, "%s%8s  %s\n", marker, slot.Label(i), formatSwatch(cell.Session.CategoryColor, "█"))
		default:
			run := g.FreeFrom(i)
			if !all && run > 2 && (current < i || current >= i+run) {
				fmt.Fprintf(w, "  %8s  %s\n", slot.Label(i),
					formatMuted(fmt.Sprintf("· free until %s", boundaryLabel(i+run))))
				i += run - 1
				continue
			}
			fmt.Fprintf(w, "%s%8s  %s\n", marker, slot.Label(i), formatMuted("·"))
		}
	}
}

// boundaryLabel is slot.Label extended to the end of the day.
func boundaryLabel(i int) string {
	if i >= slot.PerDay {
		return "midnight"
	}
	return slot.Label(i)
}
