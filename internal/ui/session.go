package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayplanner/internal/dateutil"
	"github.com/javiermolinar/dayplanner/internal/plan"
	"github.com/javiermolinar/dayplanner/internal/slot"
)

func (a *App) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Manage scheduled sessions",
	}
	cmd.AddCommand(a.sessionListCmd(), a.sessionAddCmd(), a.sessionEditCmd(), a.sessionDeleteCmd())
	return cmd
}

func (a *App) sessionListCmd() *cobra.Command {
	var startDate, endDate string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions in a date range",
		Long: `List all sessions scheduled within a date range.

If no dates are specified, lists today's sessions.
If only --start is specified, lists sessions for that single day.
If both --start and --end are specified, lists sessions in that range (inclusive).`,
		Example: `  dayplanner session list
  dayplanner session list --start=2025-01-15
  dayplanner session list --start=2025-01-15 --end=2025-01-20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dateRange, err := dateutil.NewDateRange(startDate, endDate)
			if err != nil {
				return err
			}
			store, err := a.backend()
			if err != nil {
				return err
			}
			sessions, err := store.ListSessions(ctxOf(cmd), a.owner(), plan.Range{
				Start: dateRange.StartString(),
				End:   dateRange.EndString(),
			})
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(a.out, "No sessions found in the specified date range.")
				return nil
			}
			printSessions(a.out, sessions)
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD, defaults to start date)")
	return cmd
}

// durationBetween returns the minutes from start to end on the slot grid.
func durationBetween(start, end string) (int, error) {
	s, err := slot.ParseMinutes(start)
	if err != nil {
		return 0, err
	}
	e, err := slot.ParseMinutes(end)
	if err != nil {
		return 0, err
	}
	if e <= s {
		return 0, errors.New("end time must be after start time")
	}
	return e - s, nil
}

func (a *App) sessionAddCmd() *cobra.Command {
	var (
		activityID int64
		date       string
		start      string
		end        string
		duration   int
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a session",
		Long: `Schedule a session for an activity.

Give either --duration or --end. Times must sit on the half hour and the
session must not overlap another one on the same day.`,
		Example: `  dayplanner session add --activity=3 --start=09:00 --duration=90
  dayplanner session add --activity=3 --date=2025-01-15 --start=22:00 --end=24:00`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if date, err = resolveDate(date); err != nil {
				return err
			}
			if cmd.Flags().Changed("end") {
				if cmd.Flags().Changed("duration") {
					return errors.New("use either --duration or --end, not both")
				}
				d, err := durationBetween(start, end)
				if err != nil {
					return err
				}
				duration = d
			}

			s, err := plan.NewSession(activityID, date, start, duration, notes)
			if err != nil {
				return err
			}
			s.OwnerID = a.owner()

			store, err := a.backend()
			if err != nil {
				return err
			}
			if err := store.CreateSession(ctxOf(cmd), s); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created session #%d: %s %s %s-%s\n",
				s.ID, s.ActivityName, s.Date, s.StartTime, s.EndTime)
			return nil
		},
	}

	cmd.Flags().Int64Var(&activityID, "activity", 0, "Activity ID (required)")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow, monday, next-friday...)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM on the half hour, required)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM, up to 24:00)")
	cmd.Flags().IntVar(&duration, "duration", 60, "Duration in minutes")
	cmd.Flags().StringVar(&notes, "notes", "", "Optional notes")

	_ = cmd.MarkFlagRequired("activity")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func (a *App) sessionEditCmd() *cobra.Command {
	var (
		activityID int64
		date       string
		start      string
		end        string
		duration   int
		notes      string
	)

	cmd := &cobra.Command{
		Use:     "edit [id]",
		Short:   "Move, resize or annotate a session",
		Example: `  dayplanner session edit 12 --start=10:00 --duration=60`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var p plan.SessionPatch
			flags := cmd.Flags()
			if flags.Changed("activity") {
				p.ActivityID = &activityID
			}
			if flags.Changed("date") {
				d, err := resolveDate(date)
				if err != nil {
					return err
				}
				p.Date = &d
			}
			if flags.Changed("start") {
				p.StartTime = &start
			}
			if flags.Changed("end") {
				p.EndTime = &end
			}
			if flags.Changed("duration") {
				p.DurationMinutes = &duration
			}
			if flags.Changed("notes") {
				p.Notes = &notes
			}

			store, err := a.backend()
			if err != nil {
				return err
			}
			s, err := store.UpdateSession(ctxOf(cmd), id, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated session #%d: %s %s %s-%s\n",
				s.ID, s.ActivityName, s.Date, s.StartTime, s.EndTime)
			return nil
		},
	}

	cmd.Flags().Int64Var(&activityID, "activity", 0, "New activity ID")
	cmd.Flags().StringVar(&date, "date", "", "New date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM)")
	cmd.Flags().IntVar(&duration, "duration", 0, "New duration in minutes")
	cmd.Flags().StringVar(&notes, "notes", "", "New notes (empty clears them)")
	return cmd
}

func (a *App) sessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.backend()
			if err != nil {
				return err
			}
			if err := store.DeleteSession(ctxOf(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted session #%d\n", id)
			return nil
		},
	}
}

// resolveDate turns a --date value into YYYY-MM-DD. Besides plain dates it
// accepts "today", "tomorrow", weekday names and next-/last- prefixes.
func resolveDate(s string) (string, error) {
	return resolveDateAt(s, time.Now())
}

func resolveDateAt(s string, now time.Time) (string, error) {
	t, err := dateutil.ParseRelativeDate(s, now)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t.Format(dateutil.Layout), nil
}
