package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayplanner/internal/dateutil"
	"github.com/javiermolinar/dayplanner/internal/insight"
	"github.com/javiermolinar/dayplanner/internal/plan"
	"github.com/javiermolinar/dayplanner/internal/summary"
)

func (a *App) statsCmd() *cobra.Command {
	var (
		startDate   string
		endDate     string
		week        bool
		withInsight bool
		copyOut     bool
		model       string
		noColor     bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show where scheduled time went",
		Long: `Summarize sessions by category, activity and day.

Without dates all sessions are included. --week limits to the current ISO
week. --insight asks the configured model for commentary and --copy puts the
summary on the clipboard.`,
		Example: `  dayplanner stats --week --insight
  dayplanner stats --start=2025-01-01 --end=2025-01-31 --copy`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}

			r, err := statsRange(startDate, endDate, week, time.Now())
			if err != nil {
				return err
			}

			store, err := a.backend()
			if err != nil {
				return err
			}
			ctx := ctxOf(cmd)
			s, err := summary.Load(ctx, store, a.owner(), r)
			if err != nil {
				return fmt.Errorf("building summary: %w", err)
			}
			if s.Empty() {
				fmt.Fprintln(a.out, "No sessions in this range.")
				return nil
			}

			var b strings.Builder
			printSummary(&b, s)

			if withInsight {
				text, err := a.evaluate(ctx, s, model)
				if err != nil {
					fmt.Fprintf(&b, "\n  %s\n", formatError("insight unavailable: "+err.Error()))
				} else {
					fmt.Fprintf(&b, "\n  %s\n", formatHeader("INSIGHT"))
					fmt.Fprintln(&b, strings.Repeat("─", 60))
					PrintInsightWrapped(&b, text, 72)
				}
			}

			fmt.Fprint(a.out, b.String())

			if copyOut {
				DisableColor()
				var plain strings.Builder
				printSummary(&plain, s)
				if err := clipboard.WriteAll(plain.String()); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(a.out, formatMuted("Copied to clipboard."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&week, "week", false, "Only the current week")
	cmd.Flags().BoolVar(&withInsight, "insight", false, "Ask the configured model for commentary")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the summary to the clipboard")
	cmd.Flags().StringVar(&model, "model", "", "Model to use (default from config)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}

// statsRange resolves the stats flags to a range. Both dates or neither
// must be given.
func statsRange(start, end string, week bool, now time.Time) (plan.Range, error) {
	if week {
		if start != "" || end != "" {
			return plan.Range{}, errors.New("--week cannot be combined with --start or --end")
		}
		monday, sunday := dateutil.WeekRange(now)
		return plan.Range{Start: monday.Format(dateutil.Layout), End: sunday.Format(dateutil.Layout)}, nil
	}
	if (start == "") != (end == "") {
		return plan.Range{}, errors.New("--start and --end must be given together")
	}
	if start == "" {
		return plan.Range{}, nil
	}
	dr, err := dateutil.NewDateRange(start, end)
	if err != nil {
		return plan.Range{}, err
	}
	return plan.Range{Start: dr.StartString(), End: dr.EndString()}, nil
}

func (a *App) evaluate(ctx context.Context, s *summary.Summary, model string) (string, error) {
	if model == "" {
		model = a.config.Insight.Model
	}
	c, err := insight.NewClient(a.config.Insight.Provider, model, a.config.Insight.BaseURL)
	if err != nil {
		return "", err
	}
	return insight.NewEvaluator(c).Evaluate(ctx, s)
}

func printSummary(w io.Writer, s *summary.Summary) {
	title := "ALL TIME"
	if s.StartDate != "" {
		title = s.StartDate + " - " + s.EndDate
	}
	fmt.Fprintf(w, "\n  %s\n", formatHeader(title))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  Sessions: %s  |  Total: %s  |  Days: %d\n",
		formatStats(fmt.Sprint(s.TotalSessions)), formatStats(FormatDuration(s.TotalMinutes)), s.DaysWithSessions)
	fmt.Fprintf(w, "  Avg/session: %.2fh  |  Avg/day: %.2fh\n", s.AvgHoursPerSession, s.AvgHoursPerDay)
	if s.MostUsedActivity != nil {
		fmt.Fprintf(w, "  Most used: %s (%d sessions)\n", s.MostUsedActivity.ActivityName, s.MostUsedActivity.SessionCount)
	}

	barWidth := min(30, max(10, termWidth()-50))

	fmt.Fprintf(w, "\n  %s\n", formatHeader("By category"))
	for _, c := range s.Categories {
		fmt.Fprintf(w, "  %s %-14s %s %6s\n", formatSwatch(c.CategoryColor, "■"), truncate(c.CategoryName, 14),
			formatSwatch(c.CategoryColor, Bar(c.TotalMinutes, s.TotalMinutes, barWidth)), FormatDuration(c.TotalMinutes))
	}

	fmt.Fprintf(w, "\n  %s\n", formatHeader("By activity"))
	for _, act := range s.Activities {
		fmt.Fprintf(w, "  %s %-20s %6s  %s\n", formatSwatch(act.CategoryColor, "■"), truncate(act.ActivityName, 20),
			FormatDuration(act.TotalMinutes), formatMuted(fmt.Sprintf("%d sessions", act.SessionCount)))
	}

	busiest := 0
	for _, d := range s.Daily {
		busiest = max(busiest, d.TotalMinutes)
	}
	fmt.Fprintf(w, "\n  %s\n", formatHeader("By day"))
	for _, d := range s.Daily {
		fmt.Fprintf(w, "  %s %s %6s\n", d.Date, Bar(d.TotalMinutes, busiest, barWidth), FormatDuration(d.TotalMinutes))
	}
}
