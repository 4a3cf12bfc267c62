package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/javiermolinar/dayplanner/internal/summary"
)

const systemPrompt = `You are a minimalist time-use analyst. Output ONLY the exact format shown - no markdown, no extra text. Be extremely concise.`

const userPromptTemplate = `Review how this person spent their scheduled time and output EXACTLY this format (no markdown, no code blocks):

THEME: [ 2-4 word theme ]

BALANCE: One sentence on how time is split across categories.
RHYTHM: One sentence on how daily totals vary across the range.
FOCUS: One sentence on the most used activity.

NEXT:
> One specific scheduling change.
> A second specific scheduling change.

Range: %s

Totals:
%s

By category:
%s

By activity:
%s

By day:
%s

Rules:
- Keep each line under 70 characters
- Use numbers from the data
- Output plain text only`

// ErrNoSessions is returned when there is nothing to comment on.
var ErrNoSessions = errors.New("no sessions in range")

// Evaluator turns a summary into model commentary.
type Evaluator struct {
	client Client
}

// NewEvaluator creates an Evaluator using client.
func NewEvaluator(client Client) *Evaluator {
	return &Evaluator{client: client}
}

// Evaluate asks the model to comment on s.
func (e *Evaluator) Evaluate(ctx context.Context, s *summary.Summary) (string, error) {
	if s == nil || s.Empty() {
		return "", ErrNoSessions
	}
	reply, err := e.client.Chat(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: Prompt(s)},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Prompt renders the user prompt for s.
func Prompt(s *summary.Summary) string {
	rng := "all time"
	if s.StartDate != "" && s.EndDate != "" {
		rng = s.StartDate + " to " + s.EndDate
	}

	totals := fmt.Sprintf("- %d sessions, %.2fh total, %.2fh per session, %.2fh per active day over %d days",
		s.TotalSessions, s.TotalHours, s.AvgHoursPerSession, s.AvgHoursPerDay, s.DaysWithSessions)

	var categories, activities, days strings.Builder
	for _, c := range s.Categories {
		fmt.Fprintf(&categories, "- %s: %.2fh in %d sessions\n", c.CategoryName, c.TotalHours, c.SessionCount)
	}
	for _, a := range s.Activities {
		fmt.Fprintf(&activities, "- %s (%s): %.2fh in %d sessions\n", a.ActivityName, a.CategoryName, a.TotalHours, a.SessionCount)
	}
	for _, d := range s.Daily {
		fmt.Fprintf(&days, "- %s: %.2fh in %d sessions\n", d.Date, d.TotalHours, d.SessionCount)
	}

	return fmt.Sprintf(userPromptTemplate, rng, totals,
		strings.TrimRight(categories.String(), "\n"),
		strings.TrimRight(activities.String(), "\n"),
		strings.TrimRight(days.String(), "\n"),
	)
}
