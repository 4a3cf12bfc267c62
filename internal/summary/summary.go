// Package summary builds the analytics summary from per-activity,
// per-category and per-day aggregates.
package summary

import (
	"context"
	"fmt"

	"github.com/javiermolinar/dayplanner/internal/plan"
)

// MostUsedActivity is the activity with the most sessions in a range.
type MostUsedActivity struct {
	ActivityName string `json:"activity_name"`
	SessionCount int    `json:"session_count"`
}

// MostUsedCategory is the category with the most sessions in a range.
type MostUsedCategory struct {
	CategoryName  string `json:"category_name"`
	CategoryColor string `json:"category_color"`
	SessionCount  int    `json:"session_count"`
}

// Summary holds totals and averages over a date range.
type Summary struct {
	StartDate          string            `json:"start_date,omitempty"`
	EndDate            string            `json:"end_date,omitempty"`
	TotalSessions      int               `json:"total_sessions"`
	TotalHours         float64           `json:"total_hours"`
	TotalMinutes       int               `json:"total_minutes"`
	AvgHoursPerSession float64           `json:"avg_hours_per_session"`
	AvgHoursPerDay     float64           `json:"avg_hours_per_day"`
	DaysWithSessions   int               `json:"days_with_sessions"`
	MostUsedActivity   *MostUsedActivity `json:"most_used_activity"`
	MostUsedCategory   *MostUsedCategory `json:"most_used_category"`

	// Aggregates the summary was built from, for renderers and insight.
	Activities []plan.ActivityHours `json:"-"`
	Categories []plan.CategoryHours `json:"-"`
	Daily      []plan.DailyStats    `json:"-"`
}

// Empty reports whether the range holds no sessions.
func (s *Summary) Empty() bool {
	return s.TotalSessions == 0
}

// Build computes a Summary from aggregates. Ties for most used go to the
// first entry, which is the one with more total time given the store's order.
func Build(activities []plan.ActivityHours, categories []plan.CategoryHours, daily []plan.DailyStats) *Summary {
	s := &Summary{
		Activities: activities,
		Categories: categories,
		Daily:      daily,
	}

	for _, d := range daily {
		s.TotalSessions += d.SessionCount
		s.TotalMinutes += d.TotalMinutes
		if d.SessionCount > 0 {
			s.DaysWithSessions++
		}
	}
	s.TotalHours = plan.HoursOf(s.TotalMinutes)
	if s.TotalSessions > 0 {
		s.AvgHoursPerSession = plan.Round2(float64(s.TotalMinutes) / 60 / float64(s.TotalSessions))
	}
	if s.DaysWithSessions > 0 {
		s.AvgHoursPerDay = plan.Round2(s.TotalHours / float64(s.DaysWithSessions))
	}

	for _, a := range activities {
		if s.MostUsedActivity == nil || a.SessionCount > s.MostUsedActivity.SessionCount {
			s.MostUsedActivity = &MostUsedActivity{ActivityName: a.ActivityName, SessionCount: a.SessionCount}
		}
	}
	for _, c := range categories {
		if s.MostUsedCategory == nil || c.SessionCount > s.MostUsedCategory.SessionCount {
			s.MostUsedCategory = &MostUsedCategory{
				CategoryName:  c.CategoryName,
				CategoryColor: c.CategoryColor,
				SessionCount:  c.SessionCount,
			}
		}
	}

	return s
}

// Load queries the three aggregates for owner over r and builds a Summary.
func Load(ctx context.Context, store plan.AnalyticsStore, owner int64, r plan.Range) (*Summary, error) {
	activities, err := store.ActivityHours(ctx, owner, r)
	if err != nil {
		return nil, fmt.Errorf("fetching activity hours: %w", err)
	}
	categories, err := store.CategoryHours(ctx, owner, r)
	if err != nil {
		return nil, fmt.Errorf("fetching category hours: %w", err)
	}
	daily, err := store.DailyStats(ctx, owner, r)
	if err != nil {
		return nil, fmt.Errorf("fetching daily stats: %w", err)
	}

	s := Build(activities, categories, daily)
	s.StartDate, s.EndDate = r.Start, r.End
	return s, nil
}
