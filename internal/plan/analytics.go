package plan

import "math"

// ActivityHours is time invested in one activity.
type ActivityHours struct {
	ActivityID    int64   `json:"activity_id"`
	ActivityName  string  `json:"activity_name"`
	CategoryName  string  `json:"category_name"`
	CategoryColor string  `json:"category_color"`
	TotalMinutes  int     `json:"total_minutes"`
	TotalHours    float64 `json:"total_hours"`
	SessionCount  int     `json:"session_count"`
}

// CategoryHours is time invested in one category.
type CategoryHours struct {
	CategoryID    int64   `json:"category_id"`
	CategoryName  string  `json:"category_name"`
	CategoryColor string  `json:"category_color"`
	TotalMinutes  int     `json:"total_minutes"`
	TotalHours    float64 `json:"total_hours"`
	SessionCount  int     `json:"session_count"`
}

// DailyStats is time logged on one date.
type DailyStats struct {
	Date         string  `json:"date"`
	TotalMinutes int     `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	SessionCount int     `json:"session_count"`
}

// HoursOf converts minutes to hours rounded to two decimals.
func HoursOf(minutes int) float64 {
	return Round2(float64(minutes) / 60)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
