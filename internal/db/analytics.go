package db

import (
	"context"
	"fmt"

	"github.com/javiermolinar/dayplanner/internal/plan"
)

// dateFilter appends the bounds of r to a WHERE clause on sessions aliased s.
func dateFilter(query string, args []any, r plan.Range) (string, []any) {
	if r.Start != "" {
		query += " AND s.date >= ?"
		args = append(args, r.Start)
	}
	if r.End != "" {
		query += " AND s.date <= ?"
		args = append(args, r.End)
	}
	return query, args
}

// ActivityHours totals session time per activity, most time first.
func (s *SQLite) ActivityHours(ctx context.Context, owner int64, r plan.Range) ([]plan.ActivityHours, error) {
	query, args := dateFilter(`
		SELECT a.id, a.name, c.name, c.color,
		       SUM(s.duration_minutes) AS total_minutes,
		       COUNT(s.id)
		FROM sessions s
		JOIN activities a ON s.activity_id = a.id
		JOIN categories c ON a.category_id = c.id
		WHERE s.user_id = ?`, []any{ownerOr(owner)}, r)
	query += " GROUP BY a.id, a.name, c.name, c.color ORDER BY total_minutes DESC, a.name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activity hours: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []plan.ActivityHours
	for rows.Next() {
		var h plan.ActivityHours
		err := rows.Scan(&h.ActivityID, &h.ActivityName, &h.CategoryName, &h.CategoryColor, &h.TotalMinutes, &h.SessionCount)
		if err != nil {
			return nil, fmt.Errorf("scanning activity hours: %w", err)
		}
		h.TotalHours = plan.HoursOf(h.TotalMinutes)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity hours: %w", err)
	}
	return out, nil
}

// CategoryHours totals session time per category, most time first.
func (s *SQLite) CategoryHours(ctx context.Context, owner int64, r plan.Range) ([]plan.CategoryHours, error) {
	query, args := dateFilter(`
		SELECT c.id, c.name, c.color,
		       SUM(s.duration_minutes) AS total_minutes,
		       COUNT(s.id)
		FROM sessions s
		JOIN activities a ON s.activity_id = a.id
		JOIN categories c ON a.category_id = c.id
		WHERE s.user_id = ?`, []any{ownerOr(owner)}, r)
	query += " GROUP BY c.id, c.name, c.color ORDER BY total_minutes DESC, c.name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying category hours: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []plan.CategoryHours
	for rows.Next() {
		var h plan.CategoryHours
		if err := rows.Scan(&h.CategoryID, &h.CategoryName, &h.CategoryColor, &h.TotalMinutes, &h.SessionCount); err != nil {
			return nil, fmt.Errorf("scanning category hours: %w", err)
		}
		h.TotalHours = plan.HoursOf(h.TotalMinutes)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category hours: %w", err)
	}
	return out, nil
}

// DailyStats totals session time per date in date order.
func (s *SQLite) DailyStats(ctx context.Context, owner int64, r plan.Range) ([]plan.DailyStats, error) {
	query, args := dateFilter(`
		SELECT s.date, SUM(s.duration_minutes), COUNT(s.id)
		FROM sessions s
		WHERE s.user_id = ?`, []any{ownerOr(owner)}, r)
	query += " GROUP BY s.date ORDER BY s.date"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying daily stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []plan.DailyStats
	for rows.Next() {
		var d plan.DailyStats
		if err := rows.Scan(&d.Date, &d.TotalMinutes, &d.SessionCount); err != nil {
			return nil, fmt.Errorf("scanning daily stats: %w", err)
		}
		d.TotalHours = plan.HoursOf(d.TotalMinutes)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily stats: %w", err)
	}
	return out, nil
}
