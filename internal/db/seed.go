package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/javiermolinar/dayplanner/internal/plan"
)

// DefaultCategories are inserted by Seed into an empty database.
var DefaultCategories = []plan.Category{
	{Name: "Work", Color: "#3b82f6"},
	{Name: "Personal", Color: "#8b5cf6"},
	{Name: "Health", Color: "#10b981"},
	{Name: "Learning", Color: "#f59e0b"},
	{Name: "Exercise", Color: "#14b8a6"},
	{Name: "Social", Color: "#ec4899"},
	{Name: "Hobbies", Color: "#f97316"},
	{Name: "Chores", Color: "#84cc16"},
}

// Seed inserts DefaultCategories for owner unless the owner already has a
// category. It returns how many categories were inserted.
func (s *SQLite) Seed(ctx context.Context, owner int64) (int, error) {
	owner = ownerOr(owner)
	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE user_id = ?`, owner).Scan(&n); err != nil {
			return fmt.Errorf("counting categories: %w", err)
		}
		if n > 0 {
			return nil
		}

		now := s.timestamp()
		for _, c := range DefaultCategories {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO categories (name, color, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
				c.Name, c.Color, owner, now, now,
			)
			if err != nil {
				return fmt.Errorf("seeding category %s: %w", c.Name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
