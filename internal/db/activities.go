package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/javiermolinar/dayplanner/internal/plan"
)

const activitySelect = `
	SELECT a.id, a.name, a.description, a.category_id, a.user_id, a.created_at, a.updated_at,
	       c.name, c.color
	FROM activities a
	JOIN categories c ON a.category_id = c.id
`

func scanActivity(row scanner) (*plan.Activity, error) {
	var (
		a                  plan.Activity
		description        sql.NullString
		createdAt, updated string
	)
	err := row.Scan(
		&a.ID,
		&a.Name,
		&description,
		&a.CategoryID,
		&a.OwnerID,
		&createdAt,
		&updated,
		&a.CategoryName,
		&a.CategoryColor,
	)
	if err != nil {
		return nil, err
	}
	a.Description = description.String
	a.CreatedAt, a.UpdatedAt, err = parseTimestamps(createdAt, updated)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func getActivity(ctx context.Context, q querier, id int64) (*plan.Activity, error) {
	a, err := scanActivity(q.QueryRowContext(ctx, activitySelect+" WHERE a.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &plan.NotFoundError{Kind: "activity", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	return a, nil
}

// CreateActivity adds a new activity.
// Returns a *plan.ReferenceError if the category does not exist.
func (s *SQLite) CreateActivity(ctx context.Context, a *plan.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.OwnerID = ownerOr(a.OwnerID)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "categories", a.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return &plan.ReferenceError{Field: "category_id", ID: a.CategoryID}
		}

		now := s.timestamp()
		result, err := tx.ExecContext(ctx,
			`INSERT INTO activities (name, description, category_id, user_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			a.Name, nullString(a.Description), a.CategoryID, a.OwnerID, now, now,
		)
		if err != nil {
			return fmt.Errorf("inserting activity: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting last insert id: %w", err)
		}

		stored, err := getActivity(ctx, tx, id)
		if err != nil {
			return err
		}
		*a = *stored
		return nil
	})
}

// GetActivity retrieves an activity by ID.
func (s *SQLite) GetActivity(ctx context.Context, id int64) (*plan.Activity, error) {
	return getActivity(ctx, s.db, id)
}

// ListActivities returns the owner's activities ordered by category and name.
// A categoryID of 0 returns every category.
func (s *SQLite) ListActivities(ctx context.Context, owner, categoryID int64) ([]*plan.Activity, error) {
	query := activitySelect + " WHERE a.user_id = ?"
	args := []any{ownerOr(owner)}
	if categoryID != 0 {
		query += " AND a.category_id = ?"
		args = append(args, categoryID)
	}
	query += " ORDER BY c.name, a.name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var activities []*plan.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return activities, nil
}

// UpdateActivity applies p to activity id.
func (s *SQLite) UpdateActivity(ctx context.Context, id int64, p plan.ActivityPatch) (*plan.Activity, error) {
	var updated *plan.Activity
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getActivity(ctx, tx, id)
		if err != nil {
			return err
		}
		merged, err := plan.ApplyActivity(*existing, p)
		if err != nil {
			return err
		}

		if merged.CategoryID != existing.CategoryID {
			ok, err := exists(ctx, tx, "categories", merged.CategoryID)
			if err != nil {
				return err
			}
			if !ok {
				return &plan.ReferenceError{Field: "category_id", ID: merged.CategoryID}
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE activities SET name = ?, description = ?, category_id = ?, updated_at = ? WHERE id = ?`,
			merged.Name, nullString(merged.Description), merged.CategoryID, s.timestamp(), id,
		)
		if err != nil {
			return fmt.Errorf("updating activity: %w", err)
		}

		updated, err = getActivity(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteActivity removes an activity no session references.
// Returns a *plan.ReferentialGuardError naming the session count otherwise.
func (s *SQLite) DeleteActivity(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "activities", id)
		if err != nil {
			return err
		}
		if !ok {
			return &plan.NotFoundError{Kind: "activity", ID: id}
		}

		n, err := count(ctx, tx, "sessions", "activity_id", id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &plan.ReferentialGuardError{Kind: "activity", ID: id, Dependent: "session", Count: n}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting activity: %w", err)
		}
		return nil
	})
}
