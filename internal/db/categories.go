package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/javiermolinar/dayplanner/internal/plan"
)

const categorySelect = `
	SELECT id, name, color, user_id, created_at, updated_at
	FROM categories
`

func scanCategory(row scanner) (*plan.Category, error) {
	var (
		c                  plan.Category
		createdAt, updated string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Color, &c.OwnerID, &createdAt, &updated); err != nil {
		return nil, err
	}
	var err error
	c.CreatedAt, c.UpdatedAt, err = parseTimestamps(createdAt, updated)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func getCategory(ctx context.Context, q querier, id int64) (*plan.Category, error) {
	c, err := scanCategory(q.QueryRowContext(ctx, categorySelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &plan.NotFoundError{Kind: "category", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("querying category: %w", err)
	}
	return c, nil
}

// CreateCategory adds a new category.
// Returns a *plan.DuplicateError if the owner already uses the name.
func (s *SQLite) CreateCategory(ctx context.Context, c *plan.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.OwnerID = ownerOr(c.OwnerID)
	now := s.timestamp()

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, color, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.Color, c.OwnerID, now, now,
	)
	if isUniqueViolation(err) {
		return &plan.DuplicateError{Kind: "category", Field: "name", Value: c.Name}
	}
	if err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}

	stored, err := getCategory(ctx, s.db, id)
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

// GetCategory retrieves a category by ID.
func (s *SQLite) GetCategory(ctx context.Context, id int64) (*plan.Category, error) {
	return getCategory(ctx, s.db, id)
}

// ListCategories returns the owner's categories ordered by name.
func (s *SQLite) ListCategories(ctx context.Context, owner int64) ([]*plan.Category, error) {
	rows, err := s.db.QueryContext(ctx, categorySelect+" WHERE user_id = ? ORDER BY name", ownerOr(owner))
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []*plan.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory applies p to category id.
func (s *SQLite) UpdateCategory(ctx context.Context, id int64, p plan.CategoryPatch) (*plan.Category, error) {
	var updated *plan.Category
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getCategory(ctx, tx, id)
		if err != nil {
			return err
		}
		merged, err := plan.ApplyCategory(*existing, p)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE categories SET name = ?, color = ?, updated_at = ? WHERE id = ?`,
			merged.Name, merged.Color, s.timestamp(), id,
		)
		if isUniqueViolation(err) {
			return &plan.DuplicateError{Kind: "category", Field: "name", Value: merged.Name}
		}
		if err != nil {
			return fmt.Errorf("updating category: %w", err)
		}

		updated, err = getCategory(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCategory removes a category that no activity references.
// Returns a *plan.ReferentialGuardError naming the activity count otherwise.
func (s *SQLite) DeleteCategory(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "categories", id)
		if err != nil {
			return err
		}
		if !ok {
			return &plan.NotFoundError{Kind: "category", ID: id}
		}

		n, err := count(ctx, tx, "activities", "category_id", id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &plan.ReferentialGuardError{Kind: "category", ID: id, Dependent: "activity", Count: n}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting category: %w", err)
		}
		return nil
	})
}
