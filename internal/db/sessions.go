package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/javiermolinar/dayplanner/internal/plan"
)

const sessionSelect = `
	SELECT s.id, s.activity_id, s.date, s.start_time, s.end_time, s.duration_minutes,
	       s.notes, s.user_id, s.created_at, s.updated_at,
	       a.name, a.description, c.id, c.name, c.color
	FROM sessions s
	JOIN activities a ON s.activity_id = a.id
	JOIN categories c ON a.category_id = c.id
`

func scanSession(row scanner) (*plan.Session, error) {
	var (
		s                  plan.Session
		notes, description sql.NullString
		createdAt, updated string
	)
	err := row.Scan(
		&s.ID,
		&s.ActivityID,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.DurationMinutes,
		&notes,
		&s.OwnerID,
		&createdAt,
		&updated,
		&s.ActivityName,
		&description,
		&s.CategoryID,
		&s.CategoryName,
		&s.CategoryColor,
	)
	if err != nil {
		return nil, err
	}
	s.Notes = notes.String
	s.ActivityDescription = description.String
	s.CreatedAt, s.UpdatedAt, err = parseTimestamps(createdAt, updated)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func getSession(ctx context.Context, q querier, id int64) (*plan.Session, error) {
	s, err := scanSession(q.QueryRowContext(ctx, sessionSelect+" WHERE s.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &plan.NotFoundError{Kind: "session", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return s, nil
}

func querySessions(ctx context.Context, q querier, query string, args ...any) ([]*plan.Session, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*plan.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// checkOverlap returns an *plan.OverlapError naming the first stored session
// on the same owner and date whose interval intersects [start, end).
// excludeID skips the session being updated; pass 0 on create.
func checkOverlap(ctx context.Context, q querier, owner int64, date, start, end string, excludeID int64) error {
	query := sessionSelect + `
		WHERE s.user_id = ? AND s.date = ? AND s.id != ?
		AND s.start_time < ? AND s.end_time > ?
		ORDER BY s.start_time
		LIMIT 1`

	conflict, err := scanSession(q.QueryRowContext(ctx, query, owner, date, excludeID, end, start))
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking overlap: %w", err)
	}
	return &plan.OverlapError{Conflict: conflict}
}

// CreateSession validates sess, checks that its activity belongs to the same
// owner and that it does not overlap, then inserts it in one transaction.
// On success sess is replaced by the stored row.
func (s *SQLite) CreateSession(ctx context.Context, sess *plan.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	sess.OwnerID = ownerOr(sess.OwnerID)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := ownedBy(ctx, tx, "activities", sess.ActivityID, sess.OwnerID)
		if err != nil {
			return err
		}
		if !ok {
			return &plan.ReferenceError{Field: "activity_id", ID: sess.ActivityID}
		}

		if err := checkOverlap(ctx, tx, sess.OwnerID, sess.Date, sess.StartTime, sess.EndTime, 0); err != nil {
			return err
		}

		now := s.timestamp()
		result, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (activity_id, date, start_time, end_time, duration_minutes, notes, user_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ActivityID, sess.Date, sess.StartTime, sess.EndTime, sess.DurationMinutes,
			nullString(sess.Notes), sess.OwnerID, now, now,
		)
		if err != nil {
			return fmt.Errorf("inserting session: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting last insert id: %w", err)
		}

		stored, err := getSession(ctx, tx, id)
		if err != nil {
			return err
		}
		*sess = *stored
		return nil
	})
}

// GetSession retrieves a session by ID.
func (s *SQLite) GetSession(ctx context.Context, id int64) (*plan.Session, error) {
	return getSession(ctx, s.db, id)
}

// ListSessionsByDate returns the owner's sessions on date ordered by start time.
func (s *SQLite) ListSessionsByDate(ctx context.Context, owner int64, date string) ([]*plan.Session, error) {
	if err := plan.ValidateDate(date); err != nil {
		return nil, err
	}
	return querySessions(ctx, s.db,
		sessionSelect+" WHERE s.user_id = ? AND s.date = ? ORDER BY s.start_time",
		ownerOr(owner), date,
	)
}

// ListSessions returns the owner's sessions ordered by date and start time.
// Either bound of r may be empty.
func (s *SQLite) ListSessions(ctx context.Context, owner int64, r plan.Range) ([]*plan.Session, error) {
	query, args := dateFilter(sessionSelect+" WHERE s.user_id = ?", []any{ownerOr(owner)}, r)
	query += " ORDER BY s.date, s.start_time"
	return querySessions(ctx, s.db, query, args...)
}

// UpdateSession merges p into session id. The activity and overlap checks run
// in the same transaction as the write.
func (s *SQLite) UpdateSession(ctx context.Context, id int64, p plan.SessionPatch) (*plan.Session, error) {
	var updated *plan.Session
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getSession(ctx, tx, id)
		if err != nil {
			return err
		}
		merged, err := plan.ApplySession(*existing, p)
		if err != nil {
			return err
		}

		if merged.ActivityID != existing.ActivityID {
			ok, err := ownedBy(ctx, tx, "activities", merged.ActivityID, merged.OwnerID)
			if err != nil {
				return err
			}
			if !ok {
				return &plan.ReferenceError{Field: "activity_id", ID: merged.ActivityID}
			}
		}

		if p.MovesInterval() {
			err := checkOverlap(ctx, tx, merged.OwnerID, merged.Date, merged.StartTime, merged.EndTime, id)
			if err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE sessions
			 SET activity_id = ?, date = ?, start_time = ?, end_time = ?, duration_minutes = ?, notes = ?, updated_at = ?
			 WHERE id = ?`,
			merged.ActivityID, merged.Date, merged.StartTime, merged.EndTime, merged.DurationMinutes,
			nullString(merged.Notes), s.timestamp(), id,
		)
		if err != nil {
			return fmt.Errorf("updating session: %w", err)
		}

		updated, err = getSession(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSession removes a session by ID.
func (s *SQLite) DeleteSession(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return &plan.NotFoundError{Kind: "session", ID: id}
	}
	return nil
}
