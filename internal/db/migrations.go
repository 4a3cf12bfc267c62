package db

import "fmt"

var migrations = []struct {
	name  string
	query string
}{
	{
		name: "categories",
		query: `
		CREATE TABLE IF NOT EXISTS categories (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			color      TEXT NOT NULL,
			user_id    INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(user_id, name)
		);`,
	},
	{
		name: "activities",
		query: `
		CREATE TABLE IF NOT EXISTS activities (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			description TEXT,
			category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
			user_id     INTEGER NOT NULL DEFAULT 1,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_activities_category ON activities(category_id);`,
	},
	{
		name: "sessions",
		query: `
		CREATE TABLE IF NOT EXISTS sessions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			activity_id      INTEGER NOT NULL REFERENCES activities(id) ON DELETE RESTRICT,
			date             TEXT NOT NULL,
			start_time       TEXT NOT NULL,
			end_time         TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL CHECK(duration_minutes > 0 AND duration_minutes % 30 = 0),
			notes            TEXT,
			user_id          INTEGER NOT NULL DEFAULT 1,
			created_at       TEXT NOT NULL,
			updated_at       TEXT NOT NULL,
			CHECK(start_time < end_time)
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_owner_date ON sessions(user_id, date, start_time);
		CREATE INDEX IF NOT EXISTS idx_sessions_activity ON sessions(activity_id);`,
	},
}

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m.query); err != nil {
			return fmt.Errorf("creating %s table: %w", m.name, err)
		}
	}
	return nil
}
