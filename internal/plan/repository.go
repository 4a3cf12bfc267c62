package plan

import "context"

// Range is an inclusive date range. Empty bounds mean unbounded; both
// bounds must be set for the range to filter anything.
type Range struct {
	Start string
	End   string
}

// Bounded reports whether the range filters by date.
func (r Range) Bounded() bool {
	return r.Start != "" && r.End != ""
}

// CategoryStore persists categories.
type CategoryStore interface {
	// CreateCategory adds c and sets its ID.
	// Returns a *DuplicateError if the owner already has a category with that name.
	CreateCategory(ctx context.Context, c *Category) error

	GetCategory(ctx context.Context, id int64) (*Category, error)

	// ListCategories returns the owner's categories ordered by name.
	ListCategories(ctx context.Context, owner int64) ([]*Category, error)

	UpdateCategory(ctx context.Context, id int64, p CategoryPatch) (*Category, error)

	// DeleteCategory returns a *ReferentialGuardError while activities reference it.
	DeleteCategory(ctx context.Context, id int64) error
}

// ActivityStore persists activities.
type ActivityStore interface {
	// CreateActivity adds a and sets its ID.
	// Returns a *ReferenceError if the category does not exist.
	CreateActivity(ctx context.Context, a *Activity) error

	GetActivity(ctx context.Context, id int64) (*Activity, error)

	// ListActivities returns the owner's activities ordered by category then
	// name. A categoryID of 0 lists all of them.
	ListActivities(ctx context.Context, owner, categoryID int64) ([]*Activity, error)

	UpdateActivity(ctx context.Context, id int64, p ActivityPatch) (*Activity, error)

	// DeleteActivity returns a *ReferentialGuardError while sessions reference it.
	DeleteActivity(ctx context.Context, id int64) error
}

// SessionStore persists sessions. Creates and updates run the overlap check
// and the write as one atomic step.
type SessionStore interface {
	// CreateSession adds s and fills its ID, timestamps and read-only fields.
	// Returns *ValidationError, *ReferenceError or *OverlapError.
	CreateSession(ctx context.Context, s *Session) error

	GetSession(ctx context.Context, id int64) (*Session, error)

	// ListSessionsByDate returns the owner's sessions on date ordered by start.
	ListSessionsByDate(ctx context.Context, owner int64, date string) ([]*Session, error)

	// ListSessions returns the owner's sessions in r ordered by date and start.
	ListSessions(ctx context.Context, owner int64, r Range) ([]*Session, error)

	// UpdateSession applies p to session id and returns the stored result.
	// Returns *NotFoundError, *ValidationError, *ReferenceError or *OverlapError.
	UpdateSession(ctx context.Context, id int64, p SessionPatch) (*Session, error)

	// DeleteSession returns *NotFoundError if the session does not exist.
	DeleteSession(ctx context.Context, id int64) error
}

// AnalyticsStore computes aggregates over sessions.
type AnalyticsStore interface {
	ActivityHours(ctx context.Context, owner int64, r Range) ([]ActivityHours, error)
	CategoryHours(ctx context.Context, owner int64, r Range) ([]CategoryHours, error)
	DailyStats(ctx context.Context, owner int64, r Range) ([]DailyStats, error)
}

// Repository is everything the API and CLI need from storage.
type Repository interface {
	CategoryStore
	ActivityStore
	SessionStore
	AnalyticsStore

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the repository.
	Close() error
}
