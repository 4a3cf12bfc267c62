package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayplanner/internal/client"
	"github.com/javiermolinar/dayplanner/internal/config"
	"github.com/javiermolinar/dayplanner/internal/db"
	"github.com/javiermolinar/dayplanner/internal/log"
	"github.com/javiermolinar/dayplanner/internal/placement"
	"github.com/javiermolinar/dayplanner/internal/plan"
	"github.com/javiermolinar/dayplanner/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// backend is what session, grid and stats commands need. Both the local
// store and the REST client provide it.
type backend interface {
	placement.Scheduler
	plan.AnalyticsStore
	GetSession(ctx context.Context, id int64) (*plan.Session, error)
	ListSessionsByDate(ctx context.Context, owner int64, date string) ([]*plan.Session, error)
	ListSessions(ctx context.Context, owner int64, r plan.Range) ([]*plan.Session, error)
	ListCategories(ctx context.Context, owner int64) ([]*plan.Category, error)
	ListActivities(ctx context.Context, owner, categoryID int64) ([]*plan.Activity, error)
}

var (
	_ backend = (*db.SQLite)(nil)
	_ backend = (*client.Client)(nil)
)

// App holds the CLI application state.
type App struct {
	config *config.Config
	root   *cobra.Command
	out    io.Writer
	local  *db.SQLite
	remote *client.Client
	apiURL string
	debug  bool
}

// NewApp creates a new CLI application with the given config. The database
// is opened on first use.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg, out: os.Stdout}

	a.root = &cobra.Command{
		Use:   "dayplanner",
		Short: "Plan your day in half-hour slots",
		Long: `dayplanner schedules activities onto a 48-slot day grid.

Run without arguments to open the interactive planner. Sessions can also be
managed from the command line, served over HTTP, or exported to iCalendar.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.backend()
			if err != nil {
				return err
			}
			return tui.Run(ctxOf(cmd), store, tui.Options{
				Owner:     a.config.Server.OwnerID,
				Durations: a.config.Planner.Durations,
				Theme:     a.config.UI.Theme,
			})
		},
	}

	a.root.PersistentFlags().StringVar(&a.apiURL, "api", "", "Use the REST API at this URL instead of the local database")
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.serveCmd())
	a.root.AddCommand(a.seedCmd())
	a.root.AddCommand(a.categoryCmd())
	a.root.AddCommand(a.activityCmd())
	a.root.AddCommand(a.sessionCmd())
	a.root.AddCommand(a.gridCmd())
	a.root.AddCommand(a.statsCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.checkCmd())

	return a
}

func (a *App) setup() error {
	level, err := log.ParseLevel(a.config.Log.Level)
	if err != nil {
		return err
	}
	if a.debug {
		level = log.LevelDebug
	}
	log.SetLevel(level)

	if a.apiURL != "" {
		a.config.Client.BaseURL = a.apiURL
	}
	return nil
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "dayplanner %s (commit: %s)\n", Version, Commit)
		},
	}
}

// owner is the owner every local command acts for.
func (a *App) owner() int64 {
	return a.config.Server.OwnerID
}

// localStore opens the configured SQLite database, creating its directory.
func (a *App) localStore() (*db.SQLite, error) {
	if a.local != nil {
		return a.local, nil
	}
	path := a.config.Storage.DBPath
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	store, err := db.New(path)
	if err != nil {
		return nil, err
	}
	a.local = store
	return store, nil
}

// backend returns the REST client when an API URL is configured and the
// local store otherwise.
func (a *App) backend() (backend, error) {
	if !a.config.Remote() {
		return a.localStore()
	}
	if a.remote == nil {
		c, err := client.New(a.config.Client.BaseURL, a.config.ClientTimeout())
		if err != nil {
			return nil, err
		}
		a.remote = c
	}
	return a.remote, nil
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// Close releases the local database if it was opened.
func (a *App) Close() error {
	if a.local == nil {
		return nil
	}
	err := a.local.Close()
	a.local = nil
	return err
}
