package ui

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayplanner/internal/api"
	"github.com/javiermolinar/dayplanner/internal/integrity"
	"github.com/javiermolinar/dayplanner/internal/log"
)

func (a *App) serveCmd() *cobra.Command {
	var (
		listen string
		seed   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Long: `Serve the REST API over the local database.

The integrity scan runs on the configured schedule while the server is up.

Example:
  dayplanner serve --listen=:8080 --seed`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen == "" {
				listen = a.config.Server.Listen
			}

			store, err := a.localStore()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if seed {
				n, err := store.Seed(ctx, a.owner())
				if err != nil {
					return fmt.Errorf("seeding: %w", err)
				}
				log.Info("seeded categories", "count", n)
			}

			if a.config.Integrity.Schedule != "" {
				scanner := integrity.NewScanner(store, a.owner(), a.config.Integrity.LookbackDays)
				job, err := integrity.NewJob(a.config.Integrity.Schedule, scanner)
				if err != nil {
					return err
				}
				job.Start()
				defer job.Stop()
				log.Info("integrity scan scheduled", "schedule", a.config.Integrity.Schedule)
			}

			srv := api.NewServer(store, api.Options{
				Owner:          a.owner(),
				RequestTimeout: a.config.RequestTimeout(),
				AllowOrigin:    a.config.Server.AllowOrigin,
			})
			err = srv.ListenAndServe(ctx, listen)
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Insert the default categories into an empty database")
	return cmd
}

func (a *App) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories",
		Long:  `Insert the default categories unless the database already has some.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.localStore()
			if err != nil {
				return err
			}
			n, err := store.Seed(ctxOf(cmd), a.owner())
			if err != nil {
				return fmt.Errorf("seeding: %w", err)
			}
			if n == 0 {
				fmt.Fprintln(a.out, "Categories already present, nothing seeded.")
				return nil
			}
			fmt.Fprintf(a.out, "Seeded %d categories.\n", n)
			return nil
		},
	}
}

// ctxOf returns the command context, which is nil when a command is run
// without ExecuteContext.
func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
