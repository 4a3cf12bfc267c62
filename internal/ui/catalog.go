package ui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayplanner/internal/plan"
)

var errRemoteCatalog = errors.New("categories and activities can only be changed against the local database")

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func (a *App) categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(a.categoryListCmd(), a.categoryAddCmd(), a.categoryEditCmd(), a.categoryDeleteCmd())
	return cmd
}

func (a *App) categoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.backend()
			if err != nil {
				return err
			}
			categories, err := store.ListCategories(ctxOf(cmd), a.owner())
			if err != nil {
				return fmt.Errorf("listing categories: %w", err)
			}
			if len(categories) == 0 {
				fmt.Fprintln(a.out, "No categories. Run 'dayplanner seed' to add the defaults.")
				return nil
			}
			for _, c := range categories {
				fmt.Fprintf(a.out, "  #%-4d %s %-20s %s\n", c.ID, formatSwatch(c.Color, "■"), c.Name, formatMuted(c.Color))
			}
			return nil
		},
	}
}

func (a *App) categoryAddCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a category",
		Example: `  dayplanner category add Reading --color=#f59e0b`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.config.Remote() {
				return errRemoteCatalog
			}
			store, err := a.localStore()
			if err != nil {
				return err
			}
			c, err := plan.NewCategory(args[0], color)
			if err != nil {
				return err
			}
			c.OwnerID = a.owner()
			if err := store.CreateCategory(ctxOf(cmd), c); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created category #%d: %s\n", c.ID, c.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "#6b7280", "Display color (#rrggbb)")
	return cmd
}

func (a *App) categoryEditCmd() *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Rename or recolor a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.config.Remote() {
				return errRemoteCatalog
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var p plan.CategoryPatch
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("color") {
				p.Color = &color
			}
			store, err := a.localStore()
			if err != nil {
				return err
			}
			c, err := store.UpdateCategory(ctxOf(cmd), id, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated category #%d: %s %s\n", c.ID, c.Name, c.Color)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&color, "color", "", "New color (#rrggbb)")
	return cmd
}

func (a *App) categoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a category with no activities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.config.Remote() {
				return errRemoteCatalog
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.localStore()
			if err != nil {
				return err
			}
			if err := store.DeleteCategory(ctxOf(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted category #%d\n", id)
			return nil
		},
	}
}

func (a *App) activityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"activities"},
		Short:   "Manage activities",
	}
	cmd.AddCommand(a.activityListCmd(), a.activityAddCmd(), a.activityEditCmd(), a.activityDeleteCmd())
	return cmd
}

func (a *App) activityListCmd() *cobra.Command {
	var categoryID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activities grouped by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.backend()
			if err != nil {
				return err
			}
			activities, err := store.ListActivities(ctxOf(cmd), a.owner(), categoryID)
			if err != nil {
				return fmt.Errorf("listing activities: %w", err)
			}
			if len(activities) == 0 {
				fmt.Fprintln(a.out, "No activities found.")
				return nil
			}
			var current string
			for _, act := range activities {
				if act.CategoryName != current {
					fmt.Fprintf(a.out, "%s %s\n", formatSwatch(act.CategoryColor, "■"), formatHeader(act.CategoryName))
					current = act.CategoryName
				}
				fmt.Fprintf(a.out, "  #%-4d %s", act.ID, act.Name)
				if act.Description != "" {
					fmt.Fprintf(a.out, "  %s", formatMuted(act.Description))
				}
				fmt.Fprintln(a.out)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&categoryID, "category", 0, "Only list activities in this category")
	return cmd
}

func (a *App) activityAddCmd() *cobra.Command {
	var (
		categoryID  int64
		description string
	)

	cmd := &cobra.Command{
		Use:     "add [name]",
		Short:   "Add an activity",
		Example: `  dayplanner activity add "Deep reading" --category=4 --description="Books, not feeds"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.config.Remote() {
				return errRemoteCatalog
			}
			store, err := a.localStore()
			if err != nil {
				return err
			}
			act, err := plan.NewActivity(args[0], description, categoryID)
			if err != nil {
				return err
			}
			act.OwnerID = a.owner()
			if err := store.CreateActivity(ctxOf(cmd), act); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created activity #%d: %s [%s]\n", act.ID, act.Name, act.CategoryName)
			return nil
		},
	}

	cmd.Flags().Int64Var(&categoryID, "category", 0, "Category ID (required)")
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func (a *App) activityEditCmd() *cobra.Command {
	var (
		name, description string
		categoryID        int64
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.config.Remote() {
				return errRemoteCatalog
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var p plan.ActivityPatch
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("description") {
				p.Description = &description
			}
			if cmd.Flags().Changed("category") {
				p.CategoryID = &categoryID
			}
			store, err := a.localStore()
			if err != nil {
				return err
			}
			act, err := store.UpdateActivity(ctxOf(cmd), id, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated activity #%d: %s [%s]\n", act.ID, act.Name, act.CategoryName)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description (empty clears it)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "New category ID")
	return cmd
}

func (a *App) activityDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an activity with no sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.config.Remote() {
				return errRemoteCatalog
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.localStore()
			if err != nil {
				return err
			}
			if err := store.DeleteActivity(ctxOf(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted activity #%d\n", id)
			return nil
		},
	}
}
