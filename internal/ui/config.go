package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayplanner/internal/config"
	"github.com/javiermolinar/dayplanner/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  dayplanner config
  dayplanner config --show`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if show {
				printConfig(a.out, a.config)
				return nil
			}
			return runConfigInteractive(a.out)
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Print the effective configuration and exit")
	return cmd
}

func runConfigInteractive(w io.Writer) error {
	configPath := config.DefaultConfigPath()
	fmt.Fprintf(w, "Config file: %s\n\n", configPath)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(w, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(w, "Created %s\n\n", configPath)
	}

	printConfig(w, cfg)

	reader := bufio.NewReader(os.Stdin)
	if !promptYesNo(reader, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Server.Listen = promptValue(reader, "Listen address", cfg.Server.Listen)
	cfg.Storage.DBPath = promptValue(reader, "Database path", cfg.Storage.DBPath)
	cfg.Client.BaseURL = promptValue(reader, "API URL (empty for local database)", cfg.Client.BaseURL)
	cfg.Planner.Durations = promptInts(reader, "Durations in minutes (comma-separated)", cfg.Planner.Durations)
	cfg.Insight.Provider = promptValue(reader, "Insight provider (ollama, openai, lmstudio)", cfg.Insight.Provider)
	cfg.Insight.Model = promptValue(reader, "Insight model", cfg.Insight.Model)
	cfg.Insight.BaseURL = promptValue(reader, "Insight base URL", cfg.Insight.BaseURL)
	cfg.Integrity.Schedule = promptValue(reader, "Integrity scan schedule (empty to disable)", cfg.Integrity.Schedule)
	cfg.Log.Level = promptValue(reader, "Log level", cfg.Log.Level)
	cfg.UI.Theme = promptTheme(reader, cfg.UI.Theme)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(w, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[server]")
	fmt.Fprintf(w, "  listen          = %s\n", cfg.Server.Listen)
	fmt.Fprintf(w, "  request_timeout = %s\n", cfg.Server.RequestTimeout)
	fmt.Fprintf(w, "  owner_id        = %d\n", cfg.Server.OwnerID)
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path         = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[client]")
	fmt.Fprintf(w, "  base_url        = %s\n", cfg.Client.BaseURL)
	fmt.Fprintf(w, "  timeout         = %s\n", cfg.Client.Timeout)
	fmt.Fprintln(w, "\n[planner]")
	fmt.Fprintf(w, "  durations       = %s\n", joinInts(cfg.Planner.Durations))
	fmt.Fprintln(w, "\n[insight]")
	fmt.Fprintf(w, "  provider        = %s\n", cfg.Insight.Provider)
	fmt.Fprintf(w, "  model           = %s\n", cfg.Insight.Model)
	fmt.Fprintf(w, "  base_url        = %s\n", cfg.Insight.BaseURL)
	fmt.Fprintln(w, "\n[integrity]")
	fmt.Fprintf(w, "  schedule        = %s\n", cfg.Integrity.Schedule)
	fmt.Fprintf(w, "  lookback_days   = %d\n", cfg.Integrity.LookbackDays)
	fmt.Fprintln(w, "\n[log]")
	fmt.Fprintf(w, "  level           = %s\n", cfg.Log.Level)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme           = %s\n", cfg.UI.Theme)
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}

func promptYesNo(reader *bufio.Reader, question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, label, current string) string {
	if current == "" {
		fmt.Printf("  %s: ", label)
	} else {
		fmt.Printf("  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInts(reader *bufio.Reader, label string, current []int) []int {
	for {
		value := promptValue(reader, label, joinInts(current))
		var result []int
		valid := true
		for _, p := range strings.Split(value, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			n, err := strconv.Atoi(p)
			if err != nil {
				valid = false
				break
			}
			result = append(result, n)
		}
		if valid && len(result) > 0 {
			return result
		}
		fmt.Printf("  Invalid list %q\n", value)
	}
}

func promptTheme(reader *bufio.Reader, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(reader, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Printf("  Invalid theme %q. Available: %s\n", value, options)
	}
}
