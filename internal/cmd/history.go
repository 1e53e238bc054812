package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ethogram/borisrec/internal/config"
	"github.com/ethogram/borisrec/internal/history"
)

// NewHistoryCommand creates the 'borisrec history' parent command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Restore history commands",
		Long: `Commands for viewing and managing the restore history.

Every successful restore is recorded in a local database unless history
is disabled in the configuration.`,
	}

	// Add subcommands
	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryClearCommand())

	return cmd
}

// newHistoryListCommand creates the 'borisrec history list' command
func newHistoryListCommand() *cobra.Command {
	var limit int
	var dbPath string
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent restores",
		Long: `List recorded restores, most recent first.

Examples:
  # Show the last 20 restores
  borisrec history list

  # Show everything
  borisrec history list --limit 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, configPath, dbPath, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of records to show (0 for all)")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to history database (for testing)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file")

	return cmd
}

// runHistoryList executes the list command
func runHistoryList(cmd *cobra.Command, configPath, dbPathOverride string, limit int) error {
	output := cmd.OutOrStdout()

	dbPath, err := resolveHistoryDBPath(configPath, dbPathOverride)
	if err != nil {
		return err
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No restore history found at: %s\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	records, err := store.ListRestores(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("list restores: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintf(output, "No restores recorded yet.\n")
		return nil
	}

	printHistoryTable(output, records)
	return nil
}

// printHistoryTable renders restore records as an aligned table
func printHistoryTable(w io.Writer, records []history.Record) {
	// Detect if we're in a terminal (for color output)
	colorOutput := isatty.IsTerminal(os.Stdout.Fd())

	sourceWidth := len("SOURCE")
	formatWidth := len("FORMAT")
	for _, rec := range records {
		if n := len(rec.SourcePath); n > sourceWidth {
			sourceWidth = n
		}
		if n := len(rec.Format); n > formatWidth {
			formatWidth = n
		}
	}

	header := fmt.Sprintf("%-19s  %-*s  %-*s  %6s  %s",
		"CREATED", sourceWidth, "SOURCE", formatWidth, "FORMAT", "EVENTS", "OUTPUT")
	if colorOutput {
		header = color.New(color.Bold).Sprint(header)
	}
	fmt.Fprintln(w, header)

	for _, rec := range records {
		fmt.Fprintf(w, "%-19s  %-*s  %-*s  %6d  %s\n",
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			sourceWidth, rec.SourcePath,
			formatWidth, rec.Format,
			rec.Events,
			rec.OutputPath)
	}
}

// newHistoryClearCommand creates the 'borisrec history clear' command
func newHistoryClearCommand() *cobra.Command {
	var force bool
	var dbPath string
	var configPath string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all restore history",
		Long: `Delete every record from the restore history database.

Asks for confirmation unless --force is given.

Examples:
  # Clear history (requires confirmation)
  borisrec history clear

  # Clear history without prompting
  borisrec history clear --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(cmd, configPath, dbPath, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to history database (for testing)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file")

	return cmd
}

// runHistoryClear executes the clear command
func runHistoryClear(cmd *cobra.Command, configPath, dbPathOverride string, force bool) error {
	output := cmd.OutOrStdout()

	dbPath, err := resolveHistoryDBPath(configPath, dbPathOverride)
	if err != nil {
		return err
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No restore history found at: %s\n", dbPath)
		return nil
	}

	if !force {
		fmt.Fprintf(output, "This will delete ALL restore history from %s.\n", dbPath)
		if !confirmAction(output) {
			fmt.Fprintf(output, "Operation cancelled.\n")
			return nil
		}
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	deleted, err := store.Clear(context.Background())
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	recordText := "record"
	if deleted != 1 {
		recordText = "records"
	}
	fmt.Fprintf(output, "Deleted %d %s.\n", deleted, recordText)

	return nil
}

// resolveHistoryDBPath returns the database path for history commands,
// preferring the --db-path override over the configured location
func resolveHistoryDBPath(configPath, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg.ResolveDBPath(), nil
}

// confirmAction prompts the user for confirmation on stdin
func confirmAction(output io.Writer) bool {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Fprintf(output, "Continue? [y/N]: ")

	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}
