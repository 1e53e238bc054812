package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for borisrec
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "borisrec",
		Short: "Reconstruct BORIS project files from CSV exports",
		Long: `Borisrec rebuilds openable BORIS project files (.boris) from the
tabular CSV exports observation sessions leave behind.

It detects which export shape produced a file (per-event or aggregated),
replays the rows into events and a behavior catalogue, and writes a
complete project document next to the export.

Configuration is loaded from .borisrec/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Errors are reported once by main, not echoed again with usage
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRestoreCommand())
	cmd.AddCommand(NewInspectCommand())
	cmd.AddCommand(NewWatchCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
