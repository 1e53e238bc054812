package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethogram/borisrec/internal/config"
	"github.com/ethogram/borisrec/internal/display"
	"github.com/ethogram/borisrec/internal/history"
	"github.com/ethogram/borisrec/internal/logger"
	"github.com/ethogram/borisrec/internal/models"
	"github.com/ethogram/borisrec/internal/notes"
	"github.com/ethogram/borisrec/internal/restore"
)

// NewRestoreCommand creates the restore command for rebuilding project
// files from export files
func NewRestoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <export-file>...",
		Short: "Rebuild project files from CSV exports",
		Long: `Restore reads one or more BORIS CSV exports and writes a complete
project file (.boris) next to each one.

The export shape (per-event or aggregated) and the column delimiter are
detected automatically. Existing project files are left untouched unless
--force is given.

Examples:
  borisrec restore session4.csv
  borisrec restore --fps 25 session4.csv
  borisrec restore --output recovered.boris --notes field-notes.md session4.csv
  borisrec restore --force exports/*.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: restoreCommand,
	}

	cmd.Flags().String("config", "", "Path to configuration file")
	cmd.Flags().StringP("output", "o", "", "Output path (single export only)")
	cmd.Flags().BoolP("force", "f", false, "Overwrite existing project files")
	cmd.Flags().Float64("fps", 0, "Frame rate used for frame indices, overriding the export")
	cmd.Flags().String("notes", "", "Markdown file imported as the observation description (single export only)")
	cmd.Flags().Bool("verbose", false, "Enable verbose logging")

	return cmd
}

func restoreCommand(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	outputPath, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")
	fps, _ := cmd.Flags().GetFloat64("fps")
	notesPath, _ := cmd.Flags().GetString("notes")
	verbose, _ := cmd.Flags().GetBool("verbose")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var fpsPtr *float64
	if cmd.Flags().Changed("fps") {
		fpsPtr = &fps
	}
	var levelPtr *string
	if verbose {
		debugLevel := "debug"
		levelPtr = &debugLevel
	}
	cfg.MergeWithFlags(fpsPtr, levelPtr, nil)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if outputPath != "" && len(args) > 1 {
		return errors.New("--output requires a single export file")
	}
	if notesPath != "" && len(args) > 1 {
		return errors.New("--notes requires a single export file")
	}

	var notesText string
	if notesPath != "" {
		notesText, err = notes.NewImporter().Load(notesPath)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()

	// Check every output before writing any, so a batch run either
	// proceeds cleanly or stops before touching the first file.
	var existing []string
	for _, path := range args {
		outPath := resolveOutputPath(path, outputPath)
		if _, err := os.Stat(outPath); err == nil {
			existing = append(existing, outPath)
		}
	}
	if len(existing) > 0 {
		if !force {
			display.WarnExistingOutputs(existing).Display(out)
			return fmt.Errorf("%d project file(s) already exist", len(existing))
		}
		for _, path := range existing {
			display.WarnOverwrite(path).Display(out)
		}
	}

	opts := restore.Options{
		DefaultFPS:    cfg.DefaultFPS,
		BehaviorColor: cfg.BehaviorColor,
	}
	if fpsPtr != nil {
		opts.FPS = *fpsPtr
	}

	log := logger.NewConsoleLogger(out, cfg.LogLevel)

	if len(args) == 1 {
		return restoreOne(args[0], outputPath, notesText, force, opts, cfg, log, out)
	}

	progress := display.NewProgressIndicator(out, len(args))
	progress.Start()

	failed := 0
	for _, path := range args {
		progress.Step(path)
		if err := restoreOne(path, outputPath, notesText, force, opts, cfg, log, out); err != nil {
			log.LogError(fmt.Sprintf("%s: %v", path, err))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d export(s) failed", failed)
	}
	progress.Complete()
	return nil
}

// restoreOne rebuilds a single export and writes its project file.
func restoreOne(path, outputOverride, notesText string, force bool, opts restore.Options, cfg *config.Config, log logger.Logger, out io.Writer) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
	default:
		display.WarnExtension(path).Display(out)
	}

	started := time.Now()
	log.LogRestoreStart(path)

	result, err := restore.RestoreFile(path, opts)
	if err != nil {
		return err
	}
	log.LogDebug(fmt.Sprintf("Detected %s export: %d rows, %d events", result.Format, result.RowCount, result.EventCount))

	if notesText != "" {
		setObservationDescription(result.Document, notesText)
	}

	outPath := resolveOutputPath(path, outputOverride)
	if err := restore.WriteDocument(result.Document, outPath, force); err != nil {
		return err
	}

	log.LogRestoreComplete(path, result.EventCount, time.Since(started))
	display.DisplayRestored(out, outPath)

	recordRestore(cfg, log, path, outPath, result)
	return nil
}

// resolveOutputPath returns the explicit override when set, otherwise the
// default output path derived from the input.
func resolveOutputPath(inputPath, override string) string {
	if override != "" {
		return override
	}
	return restore.OutputPath(inputPath)
}

// setObservationDescription stores the imported notes on every observation
// in the document. Reconstructed documents carry exactly one.
func setObservationDescription(doc *models.ProjectDocument, text string) {
	for id, obs := range doc.Observations {
		obs.Description = text
		doc.Observations[id] = obs
	}
}

// recordRestore appends the restore to the history database. History is
// best-effort: failures are logged, never returned.
func recordRestore(cfg *config.Config, log logger.Logger, sourcePath, outPath string, result *restore.Result) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.NewStore(cfg.ResolveDBPath())
	if err != nil {
		log.LogWarn(fmt.Sprintf("restore history unavailable: %v", err))
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec := &history.Record{
		SourcePath: sourcePath,
		OutputPath: outPath,
		Format:     result.Format.String(),
		Rows:       result.RowCount,
		Events:     result.EventCount,
		Subjects:   result.SubjectCount,
		Behaviors:  result.BehaviorCount,
	}
	if err := store.RecordRestore(ctx, rec); err != nil {
		log.LogWarn(fmt.Sprintf("failed to record restore: %v", err))
	}
}
