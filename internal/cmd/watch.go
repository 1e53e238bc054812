package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ethogram/borisrec/internal/config"
	"github.com/ethogram/borisrec/internal/display"
	"github.com/ethogram/borisrec/internal/filelock"
	"github.com/ethogram/borisrec/internal/logger"
	"github.com/ethogram/borisrec/internal/restore"
	"github.com/ethogram/borisrec/internal/watcher"
)

// NewWatchCommand creates the watch command for continuous restoration
// of a directory of exports
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Watch a directory and restore exports as they appear",
		Long: `Watch monitors a directory tree for CSV exports and rebuilds the
project file whenever an export is created or modified.

On startup, exports already present in the directory are restored if
their project file is missing (all of them with --force). Afterwards the
watcher keeps running until interrupted, restoring each export a short
debounce interval after it stops changing.

Project files written by the watcher itself are ignored, as are lock
and temporary files.

Examples:
  borisrec watch exports/
  borisrec watch --pattern "session*.csv" exports/
  borisrec watch --force --fps 25 exports/`,
		Args: cobra.ExactArgs(1),
		RunE: watchCommand,
	}

	cmd.Flags().String("config", "", "Path to configuration file")
	cmd.Flags().String("pattern", "*.csv", "Glob pattern exports must match")
	cmd.Flags().BoolP("force", "f", false, "Restore the backlog even when project files exist")
	cmd.Flags().Float64("fps", 0, "Frame rate used for frame indices, overriding the export")
	cmd.Flags().Bool("verbose", false, "Enable verbose logging")

	return cmd
}

// watchCommand executes the watch command
func watchCommand(cmd *cobra.Command, args []string) error {
	dir := args[0]
	configPath, _ := cmd.Flags().GetString("config")
	pattern, _ := cmd.Flags().GetString("pattern")
	force, _ := cmd.Flags().GetBool("force")
	fps, _ := cmd.Flags().GetFloat64("fps")
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

	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	out := cmd.OutOrStdout()
	log := logger.NewConsoleLogger(out, cfg.LogLevel)

	// One watcher per directory. A second instance would race the first
	// on every export that appears.
	guard := filelock.NewFileLock(filepath.Join(dir, ".borisrec-watch.lock"))
	acquired, err := guard.TryLock()
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("another watcher is already running on %s", dir)
	}
	defer guard.Unlock()

	opts := restore.Options{
		DefaultFPS:    cfg.DefaultFPS,
		BehaviorColor: cfg.BehaviorColor,
	}
	if fpsPtr != nil {
		opts.FPS = *fpsPtr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The watcher starts before the backlog scan so exports appearing
	// during the scan are not lost. They may be restored twice, which
	// is harmless: live restores always overwrite.
	w, err := watcher.New(dir, pattern)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := restoreBacklog(dir, pattern, force, opts, cfg, log, out); err != nil {
		return err
	}

	log.LogInfo(fmt.Sprintf("Watching %s for %s exports (Ctrl+C to stop)", w.RootDir(), pattern))

	for {
		select {
		case <-ctx.Done():
			log.LogInfo("Watcher stopped")
			return nil
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			if event.Op == watcher.OpRemoved {
				log.LogDebug(fmt.Sprintf("Export removed: %s", event.Path))
				continue
			}
			log.LogDebug(fmt.Sprintf("Export %s: %s", event.Op, event.Path))
			if err := restoreOne(event.Path, "", "", true, opts, cfg, log, out); err != nil {
				log.LogError(fmt.Sprintf("%s: %v", event.Path, err))
			}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			log.LogWarn(fmt.Sprintf("watch error: %v", err))
		}
	}
}

// restoreBacklog restores exports already present under dir. Without
// force, exports whose project file exists are left alone.
func restoreBacklog(dir, pattern string, force bool, opts restore.Options, cfg *config.Config, log logger.Logger, out io.Writer) error {
	exports, err := watcher.FindExisting(dir, pattern)
	if err != nil {
		return err
	}

	var pending []string
	for _, path := range exports {
		if force {
			pending = append(pending, path)
			continue
		}
		if _, err := os.Stat(restore.OutputPath(path)); os.IsNotExist(err) {
			pending = append(pending, path)
		}
	}

	skipped := len(exports) - len(pending)
	if skipped > 0 {
		log.LogInfo(fmt.Sprintf("Skipping %d export(s) already restored", skipped))
	}
	if len(pending) == 0 {
		return nil
	}

	progress := display.NewProgressIndicator(out, len(pending))
	progress.Start()

	failed := 0
	for _, path := range pending {
		progress.Step(path)
		if err := restoreOne(path, "", "", true, opts, cfg, log, out); err != nil {
			log.LogError(fmt.Sprintf("%s: %v", path, err))
			failed++
		}
	}
	if failed == 0 {
		progress.Complete()
	}
	return nil
}
