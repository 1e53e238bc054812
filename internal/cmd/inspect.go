package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ethogram/borisrec/internal/config"
	"github.com/ethogram/borisrec/internal/models"
	"github.com/ethogram/borisrec/internal/restore"
)

// NewInspectCommand creates the inspect command for analyzing exports
// without writing anything
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <export-file>",
		Short: "Analyze an export without writing a project file",
		Long: `Inspect runs the full reconstruction on a CSV export and prints what
it found: the detected export shape, the observation metadata, and the
subjects, behaviors and categories the project file would contain. It
then checks that the reconstructed events would hold up in BORIS:
  - Observation metadata (id, media file, duration) is present
  - State events pair into start/stop intervals
  - No event falls after the media end

Nothing is written to disk.

Exit code: 0 if the export reconstructs cleanly, 1 if problems found

Examples:
  borisrec inspect session4.csv
  borisrec inspect --fps 25 aggregated_events.csv`,
		Args: cobra.ExactArgs(1),
		RunE: inspectCommand,
	}

	cmd.Flags().String("config", "", "Path to configuration file")
	cmd.Flags().Float64("fps", 0, "Frame rate used for frame indices, overriding the export")

	return cmd
}

// inspectCommand executes the inspect command
func inspectCommand(cmd *cobra.Command, args []string) error {
	path := args[0]
	configPath, _ := cmd.Flags().GetString("config")
	fps, _ := cmd.Flags().GetFloat64("fps")

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
	cfg.MergeWithFlags(fpsPtr, nil, nil)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := os.Stat(path); err != nil {
		return err
	}

	opts := restore.Options{
		DefaultFPS:    cfg.DefaultFPS,
		BehaviorColor: cfg.BehaviorColor,
	}
	if fpsPtr != nil {
		opts.FPS = *fpsPtr
	}

	return inspectExport(path, opts, cmd.OutOrStdout())
}

// inspectExport reconstructs an export in memory, prints the summary and
// checks the result for problems BORIS would trip over. Returns an error
// when any check fails, so the exit code reflects reconstructability.
func inspectExport(path string, opts restore.Options, output io.Writer) error {
	result, err := restore.RestoreFile(path, opts)
	if err != nil {
		fmt.Fprintf(output, "✗ Failed to reconstruct %s\n", path)
		fmt.Fprintf(output, "  Error: %v\n", err)
		return err
	}

	printInspection(output, path, result)

	var errors []string

	// 1. Observation metadata the project file cannot do without
	metaProblems := metadataProblems(result.Metadata)
	if len(metaProblems) == 0 {
		fmt.Fprintf(output, "✓ Observation metadata is complete\n")
	} else {
		errors = append(errors, metaProblems...)
	}

	// 2. State events must pair into closed intervals
	unpaired := unpairedStateEvents(result.Document)
	if len(unpaired) == 0 {
		fmt.Fprintf(output, "✓ All state events pair into start/stop intervals\n")
	} else {
		fmt.Fprintf(output, "✗ Unpaired state events detected\n")
		errors = append(errors, unpaired...)
	}

	// 3. Event timestamps against the media length
	// Only meaningful when the export carried a duration.
	if result.Metadata.MediaDuration > 0 {
		late := countEventsPastMediaEnd(result.Document, result.Metadata.MediaDuration)
		if late == 0 {
			fmt.Fprintf(output, "✓ All events fall within the media duration\n")
		} else {
			errors = append(errors, fmt.Sprintf("%d event(s) fall after the media end at %g s", late, result.Metadata.MediaDuration))
		}
	}

	// 4. Final check
	if len(errors) == 0 {
		fmt.Fprintf(output, "\n✓ Export is reconstructable!\n")
		return nil
	}

	// Report all problems found
	fmt.Fprintf(output, "\n✗ Inspection failed for %s\n", path)
	for _, errMsg := range errors {
		fmt.Fprintf(output, "  ✗ %s\n", errMsg)
	}
	fmt.Fprintf(output, "\nFound %d problem(s)!\n", len(errors))

	return fmt.Errorf("inspection found %d problem(s)", len(errors))
}

// metadataProblems flags blank observation values a usable project file
// needs filled in.
func metadataProblems(meta restore.Metadata) []string {
	var problems []string

	if meta.ObservationID == "" {
		problems = append(problems, "Observation id is blank")
	}
	if meta.MediaFile == "" {
		problems = append(problems, "Media file name is blank")
	}
	if meta.MediaDuration <= 0 {
		problems = append(problems, "Media duration is missing")
	}

	return problems
}

// stateKey identifies one pairing group: BORIS toggles a state behavior
// per subject on each of its events.
type stateKey struct {
	subject  string
	behavior string
}

// unpairedStateEvents reports state behaviors whose event count for a
// subject is odd. An odd count leaves the final interval open.
func unpairedStateEvents(doc *models.ProjectDocument) []string {
	stateCodes := make(map[string]bool)
	for _, conf := range doc.BehaviorsConf {
		if conf.Type == models.BehaviorTypeState {
			stateCodes[conf.Code] = true
		}
	}

	counts := make(map[stateKey]int)
	var order []stateKey
	for _, obs := range doc.Observations {
		for _, event := range obs.Events {
			if !stateCodes[event.Behavior] {
				continue
			}
			key := stateKey{subject: event.Subject, behavior: event.Behavior}
			if _, seen := counts[key]; !seen {
				order = append(order, key)
			}
			counts[key]++
		}
	}

	var problems []string
	for _, key := range order {
		if counts[key]%2 == 0 {
			continue
		}
		subject := key.subject
		if subject == "" {
			subject = "no subject"
		}
		problems = append(problems, fmt.Sprintf("Behavior '%s' (%s): %d state event(s) do not pair into intervals", key.behavior, subject, counts[key]))
	}

	return problems
}

// countEventsPastMediaEnd counts events whose timestamp lies beyond the
// media duration.
func countEventsPastMediaEnd(doc *models.ProjectDocument, duration float64) int {
	late := 0
	for _, obs := range doc.Observations {
		for _, event := range obs.Events {
			if event.Time > duration {
				late++
			}
		}
	}
	return late
}

// printInspection formats and prints the reconstruction summary
func printInspection(w io.Writer, path string, result *restore.Result) {
	cyan := color.New(color.FgCyan, color.Bold)

	cyan.Fprintf(w, "\n=== Export %s ===\n\n", path)
	fmt.Fprintf(w, "  Format:    %s (%s)\n", result.Format, delimiterName(result.Delimiter))
	fmt.Fprintf(w, "  Rows:      %d\n", result.RowCount)
	fmt.Fprintf(w, "  Events:    %d\n", result.EventCount)

	meta := result.Metadata
	fmt.Fprintf(w, "\n")
	cyan.Fprintf(w, "Observation:\n")
	fmt.Fprintf(w, "  Id:        %s\n", meta.ObservationID)
	fmt.Fprintf(w, "  Date:      %s\n", meta.ObservationDate)
	fmt.Fprintf(w, "  Media:     %s\n", meta.MediaFile)
	fmt.Fprintf(w, "  Duration:  %g s\n", meta.MediaDuration)
	fmt.Fprintf(w, "  FPS:       %g\n", meta.FPS)

	doc := result.Document

	fmt.Fprintf(w, "\n")
	cyan.Fprintf(w, "Subjects (%d):\n", result.SubjectCount)
	for _, name := range sortedSubjectNames(doc) {
		if name == "" {
			name = "(no subject)"
		}
		fmt.Fprintf(w, "  - %s\n", name)
	}

	fmt.Fprintf(w, "\n")
	cyan.Fprintf(w, "Behaviors (%d):\n", result.BehaviorCount)
	for _, behavior := range sortedBehaviorConfs(doc) {
		fmt.Fprintf(w, "  - %s (%s", behavior.Code, behavior.Type)
		if behavior.Category != "" {
			fmt.Fprintf(w, ", category: %s", behavior.Category)
		}
		if len(behavior.Modifiers.Values) > 0 {
			fmt.Fprintf(w, ", modifiers: %s", strings.Join(behavior.Modifiers.Values, "|"))
		}
		fmt.Fprintf(w, ")\n")
	}

	if len(doc.BehavioralCategories) > 0 {
		fmt.Fprintf(w, "\n")
		cyan.Fprintf(w, "Categories (%d):\n", len(doc.BehavioralCategories))
		for _, category := range doc.BehavioralCategories {
			fmt.Fprintf(w, "  - %s\n", category)
		}
	}

	fmt.Fprintf(w, "\n")
}

// delimiterName names the sniffed column delimiter for display
func delimiterName(delimiter rune) string {
	if delimiter == ';' {
		return "semicolon-delimited"
	}
	return "comma-delimited"
}

// sortedSubjectNames returns the observed subject names in sorted order
func sortedSubjectNames(doc *models.ProjectDocument) []string {
	names := make([]string, 0, len(doc.SubjectsConf))
	for _, conf := range doc.SubjectsConf {
		names = append(names, conf.Name)
	}
	sort.Strings(names)
	return names
}

// sortedBehaviorConfs returns the behavior catalogue sorted by code
func sortedBehaviorConfs(doc *models.ProjectDocument) []models.BehaviorConf {
	behaviors := make([]models.BehaviorConf, 0, len(doc.BehaviorsConf))
	for _, conf := range doc.BehaviorsConf {
		behaviors = append(behaviors, conf)
	}
	sort.Slice(behaviors, func(i, j int) bool {
		return behaviors[i].Code < behaviors[j].Code
	})
	return behaviors
}
