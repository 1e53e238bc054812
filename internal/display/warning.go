package display

import (
	"fmt"
	"io"
	"strings"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	// Start with yellow color, emoji, and title
	b.WriteString("\x1b[33m")
	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	// Add message with 4-space indent if present
	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	// Add files with proper singular/plural and indentation
	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected file:\n")
		} else {
			b.WriteString("Affected files:\n")
		}

		for i, file := range w.Files {
			b.WriteString("      ")
			b.WriteString(fmt.Sprintf("%d. %s", i+1, file))
			b.WriteString("\n")
		}
	}

	// Add suggestion with 4-space indent if present
	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	// End with reset code
	b.WriteString("\x1b[0m")

	fmt.Fprint(out, b.String())
}

// WarnExtension creates a warning for an input file without a .csv extension
func WarnExtension(path string) Warning {
	return Warning{
		Title:   "Input does not look like a CSV export",
		Message: fmt.Sprintf("%s has no .csv extension; attempting to parse it anyway", path),
	}
}

// WarnOverwrite creates a warning for an output file about to be replaced
func WarnOverwrite(path string) Warning {
	return Warning{
		Title:   "Overwriting existing project file",
		Message: fmt.Sprintf("%s already exists and will be replaced", path),
	}
}

// WarnExistingOutputs creates a warning for exports whose project files
// already exist and will therefore be skipped
func WarnExistingOutputs(files []string) Warning {
	return Warning{
		Title:      "Existing project files will not be replaced",
		Files:      files,
		Suggestion: "Re-run with --force to overwrite them",
	}
}
