// Package display provides terminal UI utilities for warnings and status messages.
//
// This package centralizes terminal output formatting, ANSI color codes, and
// user-facing display logic for the borisrec CLI.
//
// # Warning Messages
//
// Display warnings with optional components:
//
//	warning := display.Warning{
//	    Title:      "Overwriting existing project file",
//	    Message:    "session4.boris already exists and will be replaced",
//	    Suggestion: "Move the old file first to keep it",
//	}
//	warning.Display(os.Stderr)
//
// Or use the convenience factories for the recurring cases:
//
//	display.WarnExtension("notes.txt").Display(os.Stderr)
//	display.WarnOverwrite("session4.boris").Display(os.Stderr)
//
// # Result Lines
//
// Report a finished restore:
//
//	display.DisplayRestored(os.Stdout, "session4.boris")
//
// # ANSI Colors
//
// The package uses ANSI escape codes for terminal colors:
//   - Green (\x1b[32m) for success messages
//   - Yellow (\x1b[33m) for warnings
//   - Reset (\x1b[0m) after each colored section
//
// All functions accept io.Writer interfaces for testability and flexibility.
//
// # Design Principles
//
//   - Single source of truth for all display logic
//   - Consistent formatting across all commands
//   - Testable via io.Writer abstraction
//   - No global state or side effects
//   - Minimal dependencies (standard library only)
package display
