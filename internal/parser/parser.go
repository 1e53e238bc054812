package parser

import (
	"bytes"
	"fmt"

	"github.com/ethogram/borisrec/internal/csvio"
	"github.com/ethogram/borisrec/internal/models"
)

// Format represents the shape of a CSV export
type Format int

const (
	// FormatUnknown represents an unrecognized export shape
	FormatUnknown Format = iota
	// FormatStandard represents the per-event export (one row per coded event)
	FormatStandard
	// FormatAggregated represents the aggregated export (one row per interval)
	FormatAggregated
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatStandard:
		return "standard"
	case FormatAggregated:
		return "aggregated"
	default:
		return "unknown"
	}
}

// Column names as they appear in export headers. Exports address columns
// by exact name, so these are the single source of truth for spelling.
const (
	ColumnObservationID   = "Observation id"
	ColumnObservationDate = "Observation date"
	ColumnMediaDuration   = "Media duration (s)"
	ColumnFPS             = "FPS"
	ColumnFPSFrames       = "FPS (frame/s)"
	ColumnMediaFileName   = "Media file name"
	ColumnTime            = "Time"
	ColumnSubject         = "Subject"
	ColumnBehavior        = "Behavior"
	ColumnBehaviorType    = "Behavior type"
	ColumnCategory        = "Behavioral category"
	ColumnModifier1       = "Modifier #1"
	ColumnComment         = "Comment"
	ColumnCommentStart    = "Comment start"
	ColumnImageIndex      = "Image index"
	ColumnStart           = "Start (s)"
	ColumnStop            = "Stop (s)"

	// modifierPrefix matches the family of Modifier columns aggregated
	// exports may carry (Modifier #1, Modifier #2, Modifiers, ...).
	modifierPrefix = "Modifier"
)

// RowParser converts rows of one detected export shape into the uniform
// event list and per-behavior accumulator the assembler consumes.
type RowParser interface {
	// Parse scans every row in order, recording behavior traits and
	// emitting events. fps derives frame indices for rows that do not
	// carry one. Events are returned in emission order, not sorted.
	Parse(rows []csvio.Row, fps float64) (*models.BehaviorMap, []models.Event, error)
}

// DetectFormat classifies an export from its header columns.
// Detection rules, checked in order:
//   - Start (s) and Stop (s) both present -> FormatAggregated
//   - Time and Behavior type both present -> FormatStandard
//   - anything else -> FormatUnknown
func DetectFormat(header []string) Format {
	has := make(map[string]bool, len(header))
	for _, col := range header {
		has[col] = true
	}
	switch {
	case has[ColumnStart] && has[ColumnStop]:
		return FormatAggregated
	case has[ColumnTime] && has[ColumnBehaviorType]:
		return FormatStandard
	default:
		return FormatUnknown
	}
}

// SniffDelimiter picks the field separator from the raw first line:
// semicolon wins only when it strictly outnumbers commas. This is a
// counting heuristic, not a full dialect sniff; exotic separators are
// not detected.
func SniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// NewRowParser creates a row parser for the specified format
// Returns an error if the format is unknown or unsupported
func NewRowParser(format Format) (RowParser, error) {
	switch format {
	case FormatStandard:
		return NewStandardParser(), nil
	case FormatAggregated:
		return NewAggregatedParser(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %v", format)
	}
}

// RequiredColumns lists the header columns a format cannot be parsed
// without. Optional columns (modifiers, comments, image indices) are not
// listed; their absence degrades to empty values.
func RequiredColumns(format Format) []string {
	switch format {
	case FormatStandard:
		return []string{
			ColumnObservationID,
			ColumnObservationDate,
			ColumnMediaFileName,
			ColumnTime,
			ColumnSubject,
			ColumnBehavior,
			ColumnBehaviorType,
			ColumnCategory,
		}
	case FormatAggregated:
		return []string{
			ColumnObservationID,
			ColumnObservationDate,
			ColumnMediaFileName,
			ColumnStart,
			ColumnStop,
			ColumnSubject,
			ColumnBehavior,
		}
	default:
		return nil
	}
}

// ValidateColumns checks the table header against the detected format's
// required columns and reports the first missing one.
func ValidateColumns(table *csvio.Table, format Format) error {
	for _, col := range RequiredColumns(format) {
		if !table.HasColumn(col) {
			return fmt.Errorf("missing expected column: %s", col)
		}
	}
	return nil
}
