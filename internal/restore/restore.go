// Package restore reconstructs BORIS project files from tabular event
// exports. It loads an exported CSV, detects which export shape produced
// it, replays the rows into events and a behavior taxonomy, and assembles
// a complete project document ready to be written to disk.
package restore

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethogram/borisrec/internal/config"
	"github.com/ethogram/borisrec/internal/csvio"
	"github.com/ethogram/borisrec/internal/models"
	"github.com/ethogram/borisrec/internal/parser"
)

// Options control a single reconstruction run.
type Options struct {
	// FPS forces the frame rate used for derived frame indices. Zero keeps
	// the export's own FPS column, falling back to DefaultFPS.
	FPS float64

	// DefaultFPS applies when the export carries no usable FPS column.
	DefaultFPS float64

	// BehaviorColor is the display color assigned to every reconstructed
	// behavior.
	BehaviorColor string
}

// DefaultOptions returns options matching the built-in configuration
// defaults.
func DefaultOptions() Options {
	return Options{
		DefaultFPS:    config.DefaultFPS,
		BehaviorColor: config.DefaultBehaviorColor,
	}
}

// Metadata holds the per-observation values read from the first data row.
// Exports describe exactly one observation, so the first row is as good as
// any.
type Metadata struct {
	ObservationID   string
	ObservationDate string
	MediaFile       string
	MediaDuration   float64
	FPS             float64
}

// Result summarizes one completed reconstruction.
type Result struct {
	Format        parser.Format
	Delimiter     rune
	Metadata      Metadata
	RowCount      int
	EventCount    int
	SubjectCount  int
	BehaviorCount int
	Document      *models.ProjectDocument
}

// LoadTable reads an export file, sniffs its delimiter and parses it into
// a table.
func LoadTable(path string) (*csvio.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	table, err := csvio.Parse(data, parser.SniffDelimiter(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return table, nil
}

// Reconstruct replays a parsed export table into a project document. The
// table must contain at least one data row and carry the columns of one of
// the recognized export shapes.
func Reconstruct(table *csvio.Table, opts Options) (*Result, error) {
	if opts.DefaultFPS <= 0 {
		opts.DefaultFPS = config.DefaultFPS
	}
	if opts.BehaviorColor == "" {
		opts.BehaviorColor = config.DefaultBehaviorColor
	}

	if len(table.Rows) == 0 {
		return nil, errors.New("no data rows found")
	}

	format := parser.DetectFormat(table.Header)
	if format == parser.FormatUnknown {
		return nil, fmt.Errorf("unrecognized export: header has neither %q/%q nor %q/%q columns",
			parser.ColumnStart, parser.ColumnStop, parser.ColumnTime, parser.ColumnBehaviorType)
	}
	if err := parser.ValidateColumns(table, format); err != nil {
		return nil, err
	}

	meta, err := extractMetadata(table, opts)
	if err != nil {
		return nil, err
	}
	if opts.FPS > 0 {
		meta.FPS = opts.FPS
	}

	rowParser, err := parser.NewRowParser(format)
	if err != nil {
		return nil, err
	}
	behaviors, events, err := rowParser.Parse(table.Rows, meta.FPS)
	if err != nil {
		return nil, err
	}

	tax := BuildTaxonomy(behaviors, events, opts.BehaviorColor)
	doc := AssembleProject(meta, tax, events, time.Now())

	return &Result{
		Format:        format,
		Delimiter:     table.Delimiter,
		Metadata:      meta,
		RowCount:      len(table.Rows),
		EventCount:    len(events),
		SubjectCount:  len(tax.Subjects),
		BehaviorCount: len(tax.Behaviors),
		Document:      doc,
	}, nil
}

// RestoreFile loads and reconstructs a single export file without writing
// anything to disk.
func RestoreFile(path string, opts Options) (*Result, error) {
	table, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	return Reconstruct(table, opts)
}

// extractMetadata reads the observation-level values from the first data
// row. The FPS column is optional under either of its historical headers;
// a missing or blank value falls back to the configured default.
func extractMetadata(table *csvio.Table, opts Options) (Metadata, error) {
	first := table.Rows[0]

	meta := Metadata{
		ObservationID:   first.Get(parser.ColumnObservationID),
		ObservationDate: first.Get(parser.ColumnObservationDate),
		MediaFile:       first.Get(parser.ColumnMediaFileName),
	}

	duration, err := parser.ParseNumber(first.Get(parser.ColumnMediaDuration))
	if err != nil {
		return Metadata{}, fmt.Errorf("column %q: %w", parser.ColumnMediaDuration, err)
	}
	meta.MediaDuration = duration

	meta.FPS = opts.DefaultFPS
	for _, column := range []string{parser.ColumnFPS, parser.ColumnFPSFrames} {
		raw, ok := first.Lookup(column)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		fps, err := parser.ParseNumber(raw)
		if err != nil {
			return Metadata{}, fmt.Errorf("column %q: %w", column, err)
		}
		meta.FPS = fps
		break
	}

	return meta, nil
}
