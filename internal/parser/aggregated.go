package parser

import (
	"fmt"
	"math"
	"strings"

	"github.com/ethogram/borisrec/internal/csvio"
	"github.com/ethogram/borisrec/internal/models"
)

// pointThreshold is the widest start/stop gap still treated as a point
// event when a row carries no explicit behavior type.
const pointThreshold = 0.001

// AggregatedParser handles the interval export shape: each row describes
// one behavior bout with start and stop timestamps, so state bouts must
// be unfolded back into start/stop event pairs.
type AggregatedParser struct{}

// NewAggregatedParser creates a new parser for aggregated exports
func NewAggregatedParser() *AggregatedParser {
	return &AggregatedParser{}
}

// Parse emits one event per point row and two events per state row. A row
// is a point when its Behavior type says POINT, or when the type is blank
// and the interval is degenerate. The stop event of a state pair carries
// an empty modifier and comment: bout annotations describe the start of
// the interval only. A state bout with start == stop still yields both
// events at the identical timestamp so interval boundaries stay paired.
func (p *AggregatedParser) Parse(rows []csvio.Row, fps float64) (*models.BehaviorMap, []models.Event, error) {
	behaviors := models.NewBehaviorMap()
	events := make([]models.Event, 0, len(rows))

	for i, row := range rows {
		behavior := row.Get(ColumnBehavior)
		info := behaviors.Get(behavior)
		if category, ok := row.Lookup(ColumnCategory); ok {
			info.SetCategory(category)
		}

		modifier := firstModifier(row)
		info.AddModifiers(modifier)

		comment := row.Get(ColumnCommentStart)
		if v, ok := row.Lookup(ColumnComment); ok {
			comment = v
		}
		if comment == "NA" {
			comment = ""
		}

		start, err := ParseNumber(row.Get(ColumnStart))
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: column %q: %w", i+2, ColumnStart, err)
		}
		stop, err := ParseNumber(row.Get(ColumnStop))
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: column %q: %w", i+2, ColumnStop, err)
		}

		subject := row.Get(ColumnSubject)
		behaviorType := strings.TrimSpace(row.Get(ColumnBehaviorType))
		isPoint := strings.EqualFold(behaviorType, models.TagPoint) ||
			(behaviorType == "" && math.Abs(stop-start) < pointThreshold)

		if isPoint {
			info.AddType(models.TagPoint)
			events = append(events, models.Event{
				Time:       start,
				Subject:    subject,
				Behavior:   behavior,
				Modifier:   modifier,
				Comment:    comment,
				FrameIndex: int(start * fps),
			})
			continue
		}

		info.AddType(models.TagState)
		events = append(events,
			models.Event{
				Time:       start,
				Subject:    subject,
				Behavior:   behavior,
				Modifier:   modifier,
				Comment:    comment,
				FrameIndex: int(start * fps),
			},
			models.Event{
				Time:       stop,
				Subject:    subject,
				Behavior:   behavior,
				FrameIndex: int(stop * fps),
			},
		)
	}

	return behaviors, events, nil
}

// firstModifier returns the trimmed value of the first Modifier-prefixed
// column holding a non-blank value, scanning columns in file order. Blank
// modifier cells are skipped so a later populated column can still win.
func firstModifier(row csvio.Row) string {
	for _, col := range row.Columns() {
		if !strings.HasPrefix(col, modifierPrefix) {
			continue
		}
		if v := strings.TrimSpace(row.Get(col)); v != "" {
			return v
		}
	}
	return ""
}
