package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethogram/borisrec/internal/csvio"
	"github.com/ethogram/borisrec/internal/models"
)

// StandardParser handles the per-event export shape: each row is one
// already-coded event carrying its own timestamp and type tag.
type StandardParser struct{}

// NewStandardParser creates a new parser for per-event exports
func NewStandardParser() *StandardParser {
	return &StandardParser{}
}

// Parse emits exactly one event per row. State behaviors are recognized
// later from the accumulated type tags: any behavior observed with a
// START, STOP or STATE tag is a state behavior, everything else a point.
func (p *StandardParser) Parse(rows []csvio.Row, fps float64) (*models.BehaviorMap, []models.Event, error) {
	behaviors := models.NewBehaviorMap()
	events := make([]models.Event, 0, len(rows))

	for i, row := range rows {
		behavior := row.Get(ColumnBehavior)
		info := behaviors.Get(behavior)
		info.AddType(row.Get(ColumnBehaviorType))
		info.SetCategory(row.Get(ColumnCategory))
		info.AddModifiers(row.Get(ColumnModifier1))

		timestamp, err := ParseNumber(row.Get(ColumnTime))
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: column %q: %w", i+2, ColumnTime, err)
		}

		comment := row.Get(ColumnComment)
		if comment == "NA" {
			comment = ""
		}

		events = append(events, models.Event{
			Time:       timestamp,
			Subject:    row.Get(ColumnSubject),
			Behavior:   behavior,
			Modifier:   strings.TrimSpace(row.Get(ColumnModifier1)),
			Comment:    comment,
			FrameIndex: frameIndex(row.Get(ColumnImageIndex), timestamp, fps),
		})
	}

	return behaviors, events, nil
}

// frameIndex prefers the exported image index and falls back to deriving
// one from the timestamp at the given frame rate, truncating toward zero.
func frameIndex(raw string, timestamp, fps float64) int {
	if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return v
	}
	return int(timestamp * fps)
}
