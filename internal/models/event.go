package models

import (
	"encoding/json"
	"errors"
	"sort"
)

// Event represents a single coded observation occurrence reconstructed
// from one CSV row (or synthesized as the stop half of an interval).
type Event struct {
	Time       float64 // Timestamp in seconds from observation start
	Subject    string  // Subject the behavior was coded for
	Behavior   string  // Behavior code
	Modifier   string  // Modifier value ("" when none was recorded)
	Comment    string  // Free-text comment ("" when none or placeholder)
	FrameIndex int     // Media frame index for the timestamp
}

// MarshalJSON emits the on-disk BORIS event shape: a six-element array
// [time, subject, behavior, modifier, comment, frame_index].
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{
		e.Time,
		e.Subject,
		e.Behavior,
		e.Modifier,
		e.Comment,
		e.FrameIndex,
	})
}

// Validate checks if the event has the fields a project file requires
func (e *Event) Validate() error {
	if e.Behavior == "" {
		return errors.New("event behavior code is required")
	}
	return nil
}

// SortEvents orders events ascending by timestamp. The sort is stable, so
// events sharing a timestamp keep their input order.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})
}
