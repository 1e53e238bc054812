package restore

import (
	"strconv"
	"time"

	"github.com/ethogram/borisrec/internal/config"
	"github.com/ethogram/borisrec/internal/models"
)

// AssembleProject merges the extracted metadata, the taxonomy and the event
// stream into a complete project document. Events are sorted in place by
// timestamp before assembly. Every schema default the document format
// requires but an export cannot provide is filled in here and nowhere else.
func AssembleProject(meta Metadata, tax *models.Taxonomy, events []models.Event, now time.Time) *models.ProjectDocument {
	models.SortEvents(events)

	return &models.ProjectDocument{
		TimeFormat:           config.TimeFormat,
		ProjectDate:          now.Format(config.ProjectDateLayout),
		ProjectName:          meta.ObservationID,
		ProjectDescription:   config.DefaultProjectDescription,
		ProjectFormatVersion: config.FormatVersion,
		SubjectsConf:         tax.Subjects,
		BehaviorsConf:        tax.Behaviors,
		Observations: map[string]models.Observation{
			meta.ObservationID: buildObservation(meta, events),
		},
		BehavioralCategories: tax.Categories,
		IndependentVariables: map[string]interface{}{},
		CodingMap:            map[string]interface{}{},
		BehaviorsCodingMap:   []interface{}{},
		Converters:           map[string]interface{}{},
		CategoriesConf:       tax.CategoriesConf(),
	}
}

// buildObservation constructs the single observation record. The media file
// occupies player slot 1; the remaining slots stay present but empty, which
// is how BORIS itself stores an observation with one media file.
func buildObservation(meta Metadata, events []models.Event) models.Observation {
	if events == nil {
		events = []models.Event{}
	}

	files := make(map[string][]string, config.MediaPlayerSlots)
	files["1"] = []string{meta.MediaFile}
	for slot := 2; slot <= config.MediaPlayerSlots; slot++ {
		files[strconv.Itoa(slot)] = []string{}
	}

	return models.Observation{
		File:                 files,
		Type:                 config.ObservationType,
		Date:                 meta.ObservationDate,
		Description:          "",
		TimeOffset:           0.0,
		Events:               events,
		TimeInterval:         [2]int{0, 0},
		IndependentVariables: map[string]interface{}{},
		ImageDisplayDuration: 1,
		MediaInfo: models.MediaInfo{
			Length:    map[string]float64{meta.MediaFile: meta.MediaDuration},
			FPS:       map[string]float64{meta.MediaFile: meta.FPS},
			HasVideo:  map[string]bool{meta.MediaFile: true},
			HasAudio:  map[string]bool{meta.MediaFile: true},
			Offset:    map[string]float64{"1": 0.0},
			ZoomLevel: map[string]float64{"1": 1.0},
		},
	}
}
