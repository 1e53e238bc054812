package models

import (
	"encoding/json"
	"errors"
	"strconv"
)

// ProjectDocument is the root aggregate of a BORIS project file. It is
// constructed once per run, serialized immediately and never mutated after
// assembly. Field order mirrors the on-disk layout the original exports
// were produced from.
type ProjectDocument struct {
	TimeFormat           string                  `json:"time_format"`
	ProjectDate          string                  `json:"project_date"`
	ProjectName          string                  `json:"project_name"`
	ProjectDescription   string                  `json:"project_description"`
	ProjectFormatVersion string                  `json:"project_format_version"`
	SubjectsConf         map[string]SubjectConf  `json:"subjects_conf"`
	BehaviorsConf        map[string]BehaviorConf `json:"behaviors_conf"`
	Observations         map[string]Observation  `json:"observations"`
	BehavioralCategories []string                `json:"behavioral_categories"`
	IndependentVariables map[string]interface{}  `json:"independent_variables"`
	CodingMap            map[string]interface{}  `json:"coding_map"`
	BehaviorsCodingMap   []interface{}           `json:"behaviors_coding_map"`
	Converters           map[string]interface{}  `json:"converters"`
	CategoriesConf       map[string]CategoryConf `json:"behavioral_categories_config"`
}

// Validate checks that the document carries the pieces BORIS needs to open
// it: a name, at least one observation, and a behavior catalogue.
func (p *ProjectDocument) Validate() error {
	if p.ProjectName == "" {
		return errors.New("project name is required")
	}
	if len(p.Observations) == 0 {
		return errors.New("project must contain an observation")
	}
	if p.SubjectsConf == nil || p.BehaviorsConf == nil {
		return errors.New("subject and behavior configurations are required")
	}
	return nil
}

// SubjectConf describes one subject entry in subjects_conf.
type SubjectConf struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BehaviorConf describes one behavior entry in behaviors_conf.
type BehaviorConf struct {
	Type        string      `json:"type"`
	Key         string      `json:"key"`
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Color       string      `json:"color"`
	Category    string      `json:"category"`
	Modifiers   ModifierSet `json:"modifiers"`
	Excluded    string      `json:"excluded"`
	CodingMap   string      `json:"coding map"`
}

// Behavior display types as BORIS spells them.
const (
	BehaviorTypeState = "State event"
	BehaviorTypePoint = "Point event"
)

// ModifierSet holds the distinct modifier values reconstructed for one
// behavior. BORIS stores modifiers either as the empty string (no
// modifiers) or as a dictionary with a single "0" entry, so the zero value
// marshals to "" and a populated set marshals to the dictionary form.
type ModifierSet struct {
	Values []string
}

// ModifierConf is the single configuration entry inside a non-empty
// modifiers block. Name, description and the ask-at-stop flag cannot be
// recovered from an export and stay at their zero values.
type ModifierConf struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        int      `json:"type"`
	AskAtStop   bool     `json:"ask at stop"`
	Values      []string `json:"values"`
}

// MarshalJSON emits "" for an empty set and {"0": {...}} otherwise.
func (m ModifierSet) MarshalJSON() ([]byte, error) {
	if len(m.Values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(map[string]ModifierConf{
		"0": {Values: m.Values},
	})
}

// Empty reports whether no modifier values were observed.
func (m ModifierSet) Empty() bool {
	return len(m.Values) == 0
}

// Observation is the single reconstructed observation record. The export
// only ever describes one observation, identified by its id.
type Observation struct {
	File                        map[string][]string    `json:"file"`
	Type                        string                 `json:"type"`
	Date                        string                 `json:"date"`
	Description                 string                 `json:"description"`
	TimeOffset                  float64                `json:"time offset"`
	Events                      []Event                `json:"events"`
	TimeInterval                [2]int                 `json:"observation time interval"`
	IndependentVariables        map[string]interface{} `json:"independent_variables"`
	VisualizeSpectrogram        bool                   `json:"visualize_spectrogram"`
	VisualizeWaveform           bool                   `json:"visualize_waveform"`
	MediaCreationDateAsOffset   bool                   `json:"media_creation_date_as_offset"`
	MediaScanSamplingDuration   int                    `json:"media_scan_sampling_duration"`
	ImageDisplayDuration        int                    `json:"image_display_duration"`
	CloseBehaviorsBetweenVideos bool                   `json:"close_behaviors_between_videos"`
	MediaInfo                   MediaInfo              `json:"media_info"`
}

// MediaInfo describes the synthetic media reference assembled for the
// observation. Length and fps are keyed by media file name; offset and
// zoom level by player slot.
type MediaInfo struct {
	Length    map[string]float64 `json:"length"`
	FPS       map[string]float64 `json:"fps"`
	HasVideo  map[string]bool    `json:"hasVideo"`
	HasAudio  map[string]bool    `json:"hasAudio"`
	Offset    map[string]float64 `json:"offset"`
	ZoomLevel map[string]float64 `json:"zoom level"`
}

// CategoryConf describes one entry in behavioral_categories_config.
type CategoryConf struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Taxonomy is the derived, read-only view of everything the rows revealed
// about the coding scheme: subjects and behaviors keyed by their stable
// zero-based string indices, and categories in discovery order.
type Taxonomy struct {
	Subjects   map[string]SubjectConf
	Behaviors  map[string]BehaviorConf
	Categories []string
}

// CategoriesConf builds the behavioral_categories_config block, indexing
// the discovered categories in order and pairing each with an empty
// display color.
func (t *Taxonomy) CategoriesConf() map[string]CategoryConf {
	conf := make(map[string]CategoryConf, len(t.Categories))
	for i, category := range t.Categories {
		conf[IndexKey(i)] = CategoryConf{Name: category}
	}
	return conf
}

// IndexKey converts a zero-based position into the string key BORIS uses
// for indexed dictionaries ("0", "1", ...).
func IndexKey(i int) string {
	return strconv.Itoa(i)
}
