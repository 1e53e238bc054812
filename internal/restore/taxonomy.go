package restore

import (
	"sort"

	"github.com/ethogram/borisrec/internal/models"
)

// BuildTaxonomy turns the per-behavior accumulator and the event stream
// into the ordered configuration view the document needs. Subjects and
// behaviors get lexicographically sorted zero-based index keys; categories
// keep the order the behaviors carrying them were first observed in.
func BuildTaxonomy(behaviors *models.BehaviorMap, events []models.Event, color string) *models.Taxonomy {
	tax := &models.Taxonomy{
		Subjects:   make(map[string]models.SubjectConf),
		Behaviors:  make(map[string]models.BehaviorConf, behaviors.Len()),
		Categories: []string{},
	}

	for i, name := range subjectsFrom(events) {
		tax.Subjects[models.IndexKey(i)] = models.SubjectConf{Name: name}
	}

	seen := make(map[string]bool)
	for _, code := range behaviors.Codes() {
		if cat := behaviors.Get(code).Category; cat != "" && !seen[cat] {
			seen[cat] = true
			tax.Categories = append(tax.Categories, cat)
		}
	}

	for i, code := range behaviors.SortedCodes() {
		info := behaviors.Get(code)

		displayType := models.BehaviorTypePoint
		if info.IsState() {
			displayType = models.BehaviorTypeState
		}

		tax.Behaviors[models.IndexKey(i)] = models.BehaviorConf{
			Type:      displayType,
			Code:      code,
			Color:     color,
			Category:  info.Category,
			Modifiers: models.ModifierSet{Values: info.SortedModifiers()},
		}
	}

	return tax
}

// subjectsFrom collects the distinct subject names observed across all
// events, sorted. An export with unnamed subjects contributes the empty
// string as a subject like any other value.
func subjectsFrom(events []models.Event) []string {
	set := make(map[string]bool)
	for _, e := range events {
		set[e.Subject] = true
	}

	subjects := make([]string, 0, len(set))
	for s := range set {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	return subjects
}
