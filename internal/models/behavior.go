package models

import (
	"sort"
	"strings"
)

// Behavior type tags observed in export rows. STANDARD exports carry
// START/STOP/POINT (and occasionally STATE); AGGREGATED rows are recorded
// as POINT or STATE directly.
const (
	TagPoint = "POINT"
	TagState = "STATE"
	TagStart = "START"
	TagStop  = "STOP"
)

// BehaviorInfo accumulates everything observed about one behavior code
// while scanning rows: the set of type tags, the category (last-seen wins),
// and the set of distinct modifier tokens. Instances are created on first
// observation of a code and never shared across codes.
type BehaviorInfo struct {
	Types     map[string]bool
	Category  string
	Modifiers map[string]bool
}

// NewBehaviorInfo creates an empty accumulator for a behavior code.
func NewBehaviorInfo() *BehaviorInfo {
	return &BehaviorInfo{
		Types:     make(map[string]bool),
		Modifiers: make(map[string]bool),
	}
}

// AddType records an observed behavior type tag.
func (b *BehaviorInfo) AddType(tag string) {
	b.Types[tag] = true
}

// SetCategory records the behavioral category. Every row overwrites the
// previous value, so the last row mentioning the behavior wins.
func (b *BehaviorInfo) SetCategory(category string) {
	b.Category = category
}

// AddModifiers splits a raw modifier field on commas and records each
// trimmed token. A field that is empty after trimming records nothing.
func (b *BehaviorInfo) AddModifiers(raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	for _, token := range strings.Split(raw, ",") {
		b.Modifiers[strings.TrimSpace(token)] = true
	}
}

// IsState reports whether the accumulated tags classify the behavior as a
// state event. Any of START, STOP or STATE marks it a state; everything
// else is a point event.
func (b *BehaviorInfo) IsState() bool {
	return b.Types[TagStart] || b.Types[TagStop] || b.Types[TagState]
}

// SortedModifiers returns the distinct modifier tokens in lexicographic
// order, or nil when none were observed.
func (b *BehaviorInfo) SortedModifiers() []string {
	if len(b.Modifiers) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(b.Modifiers))
	for token := range b.Modifiers {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// BehaviorMap tracks a BehaviorInfo per behavior code and remembers the
// order codes were first observed in, which keeps category discovery
// deterministic.
type BehaviorMap struct {
	infos map[string]*BehaviorInfo
	order []string
}

// NewBehaviorMap creates an empty behavior accumulator map.
func NewBehaviorMap() *BehaviorMap {
	return &BehaviorMap{infos: make(map[string]*BehaviorInfo)}
}

// Get returns the accumulator for a behavior code, creating it on first
// observation.
func (m *BehaviorMap) Get(code string) *BehaviorInfo {
	info, ok := m.infos[code]
	if !ok {
		info = NewBehaviorInfo()
		m.infos[code] = info
		m.order = append(m.order, code)
	}
	return info
}

// Codes returns the behavior codes in first-observation order.
func (m *BehaviorMap) Codes() []string {
	codes := make([]string, len(m.order))
	copy(codes, m.order)
	return codes
}

// SortedCodes returns the behavior codes in lexicographic order.
func (m *BehaviorMap) SortedCodes() []string {
	codes := m.Codes()
	sort.Strings(codes)
	return codes
}

// Len returns the number of distinct behavior codes observed.
func (m *BehaviorMap) Len() int {
	return len(m.order)
}
