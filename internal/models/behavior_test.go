package models

import (
	"reflect"
	"testing"
)

func TestBehaviorInfo_IsState(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		expected bool
	}{
		{
			name:     "start tag",
			tags:     []string{TagStart},
			expected: true,
		},
		{
			name:     "stop tag",
			tags:     []string{TagStop},
			expected: true,
		},
		{
			name:     "state tag",
			tags:     []string{TagState},
			expected: true,
		},
		{
			name:     "point only",
			tags:     []string{TagPoint},
			expected: false,
		},
		{
			name:     "point and start",
			tags:     []string{TagPoint, TagStart},
			expected: true,
		},
		{
			name:     "no tags",
			tags:     nil,
			expected: false,
		},
		{
			name:     "unrecognized tag",
			tags:     []string{"POINT EVENT"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewBehaviorInfo()
			for _, tag := range tt.tags {
				info.AddType(tag)
			}
			if info.IsState() != tt.expected {
				t.Errorf("IsState() = %v, expected %v", info.IsState(), tt.expected)
			}
		})
	}
}

func TestBehaviorInfo_AddModifiers(t *testing.T) {
	tests := []struct {
		name     string
		fields   []string
		expected []string
	}{
		{
			name:     "single value",
			fields:   []string{"large"},
			expected: []string{"large"},
		},
		{
			name:     "comma separated",
			fields:   []string{"large,small"},
			expected: []string{"large", "small"},
		},
		{
			name:     "padded tokens trimmed",
			fields:   []string{" large , small "},
			expected: []string{"large", "small"},
		},
		{
			name:     "blank field ignored",
			fields:   []string{"", "   "},
			expected: nil,
		},
		{
			name:     "duplicates collapse",
			fields:   []string{"large", "large,small", "small"},
			expected: []string{"large", "small"},
		},
		{
			name:     "empty token inside non-blank field kept",
			fields:   []string{"a,,b"},
			expected: []string{"", "a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewBehaviorInfo()
			for _, field := range tt.fields {
				info.AddModifiers(field)
			}
			got := info.SortedModifiers()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SortedModifiers() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestBehaviorInfo_SetCategory_Overwrites(t *testing.T) {
	info := NewBehaviorInfo()
	info.SetCategory("Locomotion")
	info.SetCategory("Maintenance")

	if info.Category != "Maintenance" {
		t.Errorf("Category = %q, expected %q", info.Category, "Maintenance")
	}

	info.SetCategory("")
	if info.Category != "" {
		t.Errorf("Category = %q, expected empty after blank overwrite", info.Category)
	}
}

func TestBehaviorMap_FirstSeenOrder(t *testing.T) {
	bm := NewBehaviorMap()
	bm.Get("walking")
	bm.Get("grooming")
	bm.Get("walking")
	bm.Get("alert")

	codes := bm.Codes()
	expected := []string{"walking", "grooming", "alert"}
	if !reflect.DeepEqual(codes, expected) {
		t.Errorf("Codes() = %v, expected %v", codes, expected)
	}

	sorted := bm.SortedCodes()
	expectedSorted := []string{"alert", "grooming", "walking"}
	if !reflect.DeepEqual(sorted, expectedSorted) {
		t.Errorf("SortedCodes() = %v, expected %v", sorted, expectedSorted)
	}

	if bm.Len() != 3 {
		t.Errorf("Len() = %d, expected 3", bm.Len())
	}
}

func TestBehaviorMap_GetReturnsSameInfo(t *testing.T) {
	bm := NewBehaviorMap()
	first := bm.Get("digging")
	first.AddType(TagPoint)

	second := bm.Get("digging")
	if !second.Types[TagPoint] {
		t.Error("Get() returned a fresh BehaviorInfo for an existing code")
	}
}
