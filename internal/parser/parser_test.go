package parser

import (
	"strings"
	"testing"

	"github.com/ethogram/borisrec/internal/csvio"
)

// TestDetectFormat tests export shape detection from header columns
func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   Format
	}{
		{
			name:   "standard export",
			header: []string{"Observation id", "Time", "Subject", "Behavior", "Behavior type"},
			want:   FormatStandard,
		},
		{
			name:   "aggregated export",
			header: []string{"Observation id", "Subject", "Behavior", "Start (s)", "Stop (s)"},
			want:   FormatAggregated,
		},
		{
			name: "aggregated wins when both shapes present",
			header: []string{
				"Time", "Behavior type", "Start (s)", "Stop (s)",
			},
			want: FormatAggregated,
		},
		{
			name:   "time without behavior type",
			header: []string{"Time", "Subject", "Behavior"},
			want:   FormatUnknown,
		},
		{
			name:   "start without stop",
			header: []string{"Start (s)", "Subject", "Behavior"},
			want:   FormatUnknown,
		},
		{
			name:   "unrelated columns",
			header: []string{"A", "B", "C"},
			want:   FormatUnknown,
		},
		{
			name:   "empty header",
			header: nil,
			want:   FormatUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectFormat(tt.header)
			if got != tt.want {
				t.Errorf("DetectFormat(%v) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{
			name: "comma separated",
			data: "Subject,Behavior,Time\nadult,walking,1.5\n",
			want: ',',
		},
		{
			name: "semicolon separated",
			data: "Subject;Behavior;Time\nadult;walking;1,5\n",
			want: ';',
		},
		{
			name: "equal counts fall back to comma",
			data: "a;b,c\n",
			want: ',',
		},
		{
			name: "no separators at all",
			data: "justoneword\n",
			want: ',',
		},
		{
			name: "only first line considered",
			data: "a,b\nx;y;z;w;v\n",
			want: ',',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SniffDelimiter([]byte(tt.data))
			if got != tt.want {
				t.Errorf("SniffDelimiter(%q) = %q, want %q", tt.data, got, tt.want)
			}
		})
	}
}

// TestNewRowParser tests the factory function for creating row parsers
func TestNewRowParser(t *testing.T) {
	tests := []struct {
		name      string
		format    Format
		wantError bool
	}{
		{
			name:   "standard format",
			format: FormatStandard,
		},
		{
			name:   "aggregated format",
			format: FormatAggregated,
		},
		{
			name:      "unknown format",
			format:    FormatUnknown,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewRowParser(tt.format)
			if tt.wantError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p == nil {
				t.Error("expected parser, got nil")
			}
		})
	}
}

func TestFormat_String(t *testing.T) {
	if FormatStandard.String() != "standard" {
		t.Errorf("FormatStandard = %q", FormatStandard.String())
	}
	if FormatAggregated.String() != "aggregated" {
		t.Errorf("FormatAggregated = %q", FormatAggregated.String())
	}
	if FormatUnknown.String() != "unknown" {
		t.Errorf("FormatUnknown = %q", FormatUnknown.String())
	}
}

func TestValidateColumns(t *testing.T) {
	data := "Observation id,Observation date,Media file name,Time,Subject,Behavior,Behavior type,Behavioral category\nobs,2026-08-01,v.mp4,1.0,adult,walking,START,Locomotion\n"
	table, err := csvio.Parse([]byte(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ValidateColumns(table, FormatStandard); err != nil {
		t.Errorf("complete header rejected: %v", err)
	}
}

func TestValidateColumns_Missing(t *testing.T) {
	// Header carries the detection columns but not the metadata ones.
	data := "Time,Subject,Behavior,Behavior type\n1.0,adult,walking,START\n"
	table, err := csvio.Parse([]byte(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = ValidateColumns(table, FormatStandard)
	if err == nil {
		t.Fatal("expected error for missing column")
	}
	if !strings.Contains(err.Error(), "Observation id") {
		t.Errorf("error %q does not name the missing column", err)
	}
}

func TestRequiredColumns_UnknownFormat(t *testing.T) {
	if cols := RequiredColumns(FormatUnknown); cols != nil {
		t.Errorf("RequiredColumns(FormatUnknown) = %v, want nil", cols)
	}
}
