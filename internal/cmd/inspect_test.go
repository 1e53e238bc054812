package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const aggregatedSample = `Observation id;Observation date;Media duration (s);FPS (frame/s);Media file name;Subject;Behavior;Behavioral category;Modifier #1;Behavior type;Start (s);Stop (s);Comment start
nest;2024-06-01;450,5;29,97;nest.mp4;male;incubating;parental;;STATE;12,0;47,5;settled
nest;2024-06-01;450,5;29,97;nest.mp4;male;turn egg;parental;beak;POINT;60,25;60,25;
`

func TestInspectCommand(t *testing.T) {
	tmpDir := t.TempDir()
	exportPath := writeExport(t, tmpDir, "session.csv")

	cmd := NewInspectCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{exportPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Inspect command failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"standard (comma-delimited)",
		"obs1",
		"den.mp4",
		"600 s",
		"grooming (State event, category: maintenance, modifiers: self)",
		"alarm (Point event)",
		"female",
		"Categories (1):",
		"✓ Observation metadata is complete",
		"✓ All state events pair into start/stop intervals",
		"✓ All events fall within the media duration",
		"✓ Export is reconstructable!",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in inspect output, got: %s", want, output)
		}
	}

	// Inspect never writes anything
	if _, err := os.Stat(filepath.Join(tmpDir, "session.boris")); !os.IsNotExist(err) {
		t.Error("Inspect should not write a project file")
	}
}

func TestInspectCommandAggregated(t *testing.T) {
	tmpDir := t.TempDir()
	exportPath := filepath.Join(tmpDir, "nest.csv")
	if err := os.WriteFile(exportPath, []byte(aggregatedSample), 0644); err != nil {
		t.Fatalf("Failed to write export: %v", err)
	}

	cmd := NewInspectCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{exportPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Inspect command failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"aggregated (semicolon-delimited)",
		"450.5 s",
		"29.97",
		"incubating (State event, category: parental)",
		"turn egg (Point event, category: parental, modifiers: beak)",
		"✓ Export is reconstructable!",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in inspect output, got: %s", want, output)
		}
	}
}

func TestInspectCommandUnpairedState(t *testing.T) {
	tmpDir := t.TempDir()
	exportPath := filepath.Join(tmpDir, "open.csv")
	export := `Observation id,Observation date,Media duration (s),FPS,Media file name,Time,Subject,Behavior,Behavior type,Behavioral category,Modifier #1,Comment,Image index
obs1,2024-05-12,600.0,25,den.mp4,10.0,female,grooming,START,maintenance,self,NA,250
obs1,2024-05-12,600.0,25,den.mp4,20.0,female,alarm,POINT,,,loud call,
`
	if err := os.WriteFile(exportPath, []byte(export), 0644); err != nil {
		t.Fatalf("Failed to write export: %v", err)
	}

	cmd := NewInspectCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{exportPath})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "1 problem(s)") {
		t.Fatalf("Expected one inspection problem, got: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"✗ Unpaired state events detected",
		"Behavior 'grooming' (female): 1 state event(s) do not pair into intervals",
		"✗ Inspection failed",
		"Found 1 problem(s)!",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in inspect output, got: %s", want, output)
		}
	}
}

func TestInspectCommandEventsPastMediaEnd(t *testing.T) {
	tmpDir := t.TempDir()
	exportPath := filepath.Join(tmpDir, "late.csv")
	export := `Observation id,Observation date,Media duration (s),FPS,Media file name,Time,Subject,Behavior,Behavior type,Behavioral category,Modifier #1,Comment,Image index
obs1,2024-05-12,600.0,25,den.mp4,650.0,female,grooming,START,maintenance,,NA,
obs1,2024-05-12,600.0,25,den.mp4,660.0,female,grooming,STOP,maintenance,,,
`
	if err := os.WriteFile(exportPath, []byte(export), 0644); err != nil {
		t.Fatalf("Failed to write export: %v", err)
	}

	cmd := NewInspectCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{exportPath})

	if err := cmd.Execute(); err == nil {
		t.Fatal("Expected an inspection error")
	}

	output := buf.String()
	if !strings.Contains(output, "2 event(s) fall after the media end at 600 s") {
		t.Errorf("Expected late event problem, got: %s", output)
	}
	// The pairing check still passes and keeps its report line
	if !strings.Contains(output, "✓ All state events pair into start/stop intervals") {
		t.Errorf("Expected pairing check to pass, got: %s", output)
	}
}

func TestInspectCommandBlankMetadata(t *testing.T) {
	tmpDir := t.TempDir()
	exportPath := filepath.Join(tmpDir, "blank.csv")
	export := `Observation id,Observation date,Media duration (s),FPS,Media file name,Time,Subject,Behavior,Behavior type,Behavioral category,Modifier #1,Comment,Image index
,2024-05-12,600.0,25,,10.0,female,alarm,POINT,,,,
`
	if err := os.WriteFile(exportPath, []byte(export), 0644); err != nil {
		t.Fatalf("Failed to write export: %v", err)
	}

	cmd := NewInspectCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{exportPath})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "2 problem(s)") {
		t.Fatalf("Expected two inspection problems, got: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"✗ Observation id is blank",
		"✗ Media file name is blank",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in inspect output, got: %s", want, output)
		}
	}
}

func TestInspectCommandMissingFile(t *testing.T) {
	cmd := NewInspectCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.csv")})

	if err := cmd.Execute(); err == nil {
		t.Fatal("Expected an error for a missing export")
	}
}

func TestInspectCommandUnrecognized(t *testing.T) {
	tmpDir := t.TempDir()
	exportPath := filepath.Join(tmpDir, "weird.csv")
	if err := os.WriteFile(exportPath, []byte("Animal,Action\nfox,digs\n"), 0644); err != nil {
		t.Fatalf("Failed to write export: %v", err)
	}

	cmd := NewInspectCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{exportPath})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unrecognized export") {
		t.Errorf("Expected unrecognized export error, got: %v", err)
	}
}
