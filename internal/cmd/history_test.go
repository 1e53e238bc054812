package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethogram/borisrec/internal/history"
)

// seedHistory populates a history database with n restore records
func seedHistory(t *testing.T, dbPath string, n int) {
	t.Helper()

	store, err := history.NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	for i := 0; i < n; i++ {
		rec := &history.Record{
			SourcePath: fmt.Sprintf("day%d.csv", i+1),
			OutputPath: fmt.Sprintf("day%d.boris", i+1),
			Format:     "standard",
			Rows:       3,
			Events:     3,
			Subjects:   1,
			Behaviors:  2,
		}
		if err := store.RecordRestore(context.Background(), rec); err != nil {
			t.Fatalf("Failed to record restore: %v", err)
		}
	}
}

func TestHistoryListCommand(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "history.db")
	seedHistory(t, dbPath, 2)

	cmd := newHistoryListCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--db-path", dbPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("List command failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"CREATED", "SOURCE", "FORMAT", "EVENTS", "OUTPUT", "day1.csv", "day2.boris", "standard"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in list output, got: %s", want, output)
		}
	}
}

func TestHistoryListCommandLimit(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "history.db")
	seedHistory(t, dbPath, 3)

	cmd := newHistoryListCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--db-path", dbPath, "--limit", "1"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("List command failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "day3.csv") {
		t.Errorf("Expected newest record, got: %s", output)
	}
	if strings.Contains(output, "day1.csv") {
		t.Errorf("Expected older records to be cut off, got: %s", output)
	}
}

func TestHistoryListCommandNoDatabase(t *testing.T) {
	cmd := newHistoryListCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--db-path", filepath.Join(t.TempDir(), "absent.db")})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("List command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No restore history found") {
		t.Errorf("Expected missing-database notice, got: %s", buf.String())
	}
}

func TestHistoryListCommandEmptyDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "history.db")
	seedHistory(t, dbPath, 0)

	cmd := newHistoryListCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--db-path", dbPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("List command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No restores recorded yet") {
		t.Errorf("Expected empty notice, got: %s", buf.String())
	}
}

func TestHistoryClearCommandForced(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "history.db")
	seedHistory(t, dbPath, 2)

	cmd := newHistoryClearCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--force", "--db-path", dbPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Clear command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Deleted 2 records.") {
		t.Errorf("Expected deletion count, got: %s", buf.String())
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer store.Close()

	records, err := store.ListRestores(context.Background(), 0)
	if err != nil {
		t.Fatalf("Failed to list restores: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected 0 records after clear, got %d", len(records))
	}
}

func TestHistoryClearCommandConfirmed(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "history.db")
	seedHistory(t, dbPath, 1)

	cmd := newHistoryClearCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--db-path", dbPath})

	// Simulate user input "y" for confirmation
	r, w, _ := os.Pipe()
	oldStdin := os.Stdin
	os.Stdin = r
	go func() {
		w.Write([]byte("y\n"))
		w.Close()
	}()
	defer func() { os.Stdin = oldStdin }()

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Clear command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Deleted 1 record.") {
		t.Errorf("Expected deletion count, got: %s", buf.String())
	}
}

func TestHistoryClearCommandCancelled(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "history.db")
	seedHistory(t, dbPath, 1)

	cmd := newHistoryClearCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--db-path", dbPath})

	// Simulate user declining the confirmation
	r, w, _ := os.Pipe()
	oldStdin := os.Stdin
	os.Stdin = r
	go func() {
		w.Write([]byte("n\n"))
		w.Close()
	}()
	defer func() { os.Stdin = oldStdin }()

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Clear command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Operation cancelled.") {
		t.Errorf("Expected cancellation notice, got: %s", buf.String())
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer store.Close()

	records, err := store.ListRestores(context.Background(), 0)
	if err != nil {
		t.Fatalf("Failed to list restores: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected record to survive cancellation, got %d", len(records))
	}
}
