package loop

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readLogEntries(t *testing.T, path string) []LogEntry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open log: %v", err)
	}
	defer f.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	return entries
}

func TestRoundLogger_AppendsJSONLines(t *testing.T) {
	dir := t.TempDir()
	logger := NewRoundLogger(dir)

	if err := logger.LoopStarted("/tmp/progress.md", 24*time.Hour, 30*time.Minute); err != nil {
		t.Fatalf("LoopStarted: %v", err)
	}
	if err := logger.RoundStarted(1, 2, "Build the parser"); err != nil {
		t.Fatalf("RoundStarted: %v", err)
	}
	if err := logger.RoundFinished(1, 2, "success", 0, 90*time.Second, dir+"/output.log"); err != nil {
		t.Fatalf("RoundFinished: %v", err)
	}
	if err := logger.LoopStopped(StopAllDone, 1, 2*time.Minute); err != nil {
		t.Fatalf("LoopStopped: %v", err)
	}

	entries := readLogEntries(t, filepath.Join(dir, roundsLogFileName))
	if len(entries) != 4 {
		t.Fatalf("entries: got %d, want 4", len(entries))
	}

	wantEvents := []string{EventLoopStarted, EventRoundStarted, EventRoundFinished, EventLoopStopped}
	for i, want := range wantEvents {
		if entries[i].Event != want {
			t.Errorf("entry %d: got event %s, want %s", i, entries[i].Event, want)
		}
		if entries[i].RunID != logger.RunID() {
			t.Errorf("entry %d: run_id %s does not match logger run_id %s", i, entries[i].RunID, logger.RunID())
		}
		if entries[i].Timestamp.IsZero() {
			t.Errorf("entry %d: zero timestamp", i)
		}
	}

	if got := entries[2].Data["class"]; got != "success" {
		t.Errorf("round_finished class: got %v, want success", got)
	}
	if got := entries[3].Data["reason"]; got != string(StopAllDone) {
		t.Errorf("loop_stopped reason: got %v, want %s", got, StopAllDone)
	}
}

func TestRoundLogger_SeparateRunsShareFile(t *testing.T) {
	dir := t.TempDir()

	first := NewRoundLogger(dir)
	second := NewRoundLogger(dir)
	if first.RunID() == second.RunID() {
		t.Fatal("two loggers must carry distinct run IDs")
	}

	if err := first.SingleShot(1, "success", 0, time.Second); err != nil {
		t.Fatalf("first SingleShot: %v", err)
	}
	if err := second.SingleShot(2, "timed_out", -1, time.Minute); err != nil {
		t.Fatalf("second SingleShot: %v", err)
	}

	entries := readLogEntries(t, filepath.Join(dir, roundsLogFileName))
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	if entries[0].RunID == entries[1].RunID {
		t.Error("entries from different runs must be attributable by run_id")
	}
}
