package loop

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const roundsLogFileName = "rounds.log"

// Event type constants for the cumulative round log.
const (
	EventLoopStarted   = "loop_started"
	EventRoundStarted  = "round_started"
	EventRoundFinished = "round_finished"
	EventSingleShot    = "single_shot"
	EventLoopStopped   = "loop_stopped"
)

// LogEntry is a single record in the cumulative round log.
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	RunID     string                 `json:"run_id"`
	Event     string                 `json:"event"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// RoundLogger appends round records to a JSON Lines file. Unlike the raw
// output log, this file survives round rotation: it is the durable record of
// every decision the loop made for the lifetime of the host process.
type RoundLogger struct {
	path  string
	runID string
}

// NewRoundLogger creates a logger for the given work directory. Each logger
// carries a fresh run ID so overlapping histories in one file stay
// attributable.
func NewRoundLogger(workDir string) *RoundLogger {
	return &RoundLogger{
		path:  filepath.Join(workDir, roundsLogFileName),
		runID: uuid.NewString(),
	}
}

// RunID returns the identifier stamped on every entry of this run.
func (l *RoundLogger) RunID() string { return l.runID }

// Log appends one entry to the log file.
func (l *RoundLogger) Log(event string, data map[string]interface{}) error {
	entry := LogEntry{
		Timestamp: time.Now(),
		RunID:     l.runID,
		Event:     event,
		Data:      data,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	jsonBytes = append(jsonBytes, '\n')

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(jsonBytes)
	return err
}

// LoopStarted logs the start of a loop run.
func (l *RoundLogger) LoopStarted(docPath string, budget, taskTimeout time.Duration) error {
	return l.Log(EventLoopStarted, map[string]interface{}{
		"doc":              docPath,
		"budget_sec":       budget.Seconds(),
		"task_timeout_sec": taskTimeout.Seconds(),
	})
}

// RoundStarted logs a selection decision.
func (l *RoundLogger) RoundStarted(round, taskNumber int, title string) error {
	return l.Log(EventRoundStarted, map[string]interface{}{
		"round":       round,
		"task_number": taskNumber,
		"task_title":  title,
	})
}

// RoundFinished logs the outcome of one bounded invocation.
func (l *RoundLogger) RoundFinished(round, taskNumber int, class string, exitCode int, duration time.Duration, logPath string) error {
	return l.Log(EventRoundFinished, map[string]interface{}{
		"round":       round,
		"task_number": taskNumber,
		"class":       class,
		"exit_code":   exitCode,
		"duration_ms": duration.Milliseconds(),
		"output_log":  logPath,
	})
}

// SingleShot logs a one-off pinned invocation.
func (l *RoundLogger) SingleShot(taskNumber int, class string, exitCode int, duration time.Duration) error {
	return l.Log(EventSingleShot, map[string]interface{}{
		"task_number": taskNumber,
		"class":       class,
		"exit_code":   exitCode,
		"duration_ms": duration.Milliseconds(),
	})
}

// LoopStopped logs the terminal state.
func (l *RoundLogger) LoopStopped(reason StopReason, rounds int, elapsed time.Duration) error {
	return l.Log(EventLoopStopped, map[string]interface{}{
		"reason":     string(reason),
		"rounds":     rounds,
		"elapsed_ms": elapsed.Milliseconds(),
	})
}
