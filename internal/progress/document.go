// Package progress models the progress document: the single source of truth
// for task state. The scheduler only ever reads it; status transitions are
// written by the external agent or by a human.
package progress

// Status is the lifecycle state of a task as recorded in the document.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// Eligible reports whether a task in this status may be selected for
// execution. Completed and blocked tasks are never auto-retried.
func (s Status) Eligible() bool {
	return s == StatusPending || s == StatusInProgress
}

// Glyph returns the document marker for the status.
func (s Status) Glyph() string {
	switch s {
	case StatusPending:
		return "⬜"
	case StatusInProgress:
		return "🟡"
	case StatusCompleted:
		return "🟢"
	case StatusBlocked:
		return "🔴"
	default:
		return "?"
	}
}

// Task is a single schedulable unit of work discovered in the document.
type Task struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Status Status `json:"status"`
}

// Select returns the first task in document order, or ok=false when the
// sequence is empty. Eligibility filtering already happened at parse time, so
// selection is intentionally the simplest possible policy.
func Select(tasks []Task) (Task, bool) {
	if len(tasks) == 0 {
		return Task{}, false
	}
	return tasks[0], true
}

// CountByStatus returns how many tasks carry the given status.
func CountByStatus(tasks []Task, status Status) int {
	n := 0
	for _, t := range tasks {
		if t.Status == status {
			n++
		}
	}
	return n
}

// CompletionPercent returns the share of completed tasks, 0-100.
func CompletionPercent(tasks []Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	return float64(CountByStatus(tasks, StatusCompleted)) / float64(len(tasks)) * 100
}
