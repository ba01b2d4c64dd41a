// Package loop drives the select → invoke → evaluate cycle over a progress
// document until no eligible task remains or the time budget runs out. The
// loop holds no task state of its own: every round re-parses the document,
// which is how status changes applied by the agent become visible.
package loop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nightshift/internal/agent"
	"nightshift/internal/config"
	"nightshift/internal/progress"
)

// WorkDirName is the per-document directory holding round artifacts.
const WorkDirName = ".nightshift"

// StopReason says why the loop reached its terminal state.
type StopReason string

const (
	StopAllDone         StopReason = "all_done"
	StopBudgetExhausted StopReason = "budget_exhausted"
	StopParseError      StopReason = "parse_error"
	StopCanceled        StopReason = "canceled"
	StopFailed          StopReason = "failed"
)

// Result summarizes a finished loop run.
type Result struct {
	Reason  StopReason
	Rounds  int
	Elapsed time.Duration
}

// Loop supervises one progress document.
type Loop struct {
	cfg     config.Config
	docPath string
	workDir string
	runner  agent.Runner
	logger  *RoundLogger
	lock    *DocLock
	events  Events
	now     func() time.Time
}

// WorkDir returns the artifact directory for a document path.
func WorkDir(docPath string) string {
	return filepath.Join(filepath.Dir(docPath), WorkDirName)
}

// New creates a loop for the document, creating its work directory.
func New(cfg config.Config, docPath string) (*Loop, error) {
	workDir := WorkDir(docPath)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	return &Loop{
		cfg:     cfg,
		docPath: docPath,
		workDir: workDir,
		runner:  agent.NewClaudeRunner(cfg, workDir),
		logger:  NewRoundLogger(workDir),
		lock:    NewDocLock(workDir),
		now:     time.Now,
	}, nil
}

// WithRunner sets a custom runner (useful for testing).
func (l *Loop) WithRunner(r agent.Runner) *Loop {
	l.runner = r
	return l
}

// WithEvents sets the callback sink.
func (l *Loop) WithEvents(e Events) *Loop {
	l.events = e
	return l
}

// Run executes rounds until a terminal state is reached. The returned error
// is non-nil only for failures the caller must surface with a nonzero exit:
// lock contention, artifact-infrastructure failures, and a parse failure on
// the very first round. Every per-task outcome - timeouts, nonzero exits,
// spawn failures - is absorbed, logged, and followed by re-selection.
func (l *Loop) Run(ctx context.Context) (Result, error) {
	if err := l.lock.Acquire(); err != nil {
		return Result{}, err
	}
	defer l.lock.Release()

	start := l.now()
	budget := l.cfg.Budget()
	taskTimeout := l.cfg.TaskTimeout()
	l.logger.LoopStarted(l.docPath, budget, taskTimeout)

	rounds := 0
	for round := 1; ; round++ {
		if ctx.Err() != nil {
			return l.stop(StopCanceled, rounds, start), nil
		}

		// Budget gate, checked before re-selecting: never start a round that
		// cannot finish inside the remaining budget.
		elapsed := l.now().Sub(start)
		if elapsed >= budget || budget-elapsed < taskTimeout {
			return l.stop(StopBudgetExhausted, rounds, start), nil
		}

		// Fresh parse every round; caching would hide the agent's writes.
		tasks, err := progress.ParseFile(l.docPath, l.cfg.StatusLookahead)
		if err != nil {
			if errors.Is(err, progress.ErrNoEligibleTasks) {
				return l.stop(StopAllDone, rounds, start), nil
			}
			result := l.stop(StopParseError, rounds, start)
			if round == 1 {
				return result, err
			}
			return result, nil
		}

		task, _ := progress.Select(tasks)
		l.logger.RoundStarted(round, task.Number, task.Title)
		if l.events != nil {
			l.events.OnRoundStart(round, task)
		}

		outcome, err := l.runner.Run(ctx, agent.Request{
			DocPath:    l.docPath,
			TaskNumber: task.Number,
			Timeout:    taskTimeout,
		})
		if err != nil {
			if ctx.Err() != nil {
				return l.stop(StopCanceled, rounds, start), nil
			}
			return l.stop(StopFailed, rounds, start), fmt.Errorf("invoker infrastructure failure: %w", err)
		}

		rounds++
		l.logger.RoundFinished(round, task.Number, outcome.Class, outcome.ExitCode, outcome.Duration, outcome.LogPath)
		if l.events != nil {
			l.events.OnOutcome(round, task, outcome)
		}
		// Regardless of outcome class the loop advances to re-selection: if
		// the task is still eligible it will simply be picked again, and the
		// document - not this process - decides what happens next.
	}
}

// RunOnce performs the single-shot operation: one pinned invocation of
// taskNumber with no selection. The document must at least be readable;
// an empty eligible set does not block a pinned run.
func (l *Loop) RunOnce(ctx context.Context, taskNumber int) (agent.Outcome, error) {
	if err := l.lock.Acquire(); err != nil {
		return agent.Outcome{}, err
	}
	defer l.lock.Release()

	if _, err := progress.ParseFile(l.docPath, l.cfg.StatusLookahead); err != nil &&
		!errors.Is(err, progress.ErrNoEligibleTasks) {
		return agent.Outcome{}, err
	}

	outcome, err := l.runner.Run(ctx, agent.Request{
		DocPath:    l.docPath,
		TaskNumber: taskNumber,
		Timeout:    l.cfg.TaskTimeout(),
	})
	if err != nil {
		return agent.Outcome{}, err
	}

	l.logger.SingleShot(taskNumber, outcome.Class, outcome.ExitCode, outcome.Duration)
	return outcome, nil
}

func (l *Loop) stop(reason StopReason, rounds int, start time.Time) Result {
	result := Result{
		Reason:  reason,
		Rounds:  rounds,
		Elapsed: l.now().Sub(start),
	}
	l.logger.LoopStopped(reason, rounds, result.Elapsed)
	if l.events != nil {
		l.events.OnStop(result)
	}
	return result
}
