// Package agent invokes the external code-generation agent for one task at a
// time. The agent is an opaque collaborator reached through a process
// boundary; the only things this package controls are the command line, the
// instruction fed to it, the wall-clock deadline, and output capture.
package agent

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"nightshift/internal/config"
)

// CommandContext is the function used to create exec.Cmd instances.
// It can be replaced in tests to mock command execution.
var CommandContext = exec.CommandContext

// waitDelay bounds how long Wait may linger on inherited pipes after the
// context kills the child. Without it a grandchild holding the pipe open
// would keep the round alive past the declared timeout.
const waitDelay = 10 * time.Second

// Outcome classifications.
const (
	ClassSuccess     = "success"
	ClassNonZeroExit = "nonzero_exit"
	ClassTimedOut    = "timed_out"
	ClassSpawnFailed = "spawn_failed"
)

// Request addresses one invocation. TaskNumber 0 lets the agent select the
// first eligible task from the document itself; a positive number pins the
// invocation to that exact task (single-shot mode).
type Request struct {
	DocPath    string
	TaskNumber int
	Timeout    time.Duration
}

// Outcome is what one bounded invocation produced. The invoker never
// inspects the document mutation the agent was asked to make; the next
// round's re-parse is the only verification.
type Outcome struct {
	Class    string
	ExitCode int
	Duration time.Duration
	LogPath  string
}

// Runner is the capability interface the orchestration loop depends on.
// Tests substitute a fake that mutates fixture documents deterministically.
type Runner interface {
	Run(ctx context.Context, req Request) (Outcome, error)
}

// ClaudeRunner drives the Claude Code CLI (or a compatible agent CLI) in
// non-interactive print mode, feeding the instruction over stdin exactly as
// the original automation did.
type ClaudeRunner struct {
	cfg     config.Config
	workDir string
	quiet   bool
}

// NewClaudeRunner returns a runner writing its round artifacts into workDir.
// Terminal echo of captured output follows cfg.Quiet.
func NewClaudeRunner(cfg config.Config, workDir string) *ClaudeRunner {
	return &ClaudeRunner{cfg: cfg, workDir: workDir, quiet: cfg.Quiet}
}

// Run executes the agent once for the request, bounded by req.Timeout.
// Spawn failures, nonzero exits, and timeouts are outcomes, not errors; the
// error return is reserved for artifact-setup failures and parent-context
// cancellation.
func (r *ClaudeRunner) Run(ctx context.Context, req Request) (Outcome, error) {
	instruction := BuildInstruction(req.DocPath, req.TaskNumber)
	if err := os.WriteFile(filepath.Join(r.workDir, InstructionFileName), []byte(instruction), 0644); err != nil {
		return Outcome{}, err
	}

	capture, err := NewOutputCapture(r.workDir, !r.quiet)
	if err != nil {
		return Outcome{}, err
	}
	defer capture.Close()

	runCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	cmd := CommandContext(runCtx, r.cfg.ResolveCommand(), executorArgs(r.cfg)...)
	cmd.Stdin = strings.NewReader(instruction)
	cmd.Stdout = capture.Writer()
	cmd.Stderr = capture.Writer()
	cmd.WaitDelay = waitDelay

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Outcome{
			Class:    ClassSpawnFailed,
			ExitCode: -1,
			Duration: time.Since(start),
			LogPath:  capture.Path(),
		}, nil
	}

	waitErr := cmd.Wait()
	outcome := Outcome{
		Duration: time.Since(start),
		LogPath:  capture.Path(),
	}

	switch {
	case waitErr == nil:
		outcome.Class = ClassSuccess
	case ctx.Err() != nil:
		// The loop itself is shutting down; the child has already been
		// killed via the command context.
		return Outcome{}, ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		outcome.Class = ClassTimedOut
		outcome.ExitCode = -1
	default:
		outcome.Class = ClassNonZeroExit
		outcome.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
		}
	}
	return outcome, nil
}

// executorArgs builds the fully-unattended argument list for the configured
// agent family.
func executorArgs(cfg config.Config) []string {
	switch cfg.Executor {
	case config.ExecutorCursor:
		args := []string{"--print"}
		if cfg.Unattended {
			args = append(args, "--force")
		}
		return args
	default:
		// --print reads the instruction from stdin, executes it, and exits;
		// it also skips the workspace trust dialog.
		args := []string{"--print", "--permission-mode", cfg.PermissionMode}
		if cfg.Unattended {
			args = append(args, "--dangerously-skip-permissions")
		}
		return args
	}
}
