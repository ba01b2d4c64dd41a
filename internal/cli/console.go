package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"nightshift/internal/agent"
	"nightshift/internal/loop"
	"nightshift/internal/progress"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#73F59F"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// consoleEvents renders loop progress for a human at the terminal. The
// durable record is the rounds log; this is just narration.
type consoleEvents struct {
	out io.Writer
}

func newConsoleEvents(out io.Writer) *consoleEvents {
	return &consoleEvents{out: out}
}

func (c *consoleEvents) OnRoundStart(round int, task progress.Task) {
	fmt.Fprintf(c.out, "%s Step %d: %s %s\n",
		headingStyle.Render(fmt.Sprintf("Round %d", round)),
		task.Number, task.Title,
		subtleStyle.Render("("+string(task.Status)+")"))
}

func (c *consoleEvents) OnOutcome(round int, task progress.Task, outcome agent.Outcome) {
	style := errorStyle
	if outcome.Class == agent.ClassSuccess {
		style = successStyle
	}
	fmt.Fprintf(c.out, "  %s after %s (exit %d)\n",
		style.Render(outcome.Class),
		outcome.Duration.Round(time.Second),
		outcome.ExitCode)
	if outcome.Class == agent.ClassSpawnFailed {
		fmt.Fprintf(c.out, "  %s\n", errorStyle.Render(spawnFailedHint))
	}
}

func (c *consoleEvents) OnStop(result loop.Result) {
	fmt.Fprintf(c.out, "%s %d round(s) in %s\n",
		headingStyle.Render(fmt.Sprintf("Stopped (%s):", result.Reason)),
		result.Rounds,
		result.Elapsed.Round(time.Second))
}

// spawnFailedHint points at misconfiguration: a spawn failure means the agent
// executable never started, so retrying with the same command cannot help.
const spawnFailedHint = "agent executable could not be started; check --command, NIGHTSHIFT_AGENT_COMMAND, or the executor install"

func printOutcome(out io.Writer, taskNumber int, outcome agent.Outcome) {
	style := errorStyle
	if outcome.Class == agent.ClassSuccess {
		style = successStyle
	}
	fmt.Fprintf(out, "%s %s after %s (exit %d)\n",
		headingStyle.Render(fmt.Sprintf("Task %d:", taskNumber)),
		style.Render(outcome.Class),
		outcome.Duration.Round(time.Second),
		outcome.ExitCode)
	if outcome.Class == agent.ClassSpawnFailed {
		fmt.Fprintf(out, "%s\n", errorStyle.Render(spawnFailedHint))
	}
}
