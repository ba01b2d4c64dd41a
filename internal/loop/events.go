package loop

import (
	"nightshift/internal/agent"
	"nightshift/internal/progress"
)

// Events receives callbacks as the loop progresses. Implementations render
// them for humans; the loop itself only writes the cumulative round log.
// All methods are called from the loop goroutine, never concurrently.
type Events interface {
	// OnRoundStart is called after selection, before the agent is invoked.
	OnRoundStart(round int, task progress.Task)

	// OnOutcome is called once per round with the invocation result.
	OnOutcome(round int, task progress.Task, outcome agent.Outcome)

	// OnStop is called exactly once when the loop reaches a terminal state.
	OnStop(result Result)
}
