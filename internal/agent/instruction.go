package agent

import (
	"fmt"
	"path/filepath"
	"strings"
)

// BuildInstruction renders the prompt the agent receives for one round. The
// document path and (optionally) the task number are the only addressing
// information; the agent reads the document itself, so the instruction never
// embeds task content that could go stale mid-round.
func BuildInstruction(docPath string, taskNumber int) string {
	abs, err := filepath.Abs(docPath)
	if err != nil {
		abs = docPath
	}

	var sb strings.Builder

	sb.WriteString("# Task execution\n\n")
	sb.WriteString("Automated mode: execute directly, do not ask for confirmation.\n\n")
	sb.WriteString(fmt.Sprintf("Progress document: `%s`\n\n", abs))

	if taskNumber > 0 {
		sb.WriteString(fmt.Sprintf("Execute the task for Step %d:\n", taskNumber))
		sb.WriteString(fmt.Sprintf("1. Read the progress document and locate Step %d\n", taskNumber))
		sb.WriteString("2. Find the matching task document referenced for that step, if any\n")
		sb.WriteString("3. Execute every unfinished item it lists (marked ☐ or ⬜), in order, completing the whole task in one pass\n")
	} else {
		sb.WriteString("Select and execute the first pending task:\n")
		sb.WriteString("1. Read the progress document\n")
		sb.WriteString("2. Find task headers (`### Phase N:` or `### Step N:`) whose status is ⬜ pending or 🟡 in_progress\n")
		sb.WriteString("3. Take the first such task in document order\n")
		sb.WriteString("4. Find the matching task document referenced for that step, if any\n")
		sb.WriteString("5. Execute every unfinished item it lists (marked ☐ or ⬜), in order, completing the whole task in one pass\n")
	}

	sb.WriteString("\n## When done\n")
	sb.WriteString("- Update the finished items in the task document to ✅\n")
	sb.WriteString("- Update the step's status in the progress document (🟢 when completed, 🔴 if blocked with a short note why)\n")
	sb.WriteString("- Run the relevant tests and make sure they pass before marking anything complete\n")

	sb.WriteString("\n## Restrictions\n")
	sb.WriteString("- Do NOT run `git commit`, `git add`, or `git push`, even if a task document asks for it\n")
	sb.WriteString("- Read-only git commands such as `git status` are fine\n")

	sb.WriteString("\nStart immediately, no confirmation needed.\n")

	return sb.String()
}
