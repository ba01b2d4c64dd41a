package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nightshift/internal/config"
	"nightshift/internal/loop"
	"nightshift/internal/progress"
)

var statusCmd = &cobra.Command{
	Use:   "status <progress-doc>",
	Short: "Show task statuses and completion for a progress document",
	Args:  cobra.ExactArgs(1),
	RunE:  showStatus,
}

func showStatus(cmd *cobra.Command, args []string) error {
	docPath := args[0]
	tasks, err := progress.ScanFile(docPath, config.Default().StatusLookahead)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headingStyle.Render(docPath))

	if len(tasks) == 0 {
		fmt.Fprintln(out, subtleStyle.Render("  no tasks recognized"))
		return nil
	}

	for _, t := range tasks {
		fmt.Fprintf(out, "  %s Step %d: %s %s\n",
			t.Status.Glyph(), t.Number, t.Title,
			subtleStyle.Render("("+string(t.Status)+")"))
	}

	completed := progress.CountByStatus(tasks, progress.StatusCompleted)
	fmt.Fprintf(out, "\n%d/%d completed (%.0f%%)\n",
		completed, len(tasks), progress.CompletionPercent(tasks))
	if blocked := progress.CountByStatus(tasks, progress.StatusBlocked); blocked > 0 {
		fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("%d task(s) blocked, needs human attention", blocked)))
	}

	if locked, err := loop.NewDocLock(loop.WorkDir(docPath)).IsLocked(); err == nil && locked {
		fmt.Fprintln(out, subtleStyle.Render("a loop is currently supervising this document"))
	}
	return nil
}
