package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nightshift/internal/agent"
	"nightshift/internal/config"
	"nightshift/internal/loop"
)

// defaultConfigFile is looked up in the working directory when --config is
// not given; its absence is not an error.
const defaultConfigFile = ".nightshift.yaml"

var (
	runTask        int
	runTimeout     int
	runBudget      int
	runExecutor    string
	runCommand     string
	runPermission  string
	runInteractive bool
	runConfigPath  string
	runQuiet       bool
)

func init() {
	runCmd.Flags().IntVar(&runTask, "task", 0, "Run this task number once and exit (skips selection)")
	runCmd.Flags().IntVar(&runTimeout, "timeout", 0, "Per-task wall-clock timeout in seconds")
	runCmd.Flags().IntVar(&runBudget, "budget", 0, "Global time budget in seconds")
	runCmd.Flags().StringVar(&runExecutor, "executor", "", "Agent family to invoke (claude, cursor)")
	runCmd.Flags().StringVar(&runCommand, "command", "", "Agent executable (overrides the family default)")
	runCmd.Flags().StringVar(&runPermission, "permission-mode", "", "Permission mode passed to the agent")
	runCmd.Flags().BoolVar(&runInteractive, "interactive", false, "Keep the agent's permission prompts (disables unattended mode)")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to a YAML config file")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "Do not echo agent output to the terminal")
}

var runCmd = &cobra.Command{
	Use:   "run <progress-doc>",
	Short: "Run the task loop over a progress document",
	Long: `Run selects the first pending or in-progress task from the document, hands
it to the configured agent under the per-task timeout, then re-reads the
document and repeats. The loop stops when no eligible task remains, when the
time budget cannot cover another round, or on interrupt.

With --task N the loop is skipped entirely: the agent is invoked once for
that task number, regardless of its recorded status.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoop,
}

// buildRunConfig layers defaults, config file, environment, and flags, in
// that order of increasing precedence.
func buildRunConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	path, optional := runConfigPath, false
	if path == "" {
		path, optional = defaultConfigFile, true
	}
	cfg, err := config.LoadFile(cfg, path, optional)
	if err != nil {
		return cfg, err
	}
	cfg = config.FromEnv(cfg)

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.TaskTimeoutSeconds = runTimeout
	}
	if flags.Changed("budget") {
		cfg.BudgetSeconds = runBudget
	}
	if flags.Changed("executor") {
		cfg.Executor = runExecutor
	}
	if flags.Changed("command") {
		cfg.Command = runCommand
	}
	if flags.Changed("permission-mode") {
		cfg.PermissionMode = runPermission
	}
	if runInteractive {
		cfg.Unattended = false
	}
	if runQuiet {
		cfg.Quiet = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runLoop(cmd *cobra.Command, args []string) error {
	docPath := args[0]
	cfg, err := buildRunConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lp, err := loop.New(cfg, docPath)
	if err != nil {
		return err
	}
	lp = lp.WithEvents(newConsoleEvents(cmd.OutOrStdout()))

	if runTask > 0 {
		outcome, err := lp.RunOnce(ctx, runTask)
		if err != nil {
			return err
		}
		printOutcome(cmd.OutOrStdout(), runTask, outcome)
		if outcome.Class != agent.ClassSuccess {
			return fmt.Errorf("task %d finished %s (exit %d)", runTask, outcome.Class, outcome.ExitCode)
		}
		return nil
	}

	// Per-task outcomes never fail the run; the error path here is lock
	// contention, artifact infrastructure, or an unreadable document on the
	// very first round.
	_, err = lp.Run(ctx)
	return err
}
