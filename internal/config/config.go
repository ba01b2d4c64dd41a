// Package config holds the runtime configuration for nightshift. The Config
// is built once at startup and passed by value into the loop and the runner;
// there is no ambient global state, so tests can inject whatever they need.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Executor families the invoker knows how to drive.
const (
	ExecutorClaude = "claude"
	ExecutorCursor = "cursor"
)

// Permission modes understood by the Claude Code CLI.
const (
	PermissionBypass      = "bypassPermissions"
	PermissionAcceptEdits = "acceptEdits"
	PermissionDefault     = "default"
	PermissionPlan        = "plan"
)

// Environment variables honored by FromEnv. NIGHTSHIFT_AGENT_COMMAND wins
// over CLAUDE_COMMAND, which is kept for compatibility with the original
// automation scripts.
const (
	EnvAgentCommand  = "NIGHTSHIFT_AGENT_COMMAND"
	EnvClaudeCommand = "CLAUDE_COMMAND"
	EnvExecutor      = "NIGHTSHIFT_EXECUTOR"
)

// Defaults.
const (
	DefaultTaskTimeoutSeconds   = 1800
	DefaultBudgetSeconds        = 86400
	DefaultWatchIntervalSeconds = 900
)

// Config is the full runtime configuration surface.
type Config struct {
	// Executor selects the external agent family to invoke.
	Executor string `yaml:"executor"`

	// Command is the agent executable. Empty means: resolve the family
	// default (for claude, ~/.claude/local/claude when present, otherwise
	// "claude" from PATH).
	Command string `yaml:"command"`

	// PermissionMode is passed to the agent; Unattended additionally skips
	// all permission prompts so the loop can run with nobody watching.
	PermissionMode string `yaml:"permission_mode"`
	Unattended     bool   `yaml:"unattended"`

	// Quiet suppresses echoing captured agent output to the terminal. The
	// round output log receives everything either way.
	Quiet bool `yaml:"quiet"`

	// TaskTimeoutSeconds bounds a single invocation wall-clock.
	TaskTimeoutSeconds int `yaml:"task_timeout_seconds"`

	// BudgetSeconds bounds the whole loop wall-clock.
	BudgetSeconds int `yaml:"budget_seconds"`

	// WatchIntervalSeconds is the polling interval of the watch view.
	WatchIntervalSeconds int `yaml:"watch_interval_seconds"`

	// StatusLookahead is how many lines below a task header the parser
	// searches for a status marker. Keep the default unless your documents
	// deviate from the standard layout.
	StatusLookahead int `yaml:"status_lookahead"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Executor:             ExecutorClaude,
		PermissionMode:       PermissionBypass,
		Unattended:           true,
		TaskTimeoutSeconds:   DefaultTaskTimeoutSeconds,
		BudgetSeconds:        DefaultBudgetSeconds,
		WatchIntervalSeconds: DefaultWatchIntervalSeconds,
		StatusLookahead:      5,
	}
}

// LoadFile overlays the YAML file at path onto cfg. Missing file is not an
// error when optional is true.
func LoadFile(cfg Config, path string, optional bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv overlays environment overrides onto cfg.
func FromEnv(cfg Config) Config {
	if v := os.Getenv(EnvExecutor); v != "" {
		cfg.Executor = v
	}
	if v := os.Getenv(EnvAgentCommand); v != "" {
		cfg.Command = v
	} else if v := os.Getenv(EnvClaudeCommand); v != "" {
		cfg.Command = v
	}
	return cfg
}

// Validate checks the configuration for values the loop cannot work with.
func (c Config) Validate() error {
	switch c.Executor {
	case ExecutorClaude, ExecutorCursor:
	default:
		return fmt.Errorf("unknown executor %q (valid: %s, %s)", c.Executor, ExecutorClaude, ExecutorCursor)
	}

	switch c.PermissionMode {
	case PermissionBypass, PermissionAcceptEdits, PermissionDefault, PermissionPlan:
	default:
		return fmt.Errorf("unknown permission mode %q", c.PermissionMode)
	}

	if c.TaskTimeoutSeconds <= 0 {
		return fmt.Errorf("task timeout must be positive, got %d", c.TaskTimeoutSeconds)
	}
	if c.BudgetSeconds <= 0 {
		return fmt.Errorf("budget must be positive, got %d", c.BudgetSeconds)
	}
	if c.WatchIntervalSeconds <= 0 {
		return fmt.Errorf("watch interval must be positive, got %d", c.WatchIntervalSeconds)
	}
	if c.StatusLookahead <= 0 {
		return fmt.Errorf("status lookahead must be positive, got %d", c.StatusLookahead)
	}
	return nil
}

// TaskTimeout returns the per-invocation deadline as a duration.
func (c Config) TaskTimeout() time.Duration {
	return time.Duration(c.TaskTimeoutSeconds) * time.Second
}

// Budget returns the loop's global time budget as a duration.
func (c Config) Budget() time.Duration {
	return time.Duration(c.BudgetSeconds) * time.Second
}

// WatchInterval returns the watch polling interval as a duration.
func (c Config) WatchInterval() time.Duration {
	return time.Duration(c.WatchIntervalSeconds) * time.Second
}

// ResolveCommand returns the agent executable to spawn. Explicit Command
// wins; for claude the historical install location is preferred when it
// exists, otherwise the bare family name is left to PATH lookup.
func (c Config) ResolveCommand() string {
	if c.Command != "" {
		return c.Command
	}
	if c.Executor == ExecutorClaude {
		if home, err := os.UserHomeDir(); err == nil {
			local := filepath.Join(home, ".claude", "local", "claude")
			if _, err := os.Stat(local); err == nil {
				return local
			}
		}
		return "claude"
	}
	return c.Executor
}
