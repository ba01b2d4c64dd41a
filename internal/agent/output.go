package agent

import (
	"io"
	"os"
	"path/filepath"
)

// Artifact file names inside the work directory. Both are round-scoped: the
// output log is truncated and the instruction file rewritten at the start of
// every invocation, so only the most recent round's raw artifacts exist on
// disk at any time. Durable history lives in the cumulative round log owned
// by the loop.
const (
	OutputLogFileName   = "output.log"
	InstructionFileName = "instruction.md"
)

// OutputCapture collects the child's combined stdout+stderr into the
// round-scoped log file, optionally echoing to the terminal.
type OutputCapture struct {
	file *os.File
	out  io.Writer
}

// NewOutputCapture truncates and reopens the round output log in workDir.
func NewOutputCapture(workDir string, echo bool) (*OutputCapture, error) {
	path := filepath.Join(workDir, OutputLogFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	c := &OutputCapture{file: f, out: f}
	if echo {
		c.out = io.MultiWriter(os.Stdout, f)
	}
	return c, nil
}

// Writer returns the destination for the child's combined output.
func (c *OutputCapture) Writer() io.Writer { return c.out }

// Path returns the log file location.
func (c *OutputCapture) Path() string { return c.file.Name() }

// Close flushes and closes the log file.
func (c *OutputCapture) Close() error { return c.file.Close() }
