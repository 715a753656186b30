// Package execx abstracts external process invocation behind a narrow Runner
// interface so provisioning and registration logic can be tested without
// touching the host, and so --dry-run can swap execution for printing.
package execx

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/olialb/mqtt-display-installer/internal/messages"
)

// Runner executes an external command to completion. dir sets the working
// directory; an empty dir inherits the process's. A non-zero exit status is
// returned as an error.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) error
}

// ExecRunner runs commands with os/exec, streaming their output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the command and waits for it to finish.
func (r ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf(messages.ExecCommandFailedFmt, name, err)
	}
	return nil
}

// DryRunner prints each command instead of executing it. Every command
// succeeds, so a dry run walks the full installation sequence.
type DryRunner struct {
	Out io.Writer
}

// Run prints the command line that would have been executed.
func (r DryRunner) Run(_ context.Context, dir string, name string, args ...string) error {
	line := name
	if len(args) > 0 {
		line += " " + strings.Join(args, " ")
	}
	if dir != "" {
		line += " (in " + dir + ")"
	}
	_, err := fmt.Fprintf(r.Out, messages.ExecDryRunFmt, line)
	return err
}
