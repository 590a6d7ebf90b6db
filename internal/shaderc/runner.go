// SPDX-License-Identifier: Unlicense OR MIT

package shaderc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sys/execabs"
)

// Runner runs an external tool to completion.
type Runner interface {
	// Run runs the named program with args and returns its combined
	// output. A non-zero exit status is an error.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools as subprocesses.
type ExecRunner struct {
	// PrintCommands echoes every command line to Commands before running it.
	PrintCommands bool
	Commands      io.Writer
	// Log, if set, receives the command lines and the output of
	// successful runs at debug level.
	Log *slog.Logger
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := execabs.CommandContext(ctx, name, args...)
	if r.PrintCommands && r.Commands != nil {
		fmt.Fprintf(r.Commands, "%s\n", strings.Join(cmd.Args, " "))
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s\nfailed to run %v: %w", bytes.TrimSpace(out), cmd.Args, err)
	}
	if r.Log != nil {
		r.Log.Debug("ran tool", "args", cmd.Args, "output", string(bytes.TrimSpace(out)))
	}
	return out, nil
}
