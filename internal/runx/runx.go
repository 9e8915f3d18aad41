// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package runx executes external provisioning commands.
package runx

import (
	"context"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Command is a single external command invocation.
type Command struct {
	Path string
	Args []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Runner runs external commands.
type Runner interface {
	Run(ctx context.Context, c Command) error
}

// ExecRunner runs commands as child processes with their output streamed
// through. Unset writers default to the process stdout/stderr.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes c, blocking until it exits. The returned error wraps the
// child's *exec.ExitError on a non-zero exit.
func (r ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	log.Print(cmd.String())
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return errors.Wrapf(cmd.Run(), "running %s", c.Path)
}

// DryRunner prints commands without executing them.
type DryRunner struct {
	Out io.Writer
}

// Run writes the command line to Out.
func (r DryRunner) Run(_ context.Context, c Command) error {
	_, err := io.WriteString(r.Out, c.String()+"\n")
	return err
}

// RunAll runs commands in order, stopping at the first failure.
func RunAll(ctx context.Context, r Runner, cmds []Command) error {
	for _, c := range cmds {
		if err := r.Run(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
