// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package runx

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

type recordingRunner struct {
	ran     []Command
	failOn  string
	failErr error
}

func (r *recordingRunner) Run(_ context.Context, c Command) error {
	if c.Path == r.failOn {
		return r.failErr
	}
	r.ran = append(r.ran, c)
	return nil
}

func TestCommandString(t *testing.T) {
	c := Command{Path: "pip", Args: []string{"install", "--upgrade", "pip"}}
	if got, want := c.String(), "pip install --upgrade pip"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestRunAllStopsAtFirstFailure(t *testing.T) {
	r := &recordingRunner{failOn: "pip", failErr: errors.New("exit status 1")}
	cmds := []Command{
		{Path: "mamba", Args: []string{"install", "-y", "numba>=0.56.2"}},
		{Path: "pip", Args: []string{"install", "--upgrade", "pip"}},
		{Path: "gsutil", Args: []string{"cp", "gs://b/o", "."}},
	}
	if err := RunAll(context.Background(), r, cmds); err == nil {
		t.Fatal("RunAll() = nil, want error")
	}
	want := cmds[:1]
	if diff := cmp.Diff(want, r.ran); diff != "" {
		t.Errorf("commands run before failure diff (-want +got):\n%s", diff)
	}
}

func TestExecRunnerStreamsOutput(t *testing.T) {
	var out bytes.Buffer
	r := ExecRunner{Stdout: &out, Stderr: &out}
	if err := r.Run(context.Background(), Command{Path: "sh", Args: []string{"-c", "echo installed"}}); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if got, want := out.String(), "installed\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestExecRunnerPropagatesExitStatus(t *testing.T) {
	var out bytes.Buffer
	r := ExecRunner{Stdout: &out, Stderr: &out}
	err := r.Run(context.Background(), Command{Path: "sh", Args: []string{"-c", "exit 3"}})
	if err == nil {
		t.Fatal("Run() = nil, want error")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Run() = %v, want *exec.ExitError", err)
	}
	if got := exitErr.ExitCode(); got != 3 {
		t.Errorf("ExitCode() = %d, want 3", got)
	}
}

func TestDryRunnerPrintsWithoutExecuting(t *testing.T) {
	var out bytes.Buffer
	r := DryRunner{Out: &out}
	cmds := []Command{
		{Path: "mamba", Args: []string{"install", "-y", "numba>=0.56.2"}},
		{Path: "pip", Args: []string{"install", "--upgrade", "pip"}},
	}
	if err := RunAll(context.Background(), r, cmds); err != nil {
		t.Fatalf("RunAll() = %v, want nil", err)
	}
	want := "mamba install -y numba>=0.56.2\npip install --upgrade pip\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
