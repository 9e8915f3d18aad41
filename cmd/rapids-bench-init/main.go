// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// rapids-bench-init provisions a Dataproc node for Spark RAPIDS ML
// benchmark runs. It is intended to run as a cluster init action: it pins
// conda packages, installs the RAPIDS libraries at the version named by
// the rapids-version instance metadata attribute, then fetches the
// benchmark artifacts from the benchmark-home GCS location and unpacks
// them into the Python runtime's site-packages directory.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"cloud.google.com/go/compute/metadata"
	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/rapids-bench-init/internal/mdx"
	"github.com/google/rapids-bench-init/internal/runx"
	"github.com/google/rapids-bench-init/pkg/provision"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Python library path on Dataproc 2.x GPU images.
const defaultSitePackages = "/opt/conda/miniconda3/lib/python3.8/site-packages"

var (
	planPath        = flag.String("plan", "", "YAML install plan overriding the built-in RAPIDS sequence")
	workdir         = flag.String("workdir", ".", "directory receiving the downloaded benchmark artifacts")
	dest            = flag.String("dest", defaultSitePackages, "site-packages directory receiving the unpacked archives")
	dryRun          = flag.Bool("dry-run", false, "print install commands and skip the benchmark fetch instead of executing")
	metadataTimeout = flag.Duration("metadata-timeout", 5*time.Second, "per-request timeout for instance metadata lookups")
)

var green = color.New(color.FgGreen).SprintFunc()

var rootCmd = &cobra.Command{
	Use:   "rapids-bench-init [subcommand]",
	Short: "Provisions a Dataproc node for Spark RAPIDS ML benchmarks",
}

func resolver() *mdx.AttributeResolver {
	return mdx.NewAttributeResolver(metadata.NewClient(&http.Client{Timeout: *metadataTimeout}))
}

func newProvisioner() (*provision.Provisioner, error) {
	plan := provision.DefaultPlan()
	if *planPath != "" {
		var err error
		if plan, err = provision.LoadPlan(*planPath); err != nil {
			return nil, err
		}
	}
	var runner runx.Runner = runx.ExecRunner{}
	if *dryRun {
		runner = runx.DryRunner{Out: os.Stdout}
	}
	wd, err := filepath.Abs(*workdir)
	if err != nil {
		return nil, errors.Wrap(err, "resolving workdir")
	}
	dd, err := filepath.Abs(*dest)
	if err != nil {
		return nil, errors.Wrap(err, "resolving dest")
	}
	return &provision.Provisioner{
		Resolver: resolver(),
		Runner:   runner,
		FS:       osfs.New("/"),
		Plan:     plan,
		WorkDir:  wd,
		DestDir:  dd,
		Progress: os.Stderr,
		DryRun:   *dryRun,
	}, nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full provisioning pipeline: install, fetch, unpack.",
	Args:  cobra.NoArgs,
	// Silence errors because we will print the error ourselves in main.
	SilenceErrors: true,
	// Don't show usage for every error.
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := newProvisioner()
		if err != nil {
			return err
		}
		if err := p.Run(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), green("node provisioned"))
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:           "resolve",
	Short:         "Print the configuration resolved from instance metadata.",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := provision.ResolveConfig(cmd.Context(), resolver())
		fmt.Fprintf(cmd.OutOrStdout(), "rapids-version: %s\n", cfg.RapidsVersion)
		home := cfg.BenchmarkHome
		if home == "" {
			home = "(unset)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "benchmark-home: %s\n", home)
		return nil
	},
}

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Install the RAPIDS packages without fetching benchmark artifacts.",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := newProvisioner()
		if err != nil {
			return err
		}
		cfg := provision.ResolveConfig(cmd.Context(), p.Resolver)
		return p.Install(cmd.Context(), cfg.RapidsVersion)
	},
}

var fetchCmd = &cobra.Command{
	Use:           "fetch",
	Short:         "Fetch and unpack the benchmark artifacts without installing packages.",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := newProvisioner()
		if err != nil {
			return err
		}
		cfg := provision.ResolveConfig(cmd.Context(), p.Resolver)
		return p.Fetch(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(fetchCmd)

	for _, cmd := range []*cobra.Command{runCmd, resolveCmd, installCmd, fetchCmd} {
		cmd.Flags().AddGoFlag(flag.Lookup("metadata-timeout"))
	}
	for _, cmd := range []*cobra.Command{runCmd, installCmd, fetchCmd} {
		cmd.Flags().AddGoFlag(flag.Lookup("dry-run"))
	}
	for _, cmd := range []*cobra.Command{runCmd, installCmd} {
		cmd.Flags().AddGoFlag(flag.Lookup("plan"))
	}
	for _, cmd := range []*cobra.Command{runCmd, fetchCmd} {
		cmd.Flags().AddGoFlag(flag.Lookup("workdir"))
		cmd.Flags().AddGoFlag(flag.Lookup("dest"))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		// Propagate the exit status of a failed install step.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}
