// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"

	"github.com/google/rapids-bench-init/internal/mdx"
	"github.com/pkg/errors"
)

// Instance metadata attribute names set by the cluster operator.
const (
	rapidsVersionAttr = "rapids-version"
	benchmarkHomeAttr = "benchmark-home"
)

// DefaultRapidsVersion is installed when no rapids-version attribute is set.
const DefaultRapidsVersion = "23.02"

// ErrBenchmarkHomeUnset indicates the operator never configured the GCS
// location holding the benchmark artifacts.
var ErrBenchmarkHomeUnset = errors.New("benchmark-home is not set: re-create the cluster with --metadata benchmark-home=<bucket>/<path> to enable benchmark downloads")

// Benchmark artifact names fetched from the benchmark home, in fetch order.
const (
	RunnerScript     = "benchmark_runner.py"
	LibraryArchive   = "spark_rapids_ml.zip"
	BenchmarkArchive = "benchmark.zip"
)

// Artifacts lists every artifact fetched from the benchmark home.
var Artifacts = []string{RunnerScript, LibraryArchive, BenchmarkArchive}

// Archives lists the fetched artifacts unpacked into the runtime library path.
var Archives = []string{LibraryArchive, BenchmarkArchive}

// Config is the node configuration resolved from instance metadata.
type Config struct {
	// RapidsVersion selects the RAPIDS release to install.
	RapidsVersion string
	// BenchmarkHome is the GCS location holding the benchmark artifacts.
	// Empty when the operator did not set the attribute.
	BenchmarkHome string
}

// ResolveConfig reads the node configuration from instance metadata. An
// absent rapids-version falls back to DefaultRapidsVersion. An absent
// benchmark-home is recorded as empty and only rejected once a fetch
// requires it, so the install phase can proceed without one.
func ResolveConfig(ctx context.Context, r mdx.Resolver) Config {
	cfg := Config{RapidsVersion: r.Value(ctx, rapidsVersionAttr, DefaultRapidsVersion)}
	if home := r.Value(ctx, benchmarkHomeAttr, mdx.Unset); home != mdx.Unset {
		cfg.BenchmarkHome = home
	}
	return cfg
}

// RequireBenchmarkHome returns the benchmark home, or ErrBenchmarkHomeUnset
// when the attribute was never configured.
func (c Config) RequireBenchmarkHome() (string, error) {
	if c.BenchmarkHome == "" {
		return "", ErrBenchmarkHomeUnset
	}
	return c.BenchmarkHome, nil
}
