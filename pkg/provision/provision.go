// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package provision implements the GPU benchmark node provisioning
// pipeline: resolve configuration from instance metadata, install the
// RAPIDS packages, fetch the benchmark artifacts from GCS, and unpack
// them into the Python runtime's library path.
package provision

import (
	"context"
	"io"
	"log"
	"strings"

	"github.com/cheggaaa/pb"
	"github.com/go-git/go-billy/v5"
	"github.com/google/rapids-bench-init/internal/mdx"
	"github.com/google/rapids-bench-init/internal/runx"
	"github.com/google/rapids-bench-init/pkg/archive"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// Provisioner runs the provisioning pipeline on a single node.
type Provisioner struct {
	Resolver mdx.Resolver
	Runner   runx.Runner
	// FS is the node filesystem; WorkDir and DestDir are paths within it.
	FS   billy.Filesystem
	Plan Plan
	// WorkDir receives the downloaded artifacts.
	WorkDir string
	// DestDir is the Python runtime's library directory receiving the
	// unpacked archives.
	DestDir string
	// Progress, when set, receives download progress bars.
	Progress io.Writer
	// DryRun skips the fetch phase after the benchmark-home guard.
	DryRun bool
	// NewStore overrides the artifact store constructor. When nil the
	// benchmark home is treated as a GCS location.
	NewStore func(ctx context.Context, home string) (ArtifactStore, error)
	// GCSOpts are passed to the GCS client when NewStore is nil.
	GCSOpts []option.ClientOption
}

// Run executes the full pipeline. Any failing step aborts the run; there
// are no retries and no cleanup of partially installed state.
func (p *Provisioner) Run(ctx context.Context) error {
	cfg := ResolveConfig(ctx, p.Resolver)
	log.Printf("resolved RAPIDS version %s", cfg.RapidsVersion)
	if err := p.Install(ctx, cfg.RapidsVersion); err != nil {
		return err
	}
	return p.Fetch(ctx, cfg)
}

// Install runs the package installation sequence for the given RAPIDS
// version, stopping at the first failing command.
func (p *Provisioner) Install(ctx context.Context, version string) error {
	return runx.RunAll(ctx, p.Runner, p.Plan.Commands(version))
}

// Fetch downloads the benchmark artifacts into WorkDir and unpacks the
// archives into DestDir. It fails with ErrBenchmarkHomeUnset before
// fetching anything if the benchmark home was never configured.
func (p *Provisioner) Fetch(ctx context.Context, cfg Config) error {
	home, err := cfg.RequireBenchmarkHome()
	if err != nil {
		return err
	}
	if p.DryRun {
		log.Printf("dry-run: skipping fetch of %s from %s", strings.Join(Artifacts, ", "), home)
		return nil
	}
	store, err := p.newStore(ctx, home)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}
	for _, name := range Artifacts {
		if err := p.fetchOne(ctx, store, name); err != nil {
			return err
		}
	}
	for _, name := range Archives {
		if err := archive.ExtractZipFile(p.FS, p.FS.Join(p.WorkDir, name), p.DestDir); err != nil {
			return errors.Wrapf(err, "unpacking %s", name)
		}
	}
	return nil
}

func (p *Provisioner) newStore(ctx context.Context, home string) (ArtifactStore, error) {
	if p.NewStore != nil {
		return p.NewStore(ctx, home)
	}
	return NewGCSStore(ctx, home, p.GCSOpts...)
}

func (p *Provisioner) fetchOne(ctx context.Context, store ArtifactStore, name string) error {
	r, size, err := store.Reader(ctx, name)
	if err != nil {
		return errors.Wrapf(err, "fetching %s", name)
	}
	defer r.Close()
	if err := p.FS.MkdirAll(p.WorkDir, 0755); err != nil {
		return errors.Wrap(err, "creating workdir")
	}
	f, err := p.FS.Create(p.FS.Join(p.WorkDir, name))
	if err != nil {
		return errors.Wrapf(err, "creating %s", name)
	}
	defer f.Close()
	var src io.Reader = r
	if p.Progress != nil && size >= 0 {
		bar := pb.New64(size).SetUnits(pb.U_BYTES)
		bar.Output = p.Progress
		bar.Prefix(name)
		bar.Start()
		defer bar.Finish()
		src = bar.NewProxyReader(r)
	}
	if _, err := io.Copy(f, src); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	return f.Close()
}
