// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"fmt"
	"os"

	"github.com/google/rapids-bench-init/internal/runx"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Plan describes the package installation sequence for a node. The zero
// value is not useful; start from DefaultPlan or LoadPlan.
type Plan struct {
	// Conda is the conda-compatible installer used for the version pins.
	Conda string `yaml:"conda"`
	// Pip is the pip executable used for the RAPIDS packages.
	Pip string `yaml:"pip"`
	// CondaPins are version constraints installed before the RAPIDS
	// packages to keep their transitive dependencies compatible.
	CondaPins []string `yaml:"conda_pins"`
	// UpgradePip upgrades pip itself before installing packages.
	UpgradePip bool `yaml:"upgrade_pip"`
	// Packages are installed pinned to the resolved RAPIDS version.
	Packages []string `yaml:"packages"`
	// ExtraIndexURL is the additional package index serving the RAPIDS wheels.
	ExtraIndexURL string `yaml:"extra_index_url"`
}

// DefaultPlan returns the stock Dataproc RAPIDS install sequence.
func DefaultPlan() Plan {
	return Plan{
		Conda:         "mamba",
		Pip:           "pip",
		CondaPins:     []string{"llvmlite<0.40,>=0.39.0dev0", "numba>=0.56.2"},
		UpgradePip:    true,
		Packages:      []string{"cudf-cu11", "cuml-cu11", "pylibraft-cu11", "rmm-cu11"},
		ExtraIndexURL: "https://pypi.nvidia.com",
	}
}

// LoadPlan reads a YAML plan from path. Fields omitted from the file keep
// their DefaultPlan values.
func LoadPlan(path string) (Plan, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, errors.Wrap(err, "reading plan")
	}
	p := DefaultPlan()
	if err := yaml.Unmarshal(buf, &p); err != nil {
		return Plan{}, errors.Wrap(err, "parsing plan")
	}
	return p, nil
}

// Commands renders the ordered install command sequence for the given
// RAPIDS version.
func (p Plan) Commands(version string) []runx.Command {
	var cmds []runx.Command
	if len(p.CondaPins) > 0 {
		cmds = append(cmds, runx.Command{Path: p.Conda, Args: append([]string{"install", "-y"}, p.CondaPins...)})
	}
	if p.UpgradePip {
		cmds = append(cmds, runx.Command{Path: p.Pip, Args: []string{"install", "--upgrade", "pip"}})
	}
	if len(p.Packages) > 0 {
		args := []string{"install"}
		for _, pkg := range p.Packages {
			args = append(args, fmt.Sprintf("%s~=%s", pkg, version))
		}
		if p.ExtraIndexURL != "" {
			args = append(args, "--extra-index-url="+p.ExtraIndexURL)
		}
		cmds = append(cmds, runx.Command{Path: p.Pip, Args: args})
	}
	return cmds
}
