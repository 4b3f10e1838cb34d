// Package config carries k8deployer's run configuration: kube client
// tuning, the engine's run mode and cluster targets, and the flag/env
// wiring cmd/k8deployer installs them through, adapted from
// pkg/apiserver/config.
package config

import (
	"fmt"
	"regexp"

	"github.com/spf13/pflag"
)

// EngineConfig holds the run-wide knobs spec §6/§9 names: which of
// DEPLOY/DELETE/SHOW_DEPENDENCIES to run, the component-tree filters, and
// whether components should get an auto-maintained Namespace ahead of
// their own resources.
type EngineConfig struct {
	Mode                  string // deploy|delete|show-dependencies
	IncludeRegex          string
	ExcludeRegex          string
	AutoMaintainNamespace bool
	DotFile               string
}

// Config is k8deployer's full run configuration.
type Config struct {
	Engine EngineConfig

	// KubeQPS/KubeBurst tune every cluster's rest.Config identically
	// (infrastructure/clients sets these the same way on one shared
	// *rest.Config per cluster client).
	KubeQPS   float64
	KubeBurst int
}

// NewConfig returns a Config with the teacher's kube client defaults and
// an empty engine configuration (filled in from CLI args).
func NewConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Mode: "deploy",
		},
		KubeQPS:   100,
		KubeBurst: 300,
	}
}

// Validate surfaces configuration errors NewConfig's defaults can't catch
// on their own, matching the teacher's Validate() []error contract.
func (c *Config) Validate() []error {
	var errs []error
	switch c.Engine.Mode {
	case "deploy", "delete", "show-dependencies":
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q: want deploy, delete, or show-dependencies", c.Engine.Mode))
	}
	if c.Engine.IncludeRegex != "" {
		if _, err := regexp.Compile(c.Engine.IncludeRegex); err != nil {
			errs = append(errs, fmt.Errorf("include-regex: %w", err))
		}
	}
	if c.Engine.ExcludeRegex != "" {
		if _, err := regexp.Compile(c.Engine.ExcludeRegex); err != nil {
			errs = append(errs, fmt.Errorf("exclude-regex: %w", err))
		}
	}
	if c.KubeQPS <= 0 {
		errs = append(errs, fmt.Errorf("kube-api-qps must be positive, got %v", c.KubeQPS))
	}
	if c.KubeBurst <= 0 {
		errs = append(errs, fmt.Errorf("kube-api-burst must be positive, got %v", c.KubeBurst))
	}
	return errs
}

// AddFlags registers Config's fields on fs, mirroring the teacher's
// AddFlags(fs, configParameter) shape so defaults come from an existing
// Config rather than being hardcoded twice.
func (c *Config) AddFlags(fs *pflag.FlagSet, defaults *Config) {
	fs.StringVar(&c.Engine.IncludeRegex, "include", defaults.Engine.IncludeRegex, "only deploy/delete components whose name matches this regex")
	fs.StringVar(&c.Engine.ExcludeRegex, "exclude", defaults.Engine.ExcludeRegex, "skip components whose name matches this regex")
	fs.BoolVar(&c.Engine.AutoMaintainNamespace, "auto-namespace", defaults.Engine.AutoMaintainNamespace, "create/delete a Namespace component automatically for each root that declares one")
	fs.StringVar(&c.Engine.DotFile, "dot-file", defaults.Engine.DotFile, "write the dependency graph as Graphviz DOT to this file (show-dependencies only)")
	fs.Float64Var(&c.KubeQPS, "kube-api-qps", defaults.KubeQPS, "the qps for kube clients. Low qps may lead to low throughput. High qps may give stress to api-server.")
	fs.IntVar(&c.KubeBurst, "kube-api-burst", defaults.KubeBurst, "the burst for kube clients. Recommend setting it qps*3.")
}
