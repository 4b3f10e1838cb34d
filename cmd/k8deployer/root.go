package main

import (
	"context"
	"flag"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/bridgecrew-perf6/k8deployer/internal/config"
	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
	"github.com/bridgecrew-perf6/k8deployer/internal/statusapi"
	"github.com/bridgecrew-perf6/k8deployer/internal/traits"
)

var cfg = config.NewConfig()

var rootCmd = &cobra.Command{
	Use:   "k8deployer",
	Short: "Drive a component tree across one or more Kubernetes clusters",
	Long: `k8deployer builds a dependency-ordered task graph from a declarative
component tree and drives it to completion against one or more clusters,
cooperatively scheduling each cluster's tasks off the events its own
watch stream and readiness probes deliver.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ApplyEnvOverrides(cmd.Flags(), config.EnvPrefix); err != nil {
			return err
		}
		if errs := cfg.Validate(); len(errs) > 0 {
			return errs[0]
		}
		// Not a terminal-attached long-running server, but still worth
		// forcing color on for the run summary printer (mirrors
		// cmd/server/app.Run's color.NoColor = false).
		color.NoColor = false
		engine.SetPrepareDeployHook(func(_ context.Context, c *engine.Component) error {
			return traits.ApplyTraits(c)
		})
		return nil
	},
}

func init() {
	klog.InitFlags(nil)
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	cfg.AddFlags(rootCmd.PersistentFlags(), config.NewConfig())
	statusapi.AddFlags(rootCmd.PersistentFlags())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
