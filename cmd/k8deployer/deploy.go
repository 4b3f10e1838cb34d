package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

var deployVars map[string]string

var deployCmd = &cobra.Command{
	Use:   "deploy <definition-file> [kubeconfig[:k=v,...] ...]",
	Short: "Create or update a component tree against one or more clusters",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := runEngine(args[1:], args[0], deployVars, engine.ModeDeploy)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Err != nil {
				return fmt.Errorf("cluster %s: %w", r.Cluster, r.Err)
			}
		}
		return nil
	},
}

func init() {
	deployCmd.Flags().StringToStringVar(&deployVars, "var", nil, "definition-file variable substitution, repeatable (key=value)")
	rootCmd.AddCommand(deployCmd)
}
