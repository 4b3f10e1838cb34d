package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

var deleteVars map[string]string

var deleteCmd = &cobra.Command{
	Use:   "delete <definition-file> [kubeconfig[:k=v,...] ...]",
	Short: "Tear down a component tree from one or more clusters",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := runEngine(args[1:], args[0], deleteVars, engine.ModeDelete)
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
	deleteCmd.Flags().StringToStringVar(&deleteVars, "var", nil, "definition-file variable substitution, repeatable (key=value)")
	rootCmd.AddCommand(deleteCmd)
}
