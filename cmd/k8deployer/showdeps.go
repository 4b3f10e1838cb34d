package main

import (
	"github.com/spf13/cobra"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

var showDepsVars map[string]string

var showDepsCmd = &cobra.Command{
	Use:   "show-dependencies <definition-file> [kubeconfig[:k=v,...] ...]",
	Short: "Print the component and task dependency graph without touching the cluster",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runEngine(args[1:], args[0], showDepsVars, engine.ModeShowDependencies)
		return err
	},
}

func init() {
	showDepsCmd.Flags().StringToStringVar(&showDepsVars, "var", nil, "definition-file variable substitution, repeatable (key=value)")
	rootCmd.AddCommand(showDepsCmd)
}
