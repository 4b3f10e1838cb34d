package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/component-base/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print k8deployer's build version",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		fmt.Printf("k8deployer %s (%s) built %s with %s\n",
			info.GitVersion, info.Platform, info.BuildDate, info.GoVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
