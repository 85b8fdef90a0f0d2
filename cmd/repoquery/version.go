package main

import (
	"github.com/spf13/cobra"

	"github.com/suparena/repoquery"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		info := repoquery.GetVersionInfo()
		cmd.Printf("repoquery version %s\n", info.Version)
		cmd.Printf("Git commit: %s\n", info.GitCommit)
		cmd.Printf("Build date: %s\n", info.BuildDate)
		cmd.Printf("Go version: %s\n", info.GoVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
