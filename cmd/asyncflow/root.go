package main

import (
	"github.com/spf13/cobra"

	"github.com/asyncflow/asyncflow/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "asyncflow",
	Short: "Deferred execution engine workbench",
	Long: `Asyncflow runs operations asynchronously: submissions return handles
immediately while a worker pool executes tasks in dependency order.
The subcommands exercise the engine end to end, from a small demo
pipeline to a configurable throughput benchmark.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (TOML)")
}

func loadConfig() (config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadFile(cfgFile)
}
