// Package commands implements the distfs-ssd CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/distfs/distfs/cmd/distfs-ssd/commands/config"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:           "distfs-ssd",
	Short:         "distfs storage server",
	Long:          `distfs-ssd runs a storage server: the write-lock table, undo ring, checkpoint store, sentence/word write engine, and file store for one shard of the file population.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func GetConfigFile() string {
	return cfgFile
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(config.Cmd)
}
