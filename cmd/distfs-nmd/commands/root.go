// Package commands implements the distfs-nmd CLI: a root command,
// start/version subcommands, and a config subcommand group.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/distfs/distfs/cmd/distfs-nmd/commands/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:           "distfs-nmd",
	Short:         "distfs naming server",
	Long:          `distfs-nmd runs the naming server: storage-server registration, file-to-SS resolution, access control, and client request dispatch.`,
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
