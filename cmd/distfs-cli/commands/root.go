// Package commands implements distfs-cli's subcommands. Every subcommand
// just builds a wire.Record, sends it, and prints the response; the
// protocol semantics live entirely in internal/nm and internal/ss.
package commands

import "github.com/spf13/cobra"

var (
	nmAddr   string
	username string
)

var rootCmd = &cobra.Command{
	Use:           "distfs-cli",
	Short:         "distfs client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&nmAddr, "nm", "127.0.0.1:8000", "naming server address")
	rootCmd.PersistentFlags().StringVar(&username, "user", "", "username to act as (required)")
	_ = rootCmd.MarkPersistentFlagRequired("user")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listFilesCmd)
	rootCmd.AddCommand(listUsersCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(ownerCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(viewFolderCmd)
	rootCmd.AddCommand(checkpointCmd)
	rootCmd.AddCommand(viewCheckpointCmd)
	rootCmd.AddCommand(revertCmd)
	rootCmd.AddCommand(listCheckpointsCmd)
}
