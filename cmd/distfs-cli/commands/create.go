package commands

import (
	"github.com/spf13/cobra"

	"github.com/distfs/distfs/internal/wire"
)

var createCmd = &cobra.Command{
	Use:   "create <filename>",
	Short: "Create a new file, owned by the current user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.CreateFile, Username: username, Filename: args[0]})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "rm <filename>",
	Short: "Delete a file (owner only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.DeleteFile, Username: username, Filename: args[0]})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}
