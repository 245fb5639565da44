package commands

import (
	"github.com/spf13/cobra"

	"github.com/distfs/distfs/internal/wire"
)

// The folder family is forwarded by the naming server to a storage server
// and relayed back, so the CLI talks only to the NM.

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <folder>",
	Short: "Create a folder on a storage server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.CreateFolder, Username: username, FolderPath: args[0]})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var moveCmd = &cobra.Command{
	Use:   "mv <filename> <folder>",
	Short: "Move a file into a folder on its storage server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.MoveFile, Username: username, Filename: args[0], FolderPath: args[1]})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var viewFolderCmd = &cobra.Command{
	Use:   "view-folder <folder>",
	Short: "List a folder's contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.ViewFolder, Username: username, FolderPath: args[0]})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}
