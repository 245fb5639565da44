package commands

import (
	"github.com/spf13/cobra"

	"github.com/distfs/distfs/internal/wire"
)

// The checkpoint family is forwarded by the naming server to the owning
// storage server and relayed back, so the CLI talks only to the NM.

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint <filename> <tag>",
	Short: "Snapshot a file's current content under a tag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.Checkpoint, Username: username, Filename: args[0], Data: args[1]})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var viewCheckpointCmd = &cobra.Command{
	Use:   "view-checkpoint <filename> <tag>",
	Short: "Print a checkpoint's snapshot content",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.ViewCheckpoint, Username: username, Filename: args[0], Data: args[1]})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var revertCmd = &cobra.Command{
	Use:   "revert <filename> <tag>",
	Short: "Overwrite a file's content from a checkpoint snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.Revert, Username: username, Filename: args[0], Data: args[1]})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var listCheckpointsCmd = &cobra.Command{
	Use:   "checkpoints <filename>",
	Short: "List a file's checkpoint tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.ListCheckpoints, Username: username, Filename: args[0]})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}
