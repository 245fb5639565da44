package commands

import (
	"github.com/spf13/cobra"

	"github.com/distfs/distfs/internal/wire"
)

var readCmd = &cobra.Command{
	Use:   "cat <filename>",
	Short: "Read a file's full content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]
		redirect, err := sendToNM(wire.Record{Type: wire.ReadFile, Username: username, Filename: filename})
		if err != nil {
			return err
		}
		if redirect.Type == wire.Error {
			return printResponse(redirect)
		}
		resp, err := sendOne(ssClientAddr(redirect), wire.Record{Type: wire.ReadFile, Username: username, Filename: filename})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <filename>",
	Short: "Show word/char/modified info for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]
		redirect, err := sendToNM(wire.Record{Type: wire.ReadFile, Username: username, Filename: filename})
		if err != nil {
			return err
		}
		if redirect.Type == wire.Error {
			return printResponse(redirect)
		}
		resp, err := sendOne(ssClientAddr(redirect), wire.Record{Type: wire.InfoFile, Username: username, Filename: filename})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <filename>",
	Short: "Restore a file's most recent pre-write snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]
		// Resolve through the WRITE path so UNDO requires write access;
		// no lock is involved since no WRITE record reaches the SS.
		redirect, err := sendToNM(wire.Record{Type: wire.WriteFile, Username: username, Filename: filename})
		if err != nil {
			return err
		}
		if redirect.Type == wire.Error {
			return printResponse(redirect)
		}
		resp, err := sendOne(ssClientAddr(redirect), wire.Record{Type: wire.Undo, Username: username, Filename: filename})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}
