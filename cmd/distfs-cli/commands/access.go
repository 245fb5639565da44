package commands

import (
	"github.com/spf13/cobra"

	"github.com/distfs/distfs/internal/wire"
)

var grantRead bool

var grantCmd = &cobra.Command{
	Use:   "grant <filename> <target-user>",
	Short: "Grant another user access to a file (owner only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := wire.Record{Type: wire.AddAccess, Username: username, Filename: args[0], Data: args[1]}
		if grantRead {
			req.Flags = 1
		}
		resp, err := sendToNM(req)
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

func init() {
	grantCmd.Flags().BoolVarP(&grantRead, "read", "R", false, "grant READ instead of WRITE")
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <filename> <target-user>",
	Short: "Remove another user's access to a file (owner only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.RemAccess, Username: username, Filename: args[0], Data: args[1]})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var ownerCmd = &cobra.Command{
	Use:   "owner <filename>",
	Short: "Print a file's owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.GetOwner, Username: username, Filename: args[0]})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}
