package commands

import (
	"github.com/spf13/cobra"

	"github.com/distfs/distfs/internal/wire"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the current user with the naming server",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.RegisterClient, Username: username})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}
