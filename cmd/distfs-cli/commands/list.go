package commands

import (
	"github.com/spf13/cobra"

	"github.com/distfs/distfs/internal/wire"
)

var listAll bool

var listFilesCmd = &cobra.Command{
	Use:   "ls",
	Short: "List files visible to the current user",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := wire.Record{Type: wire.ListFiles, Username: username}
		if listAll {
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
	listFilesCmd.Flags().BoolVar(&listAll, "all", false, "list every file, bypassing the access check")
}

var listUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List every known username",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.ListUsers, Username: username})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}
