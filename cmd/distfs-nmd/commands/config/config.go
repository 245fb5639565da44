// Package config implements the "distfs-nmd config" subcommand group:
// show the effective configuration and emit its JSON schema.
package config

import "github.com/spf13/cobra"

var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect naming server configuration",
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(schemaCmd)
}
