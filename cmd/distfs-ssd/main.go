// Command distfs-ssd runs a storage server.
package main

import (
	"fmt"
	"os"

	"github.com/distfs/distfs/cmd/distfs-ssd/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
