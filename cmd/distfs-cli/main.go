// Command distfs-cli is a thin client that assembles and sends the wire
// records the naming server and storage servers already define. It adds
// no semantics of its own.
package main

import (
	"fmt"
	"os"

	"github.com/distfs/distfs/cmd/distfs-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
