package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/distfs/distfs/internal/wire"
)

var streamInterval time.Duration

var streamCmd = &cobra.Command{
	Use:   "stream <filename>",
	Short: "Print a file's content word by word",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]
		redirect, err := sendToNM(wire.Record{Type: wire.StreamFile, Username: username, Filename: filename})
		if err != nil {
			return err
		}
		if redirect.Type == wire.Error {
			return printResponse(redirect)
		}
		resp, err := sendOne(ssClientAddr(redirect), wire.Record{Type: wire.StreamFile, Username: username, Filename: filename})
		if err != nil {
			return err
		}
		if resp.Type == wire.Error {
			return printResponse(resp)
		}
		for _, word := range strings.Fields(resp.Data) {
			fmt.Print(word, " ")
			time.Sleep(streamInterval)
		}
		fmt.Println()
		return nil
	},
}

var execCmd = &cobra.Command{
	Use:   "exec <filename>",
	Short: "Run a file's content as a shell command on the naming server",
	Long: `Run a file's content as a shell command on the naming server and print
its output. The naming server refuses this unless it was started with
dangerous_allow_exec: true.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToNM(wire.Record{Type: wire.ExecFile, Username: username, Filename: args[0]})
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

func init() {
	streamCmd.Flags().DurationVar(&streamInterval, "interval", 200*time.Millisecond, "delay between words")
}
