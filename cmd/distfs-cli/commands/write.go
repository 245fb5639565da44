package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/distfs/distfs/internal/wire"
)

var (
	writeSentence int32
	writeLines    []string
)

// writeCmd drives the full two-phase WRITE dialogue: resolve the
// owning SS via the NM, then hold one connection to that SS across both the
// lock-acquisition record and the payload record.
var writeCmd = &cobra.Command{
	Use:   "write <filename>",
	Short: "Insert words into a sentence of a file",
	Long: `Insert one or more "<word_index> <content>" lines into the sentence
numbered --sentence (0-based). A word whose content contains '.', '!', or
'?' finalizes the sentence it's inserted into and opens a new one.

Example:
  distfs-cli write a.txt --sentence 0 --line "1 Hello world."`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		redirect, err := sendToNM(wire.Record{
			Type:        wire.WriteFile,
			Username:    username,
			Filename:    filename,
			SentenceNum: writeSentence,
		})
		if err != nil {
			return err
		}
		if redirect.Type == wire.Error {
			return printResponse(redirect)
		}

		conn, err := net.DialTimeout("tcp", ssClientAddr(redirect), dialTimeout)
		if err != nil {
			return fmt.Errorf("dial storage server: %w", err)
		}
		defer conn.Close()

		// Phase 1: lock acquisition.
		if err := wire.Write(conn, wire.Record{
			Type:        wire.WriteFile,
			Username:    username,
			Filename:    filename,
			SentenceNum: writeSentence,
		}); err != nil {
			return err
		}
		lockResp, err := wire.Read(conn)
		if err != nil {
			return err
		}
		if lockResp.Type != wire.Ack {
			return printResponse(lockResp)
		}

		// Phase 2: payload, terminated by the ETIRW sentinel.
		payload := ""
		for _, line := range writeLines {
			payload += line + "\n"
		}
		payload += "ETIRW\n"

		if err := wire.Write(conn, wire.Record{
			Type:     wire.WriteFile,
			Username: username,
			Filename: filename,
			Data:     payload,
		}); err != nil {
			return err
		}
		resp, err := wire.Read(conn)
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

func init() {
	writeCmd.Flags().Int32Var(&writeSentence, "sentence", 0, "0-based sentence index to edit")
	writeCmd.Flags().StringArrayVar(&writeLines, "line", nil, `a "<word_index> <content>" payload line; may be repeated`)
}
