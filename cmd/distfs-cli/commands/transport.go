package commands

import (
	"fmt"
	"net"
	"time"

	"github.com/distfs/distfs/internal/wire"
)

const dialTimeout = 5 * time.Second

// sendOne dials addr, writes req as the only record on the connection, reads
// back one response record, and closes. Every request except the
// two-phase WRITE dialogue has this shape.
func sendOne(addr string, req wire.Record) (wire.Record, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return wire.Record{}, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if err := wire.Write(conn, req); err != nil {
		return wire.Record{}, fmt.Errorf("send to %s: %w", addr, err)
	}
	resp, err := wire.Read(conn)
	if err != nil {
		return wire.Record{}, fmt.Errorf("read from %s: %w", addr, err)
	}
	return resp, nil
}

// sendToNM is sendOne against the configured naming server.
func sendToNM(req wire.Record) (wire.Record, error) {
	return sendOne(nmAddr, req)
}

// printResponse renders a response or error record for the terminal.
func printResponse(resp wire.Record) error {
	if resp.Type == wire.Error {
		return fmt.Errorf("%s: %s", resp.ErrorCode, resp.Data)
	}
	if resp.Data != "" {
		fmt.Print(resp.Data)
		if resp.Data[len(resp.Data)-1] != '\n' {
			fmt.Println()
		}
	} else {
		fmt.Println(resp.Type.String())
	}
	return nil
}

func ssClientAddr(resp wire.Record) string {
	return fmt.Sprintf("%s:%d", resp.SSIP, resp.SSPort)
}
