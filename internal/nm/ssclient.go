package nm

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/distfs/distfs/internal/wire"
)

// forwardTimeout bounds how long the NM waits on an SS it is forwarding to,
// so a dead SS surfaces as SS_UNAVAILABLE instead of hanging the client
// session.
const forwardTimeout = 5 * time.Second

// forwardToSS dials addr, sends req as a single record, and returns the
// one response record the SS sends back, then closes the connection. Used
// for CREATE/DELETE (NM-facing port) and for CREATE_FOLDER/MOVE_FILE/
// VIEW_FOLDER/CHECKPOINT family forwarding (client-facing port).
func forwardToSS(ctx context.Context, addr string, req wire.Record) (wire.Record, error) {
	dialer := net.Dialer{Timeout: forwardTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return wire.Record{}, fmt.Errorf("nm: dial SS %s: %w", addr, err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(forwardTimeout))

	if err := wire.Write(conn, req); err != nil {
		return wire.Record{}, fmt.Errorf("nm: forward to SS %s: %w", addr, err)
	}
	resp, err := wire.Read(conn)
	if err != nil {
		return wire.Record{}, fmt.Errorf("nm: read SS %s response: %w", addr, err)
	}
	return resp, nil
}

func nmAddr(ss *StorageServer) string {
	return fmt.Sprintf("%s:%d", ss.IP, ss.NMPort)
}

func clientAddr(ss *StorageServer) string {
	return fmt.Sprintf("%s:%d", ss.IP, ss.ClientPort)
}
