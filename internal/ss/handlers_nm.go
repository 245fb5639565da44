package ss

import (
	"context"
	"net"

	"github.com/distfs/distfs/internal/errs"
	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/internal/wire"
)

// handleNMConn serves the naming server's CREATE_FILE/DELETE_FILE forwards:
// one record in, one response out, then close.
func (s *Server) handleNMConn(_ context.Context, conn net.Conn, _ uint64) {
	defer conn.Close()

	req, err := wire.Read(conn)
	if err != nil {
		logger.Debug("ss: NM connection closed before a full record arrived", logger.Err(err))
		return
	}

	var resp wire.Record
	switch req.Type {
	case wire.CreateFile:
		resp = s.handleCreateFile(req)
	case wire.DeleteFile:
		resp = s.handleDeleteFile(req)
	default:
		// Unknown request types are dropped without a response.
		logger.Debug("ss: dropping unknown NM-facing request type", logger.RequestID(req.Type.String()))
		return
	}

	metrics.requestsTotal.WithLabelValues(req.Type.String(), resp.ErrorCode.String()).Inc()
	_ = wire.Write(conn, resp)
}

func (s *Server) handleCreateFile(req wire.Record) wire.Record {
	if err := s.store.Create(req.Filename); err != nil {
		return errorRecord(req.Filename, err)
	}
	return wire.Record{Type: wire.Ack, Data: "CREATED", Filename: req.Filename}
}

func (s *Server) handleDeleteFile(req wire.Record) wire.Record {
	if err := s.store.Delete(req.Filename); err != nil {
		return errorRecord(req.Filename, err)
	}
	return wire.Record{Type: wire.Ack, Data: "DELETED", Filename: req.Filename}
}

// errorRecord converts a *errs.DomainError into an ERROR wire record.
func errorRecord(filename string, err error) wire.Record {
	if de, ok := errs.AsDomainError(err); ok {
		return wire.Record{Type: wire.Error, ErrorCode: de.Code, Data: de.Error(), Filename: filename}
	}
	return wire.Record{Type: wire.Error, ErrorCode: wire.SSUnavailable, Data: err.Error(), Filename: filename}
}
