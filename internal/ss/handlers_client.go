package ss

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/distfs/distfs/internal/errs"
	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/internal/tracing"
	"github.com/distfs/distfs/internal/wire"
)

// handleClientConn serves every client-facing operation except
// CREATE_FILE/DELETE_FILE. It loops reading requests until the
// client disconnects. WRITE_FILE is special-cased: it spans two records on
// this same connection, and its lock must be released if the client
// disconnects between them, so an abandoned Phase 1 cannot wedge the file.
func (s *Server) handleClientConn(ctx context.Context, conn net.Conn, connID uint64) {
	defer conn.Close()
	br := bufio.NewReaderSize(conn, wire.RecordSize)

	for {
		req, err := wire.Read(br)
		if err != nil {
			logger.Debug("ss: client connection ended", logger.Err(err))
			return
		}

		if req.Type == wire.WriteFile {
			s.handleWriteTwoPhase(br, conn, connID, req)
			return
		}

		resp := s.dispatchClientRequest(ctx, req)
		if resp.Type == 0 {
			logger.Debug("ss: dropping connection on unknown request type", logger.RequestID(req.Type.String()))
			return
		}
		metrics.requestsTotal.WithLabelValues(req.Type.String(), resp.ErrorCode.String()).Inc()
		if err := wire.Write(conn, resp); err != nil {
			logger.Debug("ss: failed to write response", logger.Err(err))
			return
		}
	}
}

func (s *Server) dispatchClientRequest(ctx context.Context, req wire.Record) wire.Record {
	_, span := tracing.StartRequestSpan(ctx, "ss."+req.Type.String(), req.Filename, req.Username)
	defer span.End()

	switch req.Type {
	case wire.ReadFile, wire.StreamFile:
		return s.handleReadOrStream(req)
	case wire.InfoFile:
		return s.handleInfoFile(req)
	case wire.Undo:
		return s.handleUndo(req)
	case wire.CreateFolder:
		return s.handleCreateFolder(req)
	case wire.ViewFolder:
		return s.handleViewFolder(req)
	case wire.MoveFile:
		return s.handleMoveFile(req)
	case wire.Checkpoint:
		return s.handleCheckpoint(req)
	case wire.ViewCheckpoint:
		return s.handleViewCheckpoint(req)
	case wire.Revert:
		return s.handleRevert(req)
	case wire.ListCheckpoints:
		return s.handleListCheckpoints(req)
	default:
		// Unknown request types are dropped; the session loop closes the
		// connection without responding.
		return wire.Record{}
	}
}

// handleReadOrStream serves READ_FILE/STREAM_FILE. A file held under an
// active WRITE lock is invisible to readers and streamers: they reject with
// SENTENCE_LOCKED rather than returning a possibly-mid-edit view.
func (s *Server) handleReadOrStream(req wire.Record) wire.Record {
	if s.locks.IsLocked(req.Filename) {
		return errorRecord(req.Filename, errs.NewLocked(req.Filename))
	}
	content, err := s.store.Read(req.Filename)
	if err != nil {
		return errorRecord(req.Filename, err)
	}
	return wire.Record{Type: wire.Response, Filename: req.Filename, Data: content}
}

// handleInfoFile serves INFO_FILE: word count, character count, and
// last-modified time for a file.
func (s *Server) handleInfoFile(req wire.Record) wire.Record {
	content, err := s.store.Read(req.Filename)
	if err != nil {
		return errorRecord(req.Filename, err)
	}
	words := len(strings.Fields(content))
	chars := len(content)
	info, statErr := s.store.fs.Stat(s.store.path(req.Filename))
	modified := ""
	if statErr == nil {
		modified = info.ModTime().Format(time.ANSIC)
	}
	return wire.Record{
		Type:     wire.Response,
		Filename: req.Filename,
		Data: "Words: " + strconv.Itoa(words) + "\n" +
			"Chars: " + strconv.Itoa(chars) + "\n" +
			"Modified: " + modified + "\n",
	}
}

func (s *Server) handleUndo(req wire.Record) wire.Record {
	content, ok := s.undo.Restore(req.Filename)
	if !ok {
		return errorRecord(req.Filename, errs.NewNotFound(req.Filename))
	}
	if err := s.store.Write(req.Filename, content); err != nil {
		return errorRecord(req.Filename, err)
	}
	return wire.Record{Type: wire.Ack, Data: "UNDO_RESTORED", Filename: req.Filename}
}

func (s *Server) handleCreateFolder(req wire.Record) wire.Record {
	if err := s.store.CreateFolder(req.FolderPath); err != nil {
		return errorRecord(req.FolderPath, err)
	}
	return wire.Record{Type: wire.Ack, Data: "FOLDER_CREATED", FolderPath: req.FolderPath}
}

func (s *Server) handleViewFolder(req wire.Record) wire.Record {
	entries, err := s.store.ViewFolder(req.FolderPath)
	if err != nil {
		return errorRecord(req.FolderPath, err)
	}
	return wire.Record{Type: wire.Response, Data: joinLines(entries), FolderPath: req.FolderPath}
}

func (s *Server) handleMoveFile(req wire.Record) wire.Record {
	if err := s.store.MoveToFolder(req.Filename, req.FolderPath); err != nil {
		return errorRecord(req.Filename, err)
	}
	return wire.Record{Type: wire.Ack, Data: "MOVED", Filename: req.Filename, FolderPath: req.FolderPath}
}

func (s *Server) handleCheckpoint(req wire.Record) wire.Record {
	content, err := s.store.Read(req.Filename)
	if err != nil {
		return errorRecord(req.Filename, err)
	}
	tag := req.Data
	if err := s.checkpoints.Create(req.Filename, tag, content, req.Username); err != nil {
		if de, ok := errs.AsDomainError(err); ok && de.Code == wire.InvalidCommand {
			metrics.checkpointsMax.Inc()
		}
		return errorRecord(req.Filename, err)
	}
	return wire.Record{Type: wire.Ack, Data: "CHECKPOINT_CREATED", Filename: req.Filename}
}

func (s *Server) handleViewCheckpoint(req wire.Record) wire.Record {
	cp, ok := s.checkpoints.View(req.Filename, req.Data)
	if !ok {
		return errorRecord(req.Filename, errs.NewNotFound(req.Filename))
	}
	return wire.Record{Type: wire.Response, Filename: req.Filename, Data: cp.Content}
}

// handleRevert restores a checkpoint's content. It does not push an undo
// entry: reverting is not itself undoable.
func (s *Server) handleRevert(req wire.Record) wire.Record {
	cp, ok := s.checkpoints.View(req.Filename, req.Data)
	if !ok {
		return errorRecord(req.Filename, errs.NewNotFound(req.Filename))
	}
	if err := s.store.Write(req.Filename, cp.Content); err != nil {
		return errorRecord(req.Filename, err)
	}
	return wire.Record{Type: wire.Ack, Data: "REVERTED", Filename: req.Filename}
}

func (s *Server) handleListCheckpoints(req wire.Record) wire.Record {
	tags := s.checkpoints.List(req.Filename)
	return wire.Record{Type: wire.Response, Filename: req.Filename, Data: joinLines(tags)}
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// handleWriteTwoPhase drives the full two-phase WRITE dialogue. req is the
// already-read Phase 1 record. The connection is done when it returns: a
// lock rejection, a mid-dialogue disconnect, and a completed write all end
// the session.
func (s *Server) handleWriteTwoPhase(br *bufio.Reader, conn net.Conn, connID uint64, req wire.Record) {
	// A contended lock rejects and tears the connection down; the writer
	// re-dials to retry.
	if !s.locks.TryAcquire(req.Filename, connID) {
		_ = wire.Write(conn, errorRecord(req.Filename, errs.NewLocked(req.Filename)))
		metrics.requestsTotal.WithLabelValues(req.Type.String(), wire.SentenceLocked.String()).Inc()
		return
	}
	metrics.activeLocks.Set(float64(s.locks.ActiveLockCount()))

	if err := wire.Write(conn, wire.Record{Type: wire.Ack, Data: "LOCK_ACQUIRED", Filename: req.Filename}); err != nil {
		s.locks.ReleaseIfOwnedBy(req.Filename, connID)
		metrics.activeLocks.Set(float64(s.locks.ActiveLockCount()))
		return
	}

	// Phase 2: read the payload record on the same connection. If the
	// client disconnects here instead, release the lock so the file does
	// not stay wedged behind a dead connection.
	payload, err := wire.Read(br)
	if err != nil {
		logger.Debug("ss: client disconnected mid-WRITE, releasing lock", logger.Filename(req.Filename), logger.ConnectionID(connID), logger.Err(err))
		s.locks.ReleaseIfOwnedBy(req.Filename, connID)
		metrics.activeLocks.Set(float64(s.locks.ActiveLockCount()))
		return
	}

	resp := s.applyWrite(req.Filename, req.SentenceNum, payload.Data)
	s.locks.Release(req.Filename)
	metrics.activeLocks.Set(float64(s.locks.ActiveLockCount()))

	metrics.requestsTotal.WithLabelValues(wire.WriteFile.String(), resp.ErrorCode.String()).Inc()
	if err := wire.Write(conn, resp); err != nil {
		logger.Debug("ss: failed to write WRITE response", logger.Err(err))
	}
}

func (s *Server) applyWrite(filename string, sentenceNum int32, data string) wire.Record {
	current, err := s.store.Read(filename)
	if err != nil {
		return errorRecord(filename, err)
	}

	next, err := applyEdit(filename, current, int(sentenceNum), data)
	if err != nil {
		logger.Debug("ss: WRITE edit rejected", logger.Filename(filename), logger.SentenceNum(sentenceNum), logger.Err(err))
		return errorRecord(filename, err)
	}

	s.undo.Save(filename, current)
	if err := s.store.Write(filename, next); err != nil {
		return errorRecord(filename, err)
	}
	return wire.Record{Type: wire.Ack, Data: "WRITE_COMPLETE", Filename: filename}
}
