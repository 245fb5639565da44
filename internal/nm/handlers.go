package nm

import (
	"context"
	"net"
	"sort"
	"strings"

	"github.com/distfs/distfs/internal/errs"
	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/internal/tracing"
	"github.com/distfs/distfs/internal/wire"
)

// clientSession holds the per-connection state for a long-lived client
// session, which loops reading records until the client closes. It
// carries no request queue: one worker per connection, one request in
// flight at a time.
type clientSession struct {
	server *Server
	conn   net.Conn
}

// dispatch routes one request to its handler and turns any *errs.DomainError
// it returns into a wire ERROR record. An unknown request type yields a
// zero-valued record, which the session loop treats as "drop the
// connection without responding".
func (cs *clientSession) dispatch(ctx context.Context, req wire.Record) wire.Record {
	ctx, span := tracing.StartRequestSpan(ctx, "nm."+req.Type.String(), req.Filename, req.Username)
	defer span.End()

	var resp wire.Record
	var err error

	switch req.Type {
	case wire.RegisterClient:
		resp, err = cs.handleRegisterClient(req)
	case wire.ListFiles:
		resp, err = cs.handleListFiles(req)
	case wire.ReadFile:
		resp, err = cs.handleResolveRedirect(req, AccessRead)
	case wire.WriteFile:
		resp, err = cs.handleResolveRedirect(req, AccessWrite)
	case wire.StreamFile:
		resp, err = cs.handleResolveRedirect(req, AccessRead)
	case wire.CreateFile:
		resp, err = cs.handleCreateFile(ctx, req)
	case wire.DeleteFile:
		resp, err = cs.handleDeleteFile(ctx, req)
	case wire.ListUsers:
		resp, err = cs.handleListUsers(req)
	case wire.AddAccess:
		resp, err = cs.handleAddAccess(req)
	case wire.RemAccess:
		resp, err = cs.handleRemAccess(req)
	case wire.ExecFile:
		resp, err = cs.handleExecFile(ctx, req)
	case wire.GetOwner:
		resp, err = cs.handleGetOwner(req)
	case wire.CreateFolder:
		resp, err = cs.handleAnyActiveSSForward(ctx, req)
	case wire.ViewFolder:
		resp, err = cs.handleAnyActiveSSForward(ctx, req)
	case wire.MoveFile:
		resp, err = cs.handleOwningSSForward(ctx, req, AccessWrite)
	case wire.Checkpoint:
		resp, err = cs.handleOwningSSForward(ctx, req, AccessWrite)
	case wire.ViewCheckpoint, wire.Revert, wire.ListCheckpoints:
		resp, err = cs.handleOwningSSForward(ctx, req, AccessRead)
	default:
		return wire.Record{}
	}

	tracing.EndWithError(span, err)

	if err != nil {
		if de, ok := errs.AsDomainError(err); ok {
			logger.Debug("nm: request failed", logger.RequestID(req.Type.String()), logger.ErrorCode(int(de.Code)), logger.Err(err))
			return wire.Record{Type: wire.Error, ErrorCode: de.Code, Data: de.Error(), Filename: req.Filename}
		}
		logger.Debug("nm: request failed", logger.RequestID(req.Type.String()), logger.ErrorCode(int(wire.SSUnavailable)), logger.Err(err))
		return wire.Record{Type: wire.Error, ErrorCode: wire.SSUnavailable, Data: err.Error()}
	}
	return resp
}

func (cs *clientSession) handleRegisterClient(req wire.Record) (wire.Record, error) {
	cs.server.registry.RegisterClient(req.Username)
	return wire.Record{Type: wire.Ack, Data: "REGISTERED"}, nil
}

func (cs *clientSession) handleListFiles(req wire.Record) (wire.Record, error) {
	seen := make(map[string]bool)
	var names []string
	for _, ss := range cs.server.registry.ListStorageServers() {
		if !ss.Active {
			continue
		}
		for _, f := range ss.fileList() {
			if seen[f] {
				continue
			}
			if req.Flags != 1 && !cs.server.access.CheckAccess(f, req.Username, AccessRead) {
				continue
			}
			seen[f] = true
			names = append(names, f)
		}
	}
	sort.Strings(names)
	return wire.Record{Type: wire.Response, Data: joinLines(names)}, nil
}

func (cs *clientSession) handleListUsers(req wire.Record) (wire.Record, error) {
	seen := make(map[string]bool)
	var names []string
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			names = append(names, u)
		}
	}
	for _, u := range cs.server.registry.ListClientUsernames() {
		add(u)
	}
	for _, u := range cs.server.access.AllUsers() {
		add(u)
	}
	sort.Strings(names)
	return wire.Record{Type: wire.Response, Data: joinLines(names)}, nil
}

func joinLines(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, "\n") + "\n"
}

// handleResolveRedirect implements READ/WRITE/STREAM's NM behavior: resolve
// the file's owning SS and hand the client a redirect tuple, after an
// access check.
func (cs *clientSession) handleResolveRedirect(req wire.Record, level AccessLevel) (wire.Record, error) {
	if !cs.server.access.Exists(req.Filename) {
		return wire.Record{}, errs.NewNotFound(req.Filename)
	}
	if !cs.server.access.CheckAccess(req.Filename, req.Username, level) {
		return wire.Record{}, errs.NewUnauthorized(req.Filename)
	}
	ss, ok := cs.server.index.Resolve(req.Filename)
	if !ok {
		return wire.Record{}, errs.NewNotFound(req.Filename)
	}
	return wire.Record{
		Type:     wire.Response,
		Filename: req.Filename,
		SSIP:     ss.IP,
		SSPort:   ss.ClientPort,
	}, nil
}

func (cs *clientSession) handleCreateFile(ctx context.Context, req wire.Record) (wire.Record, error) {
	if cs.server.access.Exists(req.Filename) {
		return wire.Record{}, errs.NewExists(req.Filename)
	}
	ss, ok := cs.server.registry.FirstActiveStorageServer()
	if !ok {
		return wire.Record{}, errs.NewSSUnavailable(req.Filename)
	}

	resp, err := forwardToSS(ctx, nmAddr(ss), wire.Record{
		Type:     wire.CreateFile,
		Username: req.Username,
		Filename: req.Filename,
	})
	if err != nil {
		return wire.Record{}, errs.NewSSUnavailable(req.Filename)
	}
	if resp.Type == wire.Error {
		return resp, nil
	}

	ss.addFile(req.Filename)
	cs.server.index.Insert(req.Filename, ss.ID)
	if err := cs.server.access.CreateOwner(req.Filename, req.Username); err != nil {
		return wire.Record{}, errs.NewSSUnavailable(req.Filename)
	}

	return wire.Record{Type: wire.Ack, Data: "CREATED", Filename: req.Filename}, nil
}

func (cs *clientSession) handleDeleteFile(ctx context.Context, req wire.Record) (wire.Record, error) {
	if !cs.server.access.IsOwner(req.Filename, req.Username) {
		return wire.Record{}, errs.NewPermissionDenied(req.Filename)
	}
	ss, ok := cs.server.index.Resolve(req.Filename)
	if !ok {
		return wire.Record{}, errs.NewNotFound(req.Filename)
	}

	resp, err := forwardToSS(ctx, nmAddr(ss), wire.Record{
		Type:     wire.DeleteFile,
		Username: req.Username,
		Filename: req.Filename,
	})
	if err != nil {
		return wire.Record{}, errs.NewSSUnavailable(req.Filename)
	}
	if resp.Type == wire.Error {
		return resp, nil
	}

	ss.removeFile(req.Filename)
	// The trie entry is deliberately left in place; a later CREATE of the
	// same name overwrites it.
	if err := cs.server.access.Delete(req.Filename); err != nil {
		return wire.Record{}, errs.NewSSUnavailable(req.Filename)
	}
	return wire.Record{Type: wire.Ack, Data: "DELETED", Filename: req.Filename}, nil
}

func (cs *clientSession) handleAddAccess(req wire.Record) (wire.Record, error) {
	if !cs.server.access.IsOwner(req.Filename, req.Username) {
		return wire.Record{}, errs.NewPermissionDenied(req.Filename)
	}
	level := AccessWrite
	if req.Flags == 1 {
		level = AccessRead
	}
	target := req.Data
	if err := cs.server.access.Grant(req.Filename, target, level); err != nil {
		return wire.Record{}, errs.NewNotFound(req.Filename)
	}
	return wire.Record{Type: wire.Ack, Data: "ACCESS_GRANTED", Filename: req.Filename}, nil
}

func (cs *clientSession) handleRemAccess(req wire.Record) (wire.Record, error) {
	if !cs.server.access.IsOwner(req.Filename, req.Username) {
		return wire.Record{}, errs.NewPermissionDenied(req.Filename)
	}
	target := req.Data
	if err := cs.server.access.Revoke(req.Filename, target); err != nil {
		return wire.Record{}, errs.NewNotFound(req.Filename)
	}
	return wire.Record{Type: wire.Ack, Data: "ACCESS_REVOKED", Filename: req.Filename}, nil
}

func (cs *clientSession) handleGetOwner(req wire.Record) (wire.Record, error) {
	owner, _ := cs.server.access.Owner(req.Filename)
	return wire.Record{Type: wire.Response, Data: owner, Filename: req.Filename}, nil
}

// handleAnyActiveSSForward implements CREATE_FOLDER/VIEW_FOLDER: any active
// SS may serve them.
func (cs *clientSession) handleAnyActiveSSForward(ctx context.Context, req wire.Record) (wire.Record, error) {
	ss, ok := cs.server.registry.FirstActiveStorageServer()
	if !ok {
		return wire.Record{}, errs.NewSSUnavailable(req.Filename)
	}
	resp, err := forwardToSS(ctx, clientAddr(ss), req)
	if err != nil {
		return wire.Record{}, errs.NewSSUnavailable(req.Filename)
	}
	return resp, nil
}

// handleOwningSSForward implements MOVE_FILE and the CHECKPOINT family:
// resolve the file's owning SS, check the required access level, and
// forward on the SS's client-facing port, relaying the response as-is.
func (cs *clientSession) handleOwningSSForward(ctx context.Context, req wire.Record, level AccessLevel) (wire.Record, error) {
	if !cs.server.access.CheckAccess(req.Filename, req.Username, level) {
		return wire.Record{}, errs.NewUnauthorized(req.Filename)
	}
	ss, ok := cs.server.index.Resolve(req.Filename)
	if !ok {
		return wire.Record{}, errs.NewNotFound(req.Filename)
	}
	resp, err := forwardToSS(ctx, clientAddr(ss), req)
	if err != nil {
		return wire.Record{}, errs.NewSSUnavailable(req.Filename)
	}
	return resp, nil
}
