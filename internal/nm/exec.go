package nm

import (
	"context"
	"os/exec"
	"time"

	"github.com/distfs/distfs/internal/errs"
	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/internal/wire"
)

// execTimeout bounds how long an EXEC_FILE run may take, when enabled.
const execTimeout = 10 * time.Second

// handleExecFile serves EXEC_FILE, a remote-code-execution surface (it
// runs file content as a shell command with the naming server's
// privileges); it is refused unless explicitly opted into via
// Config.DangerousAllowExec, which defaults to false.
func (cs *clientSession) handleExecFile(ctx context.Context, req wire.Record) (wire.Record, error) {
	if !cs.server.cfg.DangerousAllowExec {
		return wire.Record{}, errs.NewPermissionDenied(req.Filename)
	}

	logger.Warn("EXEC_FILE invoked with DangerousAllowExec enabled", logger.Filename(req.Filename), logger.Username(req.Username))

	redirect, err := cs.handleResolveRedirect(req, AccessRead)
	if err != nil {
		return wire.Record{}, err
	}

	readResp, err := forwardToSS(ctx, clientAddr(&StorageServer{IP: redirect.SSIP, ClientPort: redirect.SSPort}), wire.Record{
		Type:     wire.ReadFile,
		Username: req.Username,
		Filename: req.Filename,
	})
	if err != nil {
		return wire.Record{}, errs.NewSSUnavailable(req.Filename)
	}
	if readResp.Type == wire.Error {
		return readResp, nil
	}

	execCtx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	out, runErr := exec.CommandContext(execCtx, "sh", "-c", readResp.Data).CombinedOutput()
	if runErr != nil {
		return wire.Record{Type: wire.Error, ErrorCode: wire.InvalidCommand, Data: runErr.Error()}, nil
	}
	return wire.Record{Type: wire.Response, Filename: req.Filename, Data: string(out)}, nil
}
