package nm

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/internal/wire"
)

// Config holds the naming server's runtime configuration, loaded and
// validated by internal/config.
type Config struct {
	ListenPort         int
	AccessFilePath     string
	AdminEnabled       bool
	AdminPort          int
	DangerousAllowExec bool
}

// Server is the naming server: storage-server/client registries, the access
// table, the file index, and the accept loop that peeks each connection's
// first record to pick a handler.
type Server struct {
	cfg      Config
	registry *Registry
	access   *AccessTable
	index    *FileIndex

	listener net.Listener
	admin    *AdminAPI
}

func NewServer(cfg Config) *Server {
	registry := NewRegistry()
	return &Server{
		cfg:      cfg,
		registry: registry,
		access:   NewAccessTable(cfg.AccessFilePath),
		index:    NewFileIndex(registry),
	}
}

// Start loads persisted state, opens the client listener (and, if enabled,
// the admin HTTP API), and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.access.Load(); err != nil {
		return fmt.Errorf("nm: %w", err)
	}

	ln, err := net.Listen("tcp", ":"+strconv.Itoa(s.cfg.ListenPort))
	if err != nil {
		return fmt.Errorf("nm: listen on %d: %w", s.cfg.ListenPort, err)
	}
	s.listener = ln
	logger.Info("naming server listening", "port", s.cfg.ListenPort)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.acceptLoop(gctx)
	})

	if s.cfg.AdminEnabled {
		s.admin = NewAdminAPI(s.cfg.AdminPort, s)
		g.Go(func() error {
			return s.admin.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.listener.Close()
	})

	return g.Wait()
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("nm: accept: %w", err)
			}
		}
		sessionID := uuid.NewString()
		go s.handleConnection(ctx, conn, sessionID)
	}
}

// handleConnection peeks the first record's type to classify the
// connection (REGISTER_SS vs. a client session).
func (s *Server) handleConnection(ctx context.Context, conn net.Conn, sessionID string) {
	defer conn.Close()

	br := bufio.NewReaderSize(conn, wire.RecordSize)
	log := logger.With(logger.SessionID(sessionID), "remote_addr", conn.RemoteAddr().String())

	ty, err := wire.PeekType(br)
	if err != nil {
		log.Debug("connection closed before a full record arrived", "error", err)
		return
	}

	if ty == wire.RegisterSS {
		s.handleRegisterSS(br, conn, log)
		return
	}
	s.handleClientSession(ctx, br, conn, log)
}

// handleRegisterSS is a single-shot handler: one record in, one ACK out,
// connection closed.
func (s *Server) handleRegisterSS(br *bufio.Reader, conn net.Conn, log *slog.Logger) {
	req, err := wire.Read(br)
	if err != nil {
		log.Warn("failed to read REGISTER_SS record", "error", err)
		return
	}

	id := fmt.Sprintf("%s:%d", req.SSIP, req.SSPort)
	// At registration the flags field carries the SS's client-facing
	// port; the record has no dedicated field for it.
	clientPort := req.Flags
	ss := s.registry.RegisterStorageServer(id, req.SSIP, req.SSPort, clientPort)
	metrics.activeSS.Set(float64(len(s.registry.ListStorageServers())))

	// Registration ingest: Data carries a newline-separated list of
	// every file this SS already holds on disk. This is the only way a
	// restarted naming server recovers file locations, since only the
	// access table is persisted.
	for _, name := range strings.Split(req.Data, "\n") {
		if name == "" {
			continue
		}
		ss.addFile(name)
		s.index.Insert(name, ss.ID)
	}

	log.Info("storage server registered", "id", ss.ID, "nm_port", ss.NMPort, "client_port", ss.ClientPort)

	_ = wire.Write(conn, wire.Record{Type: wire.Ack, Data: "REGISTERED"})
}

// handleClientSession is long-lived: it loops reading requests until the
// client closes the connection.
func (s *Server) handleClientSession(ctx context.Context, br *bufio.Reader, conn net.Conn, log *slog.Logger) {
	sess := &clientSession{server: s, conn: conn}

	for {
		req, err := wire.Read(br)
		if err != nil {
			log.Debug("client session ended", "error", err)
			return
		}

		log.Debug("request", logger.RequestID(req.Type.String()), logger.Username(req.Username), logger.Filename(req.Filename))
		resp := sess.dispatch(ctx, req)
		if resp.Type == 0 {
			log.Debug("dropping connection on unknown request type", logger.RequestID(req.Type.String()))
			return
		}
		metrics.requestsTotal.WithLabelValues(req.Type.String(), resp.ErrorCode.String()).Inc()

		if err := wire.Write(conn, resp); err != nil {
			log.Debug("failed to write response", "error", err)
			return
		}
	}
}
