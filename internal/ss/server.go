package ss

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/internal/wire"
)

// Config holds a storage server's runtime configuration.
type Config struct {
	NMAddr      string // naming server address, host:port
	NMPort      int    // this SS's NM-facing listen port
	ClientPort  int    // this SS's client-facing listen port
	AdvertiseIP string // IP this SS advertises to the NM at registration
	StorageDir  string
}

// Server is a storage server: two TCP listeners (NM-facing and
// client-facing), backed by a shared Store, LockTable, UndoRing, and
// CheckpointStore.
type Server struct {
	cfg Config

	store       *Store
	locks       *LockTable
	undo        *UndoRing
	checkpoints *CheckpointStore

	connSeq atomic.Uint64

	nmListener     net.Listener
	clientListener net.Listener
}

func NewServer(cfg Config, fs afero.Fs) *Server {
	return &Server{
		cfg:         cfg,
		store:       NewStore(fs, cfg.StorageDir),
		locks:       NewLockTable(),
		undo:        NewUndoRing(),
		checkpoints: NewCheckpointStore(),
	}
}

// Start registers with the naming server, opens both listeners, and serves
// until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	nmLn, err := net.Listen("tcp", ":"+strconv.Itoa(s.cfg.NMPort))
	if err != nil {
		return fmt.Errorf("ss: listen NM port %d: %w", s.cfg.NMPort, err)
	}
	s.nmListener = nmLn

	clientLn, err := net.Listen("tcp", ":"+strconv.Itoa(s.cfg.ClientPort))
	if err != nil {
		return fmt.Errorf("ss: listen client port %d: %w", s.cfg.ClientPort, err)
	}
	s.clientListener = clientLn

	if err := s.registerWithNM(ctx); err != nil {
		return fmt.Errorf("ss: register with NM: %w", err)
	}
	logger.Info("storage server registered", "nm_addr", s.cfg.NMAddr, "nm_port", s.cfg.NMPort, "client_port", s.cfg.ClientPort)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.acceptLoop(gctx, s.nmListener, s.handleNMConn) })
	g.Go(func() error { return s.acceptLoop(gctx, s.clientListener, s.handleClientConn) })
	g.Go(func() error {
		<-gctx.Done()
		s.nmListener.Close()
		s.clientListener.Close()
		return nil
	})

	return g.Wait()
}

// registerWithNM sends a single REGISTER_SS record to the naming server.
// The flags field carries the client-facing port, which the naming server
// expects at registration. Data carries a newline-separated list of every
// file already on disk, so the naming server can ingest this SS's file
// list into its trie and registry. This is the only way a restarted
// naming server recovers file locations, since it persists only the
// access table.
func (s *Server) registerWithNM(ctx context.Context) error {
	files, err := s.store.List()
	if err != nil {
		return err
	}

	dialer := net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", s.cfg.NMAddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	if err := wire.Write(conn, wire.Record{
		Type:   wire.RegisterSS,
		SSIP:   s.cfg.AdvertiseIP,
		SSPort: int32(s.cfg.NMPort),
		Flags:  int32(s.cfg.ClientPort),
		Data:   strings.Join(files, "\n"),
	}); err != nil {
		return err
	}
	resp, err := wire.Read(conn)
	if err != nil {
		return err
	}
	if resp.Type != wire.Ack {
		return fmt.Errorf("ss: registration rejected: %s", resp.Data)
	}
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener, handle func(context.Context, net.Conn, uint64)) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("ss: accept: %w", err)
			}
		}
		connID := s.connSeq.Add(1)
		go handle(ctx, conn, connID)
	}
}
