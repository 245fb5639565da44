package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/distfs/distfs/internal/config"
	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/internal/ss"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a storage server",
	Long: `Start a storage server in the foreground. It registers with the naming
server on startup and then serves its two listeners (NM-facing and
client-facing) until interrupted.

Examples:
  distfs-ssd start --config /etc/distfs/ssd.yaml`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadStorageServer(GetConfigFile())
	if err != nil {
		return err
	}
	if err := config.InitLogging(cfg.Logging); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := ss.NewServer(ss.Config{
		NMAddr:      cfg.NMAddr,
		NMPort:      cfg.NMPort,
		ClientPort:  cfg.ClientPort,
		AdvertiseIP: cfg.AdvertiseIP,
		StorageDir:  cfg.StorageDir,
	}, afero.NewOsFs())

	logger.Info("starting storage server", "nm_addr", cfg.NMAddr, "nm_port", cfg.NMPort, "client_port", cfg.ClientPort)
	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
