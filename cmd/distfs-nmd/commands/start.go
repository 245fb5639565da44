package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/distfs/distfs/internal/config"
	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/internal/nm"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the naming server",
	Long: `Start the naming server in the foreground.

Examples:
  # Start with defaults
  distfs-nmd start

  # Start with a config file
  distfs-nmd start --config /etc/distfs/nmd.yaml

  # Override the config file's listen_port via environment variable
  DISTFS_NM_LISTEN_PORT=9100 distfs-nmd start --config /etc/distfs/nmd.yaml`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadNamingServer(GetConfigFile())
	if err != nil {
		return err
	}
	if err := config.InitLogging(cfg.Logging); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := nm.NewServer(nm.Config{
		ListenPort:         cfg.ListenPort,
		AccessFilePath:     cfg.AccessFilePath,
		AdminEnabled:       cfg.Admin.Enabled,
		AdminPort:          cfg.Admin.Port,
		DangerousAllowExec: cfg.DangerousAllowExec,
	})

	logger.Info("starting naming server", "listen_port", cfg.ListenPort, "admin_enabled", cfg.Admin.Enabled)
	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
