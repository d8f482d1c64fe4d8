package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/gbxremote/cmd/gbxctl/cmdutil"
	"github.com/marmos91/gbxremote/internal/logger"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Open a connection and print callbacks as they arrive",
	Long: `Connect dials the configured dedicated server, authenticates, enables
callbacks, and streams every unsolicited callback to stdout until
interrupted.

Examples:
  gbxctl connect
  gbxctl connect --config /etc/gbxremote/config.yaml
  gbxctl connect --username SuperAdmin --password s3cr3t`,
	RunE: runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	shutdownTelemetry, err := cmdutil.InitAmbient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	conn, err := cmdutil.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Client.EnableCallbacks(ctx, true); err != nil {
		return fmt.Errorf("enable callbacks: %w", err)
	}

	info, err := conn.Client.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}
	fmt.Printf("Connected to %s %s (build %s)\n", info.Name, info.Version, info.Build)
	fmt.Println("Press Ctrl+C to disconnect.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case cb, ok := <-conn.Callbacks:
			if !ok {
				return nil
			}
			fmt.Printf("[callback] %s\n", cb.Name)

		case err := <-conn.Errors:
			logger.Error("connection error", logger.Err(err))
			return err

		case <-sigChan:
			signal.Stop(sigChan)
			fmt.Println("\nDisconnecting...")
			return nil
		}
	}
}
