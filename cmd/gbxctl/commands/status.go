package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/marmos91/gbxremote/cmd/gbxctl/cmdutil"
	"github.com/marmos91/gbxremote/internal/cli/output"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Connect, fetch server info, and disconnect",
	Long: `Status opens a short-lived connection to the configured dedicated
server, authenticates, reads version and current map information, and
prints the result as a table.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
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
		pairs := [][2]string{
			{"Server", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)},
			{"Status", "unreachable"},
			{"Error", err.Error()},
		}
		output.PrintKeyValue(os.Stdout, pairs)
		return nil
	}
	defer conn.Close()

	info, err := conn.Client.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}

	idx, err := conn.Client.CurrentMapIndex(ctx)
	if err != nil {
		return fmt.Errorf("get current map index: %w", err)
	}

	pairs := [][2]string{
		{"Server", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)},
		{"Status", "reachable"},
		{"Name", info.Name},
		{"Version", info.Version},
		{"Build", info.Build},
		{"Current map index", fmt.Sprintf("%d", idx)},
	}
	output.PrintKeyValue(os.Stdout, pairs)
	return nil
}
