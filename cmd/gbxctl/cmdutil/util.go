// Package cmdutil provides shared flag state and helpers for gbxctl commands.
package cmdutil

import (
	"context"
	"fmt"

	"github.com/marmos91/gbxremote/internal/gbx"
	"github.com/marmos91/gbxremote/internal/logger"
	"github.com/marmos91/gbxremote/internal/telemetry"
	"github.com/marmos91/gbxremote/pkg/config"
	"github.com/marmos91/gbxremote/pkg/metrics"
	"github.com/marmos91/gbxremote/pkg/metrics/prometheus"
)

// Flags stores the global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values bound in the root command's
// PersistentPreRun.
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	Username   string
	Password   string
}

// LoadConfig loads configuration from ConfigPath (or the default location),
// applying the --log-level override if set.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.MustLoad(Flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if Flags.LogLevel != "" {
		cfg.Logging.Level = Flags.LogLevel
	}
	if Flags.Username != "" {
		cfg.Auth.Username = Flags.Username
	}
	if Flags.Password != "" {
		cfg.Auth.Password = Flags.Password
	}
	return cfg, nil
}

// InitAmbient wires the logger and telemetry packages from cfg and returns
// a shutdown function that flushes tracing on exit.
func InitAmbient(ctx context.Context, cfg *config.Config) (shutdown func(context.Context) error, err error) {
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.Metrics.Enabled && !metrics.IsEnabled() {
		metrics.InitRegistry()
	}

	return telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "gbxctl",
		ServiceVersion: "dev",
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
}

// RPCMetrics returns the Prometheus-backed RPC metrics collector when
// metrics are enabled, or nil (gbx.Connect treats a nil metrics.RPCMetrics
// as "record nothing").
func RPCMetrics(cfg *config.Config) metrics.RPCMetrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return prometheus.NewRPCMetrics()
}

// Connect dials the configured dedicated server, authenticates, and pins
// the API version, returning a ready-to-use connection.
func Connect(ctx context.Context, cfg *config.Config) (*gbx.Connection, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Server.DialTimeout)
	defer cancel()

	conn, err := gbx.Connect(dialCtx, addr, gbx.DispatchConfig{
		CallTimeout:         cfg.Dispatch.CallTimeout,
		TriggerTimeout:      cfg.Dispatch.TriggerTimeout,
		PendingCallCapacity: cfg.Dispatch.PendingCallCapacity,
		CallbackBuffer:      cfg.Dispatch.CallbackBuffer,
	}, RPCMetrics(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	if err := conn.Client.Authenticate(ctx, cfg.Auth.Username, cfg.Auth.Password); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if err := conn.Client.SetAPIVersion(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set API version: %w", err)
	}

	return conn, nil
}
