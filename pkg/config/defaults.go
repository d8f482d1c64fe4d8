package config

import (
	"strings"
	"time"
)

// DefaultConfig returns a Config populated entirely with defaults.
// It is returned by Load when no config file is found.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unspecified fields of cfg with their defaults.
//
// Zero numbers, durations, empty strings and empty slices are replaced;
// explicit values are preserved. Booleans are left as they are, and
// Metrics.Port is defaulted only when Metrics.Enabled is set.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDispatchDefaults(&cfg.Dispatch)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Port == 0 {
		cfg.Port = 5000
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
}

func applyDispatchDefaults(cfg *DispatchConfig) {
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if cfg.TriggerTimeout == 0 {
		cfg.TriggerTimeout = 30 * time.Second
	}
	if cfg.PendingCallCapacity == 0 {
		cfg.PendingCallCapacity = 64
	}
	if cfg.CallbackBuffer == 0 {
		cfg.CallbackBuffer = 256
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}
