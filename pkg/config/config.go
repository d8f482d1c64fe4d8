// Package config loads and validates gbxremote configuration from a YAML
// file, environment variables, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for a gbxremote connection.
//
// Configuration precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (GBXREMOTE_*)
//  3. Configuration file (YAML)
//  4. Defaults
type Config struct {
	// Server is the dedicated server's XML-RPC listener to dial.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Auth holds the credentials used by the authenticate SetupCalls operation.
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`

	// Dispatch controls call/callback timeouts and correlation table sizing.
	Dispatch DispatchConfig `mapstructure:"dispatch" yaml:"dispatch"`

	// Logging configures the structured logger.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry configures OpenTelemetry distributed tracing.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics configures the Prometheus metrics HTTP server.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig addresses the dedicated server's XML-RPC port.
type ServerConfig struct {
	// Host is the dedicated server's hostname or IP address.
	Host string `mapstructure:"host" validate:"required" yaml:"host"`

	// Port is the XML-RPC TCP port.
	// Default: 5000 (ManiaPlanet default XML-RPC port)
	Port int `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`

	// DialTimeout bounds the initial TCP connect and handshake.
	// Default: 10s
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
}

// AuthConfig holds the SuperAdmin/Admin/User credential pair used to
// authenticate a connection via the authenticate SetupCalls operation.
type AuthConfig struct {
	// Username is the login name, typically "SuperAdmin".
	Username string `mapstructure:"username" validate:"required" yaml:"username"`

	// Password is the plaintext password sent to the authenticate call.
	// It is never logged.
	Password string `mapstructure:"password" validate:"required" yaml:"password"`
}

// DispatchConfig tunes the call client and correlation dispatcher.
type DispatchConfig struct {
	// CallTimeout bounds how long a one-shot call waits for its response
	// frame before the call fails with a timeout error.
	// Default: 30s
	CallTimeout time.Duration `mapstructure:"call_timeout" validate:"omitempty,gt=0" yaml:"call_timeout"`

	// TriggerTimeout bounds how long a script trigger call waits for its
	// correlated ManiaPlanet.ModeScriptCallbackArray callback.
	// Default: 30s
	TriggerTimeout time.Duration `mapstructure:"trigger_timeout" validate:"omitempty,gt=0" yaml:"trigger_timeout"`

	// PendingCallCapacity is passed through to gbx.DispatchConfig, which
	// does not read it: the handle-keyed pending call table is a plain map
	// that grows as needed.
	// Default: 64
	PendingCallCapacity int `mapstructure:"pending_call_capacity" validate:"omitempty,gt=0" yaml:"pending_call_capacity"`

	// CallbackBuffer is the channel buffer depth for the unsolicited
	// callback stream handed to consumers of the client.
	// Default: 256
	CallbackBuffer int `mapstructure:"callback_buffer" validate:"omitempty,gt=0" yaml:"callback_buffer"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format.
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	// Default: "localhost:4317"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use a non-TLS connection to the collector.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL).
	// Default: "http://localhost:4040"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect.
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and the HTTP server are active.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint.
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: path to a config file (empty string uses the default location)
//
// Returns the loaded and validated configuration, or an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !found {
		cfg := DefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, returning a user-friendly error if the
// config file at configPath (or the default location) does not exist.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please create one first:\n"+
				"  gbxctl init\n\n"+
				"Or specify a custom config file:\n"+
				"  gbxctl <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Config files may contain the Auth password, keep them owner-only.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	return validate.Struct(cfg)
}

var validate = validator.New()

// setupViper wires environment variable and config file lookup.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("GBXREMOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reads the configuration file if present.
// Returns (found, error); a missing file is not an error.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns the combined mapstructure decode hook for
// custom types (currently time.Duration strings).
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

// getConfigDir returns $XDG_CONFIG_HOME/gbxremote, falling back to
// ~/.config/gbxremote.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gbxremote")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gbxremote"
	}
	return filepath.Join(home, ".config", "gbxremote")
}

// GetDefaultConfigPath returns the default config.yaml location.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the default config directory.
func GetConfigDir() string {
	return getConfigDir()
}
