package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "127.0.0.1"
  port: 5000

auth:
  username: "SuperAdmin"
  password: "SuperAdmin"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected server host 127.0.0.1, got %q", cfg.Server.Host)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected default format text, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("expected default output stdout, got %q", cfg.Logging.Output)
	}
	if cfg.Dispatch.CallTimeout != 30*time.Second {
		t.Errorf("expected default call_timeout 30s, got %v", cfg.Dispatch.CallTimeout)
	}
	if cfg.Dispatch.TriggerTimeout != 30*time.Second {
		t.Errorf("expected default trigger_timeout 30s, got %v", cfg.Dispatch.TriggerTimeout)
	}
	if cfg.Server.DialTimeout != 10*time.Second {
		t.Errorf("expected default dial_timeout 10s, got %v", cfg.Server.DialTimeout)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Server.Port)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(`
server:
  host: "127.0.0.1"
  port: 5000
auth:
  username: "SuperAdmin"
  password: "from-file"
`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("GBXREMOTE_AUTH_PASSWORD", "from-env")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Auth.Password != "from-env" {
		t.Errorf("expected env override to win, got %q", cfg.Auth.Password)
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for missing server host and auth credentials")
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Auth.Username = "SuperAdmin"
	cfg.Auth.Password = "SuperAdmin"

	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Auth.Username = "SuperAdmin"
	cfg.Auth.Password = "SuperAdmin"
	cfg.Logging.Level = "TRACE"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Auth.Username = "SuperAdmin"
	cfg.Auth.Password = "hunter2"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Auth.Password != "hunter2" {
		t.Errorf("expected password to round-trip, got %q", loaded.Auth.Password)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat saved config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected config file permissions 0600, got %v", info.Mode().Perm())
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	want := filepath.Join(tmpDir, "gbxremote", "config.yaml")
	if got := GetDefaultConfigPath(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
