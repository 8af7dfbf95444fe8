package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	raw := `
gateconsole:
  server:
    listen: ":9090"
  engine:
    host: engine.local
    timeout: 3s
  settings:
    store: redis
    redis:
      addr: redis:6379
  monitor:
    enabled: true
  audit:
    enabled: true
    mode: http
    http:
      url: http://collector/audit
      headers:
        Authorization: Bearer t
  logging:
    level: debug
`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ApplyDefaults(cfg)
	c := cfg.GateConsole

	if c.Server.Listen != ":9090" {
		t.Fatalf("unexpected listen: %s", c.Server.Listen)
	}
	if c.Engine.Host != "engine.local" || c.Engine.Port != "8081" {
		t.Fatalf("unexpected engine address: %s:%s", c.Engine.Host, c.Engine.Port)
	}
	if c.Engine.Timeout != 3*time.Second {
		t.Fatalf("unexpected engine timeout: %v", c.Engine.Timeout)
	}
	if c.Settings.Store != "redis" || c.Settings.Redis.Addr != "redis:6379" {
		t.Fatalf("unexpected settings store: %+v", c.Settings)
	}
	if c.Settings.Redis.KeyPrefix != "gateconsole" {
		t.Fatalf("expected default key prefix, got %q", c.Settings.Redis.KeyPrefix)
	}
	if c.Monitor.Interval != 10*time.Second {
		t.Fatalf("expected default monitor interval, got %v", c.Monitor.Interval)
	}
	if c.Audit.Mode != "http" || c.Audit.HTTP.URL != "http://collector/audit" || c.Audit.HTTP.Headers["Authorization"] != "Bearer t" {
		t.Fatalf("unexpected audit config: %+v", c.Audit)
	}
	if c.Logging.Level != "debug" {
		t.Fatalf("unexpected log level: %s", c.Logging.Level)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	c := cfg.GateConsole
	if c.Settings.Store != "file" || c.Settings.File.Path == "" {
		t.Fatalf("unexpected settings defaults: %+v", c.Settings)
	}
	if !c.Monitor.Enabled || !c.Logging.Enabled {
		t.Fatalf("monitor and logging should be on by default")
	}
	if c.Audit.Enabled || c.Audit.Mode != "file" {
		t.Fatalf("audit should default to a disabled file sink: %+v", c.Audit)
	}
	if c.Server.MaxUploadMB != 256 {
		t.Fatalf("unexpected upload limit: %d", c.Server.MaxUploadMB)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadConfigKeepsTrueDefaultsForOmittedKeys(t *testing.T) {
	dir := t.TempDir()
	write := func(name, raw string) *Config {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		ApplyDefaults(cfg)
		return cfg
	}

	c := write("omitted.yml", "gateconsole:\n  server:\n    listen: \":9000\"\n  logging:\n    level: warn\n").GateConsole
	if !c.Monitor.Enabled || !c.Logging.Enabled || !c.Logging.Console {
		t.Fatalf("omitted flags should keep their defaults: monitor=%v logging=%+v", c.Monitor.Enabled, c.Logging)
	}
	if c.Logging.Level != "warn" {
		t.Fatalf("unexpected log level: %s", c.Logging.Level)
	}

	c = write("explicit.yml", "gateconsole:\n  monitor:\n    enabled: false\n  logging:\n    enabled: false\n    console: false\n").GateConsole
	if c.Monitor.Enabled || c.Logging.Enabled || c.Logging.Console {
		t.Fatalf("explicit false must win: monitor=%v logging=%+v", c.Monitor.Enabled, c.Logging)
	}
}
