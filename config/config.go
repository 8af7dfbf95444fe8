package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory and next to the binary.
const DefaultFileName = "gateconsole.yml"

// Config is the root configuration.
type Config struct {
	GateConsole GateConsoleConfig `yaml:"gateconsole"`
}

// GateConsoleConfig is the project configuration.
type GateConsoleConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Settings SettingsConfig `yaml:"settings"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Audit    AuditConfig    `yaml:"audit"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig controls the console HTTP listener.
type ServerConfig struct {
	Listen       string        `yaml:"listen"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxUploadMB  int64         `yaml:"max_upload_mb"`
	CORSOrigins  []string      `yaml:"cors_origins"`
}

// EngineConfig holds the default engine address used until a setting is saved.
type EngineConfig struct {
	Host    string        `yaml:"host"`
	Port    string        `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// SettingsConfig selects where the engine connection setting is persisted.
type SettingsConfig struct {
	Store string           `yaml:"store"` // file|redis
	File  FileStoreConfig  `yaml:"file"`
	Redis RedisStoreConfig `yaml:"redis"`
}

// FileStoreConfig config for the JSON file store.
type FileStoreConfig struct {
	Path string `yaml:"path"`
}

// RedisStoreConfig config for the Redis store.
type RedisStoreConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// MonitorConfig controls the engine health poller.
type MonitorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// AuditConfig controls the mutation audit trail.
type AuditConfig struct {
	Enabled bool            `yaml:"enabled"`
	Mode    string          `yaml:"mode"` // file|http
	File    FileStoreConfig `yaml:"file"`
	HTTP    HTTPSinkConfig  `yaml:"http"`
}

// HTTPSinkConfig config for webhook output.
type HTTPSinkConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := seeded()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// seeded returns a Config holding the boolean defaults that are true. The zero
// value cannot tell an omitted key from an explicit false, so the file is
// decoded on top of these.
func seeded() *Config {
	cfg := &Config{}
	cfg.GateConsole.Monitor.Enabled = true
	cfg.GateConsole.Logging.Enabled = true
	cfg.GateConsole.Logging.Console = true
	return cfg
}

// Default returns a configuration with only defaults applied, used when no
// config file exists.
func Default() *Config {
	cfg := seeded()
	ApplyDefaults(cfg)
	return cfg
}

// FindConfigFile resolves the config path from an explicit argument, the
// working directory, or the executable's directory, in that order.
func FindConfigFile(configArg string) string {
	if configArg != "" {
		if _, err := os.Stat(configArg); err == nil {
			return configArg
		}
		log.Printf("Warning: config file not found at %s, trying default locations", configArg)
	}

	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}

	exePath, err := os.Executable()
	if err == nil {
		path := filepath.Join(filepath.Dir(exePath), DefaultFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// ApplyDefaults fills zero values.
func ApplyDefaults(cfg *Config) {
	c := &cfg.GateConsole

	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = 256
	}

	if c.Engine.Host == "" {
		c.Engine.Host = "127.0.0.1"
	}
	if c.Engine.Port == "" {
		c.Engine.Port = "8081"
	}
	if c.Engine.Timeout <= 0 {
		c.Engine.Timeout = 10 * time.Second
	}

	if c.Settings.Store == "" {
		c.Settings.Store = "file"
	}
	if c.Settings.File.Path == "" {
		c.Settings.File.Path = "data/engine-config.json"
	}
	if c.Settings.Redis.Addr == "" {
		c.Settings.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Settings.Redis.KeyPrefix == "" {
		c.Settings.Redis.KeyPrefix = "gateconsole"
	}

	if c.Monitor.Interval <= 0 {
		c.Monitor.Interval = 10 * time.Second
	}

	if c.Audit.Mode == "" {
		c.Audit.Mode = "file"
	}
	if c.Audit.File.Path == "" {
		c.Audit.File.Path = "output/audit.jsonl"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
