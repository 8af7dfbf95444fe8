package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"gateconsole/config"
	"gateconsole/internal/engine"
	"gateconsole/internal/logger"
	"gateconsole/internal/settings"
	"gateconsole/pkg/models"
)

var configArg string

func main() {
	root := &cobra.Command{
		Use:           "gateconsole",
		Short:         "Web console for the YaraGate analysis engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configArg, "config", "c", "", "path to gateconsole.yml")

	root.AddCommand(
		newServeCommand(),
		newCheckCommand(),
		newRecordsCommand(),
		newYaraCommand(),
		newSettingsCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves, parses and defaults the config. A missing file is not
// an error: the console runs on defaults.
func loadConfig() (*config.Config, string, error) {
	path := config.FindConfigFile(configArg)
	if path == "" {
		return config.Default(), "", nil
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	config.ApplyDefaults(cfg)
	return cfg, path, nil
}

func initLogger(cfg *config.Config) {
	l := cfg.GateConsole.Logging
	if err := logger.Init(l.Enabled, l.Level, l.File, l.Console); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
}

func openStore(cfg *config.Config) (settings.Store, error) {
	s := cfg.GateConsole.Settings
	switch s.Store {
	case "file":
		return settings.NewFileStore(s.File.Path)
	case "redis":
		return settings.NewRedisStore(settings.RedisConfig{
			Addr:      s.Redis.Addr,
			Password:  s.Redis.Password,
			DB:        s.Redis.DB,
			KeyPrefix: s.Redis.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown settings store: %s", s.Store)
	}
}

func openSettings(ctx context.Context, cfg *config.Config) (*settings.Manager, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defaults := models.EngineConfig{Host: cfg.GateConsole.Engine.Host, Port: cfg.GateConsole.Engine.Port}
	mgr, err := settings.NewManager(ctx, store, defaults)
	if err != nil {
		store.Close()
		return nil, err
	}
	return mgr, nil
}

// newClient builds an engine client aimed at the saved setting and keeps it
// in sync with later changes.
func newClient(cfg *config.Config, mgr *settings.Manager, reg prometheus.Registerer) (*engine.Client, error) {
	var metrics *engine.Metrics
	if reg != nil {
		metrics = engine.NewMetrics(reg)
	}
	client, err := engine.NewClient(engine.Config{
		BaseURL: mgr.Current().BaseURL,
		Timeout: cfg.GateConsole.Engine.Timeout,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}
	mgr.OnChange(func(next models.EngineConfig) {
		client.SetBaseURL(next.BaseURL)
	})
	return client, nil
}

// cliSetup is the shared bootstrap of the one-shot commands.
func cliSetup(ctx context.Context) (*config.Config, *settings.Manager, *engine.Client, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg.GateConsole.Logging.Console = false
	if cfg.GateConsole.Logging.File == "" {
		cfg.GateConsole.Logging.Enabled = false
	}
	initLogger(cfg)

	mgr, err := openSettings(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := newClient(cfg, mgr, nil)
	if err != nil {
		mgr.Close()
		return nil, nil, nil, err
	}
	return cfg, mgr, client, nil
}
