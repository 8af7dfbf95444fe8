package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"gateconsole/config"
	"gateconsole/internal/audit"
	"gateconsole/internal/logger"
	"gateconsole/internal/monitor"
	"gateconsole/internal/server"
	"gateconsole/pkg/models"
)

func newServeCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(listen)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides server.listen)")
	return cmd
}

func runServe(listen string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	initLogger(cfg)
	defer logger.Close()

	c := cfg.GateConsole
	if listen != "" {
		c.Server.Listen = listen
	}

	logger.Infof("GateConsole starting")
	if path != "" {
		logger.Infof("Config loaded from: %s", path)
	} else {
		logger.Warnf("No config file found, using defaults")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mgr, err := openSettings(ctx, cfg)
	if err != nil {
		logger.Errorf("Failed to open settings store: %v", err)
		return err
	}
	defer mgr.Close()
	logger.Infof("Settings store: %s", c.Settings.Store)

	client, err := newClient(cfg, mgr, reg)
	if err != nil {
		return err
	}

	var mon *monitor.Monitor
	if c.Monitor.Enabled {
		mon = monitor.New(client, c.Monitor.Interval, reg)
		mgr.OnChange(func(_ models.EngineConfig) {
			mon.Refresh(ctx)
		})
		go mon.Run(ctx)
	}

	recorder, err := openAudit(c.Audit)
	if err != nil {
		logger.Errorf("Failed to create audit writer: %v", err)
		return err
	}
	defer recorder.Close()

	srv, err := server.New(server.Options{
		Client:         client,
		Settings:       mgr,
		Monitor:        mon,
		Audit:          recorder,
		Gatherer:       reg,
		MaxUploadBytes: c.Server.MaxUploadMB << 20,
		CORSOrigins:    c.Server.CORSOrigins,
	})
	if err != nil {
		return err
	}

	logger.Infof("Engine: %s", client.BaseURL())
	return srv.ListenAndServe(ctx, c.Server.Listen, c.Server.ReadTimeout, c.Server.WriteTimeout)
}

func openAudit(cfg config.AuditConfig) (audit.Recorder, error) {
	if !cfg.Enabled {
		return audit.Nop{}, nil
	}
	switch cfg.Mode {
	case "file":
		w, err := audit.NewWriter(cfg.File.Path)
		if err != nil {
			return nil, err
		}
		logger.Infof("Audit output mode: file (%s)", cfg.File.Path)
		return w, nil
	case "http":
		w, err := audit.NewHTTPWriter(audit.HTTPConfig{
			URL:     cfg.HTTP.URL,
			Timeout: cfg.HTTP.Timeout,
			Headers: cfg.HTTP.Headers,
		})
		if err != nil {
			return nil, err
		}
		logger.Infof("Audit output mode: http (%s)", cfg.HTTP.URL)
		return w, nil
	default:
		return nil, fmt.Errorf("unknown audit output mode: %s", cfg.Mode)
	}
}
