package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gateconsole/internal/dashboard"
	"gateconsole/pkg/models"
)

const cliTimeout = 30 * time.Second

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Test the connection to the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
			defer cancel()
			_, mgr, client, err := cliSetup(ctx)
			if err != nil {
				return err
			}
			defer mgr.Close()

			v, err := client.Version(ctx)
			if err != nil {
				return fmt.Errorf("engine at %s is offline: %w", client.BaseURL(), err)
			}
			fmt.Printf("Engine at %s is online (version %s)\n", client.BaseURL(), v.Version)

			st, err := client.Status(ctx)
			if err != nil {
				fmt.Printf("Status unavailable: %v\n", err)
				return nil
			}
			fmt.Printf("Running: %t  Database: %s  Listener: %s:%d\n",
				st.Engine.IsRunning, st.Engine.Database.Type, st.Engine.Server.BindAddr, st.Engine.Server.Port)
			return nil
		},
	}
}

func newRecordsCommand() *cobra.Command {
	var query, status string
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List analysis records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
			defer cancel()
			_, mgr, client, err := cliSetup(ctx)
			if err != nil {
				return err
			}
			defer mgr.Close()

			resp, err := client.Records(ctx)
			if err != nil {
				return err
			}
			records := dashboard.FilterRecords(resp.Records, query, status)
			for _, r := range records {
				verdict := "clean"
				if r.IsMalicious {
					verdict = "malicious"
				}
				fmt.Printf("%-64s  %-9s  %-10s  %s\n", r.SHA256, verdict, dashboard.FormatFileSize(r.FileSize), r.FileName)
			}
			summary := dashboard.Summarize(resp.Records, time.Now())
			fmt.Printf("\n%d of %d records (detection rate %s%%)\n", len(records), summary.Total, summary.DetectionRate)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "substring of name, sha256 or type")
	cmd.Flags().StringVarP(&status, "status", "s", dashboard.StatusAll, "all|malicious|clean")
	return cmd
}

func newYaraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yara",
		Short: "YARA rule operations",
	}

	var out string
	download := &cobra.Command{
		Use:   "download",
		Short: "Download the compiled rule set",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
			defer cancel()
			_, mgr, client, err := cliSetup(ctx)
			if err != nil {
				return err
			}
			defer mgr.Close()

			blob, err := client.CompiledYaraRules(ctx)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = dashboard.CompiledRulesFilename(time.Now())
			} else if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, dashboard.CompiledRulesFilename(time.Now()))
			}
			if err := os.WriteFile(path, blob, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Printf("Wrote %s (%s)\n", path, dashboard.FormatFileSize(int64(len(blob))))
			return nil
		},
	}
	download.Flags().StringVarP(&out, "output", "o", "", "output file or directory")

	list := &cobra.Command{
		Use:   "list",
		Short: "List compiled rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
			defer cancel()
			_, mgr, client, err := cliSetup(ctx)
			if err != nil {
				return err
			}
			defer mgr.Close()

			resp, err := client.YaraRules(ctx)
			if err != nil {
				return err
			}
			for _, r := range resp.Rules {
				fmt.Printf("%-20s  %-40s  %s\n", r.Namespace, r.Identifier, strings.Join(r.Tags, ","))
			}
			fmt.Printf("\n%d rules\n", len(resp.Rules))
			return nil
		},
	}

	cmd.AddCommand(download, list)
	return cmd
}

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the engine connection",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved engine connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
			defer cancel()
			_, mgr, _, err := cliSetup(ctx)
			if err != nil {
				return err
			}
			defer mgr.Close()
			printSettings(mgr.Current())
			return nil
		},
	}

	var host, port string
	set := &cobra.Command{
		Use:   "set",
		Short: "Save a new engine host and/or port",
		RunE: func(cmd *cobra.Command, args []string) error {
			if host == "" && port == "" {
				return fmt.Errorf("nothing to set: pass --host and/or --port")
			}
			ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
			defer cancel()
			_, mgr, _, err := cliSetup(ctx)
			if err != nil {
				return err
			}
			defer mgr.Close()

			saved, err := mgr.Update(ctx, models.EngineConfig{Host: strings.TrimSpace(host), Port: strings.TrimSpace(port)})
			if err != nil {
				return err
			}
			printSettings(saved)
			return nil
		},
	}
	set.Flags().StringVar(&host, "host", "", "engine host")
	set.Flags().StringVar(&port, "port", "", "engine port")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the configured default engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
			defer cancel()
			_, mgr, _, err := cliSetup(ctx)
			if err != nil {
				return err
			}
			defer mgr.Close()

			saved, err := mgr.Reset(ctx)
			if err != nil {
				return err
			}
			printSettings(saved)
			return nil
		},
	}

	cmd.AddCommand(show, set, reset)
	return cmd
}

func printSettings(cfg models.EngineConfig) {
	fmt.Printf("host:    %s\nport:    %s\nbaseUrl: %s\n", cfg.Host, cfg.Port, cfg.BaseURL)
}
