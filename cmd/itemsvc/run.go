package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"simpleapp/itemsvc/pkg/cli"
	"simpleapp/itemsvc/pkg/config"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the item service",
	Long: `Start the item service with the specified configuration.

Environment variables and a .env file in the working directory override the
configuration file. When a file is given it is watched, and a changed
log level takes effect without a restart.

Examples:
  # Start with defaults
  itemsvc run

  # Start with custom config
  itemsvc run --config /etc/itemsvc/config.yaml

  # Override listen address
  itemsvc run --listen 0.0.0.0:8080

  # Validate config without starting server
  itemsvc run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warning, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

// loadConfig loads the configuration and applies the flag overrides.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, os.Stdout)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.close(closeCtx); err != nil {
			a.logger.Error(closeCtx, "shutdown failed", map[string]any{"error": err.Error()})
		}
	}()

	slog.SetDefault(a.logger.Slog())

	a.logger.Info(ctx, "App is Running", map[string]any{"environment": cfg.App.Environment})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Start(gctx)
	})
	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, 0, a.logger.Slog())
		if err != nil {
			a.logger.Warning(ctx, "config hot reload disabled", map[string]any{"error": err.Error()})
		} else {
			g.Go(func() error {
				return watcher.Watch(gctx, func(next *config.Config) {
					a.applyReload(gctx, next)
				})
			})
		}
	}

	if err := g.Wait(); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// applyReload applies the settings that can change at runtime.
func (a *app) applyReload(ctx context.Context, next *config.Config) {
	level := next.Telemetry.Logging.Level
	if runFlags.logLevel != "" {
		level = runFlags.logLevel
	}
	if err := a.logger.SetLevel(level); err != nil {
		a.logger.Error(ctx, "failed to apply reloaded log level", map[string]any{"error": err.Error()})
		return
	}
	a.logger.Info(ctx, "log level updated", map[string]any{
		"level":       level,
		"reloaded_at": time.Now().UTC().Format(time.RFC3339),
	})
}
