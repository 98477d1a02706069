package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearth-ai/hearth/pkg/api"
	"github.com/hearth-ai/hearth/pkg/observability"
	"github.com/hearth-ai/hearth/pkg/runtime"
)

// version is set at build time via -ldflags
var version = "dev"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "hearthd",
		Short: "Hearth plugin runtime daemon",
		Long:  "hearthd discovers, loads, and executes agent plugins, exposing them over an HTTP API.",
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the hearthd version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "hearthd", version)
		},
	}
}

func newServeCommand() *cobra.Command {
	var (
		addr       string
		builtinDir string
		userDir    string
		projectDir string
		disabled   []string
		enabled    []string
		failClosed bool
		watch      bool
		logLevel   string
		logJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the plugin runtime and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := observability.NewLogger(logLevel, logJSON)
			metrics := observability.NewMetrics()

			cfg := runtime.LoadConfigFromEnv()
			if builtinDir != "" {
				cfg.BuiltinPluginsDir = builtinDir
			}
			if userDir != "" {
				cfg.UserPluginsDir = userDir
			}
			if projectDir != "" {
				cfg.ProjectPluginsDir = projectDir
			}
			if len(disabled) > 0 {
				cfg.DisabledPlugins = disabled
			}
			if len(enabled) > 0 {
				cfg.EnabledPlugins = enabled
			}
			if cmd.Flags().Changed("fail-closed") {
				cfg.FailClosed = failClosed
			}
			if cmd.Flags().Changed("watch") {
				cfg.WatchDirs = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			manager := runtime.New(cfg,
				runtime.WithLogger(log),
				runtime.WithMetrics(metrics),
			)
			if err := manager.Initialize(ctx); err != nil {
				return fmt.Errorf("initializing plugin runtime: %w", err)
			}
			defer manager.Shutdown(context.Background())

			server := &http.Server{
				Addr:              addr,
				Handler:           api.NewServer(manager, metrics, log),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.WithField("addr", addr).Info("hearthd listening")
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutting down HTTP server: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address for the HTTP API to listen on")
	cmd.Flags().StringVar(&builtinDir, "builtin-plugins", "", "directory of builtin plugin manifests")
	cmd.Flags().StringVar(&userDir, "user-plugins", "", "directory of user plugins (default ~/.hearth/plugins)")
	cmd.Flags().StringVar(&projectDir, "project-plugins", "", "directory of project plugins (default .hearth/plugins)")
	cmd.Flags().StringSliceVar(&disabled, "disable", nil, "plugins to never load")
	cmd.Flags().StringSliceVar(&enabled, "enable", nil, "allow-list of plugins to load, overriding disabled-by-default")
	cmd.Flags().BoolVar(&failClosed, "fail-closed", false, "deny execution when no scope checker is configured")
	cmd.Flags().BoolVar(&watch, "watch", false, "watch plugin directories and rediscover on change")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
	return cmd
}
