package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getcrudd/crudd/internal/storage"
	"github.com/getcrudd/crudd/pkg/config"
	"github.com/getcrudd/crudd/pkg/logging"
	"github.com/getcrudd/crudd/pkg/server"
	"github.com/getcrudd/crudd/pkg/store"
	"github.com/getcrudd/crudd/pkg/store/file"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		dataDir    string
		backend    string
		logLevel   string
		logFormat  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the resource API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.LoadFile(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			// Flags override file values.
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.Store.DataDir = dataDir
			}
			if cmd.Flags().Changed("backend") {
				cfg.Store.Backend = store.Backend(backend)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = logFormat
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if len(cfg.Resources) == 0 {
				return fmt.Errorf("no resources configured; define at least one in %s", configPath)
			}

			log := logging.New(logging.Config{
				Level:  logging.ParseLevel(cfg.Log.Level),
				Format: logging.ParseFormat(cfg.Log.Format),
			})

			var dataStore store.Store
			switch cfg.Store.Backend {
			case store.BackendMemory:
				dataStore = storage.NewMemoryStore(cfg.Resources)
			default:
				fs := file.New(cfg.Store, cfg.Resources)
				fs.SetLogger(log)
				dataStore = fs
			}
			if err := dataStore.Open(cmd.Context()); err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = dataStore.Close() }()

			srv, err := server.New(cfg.Port, dataStore, cfg.Resources, server.WithLogger(log))
			if err != nil {
				return err
			}
			if err := srv.Start(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			log.Info("shutting down")
			return srv.Stop()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "API listen port")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "data directory for the file backend")
	cmd.Flags().StringVar(&backend, "backend", string(store.BackendFile), "store backend (file or memory)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")
	return cmd
}
