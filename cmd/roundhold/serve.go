package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/roundhold/roundhold/internal/config"
	"github.com/roundhold/roundhold/internal/match"
	"github.com/roundhold/roundhold/internal/server"
	"github.com/roundhold/roundhold/internal/storage"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Roundhold match server",
	Long: `Start the match server. Two clients connecting to /ws are paired into a
match; the server then alternates preparation and combat rounds until one
player runs out of lives.

Configuration is read from --config, ~/.roundhold/config.yaml or
./configs/roundhold.yaml, in that order, falling back to built-in defaults.
A .env file in the working directory is loaded first; ROUNDHOLD_ADDR and
ROUNDHOLD_DB override the file values.

Examples:
  roundhold serve
  roundhold serve --addr :42069
  roundhold serve --db ./matches.db`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (host:port), overrides config")
}

func runServe(_ *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr()
	if env := os.Getenv("ROUNDHOLD_ADDR"); env != "" {
		addr = env
	}
	if flagAddr != "" {
		addr = flagAddr
	}

	dbPath := cfg.Storage.DBPath
	if env := os.Getenv("ROUNDHOLD_DB"); env != "" {
		dbPath = env
	}
	if flagDBPath != "" {
		dbPath = flagDBPath
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "roundhold",
	})

	coordinator := match.NewCoordinator(match.CoordinatorConfig{
		PrepDuration: cfg.Round.PrepDuration(),
		AckTimeout:   cfg.Round.AckTimeout(),
		TickRate:     cfg.Round.TickRate,
	}, logger)

	var store *storage.Store
	if dbPath != "" {
		store, err = storage.Open(dbPath)
		if err != nil {
			logger.Warn("could not open match database, continuing without persistence", "error", err)
		} else {
			defer store.Close()
			coordinator.SetResultSaver(store)
		}
	}

	srv := server.New(server.Config{
		Addr:        addr,
		MaxSessions: cfg.Server.MaxSessions,
	}, coordinator, logger)

	fmt.Printf("Starting Roundhold server on %s\n", addr)
	fmt.Println("Press Ctrl+C to stop")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
