// cmd_serve.go
//
// `mastermind serve`: opens the SQLite database, builds the chi router and
// serves until SIGINT/SIGTERM.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/httpserver"
	"github.com/robalobadob/mastermind/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON game API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (overrides PORT)")
	serveCmd.Flags().String("db", "", "SQLite file (overrides DB_PATH)")
	serveCmd.Flags().Bool("debug", false, "Expose /game/{id}/debug/secret (overrides DEBUG)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		cfg.DBPath = path
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug, _ = cmd.Flags().GetBool("debug")
	}
	if !cfg.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.New(cfg, store.NewMemoryStore(), db)
	log.Info().
		Str("port", cfg.Port).
		Str("db", cfg.DBPath).
		Str("scoring", string(cfg.Scoring)).
		Bool("debug", cfg.Debug).
		Msg("starting mastermind server")
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
